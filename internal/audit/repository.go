// AngelaMos | 2026
// repository.go

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/carterperez-dev/emoji-explainer/internal/core"
)

type Repository interface {
	Append(ctx context.Context, entry *LogEntry) error
	List(ctx context.Context, params ListLogsParams) ([]LogEntry, int, error)
}

type repository struct {
	db bun.IDB
}

// NewRepository binds the store to db, which may be the pool or a running
// transaction.
func NewRepository(db bun.IDB) Repository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, entry *LogEntry) error {
	if !entry.Level.Valid() {
		return fmt.Errorf("append log: level %q: %w", entry.Level, core.ErrInvalidInput)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return core.StoreError("append log", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListLogsParams,
) ([]LogEntry, int, error) {
	params.Normalize()

	entries := []LogEntry{}
	q := r.db.NewSelect().
		Model(&entries).
		OrderExpr("le.created_at DESC, le.id DESC").
		Limit(params.PageSize).
		Offset(params.Offset())

	if params.Level != "" {
		q = q.Where("le.level = ?", params.Level)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, core.StoreError("list logs", err)
	}

	return entries, total, nil
}
