// AngelaMos | 2026
// repository.go

package emoji

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/carterperez-dev/emoji-explainer/internal/core"
)

// InsertHook runs inside the insert transaction, only when the row was new.
type InsertHook func(ctx context.Context, tx bun.IDB) error

type Repository interface {
	GetByEmoji(ctx context.Context, emoji string) (*Interpretation, error)
	CreateIfAbsent(
		ctx context.Context,
		rec *Interpretation,
		onInsert InsertHook,
	) (*Interpretation, bool, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByEmoji(
	ctx context.Context,
	emoji string,
) (*Interpretation, error) {
	return getByEmoji(ctx, r.db, emoji)
}

func getByEmoji(
	ctx context.Context,
	db bun.IDB,
	emoji string,
) (*Interpretation, error) {
	rec := new(Interpretation)
	err := db.NewSelect().
		Model(rec).
		Where("itp.emoji = ?", emoji).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get interpretation: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StoreError("get interpretation", err)
	}

	return rec, nil
}

// CreateIfAbsent inserts rec unless a row for the same emoji exists. The
// returned record is the one stored afterwards, and the bool reports
// whether this call created it. onInsert shares the transaction, so a
// failing hook rolls the insert back.
func (r *repository) CreateIfAbsent(
	ctx context.Context,
	rec *Interpretation,
	onInsert InsertHook,
) (*Interpretation, bool, error) {
	var (
		stored   *Interpretation
		inserted bool
	)

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().
			Model(rec).
			On("CONFLICT (emoji) DO NOTHING").
			Returning("NULL").
			Exec(ctx)
		if err != nil {
			return core.StoreError("insert interpretation", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return core.StoreError("insert interpretation", err)
		}

		if n == 0 {
			existing, err := getByEmoji(ctx, tx, rec.Emoji)
			if err != nil {
				return err
			}
			stored = existing
			return nil
		}

		stored, inserted = rec, true
		if onInsert != nil {
			return onInsert(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return stored, inserted, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*Interpretation)(nil)).Count(ctx)
	if err != nil {
		return 0, core.StoreError("count interpretations", err)
	}
	return n, nil
}
