// AngelaMos | 2026
// service.go

package emoji

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/emoji-explainer/internal/audit"
	"github.com/carterperez-dev/emoji-explainer/internal/core"
)

const (
	NoInterpretation = "No interpretation available."
	SystemOwner      = "system"
)

type Service struct {
	repo      Repository
	explainer Explainer
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, explainer Explainer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		explainer: explainer,
		logger:    logger,
		now:       time.Now,
	}
}

// Interpret is a read-only lookup. A miss yields NoInterpretation rather
// than an error.
func (s *Service) Interpret(ctx context.Context, emoji string) (string, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return "", fmt.Errorf("interpret: empty emoji: %w", core.ErrInvalidInput)
	}

	rec, err := s.repo.GetByEmoji(ctx, emoji)
	if errors.Is(err, core.ErrNotFound) {
		return NoInterpretation, nil
	}
	if err != nil {
		return "", fmt.Errorf("interpret: %w", err)
	}

	return rec.Explanation, nil
}

// ExplainAndCache returns the stored explanation, computing and storing it
// on a miss. The new row and its INFO log entry commit together. Two
// concurrent misses may both compute, but only the first insert is kept
// and both callers get the stored value.
func (s *Service) ExplainAndCache(
	ctx context.Context,
	emoji, ownerID string,
) (string, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return "", fmt.Errorf("explain: empty emoji: %w", core.ErrInvalidInput)
	}
	if ownerID == "" {
		ownerID = SystemOwner
	}

	ctx, span := core.StartSpan(ctx, "emoji.ExplainAndCache", attribute.String("emoji", emoji))
	defer span.End()

	rec, err := s.repo.GetByEmoji(ctx, emoji)
	if err == nil {
		return rec.Explanation, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		core.SetSpanError(ctx, err)
		return "", fmt.Errorf("explain: %w", err)
	}

	core.AddSpanEvent(ctx, "cache_miss")

	explanation, err := s.explainer.Explain(ctx, emoji)
	if err != nil {
		if !errors.Is(err, core.ErrComputeFailed) {
			err = fmt.Errorf("%w: %w", core.ErrComputeFailed, err)
		}
		core.SetSpanError(ctx, err)
		return "", fmt.Errorf("explain %q: %w", emoji, err)
	}

	stored, inserted, err := s.repo.CreateIfAbsent(ctx, &Interpretation{
		Emoji:       emoji,
		Explanation: explanation,
		OwnerUserID: ownerID,
		CreatedAt:   s.now(),
	}, func(ctx context.Context, tx bun.IDB) error {
		return audit.NewRepository(tx).Append(ctx, &audit.LogEntry{
			Message:   fmt.Sprintf("Computed new interpretation for emoji '%s'", emoji),
			Level:     audit.LevelInfo,
			CreatedAt: s.now(),
		})
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return "", fmt.Errorf("explain: store: %w", err)
	}

	if inserted {
		s.logger.Info("cached new interpretation",
			"emoji", emoji,
			"owner", ownerID,
		)
	} else {
		core.AddSpanEvent(ctx, "lost_insert_race")
	}

	return stored.Explanation, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
