// AngelaMos | 2026
// service.go

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	userMessage       = "There was an internal error, please try again later."
	actionCheckInput  = "Please check the information provided and try again."
	actionContactHelp = "If the problem persists, contact customer support."
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// HandleError records an ERROR entry stamped with the report's timestamp
// and returns the canned user-facing response. The response does not
// depend on the message content. A non-nil error means the entry was not
// stored; the response is still valid.
func (s *Service) HandleError(
	ctx context.Context,
	report ErrorReport,
) (*ErrorResponse, error) {
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}

	resp := &ErrorResponse{
		UserMessage:      userMessage,
		SuggestedActions: []string{actionCheckInput, actionContactHelp},
		ReferenceCode:    ReferenceCode(report.Timestamp),
	}

	entry := &LogEntry{
		Message:   FormatErrorMessage(report),
		Level:     LevelError,
		CreatedAt: report.Timestamp,
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("error report not persisted",
			"module", report.Module,
			"reference_code", resp.ReferenceCode,
			"error", err,
		)
		return resp, fmt.Errorf("handle error: %w", err)
	}

	s.logger.Warn("error reported",
		"module", report.Module,
		"user_role", report.UserRole,
		"reference_code", resp.ReferenceCode,
	)

	return resp, nil
}

func (s *Service) Record(ctx context.Context, level Level, message string) error {
	if err := s.repo.Append(ctx, &LogEntry{Message: message, Level: level}); err != nil {
		return fmt.Errorf("record log: %w", err)
	}
	return nil
}

func (s *Service) ListLogs(
	ctx context.Context,
	params ListLogsParams,
) ([]LogEntry, int, error) {
	return s.repo.List(ctx, params)
}

// ReferenceCode is "ERR" followed by whole seconds since the epoch.
func ReferenceCode(t time.Time) string {
	return "ERR" + strconv.FormatInt(t.Unix(), 10)
}

func FormatErrorMessage(report ErrorReport) string {
	return fmt.Sprintf(
		"Error in %s: %s. Additional Info: %s",
		report.Module,
		report.ErrorMessage,
		formatAdditionalInfo(report.AdditionalInfo),
	)
}

// formatAdditionalInfo renders info as "k=v" pairs sorted by key.
func formatAdditionalInfo(info map[string]string) string {
	if len(info) == 0 {
		return "None"
	}

	pairs := make([]string, 0, len(info))
	for _, k := range slices.Sorted(maps.Keys(info)) {
		pairs = append(pairs, k+"="+info[k])
	}
	return strings.Join(pairs, ", ")
}
