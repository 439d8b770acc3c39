// AngelaMos | 2026
// dto.go

package audit

import (
	"time"
)

// ErrorReport describes a failure raised somewhere in the service or by a
// client. AdditionalInfo is free-form context copied into the log message.
type ErrorReport struct {
	Module         string            `json:"module"          validate:"required,max=100"`
	Timestamp      time.Time         `json:"timestamp"`
	ErrorMessage   string            `json:"error_message"   validate:"required,max=2000"`
	UserRole       string            `json:"user_role"       validate:"required,oneof=UNKNOWN USER ADMIN"`
	AdditionalInfo map[string]string `json:"additional_info"`
}

type ErrorResponse struct {
	UserMessage      string   `json:"user_message"`
	SuggestedActions []string `json:"suggested_actions"`
	ReferenceCode    string   `json:"reference_code"`
}

type ListLogsParams struct {
	Page     int
	PageSize int
	Level    Level
}

func (p *ListLogsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
}

func (p *ListLogsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
