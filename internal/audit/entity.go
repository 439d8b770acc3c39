// AngelaMos | 2026
// entity.go

package audit

import (
	"time"

	"github.com/uptrace/bun"
)

type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelWarning, LevelError:
		return true
	default:
		return false
	}
}

// LogEntry is an append-only audit row. Rows are never updated or removed.
type LogEntry struct {
	bun.BaseModel `bun:"table:log_entries,alias:le"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Message   string    `bun:"message,notnull"     json:"message"`
	Level     Level     `bun:"level,notnull"       json:"level"`
	CreatedAt time.Time `bun:"created_at,notnull"  json:"created_at"`
}
