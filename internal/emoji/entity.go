// AngelaMos | 2026
// entity.go

package emoji

import (
	"time"

	"github.com/uptrace/bun"
)

// Interpretation is the cached explanation of one emoji. OwnerUserID is a
// weak reference and outlives the account it names.
type Interpretation struct {
	bun.BaseModel `bun:"table:interpretations,alias:itp"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Emoji       string    `bun:"emoji,notnull,unique"`
	Explanation string    `bun:"explanation,notnull"`
	OwnerUserID string    `bun:"owner_user_id,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}
