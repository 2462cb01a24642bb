package tables

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCode is a short-lived numeric credential proving email
// ownership before an account exists. Rows are deleted on successful
// verification and purged by a nightly job once expired.
type VerificationCode struct {
	tableName struct{}  `bun:"table:verification_codes,alias:vc"`
	Id        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email     string    `bun:"email,notnull"`
	Code      string    `bun:"code,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
