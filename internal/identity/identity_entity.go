package identity

import (
	"time"

	"github.com/google/uuid"
)

// Identity is a login account linked to an employee. Credential issuance and
// session handling live outside this service; the workflows only ever read
// the identity→employee mapping.
type Identity struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Login      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Role       string    `gorm:"type:varchar(20);not null;default:'employee'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
