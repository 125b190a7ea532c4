package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the organizational record the workflows resolve owners and
// template data from. Full CRUD on employees lives outside this service.
type Employee struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FirstName  string    `gorm:"type:varchar(100);not null"`
	LastName   string    `gorm:"type:varchar(100);not null"`
	Patronymic *string   `gorm:"type:varchar(100)"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex"`
	Position   string    `gorm:"type:varchar(150)"`
	Department string    `gorm:"type:varchar(150)"`
	HiredAt    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName composes "Last First Patronymic", skipping the patronymic when it
// is not on record.
func (e Employee) FullName() string {
	name := e.LastName + " " + e.FirstName
	if e.Patronymic != nil && *e.Patronymic != "" {
		name += " " + *e.Patronymic
	}
	return name
}
