package request

import (
	"time"

	"hrm-system/internal/employee"

	"github.com/google/uuid"
)

// Request types.
const (
	TypeDocument      = "document"
	TypeCertificate   = "certificate"
	TypeLeaveVacation = "leave-vacation"
	TypeLeaveSick     = "leave-sick"
	TypeLeavePersonal = "leave-personal"
	TypeBusinessTrip  = "business-trip"
	TypeRemoteWork    = "remote-work"
	TypeEquipment     = "equipment"
	TypeOther         = "other"
)

// Request statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Request priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// IsLeaveType reports whether the type carries leave dates and is subject to
// the lead-time and duration rules.
func IsLeaveType(t string) bool {
	switch t {
	case TypeLeaveVacation, TypeLeaveSick, TypeLeavePersonal:
		return true
	}
	return false
}

type Request struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type        string    `gorm:"type:varchar(30);not null;index:idx_requests_type_status"`
	Priority    string    `gorm:"type:varchar(20);not null;default:'medium'"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index:idx_requests_type_status"`

	CreatorID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	Creator    *employee.Employee `gorm:"foreignKey:CreatorID"`
	AssigneeID *uuid.UUID         `gorm:"type:uuid;index"`
	Assignee   *employee.Employee `gorm:"foreignKey:AssigneeID"`

	// Leave-type requests only.
	StartDate *time.Time `gorm:"type:date"`
	EndDate   *time.Time `gorm:"type:date"`
	Duration  *int

	Attachments []string `gorm:"serializer:json;type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
