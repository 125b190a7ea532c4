package document

import (
	"time"

	"hrm-system/internal/employee"
	"hrm-system/internal/request"

	"github.com/google/uuid"
)

type Document struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type        string    `gorm:"type:varchar(40);not null;index:idx_documents_type_status"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(20);not null;default:'under-review';index:idx_documents_type_status"`

	Content      string         `gorm:"type:text"`
	TemplatePath string         `gorm:"type:varchar(500)"`
	FilePath     string         `gorm:"type:varchar(500)"`
	FileURL      string         `gorm:"type:varchar(500)"`
	TemplateData map[string]any `gorm:"serializer:json;type:jsonb"`

	SourceRequestID uuid.UUID        `gorm:"type:uuid;not null;index"`
	SourceRequest   *request.Request `gorm:"foreignKey:SourceRequestID"`

	RequestedByID uuid.UUID          `gorm:"type:uuid;not null;index"`
	RequestedBy   *employee.Employee `gorm:"foreignKey:RequestedByID"`
	CreatedByID   *uuid.UUID         `gorm:"type:uuid;index"`
	CreatedBy     *employee.Employee `gorm:"foreignKey:CreatedByID"`
	SignedByID    *uuid.UUID         `gorm:"type:uuid"`
	SignedBy      *employee.Employee `gorm:"foreignKey:SignedByID"`

	SignedAt        *time.Time
	RejectionReason *string        `gorm:"type:text"`
	Metadata        map[string]any `gorm:"serializer:json;type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
