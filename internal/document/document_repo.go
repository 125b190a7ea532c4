package document

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Filter narrows and orders document listings. Zero values mean "no filter".
type Filter struct {
	Types         []string
	Statuses      []string
	RequestID     string
	RequestedByID string
	CreatedByID   string
	SignedByID    string
	TitleSearch   string

	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SignedFrom  *time.Time
	SignedTo    *time.Time

	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

var sortableFields = map[string]string{
	"id":        "id",
	"title":     "title",
	"type":      "type",
	"status":    "status",
	"signedAt":  "signed_at",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, d *Document) error
	FindByID(ctx context.Context, id string) (*Document, error)
	FindByRequestID(ctx context.Context, requestID string) ([]Document, error)
	Update(ctx context.Context, d *Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f Filter) ([]Document, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx rebinds the repository onto the caller's transaction so its writes
// commit or roll back together with the rest of the unit of work.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	txDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return r
	}
	return &repository{db: txDB}
}

func (r *repository) Create(ctx context.Context, d *Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Document, error) {
	var d Document
	err := r.db.WithContext(ctx).
		Preload("RequestedBy").
		Preload("CreatedBy").
		Preload("SignedBy").
		Preload("SourceRequest").
		First(&d, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) FindByRequestID(ctx context.Context, requestID string) ([]Document, error) {
	var documents []Document
	err := r.db.WithContext(ctx).
		Preload("RequestedBy").
		Preload("SignedBy").
		Where("source_request_id = ?", requestID).
		Order("created_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *repository) Update(ctx context.Context, d *Document) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Document{}, "id = ?", id).Error
}

func (r *repository) List(ctx context.Context, f Filter) ([]Document, int64, error) {
	db := r.db.WithContext(ctx).Model(&Document{})

	if len(f.Types) > 0 {
		db = db.Where("type IN ?", f.Types)
	}
	if len(f.Statuses) > 0 {
		db = db.Where("status IN ?", f.Statuses)
	}
	if f.RequestID != "" {
		db = db.Where("source_request_id = ?", f.RequestID)
	}
	if f.RequestedByID != "" {
		db = db.Where("requested_by_id = ?", f.RequestedByID)
	}
	if f.CreatedByID != "" {
		db = db.Where("created_by_id = ?", f.CreatedByID)
	}
	if f.SignedByID != "" {
		db = db.Where("signed_by_id = ?", f.SignedByID)
	}
	if f.TitleSearch != "" {
		db = db.Where("title ILIKE ?", "%"+f.TitleSearch+"%")
	}
	if f.CreatedFrom != nil {
		db = db.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		db = db.Where("created_at <= ?", *f.CreatedTo)
	}
	if f.SignedFrom != nil {
		db = db.Where("signed_at >= ?", *f.SignedFrom)
	}
	if f.SignedTo != nil {
		db = db.Where("signed_at <= ?", *f.SignedTo)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortableFields[f.SortBy]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if f.SortOrder == "asc" {
		order = "ASC"
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	var documents []Document
	err := db.
		Preload("RequestedBy").
		Preload("SignedBy").
		Order(fmt.Sprintf("%s %s", column, order)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&documents).Error
	if err != nil {
		return nil, 0, err
	}

	return documents, total, nil
}
