package request

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Filter narrows and orders request listings. Zero values mean "no filter".
type Filter struct {
	Types      []string
	Statuses   []string
	CreatorID  string
	AssigneeID string

	StartFrom   *time.Time
	StartTo     *time.Time
	EndFrom     *time.Time
	EndTo       *time.Time
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// sortableFields whitelists the columns a caller may sort by.
var sortableFields = map[string]string{
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
	"startDate": "start_date",
	"endDate":   "end_date",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *Request) error
	FindByID(ctx context.Context, id string) (*Request, error)
	Update(ctx context.Context, r *Request) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f Filter) ([]Request, int64, error)
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

func (r *repository) Create(ctx context.Context, req *Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Request, error) {
	var req Request
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Assignee").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) Update(ctx context.Context, req *Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Request{}, "id = ?", id).Error
}

func (r *repository) List(ctx context.Context, f Filter) ([]Request, int64, error) {
	db := r.db.WithContext(ctx).Model(&Request{})

	if len(f.Types) > 0 {
		db = db.Where("type IN ?", f.Types)
	}
	if len(f.Statuses) > 0 {
		db = db.Where("status IN ?", f.Statuses)
	}
	if f.CreatorID != "" {
		db = db.Where("creator_id = ?", f.CreatorID)
	}
	if f.AssigneeID != "" {
		db = db.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.StartFrom != nil {
		db = db.Where("start_date >= ?", *f.StartFrom)
	}
	if f.StartTo != nil {
		db = db.Where("start_date <= ?", *f.StartTo)
	}
	if f.EndFrom != nil {
		db = db.Where("end_date >= ?", *f.EndFrom)
	}
	if f.EndTo != nil {
		db = db.Where("end_date <= ?", *f.EndTo)
	}
	if f.CreatedFrom != nil {
		db = db.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		db = db.Where("created_at <= ?", *f.CreatedTo)
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

	var requests []Request
	err := db.
		Preload("Creator").
		Preload("Assignee").
		Order(fmt.Sprintf("%s %s", column, order)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}
