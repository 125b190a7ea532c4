package identity

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*Identity, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id string) (*Identity, error) {
	var ident Identity
	err := r.db.WithContext(ctx).First(&ident, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ident, nil
}
