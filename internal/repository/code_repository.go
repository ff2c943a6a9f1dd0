package repository

import (
	"context"
	"time"

	"oauth2_server/internal/domain"

	"gorm.io/gorm"
)

type CodeRepository struct {
	db *gorm.DB
}

func NewCodeRepository(db *gorm.DB) *CodeRepository {
	return &CodeRepository{db: db}
}

func (r *CodeRepository) Create(ctx context.Context, code *domain.AuthorizationCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *CodeRepository) FindByCode(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	var ac domain.AuthorizationCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&ac).Error; err != nil {
		return nil, translate(err)
	}
	return &ac, nil
}

// DeleteByCode removes the code row and reports whether a row was actually
// deleted. Concurrent redemptions race on this delete and exactly one of them
// observes true; the unique code column makes the conditional delete atomic.
func (r *CodeRepository) DeleteByCode(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).Where("code = ?", code).Delete(&domain.AuthorizationCode{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *CodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&domain.AuthorizationCode{})
	return res.RowsAffected, res.Error
}
