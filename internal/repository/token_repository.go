package repository

import (
	"context"
	"time"

	"oauth2_server/internal/domain"

	"gorm.io/gorm"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.Token) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *TokenRepository) FindByAccessToken(ctx context.Context, value string) (*domain.Token, error) {
	var token domain.Token
	if err := r.db.WithContext(ctx).Where("access_token = ?", value).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *TokenRepository) FindByRefreshToken(ctx context.Context, value string) (*domain.Token, error) {
	var token domain.Token
	if err := r.db.WithContext(ctx).Where("refresh_token = ?", value).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

// FindByValue matches the presented value against either half of the pair,
// as the revocation endpoint accepts both.
func (r *TokenRepository) FindByValue(ctx context.Context, value string) (*domain.Token, error) {
	var token domain.Token
	if err := r.db.WithContext(ctx).Where("access_token = ? OR refresh_token = ?", value, value).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *TokenRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Token{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Replace deletes the old pair and inserts its successor in one transaction.
// If the old pair is already gone the transaction rolls back and
// domain.ErrNotFound is returned, so concurrent rotations of the same refresh
// token can never both succeed and a crash never leaves both generations live.
func (r *TokenRepository) Replace(ctx context.Context, oldID string, next *domain.Token) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", oldID).Delete(&domain.Token{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Create(next).Error
	})
}

// DeleteExpired removes pairs whose refresh half has lapsed; once the refresh
// token is expired neither half can ever validate again.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("refresh_token_expires_at < ?", now).Delete(&domain.Token{})
	return res.RowsAffected, res.Error
}
