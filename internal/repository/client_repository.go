package repository

import (
	"context"
	"errors"

	"oauth2_server/internal/domain"

	"gorm.io/gorm"
)

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// FindByID returns an active client by its row id. Deactivated clients are
// invisible to every lookup, so a soft-deleted client 404s like a missing one.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	var client domain.Client
	if err := r.db.WithContext(ctx).Where("id = ? AND active = ?", id, true).First(&client).Error; err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

// FindByClientID returns an active client by its public client identifier.
func (r *ClientRepository) FindByClientID(ctx context.Context, clientID string) (*domain.Client, error) {
	var client domain.Client
	if err := r.db.WithContext(ctx).Where("client_id = ? AND active = ?", clientID, true).First(&client).Error; err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}
