package repository

import (
	"context"
	"sync"
	"time"

	"oauth2_server/internal/domain"
)

// In-memory implementations of the repository contracts. They back the unit
// and handler tests and behave like the gorm repositories: soft-deleted rows
// are invisible to lookups, code deletion is conditional, and token rotation
// is atomic under the store mutex.

type MemoryClientRepository struct {
	mu      sync.Mutex
	clients map[string]domain.Client // keyed by row id
}

func NewMemoryClientRepository() *MemoryClientRepository {
	return &MemoryClientRepository{clients: make(map[string]domain.Client)}
}

func (r *MemoryClientRepository) Create(ctx context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.ID] = *client
	return nil
}

func (r *MemoryClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || !c.Active {
		return nil, domain.ErrNotFound
	}
	out := c
	return &out, nil
}

func (r *MemoryClientRepository) FindByClientID(ctx context.Context, clientID string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.ClientID == clientID && c.Active {
			out := c
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryClientRepository) Update(ctx context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.ID] = *client
	return nil
}

type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.Active {
		return nil, domain.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username && u.Active {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

type MemoryCodeRepository struct {
	mu    sync.Mutex
	codes map[string]domain.AuthorizationCode // keyed by code value
}

func NewMemoryCodeRepository() *MemoryCodeRepository {
	return &MemoryCodeRepository{codes: make(map[string]domain.AuthorizationCode)}
}

func (r *MemoryCodeRepository) Create(ctx context.Context, code *domain.AuthorizationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[code.Code] = *code
	return nil
}

func (r *MemoryCodeRepository) FindByCode(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ac, ok := r.codes[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := ac
	return &out, nil
}

func (r *MemoryCodeRepository) DeleteByCode(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[code]; !ok {
		return false, nil
	}
	delete(r.codes, code)
	return true, nil
}

func (r *MemoryCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, ac := range r.codes {
		if now.After(ac.ExpiresAt) {
			delete(r.codes, k)
			n++
		}
	}
	return n, nil
}

type MemoryTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]domain.Token // keyed by row id
}

func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{tokens: make(map[string]domain.Token)}
}

func (r *MemoryTokenRepository) Create(ctx context.Context, token *domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.ID] = *token
	return nil
}

func (r *MemoryTokenRepository) find(match func(domain.Token) bool) (*domain.Token, error) {
	for _, t := range r.tokens {
		if match(t) {
			out := t
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryTokenRepository) FindByAccessToken(ctx context.Context, value string) (*domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(t domain.Token) bool { return t.AccessToken == value })
}

func (r *MemoryTokenRepository) FindByRefreshToken(ctx context.Context, value string) (*domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(t domain.Token) bool { return t.RefreshToken == value })
}

func (r *MemoryTokenRepository) FindByValue(ctx context.Context, value string) (*domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(t domain.Token) bool { return t.AccessToken == value || t.RefreshToken == value })
}

func (r *MemoryTokenRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[id]; !ok {
		return false, nil
	}
	delete(r.tokens, id)
	return true, nil
}

func (r *MemoryTokenRepository) Replace(ctx context.Context, oldID string, next *domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[oldID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, oldID)
	r.tokens[next.ID] = *next
	return nil
}

func (r *MemoryTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if now.After(t.RefreshTokenExpiresAt) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}
