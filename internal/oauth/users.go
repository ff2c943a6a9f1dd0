package oauth

import (
	"context"

	"oauth2_server/internal/domain"

	"github.com/google/uuid"
)

// UserDirectory owns the User records and verifies resource-owner
// credentials.
type UserDirectory struct {
	users  UserRepository
	hasher Hasher
}

func NewUserDirectory(users UserRepository, hasher Hasher) *UserDirectory {
	return &UserDirectory{users: users, hasher: hasher}
}

type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type UpdateUserInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Active    *bool
}

func (d *UserDirectory) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if in.Password == "" {
		return nil, ErrMissingParameter
	}
	exists, err := d.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	digest, err := d.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  digest,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Active:    true,
	}
	if err := d.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (d *UserDirectory) Get(ctx context.Context, id string) (*domain.User, error) {
	return d.users.FindByID(ctx, id)
}

func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return d.users.FindByUsername(ctx, username)
}

// Verify checks resource-owner credentials for the password grant.
func (d *UserDirectory) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := d.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !d.hasher.Verify(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (d *UserDirectory) Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error) {
	user, err := d.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Password != nil && *in.Password != "" {
		digest, err := d.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = digest
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Active != nil {
		user.Active = *in.Active
	}
	if err := d.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate soft-deletes the user.
func (d *UserDirectory) Deactivate(ctx context.Context, id string) error {
	user, err := d.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.Active = false
	return d.users.Update(ctx, user)
}
