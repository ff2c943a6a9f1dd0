package oauth

import (
	"context"
	"testing"
	"time"

	"oauth2_server/internal/domain"
	"oauth2_server/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	clients *repository.MemoryClientRepository
	users   *repository.MemoryUserRepository
	codeSt  *repository.MemoryCodeRepository
	tokenSt *repository.MemoryTokenRepository

	registry  *ClientRegistry
	directory *UserDirectory
	codes     *AuthorizationCodeManager
	tokens    *TokenLifecycleManager
	auth      *ClientAuthenticator
	service   *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		clients: repository.NewMemoryClientRepository(),
		users:   repository.NewMemoryUserRepository(),
		codeSt:  repository.NewMemoryCodeRepository(),
		tokenSt: repository.NewMemoryTokenRepository(),
	}
	secretHasher := NewSecretHasher()
	passwordHasher := NewBcryptHasher(bcrypt.MinCost)
	env.registry = NewClientRegistry(env.clients, secretHasher)
	env.directory = NewUserDirectory(env.users, passwordHasher)
	env.codes = NewAuthorizationCodeManager(env.codeSt, DefaultCodeTTL)
	env.tokens = NewTokenLifecycleManager(env.tokenSt, DefaultAccessTokenTTL, DefaultRefreshTokenTTL)
	env.auth = NewClientAuthenticator(env.clients, secretHasher)
	env.service = NewService(env.registry, env.directory, env.codes, env.tokens, env.auth, env.clients, "user1")
	return env
}

// seedClient registers a client and returns it with its plaintext secret.
func (env *testEnv) seedClient(t *testing.T, in CreateClientInput) (*domain.Client, string) {
	t.Helper()
	client, secret, err := env.registry.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client, secret
}

func (env *testEnv) seedUser(t *testing.T, username, password string) *domain.User {
	t.Helper()
	user, err := env.directory.Create(context.Background(), CreateUserInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// backdate shifts the manager clocks so previously issued artifacts appear
// expired without sleeping.
func backdate(m *AuthorizationCodeManager, d time.Duration) {
	m.now = func() time.Time { return time.Now().Add(d) }
}

func backdateTokens(m *TokenLifecycleManager, d time.Duration) {
	m.now = func() time.Time { return time.Now().Add(d) }
}
