package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/pkg/password"
	"github.com/fastygo/accountdesk/repository/blob"
	redisrepo "github.com/fastygo/accountdesk/repository/redis"
	"github.com/fastygo/accountdesk/usecase/session"
)

func newUseCase(t *testing.T) (*UseCase, *session.Store) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	kv := redisrepo.NewKeyValueStore(client)
	sessions := session.NewStore(kv, 0, nil)
	return New(blob.NewUserRepository(kv), sessions, nil), sessions
}

func TestRegisterIssuesViewerSession(t *testing.T) {
	uc, sessions := newUseCase(t)
	ctx := context.Background()

	grant, err := uc.Register(ctx, "  vera ", "vera@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if grant.User.Role != domain.RoleViewer || grant.User.Username != "vera" {
		t.Fatalf("unexpected principal %+v", grant.User)
	}

	sess, err := sessions.ValidateAndGet(ctx, grant.Token)
	if err != nil {
		t.Fatalf("issued token must validate: %v", err)
	}
	if sess.UserID != grant.User.UserID {
		t.Fatalf("session bound to %s, want %s", sess.UserID, grant.User.UserID)
	}

	if _, err := uc.Register(ctx, "VERA", "", "another-pass"); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	if _, err := uc.Register(ctx, "", "", "long-enough"); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected invalid error for empty username, got %v", err)
	}
	if _, err := uc.Register(ctx, "bob", "", "short"); !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestLoginHidesWhichCredentialWasWrong(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	if _, err := uc.Register(ctx, "mia", "", "password-1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := uc.Login(ctx, "mia", "password-2"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := uc.Login(ctx, "nobody", "password-1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}

	grant, err := uc.Login(ctx, "MIA", "password-1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if grant.Token == "" || grant.ExpiresAt.IsZero() {
		t.Fatalf("incomplete grant %+v", grant)
	}
}

func TestLoginComparesHashForUnknownUsers(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	if _, err := uc.Register(ctx, "kai", "", "password-1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	var compared []string
	uc.verify = func(hash, plain string) bool {
		compared = append(compared, hash)
		return password.Verify(hash, plain)
	}

	if _, err := uc.Login(ctx, "ghost", "password-1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := uc.Login(ctx, "kai", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if len(compared) != 2 {
		t.Fatalf("expected one bcrypt comparison per failed login, got %d", len(compared))
	}
	if compared[0] == "" || compared[0] == compared[1] {
		t.Fatal("unknown user must be compared against the placeholder hash")
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	uc, sessions := newUseCase(t)
	ctx := context.Background()

	grant, err := uc.Register(ctx, "leo", "", "password-1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := uc.Logout(ctx, grant.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := uc.Logout(ctx, grant.Token); err != nil {
		t.Fatalf("repeated logout: %v", err)
	}
	if _, err := sessions.ValidateAndGet(ctx, grant.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestEnsureAdminIsCreatedOnce(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	created, err := uc.EnsureAdmin(ctx, "root", "bootstrap-pass")
	if err != nil || !created {
		t.Fatalf("first ensure = %v, %v", created, err)
	}
	created, err = uc.EnsureAdmin(ctx, "root", "bootstrap-pass")
	if err != nil || created {
		t.Fatalf("second ensure = %v, %v", created, err)
	}

	grant, err := uc.Login(ctx, "root", "bootstrap-pass")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if grant.User.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", grant.User.Role)
	}

	if created, err := uc.EnsureAdmin(ctx, "", ""); err != nil || created {
		t.Fatalf("empty bootstrap config must be a no-op, got %v, %v", created, err)
	}
}
