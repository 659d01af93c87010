package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/ports"
)

func newTestAuthService(t *testing.T, repo *stubUserRepo) (*AuthService, *JWTService) {
	t.Helper()
	tokens, err := NewJWTService("secret")
	if err != nil {
		t.Fatalf("NewJWTService: %v", err)
	}
	return NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), tokens, 0, discardLogger), tokens
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %v", err)
	}
	return ve.Message
}

func TestAuthService_Signup_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	user, err := svc.Signup(context.Background(), ports.SignupInput{Email: "a@b.com", Password: "Abcdef1", Name: "A"})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Email != "a@b.com" || user.Name != "A" || user.ID == "" {
		t.Fatalf("unexpected user: %+v", user)
	}

	stored := repo.byEmail["a@b.com"]
	if stored.PasswordHash == "Abcdef1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Abcdef1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Signup_NormalizesEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	user, err := svc.Signup(context.Background(), ports.SignupInput{Email: " Alice@Example.com", Password: "Abcdef1", Name: "Alice"})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
}

func TestAuthService_Signup_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	cases := []struct {
		name  string
		input ports.SignupInput
		want  string
	}{
		{"missing email", ports.SignupInput{Password: "Abcdef1", Name: "A"}, msgMissingSignupFields},
		{"missing password", ports.SignupInput{Email: "a@b.com", Name: "A"}, msgMissingSignupFields},
		{"missing name", ports.SignupInput{Email: "a@b.com", Password: "Abcdef1"}, msgMissingSignupFields},
		// presence is checked before shape
		{"missing name and bad email", ports.SignupInput{Email: "nope", Password: "weak"}, msgMissingSignupFields},
		{"no at sign", ports.SignupInput{Email: "ab.com", Password: "Abcdef1", Name: "A"}, msgInvalidEmail},
		{"short tld", ports.SignupInput{Email: "a@b.c", Password: "Abcdef1", Name: "A"}, msgInvalidEmail},
		{"whitespace", ports.SignupInput{Email: "a b@c.com", Password: "Abcdef1", Name: "A"}, msgInvalidEmail},
		{"two at signs", ports.SignupInput{Email: "a@b@c.com", Password: "Abcdef1", Name: "A"}, msgInvalidEmail},
		// email shape is checked before password strength
		{"bad email and weak password", ports.SignupInput{Email: "nope", Password: "weak", Name: "A"}, msgInvalidEmail},
		{"weak", ports.SignupInput{Email: "a@b.com", Password: "weak", Name: "A"}, msgWeakPassword},
		{"no digit", ports.SignupInput{Email: "a@b.com", Password: "Abcdefg", Name: "A"}, msgWeakPassword},
		{"no upper", ports.SignupInput{Email: "a@b.com", Password: "abcdef1", Name: "A"}, msgWeakPassword},
		{"no lower", ports.SignupInput{Email: "a@b.com", Password: "ABCDEF1", Name: "A"}, msgWeakPassword},
		{"too short", ports.SignupInput{Email: "a@b.com", Password: "Abc1", Name: "A"}, msgWeakPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tc.input)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if got := validationMessage(t, err); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}

	if len(repo.byEmail) != 0 {
		t.Fatalf("no user must be stored on validation failure, got %d", len(repo.byEmail))
	}
}

func TestAuthService_Signup_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	in := ports.SignupInput{Email: "a@b.com", Password: "Abcdef1", Name: "A"}
	if _, err := svc.Signup(context.Background(), in); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if _, err := svc.Signup(context.Background(), in); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	in.Email = "A@B.COM"
	if _, err := svc.Signup(context.Background(), in); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity for differently cased email, got %v", err)
	}
}

func TestAuthService_Signup_ConcurrentDuplicates(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		dupes     int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Signup(context.Background(), ports.SignupInput{Email: "race@b.com", Password: "Abcdef1", Name: "R"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrDuplicateIdentity):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || dupes != attempts-1 {
		t.Fatalf("expected exactly one success, got %d successes and %d duplicates", succeeded, dupes)
	}
}

func TestAuthService_Signup_RepoError(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errDBUnavailable
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Signup(context.Background(), ports.SignupInput{Email: "a@b.com", Password: "Abcdef1", Name: "A"})
	if !errors.Is(err, errDBUnavailable) {
		t.Fatalf("expected repo error to propagate, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newTestAuthService(t, repo)

	user, err := svc.Signup(context.Background(), ports.SignupInput{Email: "carol@example.com", Password: "S3cretPass", Name: "Carol"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	token, err := svc.Login(context.Background(), "Carol@example.com", "S3cretPass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}

	claims, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	want := domain.Identity{ID: user.ID, Email: user.Email, Name: user.Name}
	if claims.Identity != want {
		t.Fatalf("expected identity %+v, got %+v", want, claims.Identity)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != 6*time.Hour {
		t.Fatalf("expected a 6h validity window, got %s", got)
	}
	if strings.Contains(token, "S3cretPass") {
		t.Fatalf("token must not carry the password")
	}
}

func TestAuthService_Login_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())

	for _, creds := range [][2]string{{"", "pass"}, {"a@b.com", ""}, {"", ""}} {
		_, err := svc.Login(context.Background(), creds[0], creds[1])
		if got := validationMessage(t, err); got != msgMissingLoginFields {
			t.Fatalf("expected %q, got %q", msgMissingLoginFields, got)
		}
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	_, _ = svc.Signup(context.Background(), ports.SignupInput{Email: "dave@example.com", Password: "G00dPass", Name: "Dave"})
	if _, err := svc.Login(context.Background(), "dave@example.com", "BadPass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())

	if _, err := svc.Login(context.Background(), "ghost@example.com", "Passw0rd"); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestStrongPassword(t *testing.T) {
	if strongPassword("weak") {
		t.Error(`"weak" must fail the password policy`)
	}
	if !strongPassword("Abcdef1") {
		t.Error(`"Abcdef1" must pass the password policy`)
	}
}
