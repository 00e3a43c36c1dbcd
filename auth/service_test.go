package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func newTestService(repo Repository) *Service {
	return NewService(repo, NewTokenIssuer("test-secret", time.Hour))
}

func TestService_RegisterAndLogin(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	req := RegisterRequest{
		Name:     "Alice Agent",
		Email:    "Alice@Example.com",
		Password: "supersafe",
		Phone:    "5551234",
		Role:     RoleAgent,
	}

	ctx := context.Background()
	reg, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("register: unexpected error: %v", err)
	}

	if reg.User.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", reg.User.Email)
	}
	if reg.Token == "" {
		t.Fatal("register: expected session token")
	}
	if reg.User.IsVerified {
		t.Fatal("register: expected unverified account")
	}
	if reg.User.VerificationToken == nil || *reg.User.VerificationToken == "" {
		t.Fatal("register: expected pending verification token")
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "supersafe"})
	if err != nil {
		t.Fatalf("login: unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login: expected token, got empty string")
	}
	if resp.User.ID != reg.User.ID {
		t.Fatalf("login: expected user id %q got %q", reg.User.ID, resp.User.ID)
	}

	authed, err := svc.Authenticate(ctx, resp.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != reg.User.ID {
		t.Fatalf("authenticate: expected %q got %q", reg.User.ID, authed.ID)
	}
}

func TestService_RegisterDefaultsRole(t *testing.T) {
	svc := newTestService(newFakeRepository())

	reg, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Bob Buyer",
		Email:    "bob@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.User.Role != RoleUser {
		t.Fatalf("expected default role %s got %s", RoleUser, reg.User.Role)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService(newFakeRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "short",
	}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	if _, err := svc.Register(ctx, RegisterRequest{
		Email:    "alice@example.com",
		Password: "strongpassword",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing name, got %v", err)
	}

	if _, err := svc.Register(ctx, RegisterRequest{
		Name:     "Alice",
		Email:    "not-an-email",
		Password: "strongpassword",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for malformed email, got %v", err)
	}

	if _, err := svc.Register(ctx, RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "strongpassword",
		Role:     Role("landlord"),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}
}

func TestService_DuplicateEmailCaseInsensitive(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "strongpassword",
	}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	if _, err := svc.Register(ctx, RegisterRequest{
		Name:     "Alice Again",
		Email:    "ALICE@EXAMPLE.COM",
		Password: "strongpassword",
	}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if len(repo.usersByID) != 1 {
		t.Fatalf("expected a single stored user, got %d", len(repo.usersByID))
	}
}

func TestService_LoginInvalidCredentials(t *testing.T) {
	svc := newTestService(newFakeRepository())
	ctx := context.Background()

	if _, err := svc.Login(ctx, LoginRequest{
		Email:    "unknown@example.com",
		Password: "irrelevant",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	if _, err := svc.Register(ctx, RegisterRequest{
		Name:     "Alice",
		Email:    "a@x.com",
		Password: "secret1",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "wrongpass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
}

func TestService_PublicProjectionOmitsHash(t *testing.T) {
	svc := newTestService(newFakeRepository())

	reg, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "strongpassword",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	raw, err := json.Marshal(reg.User.Public())
	if err != nil {
		t.Fatalf("marshal public user: %v", err)
	}
	if strings.Contains(string(raw), reg.User.PasswordHash) {
		t.Fatal("public projection leaks the password hash")
	}
	if strings.Contains(strings.ToLower(string(raw)), "password") {
		t.Fatalf("public projection has a password field: %s", raw)
	}
}

func TestService_VerifyEmailFlow(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "strongpassword",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token := *reg.User.VerificationToken

	verified, err := svc.VerifyEmail(ctx, token)
	if err != nil {
		t.Fatalf("verify email: %v", err)
	}
	if !verified.IsVerified {
		t.Fatal("expected account to be verified")
	}
	if verified.VerificationToken != nil {
		t.Fatal("expected verification token to be cleared")
	}

	// Single-use: the consumed token must not verify again.
	if _, err := svc.VerifyEmail(ctx, token); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed on reuse, got %v", err)
	}

	if _, err := svc.VerifyEmail(ctx, "garbage-token"); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed for garbage token, got %v", err)
	}
}

func TestService_ResendVerificationSupersedes(t *testing.T) {
	repo := newFakeRepository()

	// An advancing clock keeps the resent token's claims distinct from
	// the original's.
	current := time.Now()
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.WithClock(func() time.Time {
		current = current.Add(time.Minute)
		return current
	})
	svc := NewService(repo, issuer)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "strongpassword",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	stale := *reg.User.VerificationToken

	fresh, err := svc.ResendVerification(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("resend verification: %v", err)
	}
	if fresh == stale {
		t.Fatal("expected a fresh token")
	}

	if _, err := svc.VerifyEmail(ctx, stale); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected superseded token to fail, got %v", err)
	}
	if _, err := svc.VerifyEmail(ctx, fresh); err != nil {
		t.Fatalf("fresh token should verify: %v", err)
	}

	if _, err := svc.ResendVerification(ctx, "alice@example.com"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestService_AuthenticateDeletedUser(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "strongpassword",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := repo.DeleteUser(ctx, reg.User.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := svc.Authenticate(ctx, reg.Token); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after deletion, got %v", err)
	}
}

type fakeRepository struct {
	usersByID map[string]User
	nextID    int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		usersByID: make(map[string]User),
		nextID:    1,
	}
}

func (f *fakeRepository) CreateUser(_ context.Context, params CreateUserParams) (User, error) {
	for _, u := range f.usersByID {
		if strings.EqualFold(u.Email, params.Email) {
			return User{}, ErrDuplicateEmail
		}
	}

	id := fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	now := time.Now().UTC()

	token := params.VerificationToken
	expiry := params.VerificationExpiresAt
	user := User{
		ID:                    id,
		Name:                  params.Name,
		Email:                 params.Email,
		PasswordHash:          params.PasswordHash,
		Phone:                 params.Phone,
		Role:                  params.Role,
		VerificationToken:     &token,
		VerificationExpiresAt: &expiry,
		AgencyName:            params.AgencyName,
		AgencyLicense:         params.AgencyLicense,
		AgencyAddress:         params.AgencyAddress,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	f.usersByID[user.ID] = user
	return user, nil
}

func (f *fakeRepository) GetUserByEmail(_ context.Context, email string) (User, error) {
	for _, u := range f.usersByID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (f *fakeRepository) GetUserByID(_ context.Context, userID string) (User, error) {
	user, ok := f.usersByID[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeRepository) UpdateProfile(_ context.Context, userID string, params UpdateProfileParams) (User, error) {
	user, ok := f.usersByID[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Phone != nil {
		user.Phone = params.Phone
	}
	if params.Role != nil {
		user.Role = *params.Role
	}
	if params.AgencyName != nil {
		user.AgencyName = params.AgencyName
	}
	if params.AgencyLicense != nil {
		user.AgencyLicense = params.AgencyLicense
	}
	if params.AgencyAddress != nil {
		user.AgencyAddress = params.AgencyAddress
	}
	user.UpdatedAt = time.Now().UTC()
	f.usersByID[userID] = user
	return user, nil
}

func (f *fakeRepository) SetVerificationToken(_ context.Context, userID, token string, expiresAt time.Time) (User, error) {
	user, ok := f.usersByID[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.VerificationToken = &token
	user.VerificationExpiresAt = &expiresAt
	user.UpdatedAt = time.Now().UTC()
	f.usersByID[userID] = user
	return user, nil
}

func (f *fakeRepository) MarkVerified(_ context.Context, userID string) (User, error) {
	user, ok := f.usersByID[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.IsVerified = true
	user.VerificationToken = nil
	user.VerificationExpiresAt = nil
	user.UpdatedAt = time.Now().UTC()
	f.usersByID[userID] = user
	return user, nil
}

func (f *fakeRepository) SetVerified(_ context.Context, userID string, verified bool) (User, error) {
	user, ok := f.usersByID[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.IsVerified = verified
	user.UpdatedAt = time.Now().UTC()
	f.usersByID[userID] = user
	return user, nil
}

func (f *fakeRepository) ListUsers(_ context.Context) ([]User, error) {
	users := make([]User, 0, len(f.usersByID))
	for _, u := range f.usersByID {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeRepository) DeleteUser(_ context.Context, userID string) error {
	if _, ok := f.usersByID[userID]; !ok {
		return ErrUserNotFound
	}
	delete(f.usersByID, userID)
	return nil
}
