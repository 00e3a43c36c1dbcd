package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials signals wrong email or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrWeakPassword signals password doesn't meet requirements.
	ErrWeakPassword = errors.New("auth: password must be at least 6 characters")
	// ErrInvalidInput signals missing or malformed registration/profile data.
	ErrInvalidInput = errors.New("auth: invalid input")
	// ErrVerificationFailed signals an invalid, expired or mismatched verification token.
	ErrVerificationFailed = errors.New("auth: email verification failed")
	// ErrAlreadyVerified signals a resend attempt for a verified address.
	ErrAlreadyVerified = errors.New("auth: email already verified")
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service handles authentication and account business logic.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
}

// LoginResult bundles the session token and user returned after a successful
// register or login.
type LoginResult struct {
	Token string
	User  User
}

// NewService creates a new authentication service.
func NewService(repo Repository, tokens *TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a new user account with a hashed password and a pending
// e-mail verification token, and issues a session token right away.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (LoginResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return LoginResult{}, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}
	if !emailPattern.MatchString(req.Email) {
		return LoginResult{}, fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}
	if len(req.Password) < minPasswordLength {
		return LoginResult{}, ErrWeakPassword
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}
	if !isValidRole(role) {
		return LoginResult{}, fmt.Errorf("%w: invalid role %q", ErrInvalidInput, role)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: hash password: %w", err)
	}

	verificationToken, verificationExpiry, err := s.tokens.IssueVerification(req.Email)
	if err != nil {
		return LoginResult{}, err
	}

	params := CreateUserParams{
		Name:                  req.Name,
		Email:                 req.Email,
		PasswordHash:          string(passwordHash),
		Role:                  role,
		VerificationToken:     verificationToken,
		VerificationExpiresAt: verificationExpiry,
	}
	if req.Phone != "" {
		params.Phone = &req.Phone
	}
	if req.Agency != nil {
		name := strings.TrimSpace(req.Agency.Name)
		license := strings.TrimSpace(req.Agency.License)
		address := strings.TrimSpace(req.Agency.Address)
		if name != "" {
			params.AgencyName = &name
		}
		if license != "" {
			params.AgencyLicense = &license
		}
		if address != "" {
			params.AgencyAddress = &address
		}
	}

	user, err := s.repo.CreateUser(ctx, params)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, User: user}, nil
}

// Login authenticates a user and returns a session token. Unverified accounts
// may log in; is_verified is reported in the user projection instead.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to the user it was issued for. It fails
// when the token is invalid or expired, or when the user has since been deleted.
func (s *Service) Authenticate(ctx context.Context, token string) (User, error) {
	userID, err := s.tokens.VerifySession(token)
	if err != nil {
		return User{}, err
	}
	return s.repo.GetUserByID(ctx, userID)
}

// GetUserByID retrieves user information by ID.
func (s *Service) GetUserByID(ctx context.Context, userID string) (User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// VerifyEmail consumes a verification token. The token must match the one
// stored for the account; it is single-use and cleared on success.
func (s *Service) VerifyEmail(ctx context.Context, token string) (User, error) {
	email, err := s.tokens.VerifyEmailToken(token)
	if err != nil {
		return User{}, ErrVerificationFailed
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrVerificationFailed
		}
		return User{}, err
	}

	// A resent token supersedes older ones, so a stale token must not verify.
	if user.VerificationToken == nil || *user.VerificationToken != token {
		return User{}, ErrVerificationFailed
	}

	return s.repo.MarkVerified(ctx, user.ID)
}

// ResendVerification issues a fresh verification token for an unverified
// account, superseding any pending one. The new token is returned so the
// delivery channel stays the caller's concern.
func (s *Service) ResendVerification(ctx context.Context, email string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user.IsVerified {
		return "", ErrAlreadyVerified
	}

	token, expiresAt, err := s.tokens.IssueVerification(user.Email)
	if err != nil {
		return "", err
	}
	if _, err := s.repo.SetVerificationToken(ctx, user.ID, token, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

// ListUsers returns every account, for the admin console.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// SetVerified is the admin override for the verification flag.
func (s *Service) SetVerified(ctx context.Context, userID string, verified bool) (User, error) {
	return s.repo.SetVerified(ctx, userID, verified)
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	return s.repo.DeleteUser(ctx, userID)
}

// UpdateProfile applies a partial profile update. Password changes are not
// handled here and role changes are the HTTP layer's admin-only path.
func (s *Service) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (User, error) {
	if params.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*params.Email))
		if !emailPattern.MatchString(email) {
			return User{}, fmt.Errorf("%w: invalid email format", ErrInvalidInput)
		}
		params.Email = &email
	}
	if params.Role != nil && !isValidRole(*params.Role) {
		return User{}, fmt.Errorf("%w: invalid role %q", ErrInvalidInput, *params.Role)
	}
	return s.repo.UpdateProfile(ctx, userID, params)
}
