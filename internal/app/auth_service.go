// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"mindcare/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
)

const sessionTTL = 24 * time.Hour

// AuthService handles account registration, credential verification,
// profile management and sessions.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
	}
}

// Register creates a new account. The password is hashed before it reaches
// the repository; a taken email surfaces as domain.ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, username, email, password, emergencyPhone string) (*domain.User, error) {
	if username == "" {
		return nil, missingField("username")
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, missingField("email")
	}
	if password == "" {
		return nil, missingField("password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, username, email, string(hash), emergencyPhone)
}

// Login verifies credentials and creates a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.createSession(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks a session token and returns its user.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil || session == nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil || user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Profile returns the account for an id, or domain.ErrNotFound.
func (s *AuthService) Profile(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// ProfileUpdate carries the optional fields of a profile update. Password,
// when non-empty, is the new plaintext secret; an empty string leaves the
// stored hash untouched.
type ProfileUpdate struct {
	Username       *string
	Email          *string
	Password       string
	EmergencyPhone *string
}

// UpdateProfile applies a partial account update. Only supplied fields
// change; domain.ErrNotFound and domain.ErrDuplicateEmail pass through.
func (s *AuthService) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) error {
	patch := domain.UserPatch{
		Username:       upd.Username,
		EmergencyPhone: upd.EmergencyPhone,
	}
	if upd.Email != nil {
		e := normalizeEmail(*upd.Email)
		patch.Email = &e
	}
	if upd.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		h := string(hash)
		patch.PasswordHash = &h
	}
	if patch.Empty() {
		return missingField("fields")
	}
	return s.users.Update(ctx, id, patch)
}

// ValidateForwardAuth validates a request from forward auth (e.g. Authelia).
// The Remote-User header carries the authenticated email; accounts are
// auto-provisioned on first sight.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, remoteUser string) (*domain.User, error) {
	if remoteUser == "" {
		return nil, errors.New("no remote user header")
	}
	return s.findOrCreate(ctx, remoteUser)
}

// LoginWithUser creates a session for an already authenticated identity
// (e.g. via SSO), auto-provisioning the account when missing.
func (s *AuthService) LoginWithUser(ctx context.Context, email string) (string, error) {
	user, err := s.findOrCreate(ctx, email)
	if err != nil {
		return "", err
	}
	return s.createSession(ctx, user.ID)
}

func (s *AuthService) findOrCreate(ctx context.Context, email string) (*domain.User, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	// SSO accounts carry no local password hash.
	username := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		username = email[:at]
	}
	user, err = s.users.Create(ctx, username, email, "", "")
	if errors.Is(err, domain.ErrDuplicateEmail) {
		// Lost a provisioning race; the row exists now.
		return s.users.GetByEmail(ctx, email)
	}
	return user, err
}

func (s *AuthService) createSession(ctx context.Context, userID int64) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, userID, token, time.Now().Add(sessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
