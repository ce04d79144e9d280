package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kapehan/kiosk-pos-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Lockout rule: this many failed attempts for the same (email, type)
// pair within the trailing window locks the pair. The window is
// evaluated at query time against the append-only attempt log, so there
// is no counter state to drift; old failures simply age out.
const (
	MaxFailedAttempts = 5
	LockoutWindow     = 30 * time.Minute
)

// AuthService owns the credential checks, the login-attempt audit log
// and the lockout bookkeeping over it.
type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
}

var authServiceInstance *AuthService

// InitAuthService initializes the auth service with a database handle
// and the HS256 signing secret
func InitAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	authServiceInstance = &AuthService{db: db, jwtSecret: []byte(jwtSecret)}
	return authServiceInstance
}

// GetAuthService returns the initialized auth service instance
func GetAuthService() *AuthService {
	return authServiceInstance
}

// LockoutStatus reports whether an (email, type) pair is locked and the
// evidence behind the verdict.
type LockoutStatus struct {
	Locked      bool       `json:"locked"`
	FailedCount int        `json:"failed_count"`
	LastAttempt *time.Time `json:"last_attempt,omitempty"`
}

// RecordAttempt appends one row to the login audit log. Rows are never
// mutated or deleted.
func (s *AuthService) RecordAttempt(email string, success bool, attemptType models.AttemptType, errorMessage *string) error {
	attempt := models.LoginAttempt{
		Email:        email,
		Success:      success,
		AttemptType:  attemptType,
		ErrorMessage: errorMessage,
	}
	return s.db.Create(&attempt).Error
}

// IsLocked evaluates the lockout window for an (email, type) pair.
// Successful attempts do not clear prior failures; the window ages them
// out naturally.
func (s *AuthService) IsLocked(email string, attemptType models.AttemptType) (LockoutStatus, error) {
	since := time.Now().Add(-LockoutWindow)

	var failures []models.LoginAttempt
	err := s.db.Where("email = ? AND attempt_type = ? AND success = ? AND created_at > ?",
		email, attemptType, false, since).
		Order("created_at DESC").
		Find(&failures).Error
	if err != nil {
		return LockoutStatus{}, err
	}

	status := LockoutStatus{
		FailedCount: len(failures),
		Locked:      len(failures) >= MaxFailedAttempts,
	}
	if len(failures) > 0 {
		status.LastAttempt = &failures[0].CreatedAt
	}
	return status, nil
}

// LoginResult carries the issued token and the dashboard the client
// should navigate to.
type LoginResult struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Redirect string `json:"redirect"`
}

// Login dispatches a credential check: the admin path is tried first,
// then the staff path. Each path checks its own lockout before touching
// the password hash and records an attempt row only when an account
// exists on that path. The two success paths route to different
// dashboards.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	result, err := s.tryLogin(email, password, models.AttemptTypeAdmin, "admin", "/admin")
	if err == nil {
		return result, nil
	}
	if err != ErrInvalidCredentials {
		return nil, err
	}

	return s.tryLogin(email, password, models.AttemptTypeStaff, "staff", "/queue")
}

// tryLogin runs one credential path. ErrInvalidCredentials from here
// means "this path failed, the next may be tried"; anything else aborts
// the dispatch. A path with no matching account falls through without
// recording an attempt, so probing one path never locks the other.
func (s *AuthService) tryLogin(email, password string, attemptType models.AttemptType, role, redirect string) (*LoginResult, error) {
	var account models.StaffAccount
	err := s.db.Where("email = ? AND role = ?", email, role).First(&account).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	lockout, err := s.IsLocked(email, attemptType)
	if err != nil {
		return nil, err
	}
	if lockout.Locked {
		return nil, fmt.Errorf("%w: too many failed %s attempts, try again later", ErrLocked, attemptType)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		msg := "wrong password"
		if recErr := s.RecordAttempt(email, false, attemptType, &msg); recErr != nil {
			return nil, recErr
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.RecordAttempt(email, true, attemptType, nil); err != nil {
		return nil, err
	}

	token, err := s.issueToken(&account)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:    token,
		Name:     account.Name,
		Email:    account.Email,
		Role:     account.Role,
		Redirect: redirect,
	}, nil
}

// issueToken signs a 24-hour HS256 token carrying the account's role.
func (s *AuthService) issueToken(account *models.StaffAccount) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  account.Email,
		"name": account.Name,
		"role": account.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// HashPassword produces a bcrypt hash for storing in the credential
// store (used by seeding and account management).
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
