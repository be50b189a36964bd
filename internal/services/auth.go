package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"libris/internal/models"
)

// unknownUserHash is a bcrypt digest (DefaultCost) compared against when the
// username does not exist, so a miss costs the same as a wrong password.
var unknownUserHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AuthService verifies credentials and creates user accounts. It only
// validates; sessions are managed by the HTTP layer.
type AuthService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(db *gorm.DB, logger *zap.Logger) *AuthService {
	return &AuthService{db: db, logger: logger}
}

// Signup creates a user with a bcrypt-hashed password. Returns
// ErrUsernameTaken when the username exists.
func (s *AuthService) Signup(username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	var existing models.User
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Password: string(hashed),
	}
	if err := s.db.Create(user).Error; err != nil {
		// A concurrent signup can slip past the pre-check; the unique
		// index is the real arbiter.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("username", username), zap.Uint("user_id", user.ID))
	return user, nil
}

// Authenticate verifies a username/password pair. On any mismatch it returns
// ErrInvalidCredentials; it never reveals whether the username exists.
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn the same hashing work as the wrong-password path so the
			// two failures are not distinguishable by timing.
			_ = bcrypt.CompareHashAndPassword(unknownUserHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// bcrypt's comparison is constant-time over the derived key.
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
