package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"stockroom/internal/middleware"
	"stockroom/internal/models"
	"stockroom/internal/repositories"
	"stockroom/internal/utils"
)

var ErrInvalidRefresh = errors.New("invalid refresh token")

// AuthService mints session credentials: a short-lived HS256 access token
// plus an opaque refresh token stored on the user row and rotated on use.
type AuthService struct {
	Users      repositories.UserRepository
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewAuthService(users repositories.UserRepository, secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		Users:      users,
		Secret:     []byte(secret),
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

func (s *AuthService) IssueTokens(user *models.User) (*models.TokenPair, error) {
	access, err := s.signAccess(user)
	if err != nil {
		return nil, err
	}

	refresh, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, err
	}
	if err := s.Users.UpdateRefresh(user.ID, refresh, time.Now().Add(s.RefreshTTL)); err != nil {
		return nil, err
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates the opaque token and returns a new pair.
func (s *AuthService) Refresh(oldToken string) (*models.User, *models.TokenPair, error) {
	user, err := s.Users.GetByRefreshToken(oldToken)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || user.RefreshToken == nil || user.RefreshExpiresAt == nil || user.RefreshRevoked {
		return nil, nil, ErrInvalidRefresh
	}
	if time.Now().After(*user.RefreshExpiresAt) {
		return nil, nil, ErrInvalidRefresh
	}

	newRefresh, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, nil, err
	}
	rotated, err := s.Users.RotateRefresh(oldToken, newRefresh, time.Now().Add(s.RefreshTTL))
	if err != nil {
		return nil, nil, err
	}
	if rotated == nil {
		return nil, nil, ErrInvalidRefresh
	}

	access, err := s.signAccess(rotated)
	if err != nil {
		return nil, nil, err
	}
	return rotated, &models.TokenPair{AccessToken: access, RefreshToken: newRefresh}, nil
}

func (s *AuthService) signAccess(user *models.User) (string, error) {
	claims := &middleware.Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}

func (s *AuthService) HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *AuthService) CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
