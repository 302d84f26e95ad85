package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"stockroom/internal/models"
	"stockroom/internal/repositories"
)

var ErrGoogleToken = errors.New("invalid google token")

// tokenValidator is swapped for a stub in tests.
type tokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleAuthService verifies a Google ID token and signs the user in,
// provisioning an account on first sight (same policy as the code flow).
type GoogleAuthService struct {
	Users       repositories.UserRepository
	Auth        *AuthService
	ClientID    string
	DefaultRole string
	validate    tokenValidator
}

func NewGoogleAuthService(users repositories.UserRepository, auth *AuthService, clientID, defaultRole string) *GoogleAuthService {
	return &GoogleAuthService{
		Users:       users,
		Auth:        auth,
		ClientID:    clientID,
		DefaultRole: defaultRole,
		validate:    idtoken.Validate,
	}
}

func (s *GoogleAuthService) SignIn(ctx context.Context, rawToken string) (*models.User, *models.TokenPair, error) {
	payload, err := s.validate(ctx, rawToken, s.ClientID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrGoogleToken, err)
	}

	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return nil, nil, fmt.Errorf("%w: email not verified", ErrGoogleToken)
	}
	email = strings.ToLower(email)

	user, err := s.Users.GetByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		user = &models.User{
			ID:        uuid.NewString(),
			Username:  strings.SplitN(email, "@", 2)[0],
			Email:     email,
			Role:      s.DefaultRole,
			IsActive:  true,
			CreatedAt: time.Now(),
		}
		if err := s.Users.Create(user); err != nil {
			return nil, nil, err
		}
		log.Printf("[auth][google] provisioned user email=%s", email)
	}

	tokens, err := s.Auth.IssueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}
