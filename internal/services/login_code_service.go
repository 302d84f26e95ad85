package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"stockroom/internal/models"
	"stockroom/internal/repositories"
	"stockroom/internal/utils"
)

var (
	ErrNoMatch         = errors.New("no matching code")
	ErrExpiredOrUsed   = errors.New("code expired or used")
	ErrLocked          = errors.New("too many attempts")
	ErrDeliveryFailed  = errors.New("code delivery failed")
	ErrResendThrottled = errors.New("resend throttled")
)

// LoginCodeConfig — explicit knobs instead of ambient globals, so the
// service stays deterministic under test.
type LoginCodeConfig struct {
	CodeLength   int
	TTL          time.Duration
	MaxAttempts  int
	LockDuration time.Duration
	ResendLimit  int
	ResendWindow time.Duration
	DefaultRole  string
}

type LoginCodeService struct {
	Repo  repositories.LoginCodeRepository
	Users repositories.UserRepository
	Email EmailService
	Auth  *AuthService
	Cfg   LoginCodeConfig
}

func NewLoginCodeService(
	repo repositories.LoginCodeRepository,
	users repositories.UserRepository,
	email EmailService,
	auth *AuthService,
	cfg LoginCodeConfig,
) *LoginCodeService {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.LockDuration <= 0 {
		cfg.LockDuration = 15 * time.Minute
	}
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = "staff"
	}
	return &LoginCodeService{Repo: repo, Users: users, Email: email, Auth: auth, Cfg: cfg}
}

// Issue creates a fresh code for the email and hands it to the delivery
// channel. The record is persisted first; if the email cannot be sent the
// record is deleted again so unusable codes do not pile up.
func (s *LoginCodeService) Issue(email string, now time.Time) (*models.LoginCode, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.Cfg.ResendLimit > 0 {
		since := now.Add(-s.Cfg.ResendWindow)
		cnt, err := s.Repo.CountRecentSends(email, since)
		if err != nil {
			return nil, err
		}
		if cnt >= s.Cfg.ResendLimit {
			return nil, ErrResendThrottled
		}
	}

	// Link an existing account if there is one; never create it here.
	var userID *string
	if user, err := s.Users.GetByEmail(email); err != nil {
		return nil, err
	} else if user != nil {
		userID = &user.ID
	}

	code, err := utils.NumericCode(s.Cfg.CodeLength)
	if err != nil {
		return nil, err
	}

	rec := &models.LoginCode{
		Email:       email,
		UserID:      userID,
		Code:        code,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.Cfg.TTL),
		MaxAttempts: s.Cfg.MaxAttempts,
	}
	if err := s.Repo.Create(rec); err != nil {
		return nil, err
	}

	ttlMinutes := int(s.Cfg.TTL / time.Minute)
	if err := s.Email.SendLoginCodeEmail(email, code, ttlMinutes); err != nil {
		if delErr := s.Repo.Delete(rec.ID); delErr != nil {
			log.Printf("[auth][request_code] cleanup after failed delivery: id=%s err=%v", rec.ID, delErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	log.Printf("[auth][request_code] sent email=%s expires_at=%s", email, rec.ExpiresAt.Format(time.RFC3339))
	return rec, nil
}

// Verify decides acceptance of an email+code pair at the given moment.
//
// A wrong code always burns an attempt on the NEWEST record for the email,
// even when the submitted code belongs to an older or foreign record. That
// is intentional: guessing still costs the attacker a strike against the
// latest live code.
func (s *LoginCodeService) Verify(email, code string, now time.Time) (*models.User, *models.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)

	rec, err := s.Repo.GetNewestByEmailAndCode(email, code)
	if err != nil {
		return nil, nil, err
	}

	if rec == nil {
		latest, err := s.Repo.GetNewestByEmail(email)
		if err != nil {
			return nil, nil, err
		}
		if latest != nil {
			attempts, _, err := s.Repo.RegisterAttempt(latest.ID, now.Add(s.Cfg.LockDuration))
			if err != nil {
				return nil, nil, err
			}
			log.Printf("[auth][verify] wrong code email=%s attempts=%d/%d", email, attempts, latest.MaxAttempts)
		}
		return nil, nil, ErrNoMatch
	}

	// Already locked: reject without another increment, otherwise a
	// hammering client keeps pushing the lockout forward.
	if rec.LockedUntil != nil && now.Before(*rec.LockedUntil) {
		return nil, nil, ErrLocked
	}

	if !rec.IsValid(now) {
		return nil, nil, ErrExpiredOrUsed
	}

	username := strings.SplitN(email, "@", 2)[0]
	user, consumed, err := s.Repo.Consume(rec.ID, email, username, s.Cfg.DefaultRole, now)
	if err != nil {
		return nil, nil, err
	}
	if !consumed {
		// lost the race: someone marked the record used first
		return nil, nil, ErrExpiredOrUsed
	}

	tokens, err := s.Auth.IssueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[auth][verify] OK email=%s user_id=%s", email, user.ID)
	return user, tokens, nil
}

// Sweep deletes used codes and codes past the retention window. Safe to run
// on any cadence; correctness never depends on it.
func (s *LoginCodeService) Sweep(retention time.Duration, now time.Time) (int64, error) {
	return s.Repo.DeleteStale(now.Add(-retention))
}
