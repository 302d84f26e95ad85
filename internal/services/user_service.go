package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockroom/internal/authz"
	"stockroom/internal/models"
	"stockroom/internal/repositories"
)

var ErrUserExists = errors.New("user already exists")

type UserService interface {
	Create(user *models.User, plainPassword string) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id string) error
	List(role string, limit, offset int) ([]*models.User, error)
	GetCount() (int, error)
	SetPassword(id, plainPassword string) error
	BulkImport(rows []UserImportRow) *BulkImportResult
}

// UserImportRow — one parsed line of a CSV/XLSX admin upload.
type UserImportRow struct {
	Email    string
	Username string
	Role     string
	Password string
}

type BulkImportResult struct {
	CreatedCount int              `json:"created_count"`
	Created      []map[string]any `json:"created"`
	Failed       []map[string]any `json:"failed"`
}

type userService struct {
	repo repositories.UserRepository
	auth *AuthService
}

func NewUserService(repo repositories.UserRepository, auth *AuthService) UserService {
	return &userService{repo: repo, auth: auth}
}

func (s *userService) Create(user *models.User, plainPassword string) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" {
		return fmt.Errorf("email is required")
	}
	if existing, err := s.repo.GetByEmail(user.Email); err != nil {
		return err
	} else if existing != nil {
		return ErrUserExists
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Username == "" {
		user.Username = strings.SplitN(user.Email, "@", 2)[0]
	}
	if !authz.IsKnown(user.Role) {
		user.Role = authz.RoleStaff
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.IsActive = true

	if plainPassword != "" {
		hash, err := s.auth.HashPassword(plainPassword)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	return s.repo.Create(user)
}

func (s *userService) GetByID(id string) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(email)
}

func (s *userService) Update(user *models.User) error {
	return s.repo.Update(user)
}

func (s *userService) Delete(id string) error {
	return s.repo.Delete(id)
}

func (s *userService) List(role string, limit, offset int) ([]*models.User, error) {
	return s.repo.List(role, limit, offset)
}

func (s *userService) GetCount() (int, error) {
	return s.repo.GetCount()
}

func (s *userService) SetPassword(id, plainPassword string) error {
	if strings.TrimSpace(plainPassword) == "" {
		return fmt.Errorf("password is required")
	}
	hash, err := s.auth.HashPassword(plainPassword)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(id, hash)
}

// BulkImport creates users row by row; existing emails are reported, not
// overwritten.
func (s *userService) BulkImport(rows []UserImportRow) *BulkImportResult {
	res := &BulkImportResult{Created: []map[string]any{}, Failed: []map[string]any{}}
	for i, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Email))
		if email == "" {
			res.Failed = append(res.Failed, map[string]any{"row": i + 1, "error": "missing email"})
			continue
		}
		u := &models.User{
			Email:    email,
			Username: row.Username,
			Role:     row.Role,
		}
		if err := s.Create(u, row.Password); err != nil {
			res.Failed = append(res.Failed, map[string]any{"row": i + 1, "email": email, "error": err.Error()})
			continue
		}
		res.Created = append(res.Created, map[string]any{"id": u.ID, "email": u.Email})
	}
	res.CreatedCount = len(res.Created)
	return res
}
