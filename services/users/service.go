package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shelflog/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// Service tracks registered users through the admin approval workflow,
// persisted as a JSON file in the storage directory.
type Service struct {
	mu    sync.RWMutex
	path  string
	users map[string]models.User
}

// NewService creates a users service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create users dir: %w", err)
	}

	svc := &Service{
		path:  filepath.Join(storageDir, "users.json"),
		users: make(map[string]models.User),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Register adds a new user in the pending state.
func (s *Service) Register(name, email string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return models.User{}, ErrNameRequired
	}
	if email == "" {
		return models.User{}, ErrEmailRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return models.User{}, ErrEmailTaken
		}
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Status:    models.UserStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[user.ID] = user

	if err := s.saveLocked(); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// List returns users, newest first, optionally filtered by status.
func (s *Service) List(status models.UserStatus) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		if status != "" && user.Status != status {
			continue
		}
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	return users, nil
}

// Get returns a single user by id.
func (s *Service) Get(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[strings.TrimSpace(id)]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// Approve marks a user approved.
func (s *Service) Approve(id string) (models.User, error) {
	return s.setStatus(id, models.UserStatusApproved)
}

// Reject marks a user rejected.
func (s *Service) Reject(id string) (models.User, error) {
	return s.setStatus(id, models.UserStatusRejected)
}

func (s *Service) setStatus(id string, status models.UserStatus) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[strings.TrimSpace(id)]
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	user.Status = status
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = user

	if err := s.saveLocked(); err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.users = make(map[string]models.User)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open users: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read users: %w", err)
	}
	if len(data) == 0 {
		s.users = make(map[string]models.User)
		return nil
	}

	var list []models.User
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("decode users: %w", err)
	}

	s.users = make(map[string]models.User, len(list))
	for _, user := range list {
		if user.ID == "" {
			continue
		}
		s.users[user.ID] = user
	}

	return nil
}

func (s *Service) saveLocked() error {
	list := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		list = append(list, user)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create users temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode users: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync users: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close users temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}

	return nil
}
