package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"moviemirror/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// Service manages persistence of user accounts.
type Service struct {
	mu       sync.RWMutex
	path     string
	accounts map[string]models.Account
}

// NewService creates an accounts service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create accounts dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "accounts.json"),
		accounts: make(map[string]models.Account),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Get returns the account with the given ID if present.
func (s *Service) Get(id string) (models.Account, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Account{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	return account, ok
}

// GetByEmail returns the account with the given email if present.
func (s *Service) GetByEmail(email string) (models.Account, bool) {
	email = normalizeEmail(email)
	if email == "" {
		return models.Account{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if normalizeEmail(a.Email) == email {
			return a, true
		}
	}
	return models.Account{}, false
}

// Exists reports whether an account with the provided ID is registered.
func (s *Service) Exists(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[id]
	return ok
}

// Register creates a new account with the provided email, password and
// display name. Duplicate emails and short passwords are rejected.
func (s *Service) Register(email, password, name string) (models.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.Account{}, ErrEmailRequired
	}

	password = strings.TrimSpace(password)
	if password == "" {
		return models.Account{}, ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return models.Account{}, ErrWeakPassword
	}

	name = strings.TrimSpace(name)
	if name == "" {
		// Fall back to the email prefix, matching sign-in display behavior.
		if idx := strings.Index(email, "@"); idx > 0 {
			name = email[:idx]
		} else {
			name = email
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check if email already exists (case-insensitive)
	lowerEmail := normalizeEmail(email)
	for _, a := range s.accounts {
		if normalizeEmail(a.Email) == lowerEmail {
			return models.Account{}, ErrEmailExists
		}
	}

	// Hash the password
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	account := models.Account{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.accounts[id] = account

	if err := s.saveLocked(); err != nil {
		delete(s.accounts, id)
		return models.Account{}, err
	}

	return account, nil
}

// Authenticate verifies the email and password, returning the account if valid.
func (s *Service) Authenticate(email, password string) (models.Account, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if email == "" || password == "" {
		return models.Account{}, ErrInvalidCredentials
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Find account by email (case-insensitive)
	lowerEmail := normalizeEmail(email)
	var account models.Account
	found := false
	for _, a := range s.accounts {
		if normalizeEmail(a.Email) == lowerEmail {
			account = a
			found = true
			break
		}
	}

	if !found {
		// Use bcrypt comparison anyway to prevent timing attacks
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$dummy"), []byte(password))
		return models.Account{}, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return models.Account{}, ErrInvalidCredentials
	}

	return account, nil
}

// UpdatePassword changes the password for an account.
func (s *Service) UpdatePassword(id, newPassword string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrAccountNotFound
	}

	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = string(hash)
	account.UpdatedAt = time.Now().UTC()
	s.accounts[id] = account

	return s.saveLocked()
}

// Delete removes an account by ID.
func (s *Service) Delete(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrAccountNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return ErrAccountNotFound
	}

	delete(s.accounts, id)

	return s.saveLocked()
}

// Count returns the number of registered accounts.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open accounts file: %w", err)
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	var stored []models.AccountStorage
	if err := dec.Decode(&stored); err != nil {
		return fmt.Errorf("decode accounts: %w", err)
	}

	s.accounts = make(map[string]models.Account, len(stored))
	for _, accountStorage := range stored {
		if strings.TrimSpace(accountStorage.ID) == "" {
			continue
		}
		account := accountStorage.ToAccount()
		if account.CreatedAt.IsZero() {
			account.CreatedAt = time.Now().UTC()
		}
		if account.UpdatedAt.IsZero() {
			account.UpdatedAt = account.CreatedAt
		}
		s.accounts[account.ID] = account
	}

	return nil
}

func (s *Service) saveLocked() error {
	// Convert to storage format (includes password hash)
	storage := make([]models.AccountStorage, 0, len(s.accounts))
	for _, account := range s.accounts {
		storage = append(storage, account.ToStorage())
	}

	sort.Slice(storage, func(i, j int) bool {
		return storage[i].CreatedAt.Before(storage[j].CreatedAt)
	})

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create accounts temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(storage); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode accounts: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync accounts: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close accounts temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}

	return nil
}
