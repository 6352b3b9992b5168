// Package labstub is a development stand-in for the remote MediSage service.
// It reproduces the observable API contract — form-based login/registration,
// multipart report upload with lab-value extraction, list endpoints, and the
// {"detail": ...} error envelope — so the client core can be exercised
// without the real OCR/NLP backend.
package labstub

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medisage/medisage-client/internal/core/domain"
)

var (
	ErrUserNotFound     = errors.New("User not found")
	ErrMobileRegistered = errors.New("Mobile number already registered")
	ErrInvalidFormat    = errors.New("Invalid file format")
	ErrDuplicateReport  = errors.New("Report already uploaded for this user")
	ErrNoTextExtracted  = errors.New("No text extracted from file")
)

// MemStore holds the stub's users and reports behind an RWMutex.
type MemStore struct {
	mu       sync.RWMutex
	users    []domain.User
	byMobile map[string]int
	reports  []domain.Report
}

func NewMemStore() *MemStore {
	return &MemStore{byMobile: make(map[string]int)}
}

// CreateUser registers a new account. Mobile numbers are unique.
func (s *MemStore) CreateUser(name, mobileNumber, role string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byMobile[mobileNumber]; exists {
		return nil, ErrMobileRegistered
	}
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         name,
		MobileNumber: mobileNumber,
		Role:         role,
	}
	s.byMobile[mobileNumber] = len(s.users)
	s.users = append(s.users, user)
	return &user, nil
}

// FindByMobile looks an account up by its login key.
func (s *MemStore) FindByMobile(mobileNumber string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byMobile[mobileNumber]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := s.users[idx]
	return &u, nil
}

// UserExists reports whether a user id is known.
func (s *MemStore) UserExists(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.UserID == userID {
			return true
		}
	}
	return false
}

// AddReport stores a finished extraction result.
func (s *MemStore) AddReport(report domain.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if report.UploadTime.IsZero() {
		report.UploadTime = time.Now().UTC()
	}
	s.reports = append(s.reports, report)
}

// Users returns all accounts in registration order.
func (s *MemStore) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out
}

// AllReports returns every stored report in upload order.
func (s *MemStore) AllReports() []domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// UserReports returns the reports belonging to one user, in upload order.
func (s *MemStore) UserReports(userID string) []domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Report{}
	for _, r := range s.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}
