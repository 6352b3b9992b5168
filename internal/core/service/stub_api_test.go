package service

import (
	"context"
	"sync"

	"github.com/medisage/medisage-client/internal/core/domain"
	"github.com/medisage/medisage-client/internal/core/ports"
)

// stubAPI implements ports.ReportAPI in memory and counts every call so
// tests can assert that no network request was issued.
type stubAPI struct {
	mu    sync.Mutex
	calls map[string]int

	users       []domain.User
	reports     []domain.Report
	userReports map[string][]domain.Report

	loginFn       func(mobileNumber string) (*domain.User, error)
	registerFn    func(in ports.RegisterInput) (*domain.User, error)
	uploadFn      func(userID string, file ports.FileUpload) (*domain.Report, error)
	listUsersFn   func() ([]domain.User, error)
	listReportsFn func() ([]domain.Report, error)
}

func newStubAPI() *stubAPI {
	return &stubAPI{
		calls:       make(map[string]int),
		userReports: make(map[string][]domain.Report),
	}
}

func (s *stubAPI) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

func (s *stubAPI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *stubAPI) ListUsers(context.Context) ([]domain.User, error) {
	s.record("list_users")
	if s.listUsersFn != nil {
		return s.listUsersFn()
	}
	return append([]domain.User(nil), s.users...), nil
}

func (s *stubAPI) ListAllReports(context.Context) ([]domain.Report, error) {
	s.record("list_reports")
	if s.listReportsFn != nil {
		return s.listReportsFn()
	}
	return append([]domain.Report(nil), s.reports...), nil
}

func (s *stubAPI) ListUserReports(_ context.Context, userID string) ([]domain.Report, error) {
	s.record("list_user_reports")
	return append([]domain.Report(nil), s.userReports[userID]...), nil
}

func (s *stubAPI) Login(_ context.Context, mobileNumber string) (*domain.User, error) {
	s.record("login")
	if s.loginFn != nil {
		return s.loginFn(mobileNumber)
	}
	for _, u := range s.users {
		if u.MobileNumber == mobileNumber {
			user := u
			return &user, nil
		}
	}
	return nil, &domain.APIError{StatusCode: 404, Detail: "User not found"}
}

func (s *stubAPI) Register(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
	s.record("register")
	if s.registerFn != nil {
		return s.registerFn(in)
	}
	user := domain.User{UserID: "u" + in.MobileNumber, Name: in.Name, MobileNumber: in.MobileNumber, Role: in.Role}
	s.users = append(s.users, user)
	return &user, nil
}

func (s *stubAPI) UploadReport(_ context.Context, userID string, file ports.FileUpload) (*domain.Report, error) {
	s.record("upload_report")
	if s.uploadFn != nil {
		return s.uploadFn(userID, file)
	}
	return &domain.Report{ReportID: "r1", UserID: userID, FileName: file.FileName}, nil
}
