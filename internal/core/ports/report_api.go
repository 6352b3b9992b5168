package ports

import (
	"context"
	"io"

	"github.com/medisage/medisage-client/internal/core/domain"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name         string `validate:"required"`
	MobileNumber string `validate:"required"`
	Role         string `validate:"required,oneof=patient doctor"`
}

// FileUpload describes the document handed to UploadReport. MediaType is the
// declared content type; the server remains the authority on file integrity.
type FileUpload struct {
	FileName  string
	MediaType string
	Size      int64
	Content   io.Reader
}

// ReportAPI defines the operations the remote MediSage service exposes.
// Implementations return *domain.APIError for non-2xx responses that carry a
// detail message and wrap domain.ErrRequestFailed for transport failures.
type ReportAPI interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListAllReports(ctx context.Context) ([]domain.Report, error)
	ListUserReports(ctx context.Context, userID string) ([]domain.Report, error)
	Login(ctx context.Context, mobileNumber string) (*domain.User, error)
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	UploadReport(ctx context.Context, userID string, file FileUpload) (*domain.Report, error)
}
