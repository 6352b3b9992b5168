package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medisage/medisage-client/internal/core/domain"
	"github.com/medisage/medisage-client/internal/core/ports"
	"github.com/medisage/medisage-client/internal/metrics"
)

// UploadState is the lifecycle state of the single-slot upload workflow.
type UploadState string

const (
	UploadIdle         UploadState = "idle"
	UploadFileSelected UploadState = "file_selected"
	UploadUploading    UploadState = "uploading"
	UploadSuccess      UploadState = "success"
	UploadError        UploadState = "error"
)

// uploadTransitions defines the allowed state machine transitions. Reset
// additionally returns to UploadIdle from any state.
var uploadTransitions = map[UploadState][]UploadState{
	UploadIdle:         {UploadFileSelected},
	UploadFileSelected: {UploadFileSelected, UploadUploading},
	UploadUploading:    {UploadSuccess, UploadError},
	UploadSuccess:      {UploadFileSelected},
	UploadError:        {UploadFileSelected},
}

func (s UploadState) canTransitionTo(next UploadState) bool {
	for _, allowed := range uploadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// allowedMediaTypes are the declared content types accepted for upload. This
// is a pre-flight guard on the declared type, not a magic-byte check; the
// server stays the enforcement authority on file integrity.
var allowedMediaTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

// DefaultMaxUploadBytes is the advertised upload limit (10 MB).
const DefaultMaxUploadBytes = 10 << 20

// UploadService manages the lifecycle of exactly one report submission at a
// time: file selection, validation, submission, and the settled result. A
// successful report is merged into the cache before the state becomes
// observable as UploadSuccess.
type UploadService struct {
	api      ports.ReportAPI
	cache    *CacheService
	tokens   tokenSource
	maxBytes int64
	log      zerolog.Logger

	mu     sync.Mutex
	state  UploadState
	file   *ports.FileUpload
	result *domain.Report
	reason string
}

func NewUploadService(api ports.ReportAPI, cache *CacheService, tokens tokenSource, maxBytes int64, log zerolog.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadService{
		api:      api,
		cache:    cache,
		tokens:   tokens,
		maxBytes: maxBytes,
		log:      log,
		state:    UploadIdle,
	}
}

// SelectFile validates the declared media type and size and stages the file
// for submission. Valid from any state except UploadUploading; selecting a
// new file discards the previous result. No network call is made.
func (s *UploadService) SelectFile(file ports.FileUpload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.canTransitionTo(UploadFileSelected) {
		return domain.ErrUploadInProgress
	}

	mediaType := normalizeMediaType(file.MediaType)
	if !allowedMediaTypes[mediaType] {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%w: %q (accepted: application/pdf, image/png, image/jpeg)", domain.ErrUnsupportedFileType, file.MediaType)
	}
	if file.Size > s.maxBytes {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrFileTooLarge, file.Size, s.maxBytes)
	}

	file.MediaType = mediaType
	s.file = &file
	s.result = nil
	s.reason = ""
	s.state = UploadFileSelected
	return nil
}

// Submit sends the staged file for the given user. Valid only from
// UploadFileSelected; any other state is rejected without a network call.
// The state moves to UploadUploading synchronously, then settles to
// UploadSuccess or UploadError when the remote call completes.
func (s *UploadService) Submit(ctx context.Context, userID string) (*domain.Report, error) {
	s.mu.Lock()
	if s.state == UploadUploading {
		s.mu.Unlock()
		return nil, domain.ErrUploadInProgress
	}
	if !s.state.canTransitionTo(UploadUploading) || s.file == nil {
		s.mu.Unlock()
		return nil, domain.ErrNoFileSelected
	}
	if userID == "" {
		s.mu.Unlock()
		return nil, domain.ErrNoUserSelected
	}
	tok := s.tokens.CurrentToken()
	file := *s.file
	s.state = UploadUploading
	s.mu.Unlock()

	report, err := s.api.UploadReport(ctx, userID, file)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != UploadUploading {
		// Reset fired while the request was in flight; the slot no longer
		// belongs to this submission.
		s.log.Debug().Str("file_name", file.FileName).Msg("late upload response discarded after reset")
		return nil, domain.ErrStaleResponse
	}

	if err != nil {
		s.state = UploadError
		s.reason = domain.Reason(err)
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("file_name", file.FileName).Msg("upload failed")
		return nil, fmt.Errorf("upload: %w", err)
	}

	if mergeErr := s.cache.AppendReport(tok, *report); mergeErr != nil {
		// The session that issued the upload is gone; drop the result rather
		// than resurrecting it into the new session's view.
		s.state = UploadIdle
		s.file = nil
		return nil, domain.ErrStaleResponse
	}

	s.result = report
	s.state = UploadSuccess
	metrics.UploadsTotal.WithLabelValues("success").Inc()
	s.log.Info().
		Str("report_id", report.ReportID).
		Str("user_id", report.UserID).
		Int("lab_values", len(report.LabResults)).
		Msg("report uploaded")
	return report, nil
}

// Reset returns the workflow to UploadIdle from any state, clearing the
// staged file and the last result.
func (s *UploadService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = UploadIdle
	s.file = nil
	s.result = nil
	s.reason = ""
}

// State returns the current workflow state.
func (s *UploadService) State() UploadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the report produced by the last successful submission, or
// nil when the workflow is not in UploadSuccess.
func (s *UploadService) Result() *domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != UploadSuccess {
		return nil
	}
	return s.result
}

// ErrorReason returns the human-readable reason for the last failed
// submission, or "" when the workflow is not in UploadError.
func (s *UploadService) ErrorReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != UploadError {
		return ""
	}
	return s.reason
}

// SelectedFileName returns the staged file's name, or "" when none is staged.
func (s *UploadService) SelectedFileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return ""
	}
	return s.file.FileName
}

// normalizeMediaType lowercases the declared type and folds the unregistered
// "image/jpg" variant into "image/jpeg".
func normalizeMediaType(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if mt == "image/jpg" {
		return "image/jpeg"
	}
	return mt
}
