package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/medisage/medisage-client/internal/core/domain"
	"github.com/medisage/medisage-client/internal/core/ports"
)

// App wires the client core together: one cache, one session, one upload
// slot, one navigation state. All state mutation flows through the named
// operations of the owned services; frontends consume it read-only.
type App struct {
	Session *SessionService
	Cache   *CacheService
	Upload  *UploadService
	Nav     *NavigationService

	log zerolog.Logger
}

// NewApp builds the client core on top of a remote API implementation.
func NewApp(api ports.ReportAPI, maxUploadBytes int64, log zerolog.Logger) *App {
	nav := NewNavigationService()
	cache := NewCacheService(api, log)
	session := NewSessionService(api, cache, nav, log)
	upload := NewUploadService(api, cache, session, maxUploadBytes, log)
	return &App{
		Session: session,
		Cache:   cache,
		Upload:  upload,
		Nav:     nav,
		log:     log,
	}
}

// Bootstrap populates the global collections on startup, before any login.
// Each fetch is independent; a failure of one does not block the other.
func (a *App) Bootstrap(ctx context.Context) error {
	tok := a.Session.CurrentToken()
	var errs []error
	if err := a.Cache.RefreshUsers(ctx, tok); err != nil && !errors.Is(err, domain.ErrStaleResponse) {
		errs = append(errs, err)
	}
	if err := a.Cache.RefreshAllReports(ctx, tok); err != nil && !errors.Is(err, domain.ErrStaleResponse) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
