package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/medisage/medisage-client/internal/core/domain"
	"github.com/medisage/medisage-client/internal/core/ports"
)

// SessionService holds at most one authenticated identity and is the sole
// gate to the functional views. Login and logout mint a new session token;
// the cache drops any response still in flight for the previous token.
type SessionService struct {
	api      ports.ReportAPI
	cache    *CacheService
	nav      *NavigationService
	validate *validator.Validate
	log      zerolog.Logger

	mu          sync.Mutex
	currentUser *domain.User
	token       SessionToken
}

func NewSessionService(api ports.ReportAPI, cache *CacheService, nav *NavigationService, log zerolog.Logger) *SessionService {
	s := &SessionService{
		api:      api,
		cache:    cache,
		nav:      nav,
		validate: validator.New(),
		log:      log,
		token:    newToken(0),
	}
	cache.Rebind(s.token, "")
	return s
}

// CurrentToken returns the token identifying the active session context.
func (s *SessionService) CurrentToken() SessionToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentUser returns a copy of the authenticated user, or nil when logged out.
func (s *SessionService) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUser == nil {
		return nil
	}
	u := *s.currentUser
	return &u
}

// LoggedIn reports whether an identity is currently authenticated.
func (s *SessionService) LoggedIn() bool {
	return s.CurrentUser() != nil
}

// Login authenticates by mobile number. On success the returned identity
// becomes current, the cache is rebound to a fresh session token, and the
// user's report collection is fetched. On failure no state changes.
//
// If the session context changed while the request was in flight (logout or a
// competing login), the late result is discarded and ErrStaleResponse is
// returned so the caller knows nothing was applied.
func (s *SessionService) Login(ctx context.Context, mobileNumber string) (*domain.User, error) {
	mobileNumber = strings.TrimSpace(mobileNumber)
	if mobileNumber == "" {
		return nil, fmt.Errorf("%w: mobile number is required", domain.ErrInvalidInput)
	}

	issued := s.CurrentToken()

	user, err := s.api.Login(ctx, mobileNumber)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	if s.token.Generation != issued.Generation {
		s.mu.Unlock()
		s.log.Debug().Str("mobile_number", mobileNumber).Msg("late login response discarded")
		return nil, domain.ErrStaleResponse
	}
	s.currentUser = user
	s.token = newToken(issued.Generation + 1)
	tok := s.token
	s.mu.Unlock()

	s.cache.Rebind(tok, user.UserID)
	s.nav.Goto(ViewDashboard)

	s.log.Info().Str("user_id", user.UserID).Str("role", user.Role).Msg("logged in")

	// The report fetch is best-effort: a failure leaves an empty collection
	// the caller can refresh explicitly.
	if err := s.cache.RefreshUserReports(ctx, tok, user.UserID); err != nil && !errors.Is(err, domain.ErrStaleResponse) {
		s.log.Warn().Err(err).Str("user_id", user.UserID).Msg("initial report fetch failed")
	}

	return user, nil
}

// Register submits a new account. On success the user is appended to the
// cached user collection; the caller is not logged in automatically. Server
// rejections (e.g. a duplicate mobile number) are surfaced verbatim.
func (s *SessionService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: name, mobile number, and a valid role are required", domain.ErrInvalidInput)
	}

	issued := s.CurrentToken()

	user, err := s.api.Register(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if err := s.cache.AppendUser(issued, *user); err != nil {
		// Session changed mid-flight; the registration still happened
		// server-side, only the local append is skipped.
		s.log.Debug().Str("user_id", user.UserID).Msg("late register response not cached")
	}

	s.log.Info().Str("user_id", user.UserID).Str("role", user.Role).Msg("user registered")
	return user, nil
}

// Logout clears the authenticated identity, the user-scoped cache, and the
// navigation selection. Safe to call at any time: requests still in flight
// carry the old token and will be dropped when they settle.
func (s *SessionService) Logout() {
	s.mu.Lock()
	wasLoggedIn := s.currentUser != nil
	s.currentUser = nil
	s.token = newToken(s.token.Generation + 1)
	tok := s.token
	s.mu.Unlock()

	s.cache.Rebind(tok, "")
	s.nav.ResetToLogin()

	if wasLoggedIn {
		s.log.Info().Msg("logged out")
	}
}
