package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medisage/medisage-client/internal/core/domain"
	"github.com/medisage/medisage-client/internal/core/ports"
	"github.com/medisage/medisage-client/internal/metrics"
)

// CacheService is the single source of truth for the in-memory collections:
// all known users, all known reports, and the reports scoped to the current
// session user. Collections preserve insertion order and are never shrunk by
// an append; a refresh replaces the whole collection with the server snapshot.
//
// Every mutation carries the SessionToken captured when its request was
// issued. A mutation whose token generation does not match the bound session
// is silently dropped, which is what keeps a late response from one session
// out of the next session's cache.
type CacheService struct {
	api ports.ReportAPI
	log zerolog.Logger

	mu           sync.RWMutex
	bound        SessionToken
	activeUserID string
	users        []domain.User
	reports      []domain.Report
	userReports  []domain.Report
}

func NewCacheService(api ports.ReportAPI, log zerolog.Logger) *CacheService {
	return &CacheService{api: api, log: log}
}

// Rebind attaches the cache to a new session context. The user-scoped report
// collection belongs to the previous identity and is cleared; the global
// collections survive a session change.
func (c *CacheService) Rebind(tok SessionToken, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bound = tok
	c.activeUserID = userID
	c.userReports = nil
}

// RefreshUsers replaces the user collection with the server's snapshot.
func (c *CacheService) RefreshUsers(ctx context.Context, tok SessionToken) error {
	users, err := c.api.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("refresh users: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(tok) {
		return domain.ErrStaleResponse
	}
	c.users = users
	return nil
}

// RefreshAllReports replaces the global report collection with the server's
// snapshot.
func (c *CacheService) RefreshAllReports(ctx context.Context, tok SessionToken) error {
	reports, err := c.api.ListAllReports(ctx)
	if err != nil {
		return fmt.Errorf("refresh reports: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(tok) {
		return domain.ErrStaleResponse
	}
	c.reports = reports
	return nil
}

// RefreshUserReports replaces the session user's report collection with the
// server's snapshot.
func (c *CacheService) RefreshUserReports(ctx context.Context, tok SessionToken, userID string) error {
	reports, err := c.api.ListUserReports(ctx, userID)
	if err != nil {
		return fmt.Errorf("refresh user reports: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(tok) {
		return domain.ErrStaleResponse
	}
	c.userReports = reports
	return nil
}

// AppendUser optimistically appends a freshly registered user.
func (c *CacheService) AppendUser(tok SessionToken, user domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(tok) {
		return domain.ErrStaleResponse
	}
	c.users = append(c.users, user)
	return nil
}

// AppendReport optimistically appends a freshly uploaded report to the global
// collection and, when it belongs to the session user, to the user-scoped
// collection as well. The two views must never diverge for the current user.
func (c *CacheService) AppendReport(tok SessionToken, report domain.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(tok) {
		return domain.ErrStaleResponse
	}
	c.reports = append(c.reports, report)
	if c.activeUserID != "" && report.UserID == c.activeUserID {
		c.userReports = append(c.userReports, report)
	}
	return nil
}

// Users returns a copy of the user collection in insertion order.
func (c *CacheService) Users() []domain.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.User, len(c.users))
	copy(out, c.users)
	return out
}

// AllReports returns a copy of the global report collection.
func (c *CacheService) AllReports() []domain.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Report, len(c.reports))
	copy(out, c.reports)
	return out
}

// UserReports returns a copy of the current session user's reports.
func (c *CacheService) UserReports() []domain.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Report, len(c.userReports))
	copy(out, c.userReports)
	return out
}

func (c *CacheService) staleLocked(tok SessionToken) bool {
	if tok.Generation == c.bound.Generation {
		return false
	}
	metrics.StaleResponsesDroppedTotal.Inc()
	c.log.Debug().
		Str("session_id", tok.ID).
		Uint64("issued_generation", tok.Generation).
		Uint64("current_generation", c.bound.Generation).
		Msg("stale response dropped")
	return true
}
