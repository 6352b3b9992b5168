package service

import (
	"sync"

	"github.com/medisage/medisage-client/internal/core/domain"
)

// View enumerates the screens the frontend can show.
type View string

const (
	ViewLogin     View = "login"
	ViewDashboard View = "dashboard"
	ViewUpload    View = "upload"
	ViewAnalysis  View = "analysis"
)

// NavigationService tracks which screen is active and which report is
// selected for detail display. Selecting a report is a pointer assignment
// into the cache's data; it never refetches or recomputes anything.
type NavigationService struct {
	mu       sync.RWMutex
	current  View
	selected *domain.Report
}

func NewNavigationService() *NavigationService {
	return &NavigationService{current: ViewLogin}
}

// Goto switches the active screen. Unknown views are ignored so a typo in a
// caller cannot leave navigation in an undefined state.
func (n *NavigationService) Goto(v View) {
	switch v {
	case ViewLogin, ViewDashboard, ViewUpload, ViewAnalysis:
	default:
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = v
}

// SelectReport marks a report as the detail-view subject and switches to the
// analysis screen.
func (n *NavigationService) SelectReport(r *domain.Report) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.selected = r
	n.current = ViewAnalysis
}

// ClearSelection drops the selected report (navigating back to the list).
func (n *NavigationService) ClearSelection() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.selected = nil
}

// ResetToLogin returns to the unauthenticated entry view and clears the
// selection, since a selected report may belong to a logged-out user.
func (n *NavigationService) ResetToLogin() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = ViewLogin
	n.selected = nil
}

// CurrentView returns the active screen.
func (n *NavigationService) CurrentView() View {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// SelectedReport returns the report chosen for detail view, or nil.
func (n *NavigationService) SelectedReport() *domain.Report {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.selected
}
