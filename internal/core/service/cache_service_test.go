package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medisage/medisage-client/internal/core/domain"
)

func TestCacheService_RefreshReplacesSnapshot(t *testing.T) {
	api := newStubAPI()
	api.users = []domain.User{{UserID: "u1", Name: "Asha"}}
	cache := NewCacheService(api, zerolog.Nop())
	tok := newToken(0)
	cache.Rebind(tok, "")

	if err := cache.RefreshUsers(context.Background(), tok); err != nil {
		t.Fatalf("refresh users: %v", err)
	}
	if len(cache.Users()) != 1 {
		t.Fatalf("expected 1 user, got %d", len(cache.Users()))
	}

	// A refresh is a full replace, not a merge: an entry the server no
	// longer returns disappears from the cache.
	api.users = []domain.User{{UserID: "u2", Name: "Ravi"}}
	if err := cache.RefreshUsers(context.Background(), tok); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	users := cache.Users()
	if len(users) != 1 || users[0].UserID != "u2" {
		t.Fatalf("expected snapshot [u2], got %+v", users)
	}
}

func TestCacheService_AppendReportBothViews(t *testing.T) {
	cache := NewCacheService(newStubAPI(), zerolog.Nop())
	tok := newToken(1)
	cache.Rebind(tok, "u1")

	before := len(cache.AllReports())
	report := domain.Report{ReportID: "r1", UserID: "u1", FileName: "cbc.pdf"}
	if err := cache.AppendReport(tok, report); err != nil {
		t.Fatalf("append: %v", err)
	}

	if got := len(cache.AllReports()); got != before+1 {
		t.Fatalf("reports length grew by %d, want 1", got-before)
	}
	if got := countReports(cache.AllReports(), "r1"); got != 1 {
		t.Fatalf("global view contains r1 %d times, want exactly once", got)
	}
	if got := countReports(cache.UserReports(), "r1"); got != 1 {
		t.Fatalf("user view contains r1 %d times, want exactly once", got)
	}
}

func TestCacheService_AppendReportOtherUser(t *testing.T) {
	cache := NewCacheService(newStubAPI(), zerolog.Nop())
	tok := newToken(1)
	cache.Rebind(tok, "u1")

	if err := cache.AppendReport(tok, domain.Report{ReportID: "r9", UserID: "u9"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(cache.AllReports()) != 1 {
		t.Fatal("report missing from global view")
	}
	if len(cache.UserReports()) != 0 {
		t.Fatal("another user's report leaked into the session view")
	}
}

func TestCacheService_StaleTokenDropped(t *testing.T) {
	api := newStubAPI()
	api.reports = []domain.Report{{ReportID: "r1", UserID: "u1"}}
	cache := NewCacheService(api, zerolog.Nop())
	oldTok := newToken(1)
	cache.Rebind(oldTok, "u1")

	// Session changes while a request is conceptually in flight.
	cache.Rebind(newToken(2), "u2")

	if err := cache.RefreshAllReports(context.Background(), oldTok); !errors.Is(err, domain.ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}
	if len(cache.AllReports()) != 0 {
		t.Fatal("stale refresh mutated the cache")
	}

	if err := cache.AppendReport(oldTok, domain.Report{ReportID: "r2", UserID: "u2"}); !errors.Is(err, domain.ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse on append, got %v", err)
	}
	if len(cache.AllReports()) != 0 || len(cache.UserReports()) != 0 {
		t.Fatal("stale append mutated the cache")
	}
}

func TestCacheService_RebindClearsUserScope(t *testing.T) {
	cache := NewCacheService(newStubAPI(), zerolog.Nop())
	tok := newToken(1)
	cache.Rebind(tok, "u1")
	if err := cache.AppendReport(tok, domain.Report{ReportID: "r1", UserID: "u1"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	cache.Rebind(newToken(2), "")

	if len(cache.UserReports()) != 0 {
		t.Fatal("user-scoped reports survived a rebind")
	}
	if len(cache.AllReports()) != 1 {
		t.Fatal("global reports should survive a rebind")
	}
}

func countReports(reports []domain.Report, id string) int {
	n := 0
	for _, r := range reports {
		if r.ReportID == id {
			n++
		}
	}
	return n
}
