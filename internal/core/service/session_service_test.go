package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medisage/medisage-client/internal/core/domain"
	"github.com/medisage/medisage-client/internal/core/ports"
)

func newTestApp(api ports.ReportAPI) *App {
	return NewApp(api, DefaultMaxUploadBytes, zerolog.Nop())
}

func TestSessionService_RegisterAppendsUser(t *testing.T) {
	api := newStubAPI()
	api.registerFn = func(in ports.RegisterInput) (*domain.User, error) {
		return &domain.User{UserID: "u1", Name: in.Name, MobileNumber: in.MobileNumber, Role: in.Role}, nil
	}
	app := newTestApp(api)

	user, err := app.Session.Register(context.Background(), ports.RegisterInput{
		Name: "Asha", MobileNumber: "9000000001", Role: "patient",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.UserID != "u1" {
		t.Fatalf("unexpected user id %q", user.UserID)
	}

	users := app.Cache.Users()
	count := 0
	for _, u := range users {
		if u.UserID == "u1" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("users contains u1 %d times, want exactly once", count)
	}

	// Registration must not log the caller in.
	if app.Session.LoggedIn() {
		t.Fatal("register auto-logged the user in")
	}
}

func TestSessionService_RegisterValidation(t *testing.T) {
	api := newStubAPI()
	app := newTestApp(api)

	cases := []ports.RegisterInput{
		{Name: "", MobileNumber: "9000000001", Role: "patient"},
		{Name: "Asha", MobileNumber: "", Role: "patient"},
		{Name: "Asha", MobileNumber: "9000000001", Role: "admin"},
	}
	for _, in := range cases {
		if _, err := app.Session.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Register(%+v) error = %v, want ErrInvalidInput", in, err)
		}
	}
	if api.callCount() != 0 {
		t.Fatalf("validation failures issued %d network calls", api.callCount())
	}
}

func TestSessionService_RegisterServerErrorVerbatim(t *testing.T) {
	api := newStubAPI()
	api.registerFn = func(ports.RegisterInput) (*domain.User, error) {
		return nil, &domain.APIError{StatusCode: 400, Detail: "Mobile number already registered"}
	}
	app := newTestApp(api)

	_, err := app.Session.Register(context.Background(), ports.RegisterInput{
		Name: "Asha", MobileNumber: "9000000001", Role: "patient",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := domain.Reason(err); got != "Mobile number already registered" {
		t.Fatalf("reason = %q, want the server message verbatim", got)
	}
	if len(app.Cache.Users()) != 0 {
		t.Fatal("failed registration mutated the user cache")
	}
}

func TestSessionService_LoginFetchesUserReports(t *testing.T) {
	api := newStubAPI()
	api.users = []domain.User{{UserID: "u1", Name: "Asha", MobileNumber: "9000000001", Role: "patient"}}
	api.userReports["u1"] = []domain.Report{{ReportID: "r1", UserID: "u1", FileName: "cbc.pdf"}}
	app := newTestApp(api)

	user, err := app.Session.Login(context.Background(), "9000000001")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.UserID != "u1" {
		t.Fatalf("currentUser.UserID = %q, want u1", user.UserID)
	}
	if got := app.Session.CurrentUser(); got == nil || got.UserID != "u1" {
		t.Fatalf("CurrentUser = %+v", got)
	}
	if app.Nav.CurrentView() != ViewDashboard {
		t.Fatalf("view = %s, want dashboard", app.Nav.CurrentView())
	}
	if len(app.Cache.UserReports()) != 1 {
		t.Fatal("login did not trigger the user report fetch")
	}
	if api.calls["list_user_reports"] != 1 {
		t.Fatalf("list_user_reports called %d times, want 1", api.calls["list_user_reports"])
	}
}

func TestSessionService_LoginFailureLeavesStateUntouched(t *testing.T) {
	api := newStubAPI()
	app := newTestApp(api)

	_, err := app.Session.Login(context.Background(), "0000000000")
	if err == nil {
		t.Fatal("expected login failure")
	}
	if got := domain.Reason(err); got != "User not found" {
		t.Fatalf("reason = %q, want server detail", got)
	}
	if app.Session.LoggedIn() {
		t.Fatal("failed login set a current user")
	}
	if app.Nav.CurrentView() != ViewLogin {
		t.Fatal("failed login changed the view")
	}
}

func TestSessionService_LoginEmptyMobile(t *testing.T) {
	api := newStubAPI()
	app := newTestApp(api)

	if _, err := app.Session.Login(context.Background(), "   "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if api.callCount() != 0 {
		t.Fatal("empty mobile number issued a network call")
	}
}

func TestSessionService_LogoutClearsEverything(t *testing.T) {
	api := newStubAPI()
	api.users = []domain.User{{UserID: "u1", MobileNumber: "9000000001"}}
	api.userReports["u1"] = []domain.Report{{ReportID: "r1", UserID: "u1"}}
	app := newTestApp(api)

	if _, err := app.Session.Login(context.Background(), "9000000001"); err != nil {
		t.Fatalf("login: %v", err)
	}
	reports := app.Cache.UserReports()
	app.Nav.SelectReport(&reports[0])

	app.Session.Logout()

	if app.Session.LoggedIn() {
		t.Fatal("currentUser survived logout")
	}
	if len(app.Cache.UserReports()) != 0 {
		t.Fatal("userReports survived logout")
	}
	if app.Nav.SelectedReport() != nil {
		t.Fatal("selectedReport survived logout")
	}
	if app.Nav.CurrentView() != ViewLogin {
		t.Fatalf("view = %s, want login", app.Nav.CurrentView())
	}
}

func TestSessionService_LateResponseAfterLogoutDiscarded(t *testing.T) {
	api := newStubAPI()
	api.users = []domain.User{{UserID: "u1", MobileNumber: "9000000001"}}
	app := newTestApp(api)

	if _, err := app.Session.Login(context.Background(), "9000000001"); err != nil {
		t.Fatalf("login: %v", err)
	}
	staleTok := app.Session.CurrentToken()

	app.Session.Logout()

	// The refresh was issued under the old session and settles after logout.
	api.userReports["u1"] = []domain.Report{{ReportID: "r1", UserID: "u1"}}
	err := app.Cache.RefreshUserReports(context.Background(), staleTok, "u1")
	if !errors.Is(err, domain.ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}
	if len(app.Cache.UserReports()) != 0 {
		t.Fatal("late response resurrected cleared state")
	}
}

func TestSessionService_CompetingLoginDiscardsLateOne(t *testing.T) {
	api := newStubAPI()
	app := newTestApp(api)

	entered := make(chan struct{})
	release := make(chan struct{})
	api.loginFn = func(mobile string) (*domain.User, error) {
		if mobile == "slow" {
			close(entered)
			<-release
			return &domain.User{UserID: "u-slow", MobileNumber: mobile}, nil
		}
		return &domain.User{UserID: "u-fast", MobileNumber: mobile}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := app.Session.Login(context.Background(), "slow")
		done <- err
	}()
	<-entered

	if _, err := app.Session.Login(context.Background(), "fast"); err != nil {
		t.Fatalf("fast login: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, domain.ErrStaleResponse) {
		t.Fatalf("slow login error = %v, want ErrStaleResponse", err)
	}
	if got := app.Session.CurrentUser(); got == nil || got.UserID != "u-fast" {
		t.Fatalf("current user = %+v, want the fast login's identity", got)
	}
}
