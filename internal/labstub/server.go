package labstub

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/medisage/medisage-client/internal/core/domain"
)

// detailResponse is the error envelope of the consumed API contract.
type detailResponse struct {
	Detail string `json:"detail"`
}

// stubValidator wraps go-playground/validator so echo can call c.Validate.
type stubValidator struct {
	v *validator.Validate
}

func (sv *stubValidator) Validate(i any) error {
	return sv.v.Struct(i)
}

// Server exposes the stub API over an echo instance.
type Server struct {
	store *MemStore
	guard UploadGuard
	log   zerolog.Logger
}

func NewServer(store *MemStore, guard UploadGuard, log zerolog.Logger) *Server {
	return &Server{store: store, guard: guard, log: log}
}

// Router builds the echo instance with all routes registered.
func (s *Server) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &stubValidator{v: validator.New()}
	e.HTTPErrorHandler = s.errorHandler

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("labstub"))

	e.GET("/", s.home)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.POST("/login/", s.login)
	e.POST("/register-user/", s.register)
	e.POST("/upload-report/", s.uploadReport)
	e.GET("/users/", s.listUsers)
	e.GET("/reports/", s.listReports)
	e.GET("/user/:user_id/reports/", s.listUserReports)

	return e
}

// errorHandler renders every error as the {"detail": ...} envelope with the
// status the real service uses for the same condition.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := "internal server error"

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		detail = fmt.Sprintf("%v", he.Message)
	case errors.Is(err, ErrUserNotFound):
		code, detail = http.StatusNotFound, err.Error()
	case errors.Is(err, ErrMobileRegistered),
		errors.Is(err, ErrInvalidFormat),
		errors.Is(err, ErrDuplicateReport),
		errors.Is(err, ErrNoTextExtracted):
		code, detail = http.StatusBadRequest, err.Error()
	default:
		s.log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}

	_ = c.JSON(code, detailResponse{Detail: detail})
}

func (s *Server) home(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "MediSage stub API is running"})
}

func (s *Server) login(c echo.Context) error {
	mobile := strings.TrimSpace(c.FormValue("mobile_number"))
	if mobile == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "mobile_number is required")
	}
	user, err := s.store.FindByMobile(mobile)
	if err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.UserID).Msg("login")
	return c.JSON(http.StatusOK, user)
}

type registerForm struct {
	Name         string `form:"name" validate:"required"`
	MobileNumber string `form:"mobile_number" validate:"required"`
	Role         string `form:"role" validate:"required,oneof=patient doctor"`
}

func (s *Server) register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "name, mobile_number, and role (patient or doctor) are required")
	}

	user, err := s.store.CreateUser(form.Name, strings.TrimSpace(form.MobileNumber), form.Role)
	if err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.UserID).Str("role", user.Role).Msg("user registered")
	return c.JSON(http.StatusOK, user)
}

func (s *Server) uploadReport(c echo.Context) error {
	userID := c.FormValue("user_id")
	if userID == "" || !s.store.UserExists(userID) {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	ext := strings.ToLower(strings.TrimPrefix(lastExt(fileHeader.Filename), "."))
	switch ext {
	case "pdf", "png", "jpg", "jpeg":
	default:
		return ErrInvalidFormat
	}

	ctx := c.Request().Context()
	dup, err := s.guard.IsDuplicate(ctx, userID, fileHeader.Filename)
	if err != nil {
		s.log.Warn().Err(err).Msg("duplicate check failed, processing anyway")
	} else if dup {
		return ErrDuplicateReport
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	text, err := ExtractText(fileHeader.Filename, data)
	if err != nil {
		return ErrNoTextExtracted
	}
	if ext == "pdf" && strings.TrimSpace(text) == "" {
		return ErrNoTextExtracted
	}

	report := domain.Report{
		ReportID:             uuid.NewString(),
		UserID:               userID,
		FileName:             fileHeader.Filename,
		UploadTime:           time.Now().UTC(),
		LabResults:           ParseLabValues(text),
		ExtractedTextPreview: preview(text),
	}
	s.store.AddReport(report)

	if err := s.guard.Mark(ctx, userID, fileHeader.Filename); err != nil {
		s.log.Warn().Err(err).Msg("failed to mark upload")
	}

	s.log.Info().
		Str("report_id", report.ReportID).
		Str("user_id", userID).
		Int("lab_values", len(report.LabResults)).
		Msg("report analyzed")
	return c.JSON(http.StatusOK, report)
}

func (s *Server) listUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Users())
}

func (s *Server) listReports(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.AllReports())
}

func (s *Server) listUserReports(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.UserReports(c.Param("user_id")))
}

func lastExt(fileName string) string {
	idx := strings.LastIndexByte(fileName, '.')
	if idx < 0 {
		return ""
	}
	return fileName[idx:]
}
