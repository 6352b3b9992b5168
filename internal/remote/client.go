// Package remote implements ports.ReportAPI against the MediSage HTTP
// service: JSON list endpoints, form-encoded login/registration, and a
// multipart report upload. Non-2xx responses carry a JSON body with a
// "detail" field that is surfaced verbatim; anything else becomes the
// generic request-failed reason.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/medisage/medisage-client/internal/core/domain"
	"github.com/medisage/medisage-client/internal/core/ports"
	"github.com/medisage/medisage-client/internal/metrics"
)

const defaultTimeout = 30 * time.Second

// Client is a thin request/response wrapper around the remote endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ ports.ReportAPI = (*Client)(nil)

// NewClient builds a Client for the given base URL. A non-positive timeout
// falls back to 30s.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// ListUsers fetches the full user collection.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.getJSON(ctx, "list_users", "/users/", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListAllReports fetches every report known to the server.
func (c *Client) ListAllReports(ctx context.Context) ([]domain.Report, error) {
	var reports []domain.Report
	if err := c.getJSON(ctx, "list_reports", "/reports/", &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// ListUserReports fetches the reports belonging to one user.
func (c *Client) ListUserReports(ctx context.Context, userID string) ([]domain.Report, error) {
	var reports []domain.Report
	path := "/user/" + url.PathEscape(userID) + "/reports/"
	if err := c.getJSON(ctx, "list_user_reports", path, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Login exchanges a mobile number for the matching user record.
func (c *Client) Login(ctx context.Context, mobileNumber string) (*domain.User, error) {
	form := url.Values{"mobile_number": {mobileNumber}}
	var user domain.User
	if err := c.postForm(ctx, "login", "/login/", form, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	form := url.Values{
		"name":          {in.Name},
		"mobile_number": {in.MobileNumber},
		"role":          {in.Role},
	}
	var user domain.User
	if err := c.postForm(ctx, "register", "/register-user/", form, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadReport submits a document as multipart form data and returns the
// server's extraction result.
func (c *Client) UploadReport(ctx context.Context, userID string, file ports.FileUpload) (*domain.Report, error) {
	const op = "upload_report"

	body := &strings.Builder{}
	// The whole file is buffered before sending; uploads are capped well
	// below anything that would make streaming worthwhile.
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", file.FileName)
	if err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return nil, fmt.Errorf("upload report: read file: %w", err)
	}
	if err := writer.WriteField("user_id", userID); err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-report/", strings.NewReader(body.String()))
	if err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var report domain.Report
	if err := c.do(op, req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.do(op, req, out)
}

func (c *Client) postForm(ctx context.Context, op, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(op, req, out)
}

// do executes the request, records metrics, and decodes either the success
// payload or the error envelope.
func (c *Client) do(op string, req *http.Request, out any) error {
	metrics.APIRequestsTotal.WithLabelValues(op).Inc()
	timer := time.Now()

	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(op).Observe(time.Since(timer).Seconds())
	if err != nil {
		metrics.APIRequestErrorsTotal.WithLabelValues(op, "transport").Inc()
		c.log.Warn().Err(err).Str("operation", op).Msg("request did not complete")
		return fmt.Errorf("%s: %w: %v", op, domain.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.APIRequestErrorsTotal.WithLabelValues(op, "status").Inc()
		return fmt.Errorf("%s: %w", op, decodeAPIError(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.APIRequestErrorsTotal.WithLabelValues(op, "decode").Inc()
		return fmt.Errorf("%s: %w: invalid response body", op, domain.ErrRequestFailed)
	}
	return nil
}

// decodeAPIError extracts the server's detail message. A body that cannot be
// parsed yields the generic request-failed error instead.
func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Detail string `json:"detail"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		if jsonErr := json.Unmarshal(raw, &envelope); jsonErr == nil && envelope.Detail != "" {
			return &domain.APIError{StatusCode: resp.StatusCode, Detail: envelope.Detail}
		}
	}
	return fmt.Errorf("%w: status %d", domain.ErrRequestFailed, resp.StatusCode)
}
