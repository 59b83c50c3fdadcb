// Package client is a Go client for the mentoring record API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/pkg/normalize"
)

// ErrNotLoggedIn is returned by calls that need a token when none is stored
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx answer from the API
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the API with the stored bearer token
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenStore replaces the default in-memory token store
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.tokens = s }
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8000
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  &MemoryTokenStore{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StudentFilter narrows the mentor's student list
type StudentFilter struct {
	Name     string
	Semester string
	IsBan    *bool
}

// RecordQuery narrows and pages the admin record list
type RecordQuery struct {
	Search   string
	Semester string
	Mentor   string
	Page     int
	Size     int
}

// RecordPage is one page of admin records
type RecordPage struct {
	Items      []dto.RecordResponse `json:"items"`
	Pagination dto.PaginationInfo   `json:"pagination"`
}

// Login signs a mentor in and stores the token
func (c *Client) Login(ctx context.Context, email, password string) error {
	var tok dto.TokenResponse
	body := dto.LoginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/mentor/login", nil, body, &tok, false); err != nil {
		return err
	}
	if tok.AccessToken == "" {
		return errors.New("login response carried no token")
	}
	return c.tokens.Save(tok.AccessToken)
}

// SetToken stores a token obtained elsewhere, such as the browser sign-in
func (c *Client) SetToken(token string) error {
	return c.tokens.Save(strings.TrimSpace(token))
}

// Logout revokes the token on the server, then forgets it
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, nil, true); err != nil {
		return err
	}
	return c.tokens.Clear()
}

// Me fetches the caller's record, normalized to the fixed slot layout
func (c *Client) Me(ctx context.Context) (models.StudentRecord, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/student/me", nil, nil, &raw, true); err != nil {
		return models.StudentRecord{}, err
	}
	return normalize.RecordJSON(raw), nil
}

// Save stores rec as the caller's record
func (c *Client) Save(ctx context.Context, rec models.StudentRecord) error {
	req := dto.NewCombinedUpdateRequest(normalize.Value(rec))
	return c.doJSON(ctx, http.MethodPost, "/api/v1/student/personal_info", nil, req, nil, true)
}

// UploadPhoto replaces the caller's photo and returns its URL
func (c *Client) UploadPhoto(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/student/upload_photo", nil, &buf, true)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out dto.PhotoUploadResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.PhotoURL, nil
}

// Students lists the calling mentor's students
func (c *Client) Students(ctx context.Context, f StudentFilter) ([]dto.MentorStudentItem, error) {
	q := url.Values{}
	setIf(q, "name", f.Name)
	setIf(q, "semester", f.Semester)
	if f.IsBan != nil {
		q.Set("is_ban", strconv.FormatBool(*f.IsBan))
	}

	var items []dto.MentorStudentItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/mentor/students", q, nil, &items, true); err != nil {
		return nil, err
	}
	return items, nil
}

// AdminRecords lists one page of document store records
func (c *Client) AdminRecords(ctx context.Context, rq RecordQuery) (*RecordPage, error) {
	q := url.Values{}
	setIf(q, "search", rq.Search)
	setIf(q, "semester", rq.Semester)
	setIf(q, "mentor", rq.Mentor)
	if rq.Page > 0 {
		q.Set("page", strconv.Itoa(rq.Page))
	}
	if rq.Size > 0 {
		q.Set("size", strconv.Itoa(rq.Size))
	}

	var page RecordPage
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/admin/records", q, nil, &page, true); err != nil {
		return nil, err
	}
	return &page, nil
}

// Export streams the full record export to w
func (c *Client) Export(ctx context.Context, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/admin/export", nil, nil, true)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, query, body, authed)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, authed bool) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	if authed {
		token, err := c.tokens.Load()
		if err != nil {
			return nil, err
		}
		if token == "" {
			return nil, ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do sends req and unwraps the data envelope into out
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = env.Data
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var er dto.ErrorResponse
	if json.Unmarshal(b, &er) == nil && er.Error != nil {
		apiErr.Code = string(er.Error.Code)
		apiErr.Message = er.Error.Message
		if details, ok := er.Error.Details.(string); ok && details != "" {
			apiErr.Message += ": " + details
		}
	}
	return apiErr
}
