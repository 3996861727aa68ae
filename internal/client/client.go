// Package client talks to the muralfolio JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/jo-hoe/muralfolio/internal/mapview"
)

const defaultTimeout = 30 * time.Second

type Mural struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Media       []string  `json:"media"`
	Year        *int      `json:"year"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m Mural) Record() mapview.Record {
	return mapview.Record{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		Media:       m.Media,
		Year:        m.Year,
	}
}

type NewMural struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Media       []string `json:"media"`
	Year        *int     `json:"year,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type Contact struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	ProjectType string `json:"projectType"`
	Message     string `json:"message"`
}

type File struct {
	Name string
	Data []byte
}

// APIError carries the status and the "error" field of a failed response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithToken sets the bearer token sent to admin endpoints.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) ListMurals(ctx context.Context) ([]Mural, error) {
	var murals []Mural
	if err := c.do(ctx, http.MethodGet, "/api/murals", "", nil, false, &murals); err != nil {
		return nil, fmt.Errorf("failed to list murals: %w", err)
	}
	return murals, nil
}

// FetchMurals loads the active murals as map records.
func (c *Client) FetchMurals(ctx context.Context) ([]mapview.Record, error) {
	murals, err := c.ListMurals(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]mapview.Record, 0, len(murals))
	for _, mural := range murals {
		records = append(records, mural.Record())
	}
	return records, nil
}

// AdminListMurals returns every mural including inactive ones.
func (c *Client) AdminListMurals(ctx context.Context) ([]Mural, error) {
	var murals []Mural
	if err := c.do(ctx, http.MethodGet, "/api/admin/murals", "", nil, true, &murals); err != nil {
		return nil, fmt.Errorf("failed to list murals: %w", err)
	}
	return murals, nil
}

func (c *Client) CreateMural(ctx context.Context, mural NewMural) error {
	body, err := json.Marshal(mural)
	if err != nil {
		return fmt.Errorf("failed to encode mural: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/add-mural", "application/json", bytes.NewReader(body), true, nil); err != nil {
		return fmt.Errorf("failed to create mural: %w", err)
	}
	return nil
}

// UploadMedia stores files for a mural and returns their public URLs.
func (c *Client) UploadMedia(ctx context.Context, files []File) ([]string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, fmt.Errorf("failed to write form file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var response struct {
		URLs []string `json:"urls"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/media", writer.FormDataContentType(), &buf, true, &response); err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}
	return response.URLs, nil
}

func (c *Client) SendContact(ctx context.Context, contact Contact) error {
	body, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("failed to encode contact: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, "/api/contact", "application/json", bytes.NewReader(body), false, nil); err != nil {
		return fmt.Errorf("failed to send contact message: %w", err)
	}
	return nil
}

// Post sends a prepared multipart application to the submission endpoint.
// The caller owns the response.
func (c *Client) Post(ctx context.Context, contentType string, body io.Reader) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/mural-submission", contentType, body, false)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path, contentType string, body io.Reader, admin bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if admin && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, admin bool, out any) error {
	req, err := c.newRequest(ctx, method, path, contentType, body, admin)
	if err != nil {
		return err
	}
	response, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := response.Body.Close(); cerr != nil {
			slog.Error("client: failed to close response body", "error", cerr)
		}
	}()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(response.Body).Decode(&payload)
		return &APIError{Status: response.StatusCode, Message: payload.Error}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
