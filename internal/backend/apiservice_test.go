package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jo-hoe/muralfolio/internal/backend/auth"
	"github.com/jo-hoe/muralfolio/internal/backend/database"
	"github.com/jo-hoe/muralfolio/internal/backend/email"
	"github.com/jo-hoe/muralfolio/internal/backend/ratelimit"
	"github.com/jo-hoe/muralfolio/internal/backend/storage"
	"github.com/jo-hoe/muralfolio/internal/common"
	"github.com/jo-hoe/muralfolio/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubSender struct {
	sent int
	err  error
}

func (s *stubSender) Send(context.Context, email.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent++
	return "id", nil
}

type testServer struct {
	echo     *echo.Echo
	sender   *stubSender
	verifier *auth.Verifier
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *testServer {
	t.Helper()
	config := &core.ServiceConfig{
		Port:  8080,
		Email: core.Email{From: "site@example.com", ContactTo: "inbox@example.com"},
		Media: core.Media{MaxUploadBytes: 1 << 20},
	}

	db, err := database.NewDatabase(context.Background(), database.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store, err := storage.NewLocalStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	sender := &stubSender{}

	coreService, err := core.NewCoreService(config, db, store, sender)
	if err != nil {
		t.Fatalf("NewCoreService() error = %v", err)
	}

	e := echo.New()
	e.Validator = common.NewEchoValidator()
	verifier := auth.NewVerifier(testSecret, "", "admin")
	NewAPIService(coreService, limiter, verifier).SetRoutes(e)
	return &testServer{echo: e, sender: sender, verifier: verifier}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	token, err := s.verifier.Issue("admin-1", "admin", time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + token
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".txt")
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func validSubmissionFields() map[string]string {
	return map[string]string{
		"orgName":        "Aquatic Center",
		"contactName":    "Bo",
		"email":          "bo@example.com",
		"location":       "Corpus Christi",
		"aboutOrg":       "Community pool",
		"whyMural":       "Brighten the entrance",
		"wallDetails":    "Brick",
		"authCheckbox":   "true",
		"agreeCheckbox":  "true",
		"submissionType": "spring",
	}
}

func TestProbe(t *testing.T) {
	server := newTestServer(t, nil)
	rec := server.do(t, httptest.NewRequest(http.MethodGet, "/probe", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("probe status = %d", rec.Code)
	}
}

func TestCreateMuralAndList(t *testing.T) {
	server := newTestServer(t, nil)

	req := jsonRequest(http.MethodPost, "/api/admin/murals",
		`{"title":"Aquatic Center","description":"Sea life","latitude":27.7,"longitude":-97.3,"media":["/images/a.webp"],"year":2024}`)
	req.Header.Set(echo.HeaderAuthorization, server.adminToken(t))
	rec := server.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["success"] != true {
		t.Fatalf("unexpected body: %v", body)
	}

	rec = server.do(t, httptest.NewRequest(http.MethodGet, "/api/murals", nil))
	var murals []MuralResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &murals); err != nil {
		t.Fatalf("failed to decode murals: %v", err)
	}
	if len(murals) != 1 || murals[0].Title != "Aquatic Center" || !murals[0].IsActive || murals[0].Media[0] != "/images/a.webp" {
		t.Fatalf("unexpected murals: %+v", murals)
	}

	rec = server.do(t, httptest.NewRequest(http.MethodGet, "/murals.json", nil))
	var wrapped struct {
		Murals []MuralResponse `json:"murals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &wrapped); err != nil || len(wrapped.Murals) != 1 {
		t.Fatalf("unexpected murals.json: %s", rec.Body.String())
	}
}

func TestCreateMural_InactiveOnlyInAdminList(t *testing.T) {
	server := newTestServer(t, nil)
	token := server.adminToken(t)

	req := jsonRequest(http.MethodPost, "/api/admin/add-mural", `{"title":"Old","latitude":1,"longitude":2,"is_active":false}`)
	req.Header.Set(echo.HeaderAuthorization, token)
	if rec := server.do(t, req); rec.Code != http.StatusOK {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec := server.do(t, httptest.NewRequest(http.MethodGet, "/api/murals", nil))
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("inactive mural should be hidden, got %s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/murals", nil)
	req.Header.Set(echo.HeaderAuthorization, token)
	rec = server.do(t, req)
	var murals []MuralResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &murals)
	if len(murals) != 1 || murals[0].IsActive {
		t.Fatalf("admin list should include inactive mural, got %s", rec.Body.String())
	}
}

func TestCreateMural_Errors(t *testing.T) {
	server := newTestServer(t, nil)

	rec := server.do(t, jsonRequest(http.MethodPost, "/api/admin/murals", `{"title":"x","latitude":1,"longitude":2}`))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d", rec.Code)
	}

	req := jsonRequest(http.MethodPost, "/api/admin/murals", `{"title":"x","latitude":1}`)
	req.Header.Set(echo.HeaderAuthorization, server.adminToken(t))
	rec = server.do(t, req)
	if rec.Code != http.StatusBadRequest || decodeBody(t, rec)["error"] != "Missing required fields." {
		t.Fatalf("missing field status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestSubmission_SkipsEmptyMediaSlots(t *testing.T) {
	server := newTestServer(t, nil)
	fields := validSubmissionFields()
	fields["mediaCount"] = "3"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		_ = writer.WriteField(key, value)
	}
	part, _ := writer.CreateFormFile("media_1", "wall.txt")
	_, _ = part.Write([]byte("wall"))
	// an untouched file input arrives without a filename
	empty, _ := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="media_2"; filename=""`},
		"Content-Type":        {"application/octet-stream"},
	})
	_, _ = empty.Write(nil)
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/mural-submission", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := server.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestSubmission_Success(t *testing.T) {
	server := newTestServer(t, nil)
	fields := validSubmissionFields()
	fields["mediaCount"] = "2"

	rec := server.do(t, multipartRequest(t, "/api/mural-submission", fields, map[string]string{
		"media_0": "first",
		"media_1": "second",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["message"] != "Application received successfully" || body["submissionId"] == "" {
		t.Fatalf("unexpected body: %v", body)
	}
	if server.sender.sent != 2 {
		t.Fatalf("expected admin and applicant emails, got %d", server.sender.sent)
	}
}

func TestSubmission_MissingAuthorization(t *testing.T) {
	server := newTestServer(t, nil)
	fields := validSubmissionFields()
	delete(fields, "authCheckbox")

	rec := server.do(t, multipartRequest(t, "/api/mural-submission", fields, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	message, _ := decodeBody(t, rec)["error"].(string)
	if !strings.Contains(message, "You must confirm you are authorized to submit") {
		t.Fatalf("unexpected error: %q", message)
	}
}

func TestSubmission_JoinedErrors(t *testing.T) {
	server := newTestServer(t, nil)
	rec := server.do(t, multipartRequest(t, "/api/mural-submission", map[string]string{"email": "nope"}, nil))

	message, _ := decodeBody(t, rec)["error"].(string)
	if rec.Code != http.StatusBadRequest || !strings.Contains(message, "Location is required; ") || !strings.Contains(message, "Invalid email format") {
		t.Fatalf("status = %d error = %q", rec.Code, message)
	}
}

func TestSubmission_NotMultipart(t *testing.T) {
	server := newTestServer(t, nil)
	rec := server.do(t, jsonRequest(http.MethodPost, "/api/mural-submission", `{}`))
	if rec.Code != http.StatusInternalServerError || decodeBody(t, rec)["error"] != "Failed to process submission. Please try again." {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestContact(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		senderErr error
		status    int
		message   string
	}{
		{"success", `{"name":"Ana","email":"ana@example.com","projectType":"Commission","message":"Hi"}`, nil, http.StatusOK, ""},
		{"missing", `{"name":"Ana","email":"ana@example.com","projectType":"Commission"}`, nil, http.StatusBadRequest, "All fields are required"},
		{"invalid email", `{"name":"Ana","email":"ana","projectType":"x","message":"Hi"}`, nil, http.StatusBadRequest, "Invalid email address"},
		{"spam", `{"name":"Ana","email":"ana@example.com","projectType":"x","message":"Free lottery tickets"}`, nil, http.StatusBadRequest, "Message flagged as spam"},
		{"spam with invalid email", `{"name":"","email":"nope","projectType":"x","message":"lottery"}`, nil, http.StatusBadRequest, "Message flagged as spam"},
		{"send failure", `{"name":"Ana","email":"ana@example.com","projectType":"x","message":"Hi"}`, errors.New("down"), http.StatusInternalServerError, "Failed to send email"},
		{"bad json", `{`, nil, http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, nil)
			server.sender.err = tt.senderErr

			rec := server.do(t, jsonRequest(http.MethodPost, "/api/contact", tt.body))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			body := decodeBody(t, rec)
			if tt.message != "" && body["error"] != tt.message {
				t.Fatalf("error = %v, want %q", body["error"], tt.message)
			}
			if tt.status == http.StatusOK && body["message"] != "Form submitted successfully" {
				t.Fatalf("unexpected success body: %v", body)
			}
		})
	}
}

func TestUploadMedia(t *testing.T) {
	server := newTestServer(t, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("files", "tour.mp4")
	_, _ = part.Write([]byte("video"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, server.adminToken(t))
	rec := server.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	urls, _ := decodeBody(t, rec)["urls"].([]any)
	if len(urls) != 1 || !strings.HasSuffix(urls[0].(string), "-tour.mp4") {
		t.Fatalf("unexpected urls: %v", urls)
	}

	req = multipartRequest(t, "/api/admin/media", map[string]string{"x": "y"}, nil)
	req.Header.Set(echo.HeaderAuthorization, server.adminToken(t))
	if rec := server.do(t, req); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty upload status = %d", rec.Code)
	}
}

func TestPublicFormsAreRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	server := newTestServer(t, ratelimit.NewLimiter(client, 1, time.Minute))

	body := `{"name":"Ana","email":"ana@example.com","projectType":"x","message":"Hi"}`
	if rec := server.do(t, jsonRequest(http.MethodPost, "/api/contact", body)); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec := server.do(t, jsonRequest(http.MethodPost, "/api/contact", body))
	if rec.Code != http.StatusTooManyRequests || decodeBody(t, rec)["error"] != "Too many requests" {
		t.Fatalf("second request status = %d", rec.Code)
	}
}
