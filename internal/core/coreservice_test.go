package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jo-hoe/muralfolio/internal/backend/commandstructure"
	"github.com/jo-hoe/muralfolio/internal/backend/database"
	"github.com/jo-hoe/muralfolio/internal/backend/email"
	"github.com/jo-hoe/muralfolio/internal/backend/storage"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []email.Message
	err      error
}

func (s *recordingSender) Send(_ context.Context, message email.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.messages = append(s.messages, message)
	return "id", nil
}

func (s *recordingSender) subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	subjects := make([]string, 0, len(s.messages))
	for _, message := range s.messages {
		subjects = append(subjects, message.Subject)
	}
	return subjects
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("bucket unavailable")
}

type failingContactDB struct {
	database.DatabaseService
}

func (failingContactDB) CreateContactMessage(context.Context, *database.ContactMessage) (*database.ContactMessage, error) {
	return nil, errors.New("db down")
}

type testEnv struct {
	service  *CoreService
	db       database.DatabaseService
	sender   *recordingSender
	mediaDir string
}

func testConfig() *ServiceConfig {
	return &ServiceConfig{
		Port:     8080,
		Database: Database{Type: "sqlite", ConnectionString: ":memory:"},
		Email:    Email{Type: "log", From: "site@example.com", ContactTo: "inbox@example.com", Site: "example.com"},
		Media:    Media{MaxUploadBytes: 1 << 20, ThumbnailWidth: 8},
	}
}

func newTestEnv(t *testing.T, config *ServiceConfig) *testEnv {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), database.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mediaDir := t.TempDir()
	store, err := storage.NewLocalStore(mediaDir, "/media")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	sender := &recordingSender{}

	service, err := NewCoreService(config, db, store, sender)
	if err != nil {
		t.Fatalf("NewCoreService() error = %v", err)
	}
	service.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return &testEnv{service: service, db: db, sender: sender, mediaDir: mediaDir}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255}) // #nosec G115 -- small test image
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func validSubmission() SubmissionInput {
	return SubmissionInput{
		Type:          "spring",
		OrgName:       "Aquatic Center",
		ContactName:   "Bo",
		Email:         "bo@example.com",
		Location:      "Corpus Christi",
		AboutOrg:      "Community pool",
		WhyMural:      "Brighten the entrance",
		WallDetails:   "Brick, 10x20ft",
		AuthCheckbox:  "true",
		AgreeCheckbox: "true",
	}
}

func TestCreateAndListMurals(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()
	inactive := false
	year := 2024

	if _, err := env.service.CreateMural(ctx, MuralInput{Title: "Aquatic Center", Latitude: 27.7, Longitude: -97.3, Year: &year}); err != nil {
		t.Fatalf("CreateMural() error = %v", err)
	}
	if _, err := env.service.CreateMural(ctx, MuralInput{Title: "Hidden", Latitude: 27.6, Longitude: -97.2, IsActive: &inactive}); err != nil {
		t.Fatalf("CreateMural() error = %v", err)
	}

	active, err := env.service.ListMurals(ctx, true)
	if err != nil {
		t.Fatalf("ListMurals() error = %v", err)
	}
	if len(active) != 1 || active[0].Title != "Aquatic Center" || !active[0].IsActive || *active[0].Year != 2024 {
		t.Fatalf("unexpected active murals: %+v", active)
	}

	all, _ := env.service.ListMurals(ctx, false)
	if len(all) != 2 || all[0].Title != "Hidden" {
		t.Fatalf("expected both murals newest first, got %d", len(all))
	}
}

func TestCreateMural_Validation(t *testing.T) {
	env := newTestEnv(t, testConfig())
	zeroYear := 0

	for _, input := range []MuralInput{
		{Latitude: 1, Longitude: 1},
		{Title: "x", Longitude: 1},
		{Title: "x", Latitude: 1},
	} {
		_, err := env.service.CreateMural(context.Background(), input)
		var validation *ValidationError
		if !errors.As(err, &validation) || validation.Error() != "Missing required fields." {
			t.Fatalf("CreateMural(%+v) error = %v", input, err)
		}
	}

	mural, err := env.service.CreateMural(context.Background(), MuralInput{Title: "x", Latitude: 1, Longitude: 1, Year: &zeroYear})
	if err != nil {
		t.Fatalf("CreateMural() error = %v", err)
	}
	if mural.Year != nil {
		t.Fatal("year 0 should be stored as null")
	}
}

func TestSubmitApplication(t *testing.T) {
	env := newTestEnv(t, testConfig())
	input := validSubmission()
	input.Files = []Upload{
		{Filename: "wall one.png", ContentType: "image/png", Data: pngBytes(t, 32, 16)},
		{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hello")},
	}

	submission, err := env.service.SubmitApplication(context.Background(), input)
	if err != nil {
		t.Fatalf("SubmitApplication() error = %v", err)
	}
	if submission.ID == "" || submission.Type != "spring" {
		t.Fatalf("unexpected submission: %+v", submission)
	}

	want := []string{
		"/media/submissions/murals/1700000000000-0-wall_one.png",
		"/media/submissions/murals/1700000000000-1-notes.txt",
	}
	if len(submission.Media) != 2 || submission.Media[0] != want[0] || submission.Media[1] != want[1] {
		t.Fatalf("Media = %v, want %v", submission.Media, want)
	}
	if _, err := os.Stat(filepath.Join(env.mediaDir, "submissions", "murals", "1700000000000-1-notes.txt")); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.mediaDir, "submissions", "murals", "thumbs", "1700000000000-0-wall_one.png")); err != nil {
		t.Fatalf("thumbnail missing: %v", err)
	}

	subjects := env.sender.subjects()
	if len(subjects) != 2 || subjects[0] != "New Mural Application: Aquatic Center" {
		t.Fatalf("unexpected emails: %v", subjects)
	}
}

func TestSubmitApplication_ValidationOrder(t *testing.T) {
	env := newTestEnv(t, testConfig())

	input := validSubmission()
	input.AuthCheckbox = ""
	_, err := env.service.SubmitApplication(context.Background(), input)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Error() != "You must confirm you are authorized to submit" {
		t.Fatalf("unexpected message: %q", validation.Error())
	}

	_, err = env.service.SubmitApplication(context.Background(), SubmissionInput{Email: "  "})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	wantOrder := "Organization name is required; Contact name is required; Email is required; " +
		"Location is required; Organization description is required; Why you want a mural is required; " +
		"Wall/surface details are required; Invalid email format; " +
		"You must confirm you are authorized to submit; You must agree to the terms"
	if validation.Error() != wantOrder {
		t.Fatalf("messages =\n%s\nwant\n%s", validation.Error(), wantOrder)
	}
}

func TestSubmitApplication_StorageFailure(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.service.mediaStore = failingStore{}

	input := validSubmission()
	input.Files = []Upload{{Filename: "a.png", Data: []byte("x")}}
	if _, err := env.service.SubmitApplication(context.Background(), input); err == nil {
		t.Fatal("expected storage failure")
	}
	if len(env.sender.subjects()) != 0 {
		t.Fatal("no emails should be sent when the submission fails")
	}
}

func TestSubmitApplication_EmailFailureIsBestEffort(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.sender.err = errors.New("provider down")

	if _, err := env.service.SubmitApplication(context.Background(), validSubmission()); err != nil {
		t.Fatalf("email failures must not fail the submission: %v", err)
	}
}

func TestSubmitApplication_TooLarge(t *testing.T) {
	config := testConfig()
	config.Media.MaxUploadBytes = 4
	env := newTestEnv(t, config)

	input := validSubmission()
	input.Files = []Upload{{Filename: "big.jpg", Data: []byte("12345")}}
	_, err := env.service.SubmitApplication(context.Background(), input)
	var validation *ValidationError
	if !errors.Is(err, ErrMediaTooLarge) || !errors.As(err, &validation) {
		t.Fatalf("expected ErrMediaTooLarge validation error, got %v", err)
	}
}

func TestSendContact(t *testing.T) {
	env := newTestEnv(t, testConfig())

	err := env.service.SendContact(context.Background(), ContactInput{
		Name: "Ana", Email: "ana@example.com", ProjectType: "Commission", Message: "Hello",
	})
	if err != nil {
		t.Fatalf("SendContact() error = %v", err)
	}
	subjects := env.sender.subjects()
	if len(subjects) != 1 || subjects[0] != "Portfolio Inquiry: Commission - Ana" {
		t.Fatalf("unexpected emails: %v", subjects)
	}
}

func TestSendContact_Rejections(t *testing.T) {
	env := newTestEnv(t, testConfig())

	tests := []struct {
		name  string
		input ContactInput
		want  string
	}{
		{"missing", ContactInput{Name: "Ana", Email: "ana@example.com", ProjectType: "x"}, "All fields are required"},
		{"email", ContactInput{Name: "Ana", Email: "ana@", ProjectType: "x", Message: "hi"}, "Invalid email address"},
		{"spam", ContactInput{Name: "Ana", Email: "ana@example.com", ProjectType: "x", Message: "Win the LOTTERY now"}, ErrSpam.Error()},
		{"spam with invalid email", ContactInput{Name: "Ana", Email: "ana@", ProjectType: "x", Message: "lottery"}, ErrSpam.Error()},
		{"spam without name", ContactInput{Email: "ana@example.com", ProjectType: "x", Message: "lottery"}, ErrSpam.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.service.SendContact(context.Background(), tt.input)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("SendContact() error = %v, want %q", err, tt.want)
			}
		})
	}
	if len(env.sender.subjects()) != 0 {
		t.Fatal("rejected messages must not be sent")
	}
}

func TestSendContact_DeliveryAndStorageFailures(t *testing.T) {
	env := newTestEnv(t, testConfig())
	input := ContactInput{Name: "Ana", Email: "ana@example.com", ProjectType: "x", Message: "hi"}

	env.sender.err = errors.New("provider down")
	if err := env.service.SendContact(context.Background(), input); !errors.Is(err, ErrEmailDelivery) {
		t.Fatalf("expected ErrEmailDelivery, got %v", err)
	}

	env.sender.err = nil
	env.service.databaseService = failingContactDB{env.db}
	if err := env.service.SendContact(context.Background(), input); err != nil {
		t.Fatalf("storage failure after send must be ignored, got %v", err)
	}
}

func TestUploadMuralMedia(t *testing.T) {
	config := testConfig()
	config.Media.Commands = []commandstructure.CommandConfig{
		{Name: "NormalizeCommand", Params: map[string]any{"format": "jpeg"}},
		{Name: "ResizeCommand", Params: map[string]any{"maxWidth": 16}},
	}
	env := newTestEnv(t, config)

	urls, err := env.service.UploadMuralMedia(context.Background(), []Upload{
		{Filename: "wall.png", ContentType: "image/png", Data: pngBytes(t, 64, 32)},
		{Filename: "tour.mp4", ContentType: "video/mp4", Data: []byte("not really a video")},
		{Filename: "broken.png", ContentType: "image/png", Data: []byte("corrupt")},
	})
	if err != nil {
		t.Fatalf("UploadMuralMedia() error = %v", err)
	}

	want := []string{
		"/media/murals/1700000000000-0-wall.jpg",
		"/media/murals/1700000000000-1-tour.mp4",
		"/media/murals/1700000000000-2-broken.png",
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("urls[%d] = %s, want %s", i, urls[i], want[i])
		}
	}

	data, err := os.ReadFile(filepath.Join(env.mediaDir, "murals", "1700000000000-0-wall.jpg"))
	if err != nil {
		t.Fatalf("optimised file missing: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil || format != "jpeg" || img.Bounds().Dx() != 16 {
		t.Fatalf("unexpected optimised image: %v %s", err, format)
	}

	if _, err := env.service.UploadMuralMedia(context.Background(), nil); err == nil {
		t.Fatal("expected error without files")
	}
}

func TestUploadMuralMedia_SameNamesKeepBothFiles(t *testing.T) {
	config := testConfig()
	config.Media.Commands = []commandstructure.CommandConfig{
		{Name: "NormalizeCommand", Params: map[string]any{"format": "jpeg"}},
	}
	env := newTestEnv(t, config)

	urls, err := env.service.UploadMuralMedia(context.Background(), []Upload{
		{Filename: "wall.mp4", ContentType: "video/mp4", Data: []byte("first cut")},
		{Filename: "wall.mp4", ContentType: "video/mp4", Data: []byte("second cut")},
		{Filename: "a.png", ContentType: "image/png", Data: pngBytes(t, 4, 4)},
		{Filename: "a.jpg", ContentType: "image/png", Data: pngBytes(t, 4, 4)},
	})
	if err != nil {
		t.Fatalf("UploadMuralMedia() error = %v", err)
	}

	seen := make(map[string]bool)
	for _, url := range urls {
		if seen[url] {
			t.Fatalf("duplicate url %s in %v", url, urls)
		}
		seen[url] = true
	}

	for i, want := range []string{"first cut", "second cut"} {
		data, err := os.ReadFile(filepath.Join(env.mediaDir, "murals", fmt.Sprintf("1700000000000-%d-wall.mp4", i)))
		if err != nil {
			t.Fatalf("file %d missing: %v", i, err)
		}
		if string(data) != want {
			t.Fatalf("file %d = %q, want %q", i, data, want)
		}
	}
}

func TestWithExtension(t *testing.T) {
	tests := map[string]string{
		"wall.png|image/jpeg":  "wall.jpg",
		"wall.jpeg|image/jpeg": "wall.jpeg",
		"wall|image/png":       "wall.png",
		"wall.gif|text/plain":  "wall.gif",
	}
	for in, want := range tests {
		parts := strings.SplitN(in, "|", 2)
		if got := withExtension(parts[0], parts[1]); got != want {
			t.Errorf("withExtension(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestNewCoreService_InvalidPipeline(t *testing.T) {
	config := testConfig()
	config.Media.Commands = []commandstructure.CommandConfig{{Name: "Unknown"}}
	if _, err := NewCoreService(config, nil, nil, nil); err == nil {
		t.Fatal("expected pipeline error")
	}
}
