package backend

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/jo-hoe/muralfolio/internal/backend/auth"
	"github.com/jo-hoe/muralfolio/internal/backend/database"
	"github.com/jo-hoe/muralfolio/internal/backend/ratelimit"
	"github.com/jo-hoe/muralfolio/internal/common"
	"github.com/jo-hoe/muralfolio/internal/core"

	"github.com/labstack/echo/v4"
)

const (
	msgMissingMuralFields = "Missing required fields."
	msgAddMuralFailed     = "Failed to add mural."
	msgServerError        = "Server error."
	msgSubmissionFailed   = "Failed to process submission. Please try again."
	msgSpam               = "Message flagged as spam"
	msgSendFailed         = "Failed to send email"
	msgInternalError      = "Internal server error"
	msgUploadFailed       = "Failed to upload media."
	msgListFailed         = "Failed to load murals."
)

type APIService struct {
	coreService *core.CoreService
	limiter     *ratelimit.Limiter
	verifier    *auth.Verifier
}

// NewAPIService wires the JSON API. A nil limiter disables rate limiting.
func NewAPIService(coreService *core.CoreService, limiter *ratelimit.Limiter, verifier *auth.Verifier) *APIService {
	return &APIService{
		coreService: coreService,
		limiter:     limiter,
		verifier:    verifier,
	}
}

// MuralResponse is the wire shape of a mural record.
type MuralResponse struct {
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

type createMuralRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude" validate:"required"`
	Longitude   float64  `json:"longitude" validate:"required"`
	Media       []string `json:"media"`
	Year        *int     `json:"year"`
	IsActive    *bool    `json:"is_active"`
}

func toMuralResponses(murals []*database.Mural) []MuralResponse {
	out := make([]MuralResponse, 0, len(murals))
	for _, m := range murals {
		media := m.Media
		if media == nil {
			media = []string{}
		}
		out = append(out, MuralResponse{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Latitude:    m.Latitude,
			Longitude:   m.Longitude,
			Media:       media,
			Year:        m.Year,
			IsActive:    m.IsActive,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out
}

func errorJSON(ctx echo.Context, status int, message string) error {
	return ctx.JSON(status, map[string]string{"error": message})
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	e.GET("/probe", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/api/murals", s.listMuralsHandler)
	e.GET("/murals.json", s.muralsJSONHandler)

	public := []echo.MiddlewareFunc{}
	if s.limiter != nil {
		public = append(public, s.limiter.Middleware("forms"))
	}
	e.POST("/api/mural-submission", s.submissionHandler, public...)
	e.POST("/api/contact", s.contactHandler, public...)

	admin := e.Group("/api/admin", s.verifier.Middleware())
	admin.GET("/murals", s.adminListMuralsHandler)
	admin.POST("/murals", s.createMuralHandler)
	admin.POST("/add-mural", s.createMuralHandler)
	admin.POST("/media", s.uploadMediaHandler)
}

func (s *APIService) listMuralsHandler(ctx echo.Context) error {
	murals, err := s.coreService.ListMurals(ctx.Request().Context(), true)
	if err != nil {
		slog.Error("listMuralsHandler: failed to list murals", "status", http.StatusInternalServerError, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, msgListFailed)
	}
	return ctx.JSON(http.StatusOK, toMuralResponses(murals))
}

func (s *APIService) muralsJSONHandler(ctx echo.Context) error {
	murals, err := s.coreService.ListMurals(ctx.Request().Context(), true)
	if err != nil {
		slog.Error("muralsJSONHandler: failed to list murals", "status", http.StatusInternalServerError, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, msgListFailed)
	}
	return ctx.JSON(http.StatusOK, map[string][]MuralResponse{"murals": toMuralResponses(murals)})
}

func (s *APIService) adminListMuralsHandler(ctx echo.Context) error {
	murals, err := s.coreService.ListMurals(ctx.Request().Context(), false)
	if err != nil {
		slog.Error("adminListMuralsHandler: failed to list murals", "status", http.StatusInternalServerError, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, msgListFailed)
	}
	return ctx.JSON(http.StatusOK, toMuralResponses(murals))
}

func (s *APIService) createMuralHandler(ctx echo.Context) error {
	var request createMuralRequest
	if err := ctx.Bind(&request); err != nil {
		slog.Error("createMuralHandler: failed to bind request", "status", http.StatusInternalServerError, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, msgServerError)
	}
	if err := ctx.Validate(&request); err != nil {
		slog.Info("createMuralHandler: missing fields", "status", http.StatusBadRequest, "fields", common.InvalidFields(err))
		return errorJSON(ctx, http.StatusBadRequest, msgMissingMuralFields)
	}

	mural, err := s.coreService.CreateMural(ctx.Request().Context(), core.MuralInput{
		Title:       request.Title,
		Description: request.Description,
		Latitude:    request.Latitude,
		Longitude:   request.Longitude,
		Media:       request.Media,
		Year:        request.Year,
		IsActive:    request.IsActive,
	})
	var validation *core.ValidationError
	switch {
	case errors.As(err, &validation):
		return errorJSON(ctx, http.StatusBadRequest, validation.Error())
	case err != nil:
		slog.Error("createMuralHandler: failed to add mural", "status", http.StatusInternalServerError, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, msgAddMuralFailed)
	}

	slog.Info("createMuralHandler: mural added", "id", mural.ID, "subject", auth.Subject(ctx))
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (s *APIService) submissionHandler(ctx echo.Context) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		slog.Error("submissionHandler: failed to parse form", "status", http.StatusInternalServerError, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, msgSubmissionFailed)
	}

	input := core.SubmissionInput{
		Type:          ctx.FormValue("submissionType"),
		OrgName:       ctx.FormValue("orgName"),
		ContactName:   ctx.FormValue("contactName"),
		Email:         ctx.FormValue("email"),
		Phone:         ctx.FormValue("phone"),
		Location:      ctx.FormValue("location"),
		AboutOrg:      ctx.FormValue("aboutOrg"),
		WhyMural:      ctx.FormValue("whyMural"),
		WallDetails:   ctx.FormValue("wallDetails"),
		Timeline:      ctx.FormValue("timeline"),
		OtherNotes:    ctx.FormValue("otherNotes"),
		AuthCheckbox:  ctx.FormValue("authCheckbox"),
		AgreeCheckbox: ctx.FormValue("agreeCheckbox"),
	}

	// unparsable counts behave like zero
	mediaCount, _ := strconv.Atoi(ctx.FormValue("mediaCount"))
	for i := 0; i < mediaCount; i++ {
		headers := form.File[fmt.Sprintf("media_%d", i)]
		if len(headers) == 0 {
			continue
		}
		upload, err := readUpload(headers[0])
		if err != nil {
			slog.Error("submissionHandler: failed to read upload", "status", http.StatusInternalServerError, "error", err)
			return errorJSON(ctx, http.StatusInternalServerError, msgSubmissionFailed)
		}
		input.Files = append(input.Files, upload)
	}

	submission, err := s.coreService.SubmitApplication(ctx.Request().Context(), input)
	var validation *core.ValidationError
	switch {
	case errors.As(err, &validation):
		slog.Info("submissionHandler: validation failed", "status", http.StatusBadRequest, "error", validation)
		return errorJSON(ctx, http.StatusBadRequest, validation.Error())
	case err != nil:
		slog.Error("submissionHandler: failed to process submission", "status", http.StatusInternalServerError, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, msgSubmissionFailed)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Application received successfully",
		"submissionId": submission.ID,
	})
}

func (s *APIService) contactHandler(ctx echo.Context) error {
	var input core.ContactInput
	if err := ctx.Bind(&input); err != nil {
		slog.Error("contactHandler: failed to bind request", "status", http.StatusInternalServerError, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, msgInternalError)
	}

	err := s.coreService.SendContact(ctx.Request().Context(), input)
	var validation *core.ValidationError
	switch {
	case err == nil:
		return ctx.JSON(http.StatusOK, map[string]any{
			"success": true,
			"message": "Form submitted successfully",
		})
	case errors.As(err, &validation):
		return errorJSON(ctx, http.StatusBadRequest, validation.Error())
	case errors.Is(err, core.ErrSpam):
		slog.Info("contactHandler: spam rejected", "status", http.StatusBadRequest)
		return errorJSON(ctx, http.StatusBadRequest, msgSpam)
	case errors.Is(err, core.ErrEmailDelivery):
		return errorJSON(ctx, http.StatusInternalServerError, msgSendFailed)
	default:
		slog.Error("contactHandler: unexpected error", "status", http.StatusInternalServerError, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, msgInternalError)
	}
}

func (s *APIService) uploadMediaHandler(ctx echo.Context) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		slog.Warn("uploadMediaHandler: failed to parse form", "status", http.StatusBadRequest, "error", err)
		return errorJSON(ctx, http.StatusBadRequest, "Invalid upload.")
	}

	uploads := make([]core.Upload, 0, len(form.File["files"]))
	for _, header := range form.File["files"] {
		upload, err := readUpload(header)
		if err != nil {
			slog.Error("uploadMediaHandler: failed to read upload", "status", http.StatusInternalServerError, "error", err)
			return errorJSON(ctx, http.StatusInternalServerError, msgUploadFailed)
		}
		uploads = append(uploads, upload)
	}

	urls, err := s.coreService.UploadMuralMedia(ctx.Request().Context(), uploads)
	var validation *core.ValidationError
	switch {
	case errors.As(err, &validation):
		return errorJSON(ctx, http.StatusBadRequest, validation.Error())
	case err != nil:
		slog.Error("uploadMediaHandler: failed to upload media", "status", http.StatusInternalServerError, "error", err)
		return errorJSON(ctx, http.StatusInternalServerError, msgUploadFailed)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"success": true, "urls": urls})
}

func readUpload(header *multipart.FileHeader) (core.Upload, error) {
	src, err := header.Open()
	if err != nil {
		return core.Upload{}, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("readUpload: failed to close uploaded file reader", "error", cerr, "filename", header.Filename)
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		return core.Upload{}, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}
	return core.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
