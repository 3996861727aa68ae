package frontend

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/muralfolio/internal/backend/storage"
	"github.com/jo-hoe/muralfolio/internal/card"
	"github.com/jo-hoe/muralfolio/internal/core"
	"github.com/jo-hoe/muralfolio/internal/mapview"
	"github.com/jo-hoe/muralfolio/internal/muralform"
)

const (
	mimePNG       = "image/png"
	mimeVCard     = "text/vcard; charset=utf-8"
	defaultQRSize = 256
	maxQRSize     = 1024
)

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		config:      config,
	}
}

// coreFetcher feeds the map view straight from the core service.
type coreFetcher struct {
	coreService *core.CoreService
}

func (f coreFetcher) FetchMurals(ctx context.Context) ([]mapview.Record, error) {
	murals, err := f.coreService.ListMurals(ctx, true)
	if err != nil {
		return nil, err
	}
	records := make([]mapview.Record, 0, len(murals))
	for _, mural := range murals {
		records = append(records, mapview.Record{
			ID:          mural.ID,
			Title:       mural.Title,
			Description: mural.Description,
			Latitude:    mural.Latitude,
			Longitude:   mural.Longitude,
			Media:       mural.Media,
			Year:        mural.Year,
		})
	}
	return records, nil
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.Renderer = newTemplate()

	e.GET("/", service.landingHandler)
	e.GET("/contact", service.contactHandler)
	e.GET("/murals", service.muralsHandler)
	e.GET("/htmx/murals/:id/panel", service.htmxPanelHandler)
	e.GET("/htmx/murals/close", service.htmxClosePanelHandler)

	e.GET("/contact.vcf", service.vcardHandler)
	e.GET("/qr.png", service.qrHandler)
	e.GET("/icon.svg", service.iconHandler)

	// Local media is served by this process; S3 media comes from its public URL.
	if local, ok := service.coreService.MediaStore().(*storage.LocalStore); ok {
		e.Static(local.URLPrefix(), local.Dir())
	}
}

type tabView struct {
	ID     string
	Label  string
	Active bool
}

type fieldView struct {
	Name     string
	Required bool
}

// mediaSlots is the number of file inputs on the application form.
const mediaSlots = 3

type landingData struct {
	Owner      card.Owner
	Groups     []card.RenderedGroup
	Tabs       []tabView
	Tab        string
	Fields     []fieldView
	MediaSlots []int
	MediaCount int
}

func (service *FrontendService) landingHandler(ctx echo.Context) error {
	groups, err := card.RenderGroups(card.DefaultGroups(service.config.Card.Owner()))
	if err != nil {
		slog.Error("landingHandler: failed to render link groups", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to render page")
	}

	active := muralform.Spring
	if requested := muralform.Tab(ctx.QueryParam("tab")); requested == muralform.UseIt {
		active = requested
	}
	tabs := make([]tabView, 0, len(muralform.Tabs))
	for _, tab := range muralform.Tabs {
		tabs = append(tabs, tabView{ID: string(tab), Label: tab.Label(), Active: tab == active})
	}

	fields := make([]fieldView, 0, len(muralform.FieldNames))
	for _, name := range muralform.FieldNames {
		fields = append(fields, fieldView{Name: name, Required: muralform.IsRequired(name)})
	}
	slots := make([]int, mediaSlots)
	for i := range slots {
		slots[i] = i
	}

	return ctx.Render(http.StatusOK, "landing.html", landingData{
		Owner:      service.config.Card.Owner(),
		Groups:     groups,
		Tabs:       tabs,
		Tab:        string(active),
		Fields:     fields,
		MediaSlots: slots,
		MediaCount: len(slots),
	})
}

type projectType struct {
	Value string
	Label string
}

var projectTypes = []projectType{
	{"mural", "Public Mural Commission"},
	{"web", "Website/Web Development"},
	{"ar", "AR Experience"},
	{"both", "Mural + Digital Experience"},
	{"nonprofit", "Non-Profit Collaboration"},
	{"other", "Other/Just Exploring"},
}

func (service *FrontendService) contactHandler(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "contact.html", map[string]any{"ProjectTypes": projectTypes})
}

type muralsData struct {
	Markers []mapview.Marker
	Camera  mapview.Camera
	Failed  bool
}

func (service *FrontendService) muralsHandler(ctx echo.Context) error {
	view := mapview.NewView(service.config.Map.Options())
	defer view.Close()

	// a failed fetch renders an empty map
	_ = view.Load(ctx.Request().Context(), coreFetcher{coreService: service.coreService})

	return ctx.Render(http.StatusOK, "murals.html", muralsData{
		Markers: view.Markers(),
		Camera:  view.Camera(),
		Failed:  view.Failed(),
	})
}

type panelData struct {
	Panel           mapview.Panel
	Camera          mapview.Camera
	ScrollLocked    bool
	GesturesEnabled bool
}

func (service *FrontendService) htmxPanelHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	view := mapview.NewView(service.config.Map.Options())
	defer view.Close()

	if err := view.Load(ctx.Request().Context(), coreFetcher{coreService: service.coreService}); err != nil {
		slog.Error("htmxPanelHandler: failed to load murals", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load murals")
	}

	// unparsable widths count as wide
	width, _ := strconv.Atoi(ctx.QueryParam("vw"))
	view.SetViewportWidth(width)

	if !view.SelectRecord(id) {
		slog.Warn("htmxPanelHandler: mural not found", "status", http.StatusNotFound, "mural_id", id)
		return ctx.String(http.StatusNotFound, "Mural not found")
	}
	panel, _ := view.Panel()

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "panel.html", panelData{
		Panel:           panel,
		Camera:          view.Camera(),
		ScrollLocked:    view.ScrollLocked(),
		GesturesEnabled: view.GesturesEnabled(),
	})
}

func (service *FrontendService) htmxClosePanelHandler(ctx echo.Context) error {
	view := mapview.NewView(service.config.Map.Options())
	defer view.Close()

	// same framing as the page; on a failed fetch that is the configured center
	_ = view.Load(ctx.Request().Context(), coreFetcher{coreService: service.coreService})
	view.ClearSelection()

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "panel_closed.html", panelData{
		Camera:          view.Camera(),
		ScrollLocked:    view.ScrollLocked(),
		GesturesEnabled: view.GesturesEnabled(),
	})
}

func (service *FrontendService) vcardHandler(ctx echo.Context) error {
	owner := service.config.Card.Owner()
	data, err := card.VCard(owner)
	if err != nil {
		slog.Error("vcardHandler: failed to build vcard", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to build contact card")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+card.FileName(owner)+`"`)
	return ctx.Blob(http.StatusOK, mimeVCard, data)
}

func (service *FrontendService) qrHandler(ctx echo.Context) error {
	size := defaultQRSize
	if raw := ctx.QueryParam("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 64 || parsed > maxQRSize {
			return ctx.String(http.StatusBadRequest, "Invalid size")
		}
		size = parsed
	}

	png, err := card.QRCode(service.config.Card.SiteURL, size)
	if err != nil {
		slog.Error("qrHandler: failed to render qr code", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to render QR code")
	}
	ctx.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return ctx.Blob(http.StatusOK, mimePNG, png)
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}
