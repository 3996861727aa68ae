// Package mapview holds the state behind the murals map: markers, the
// selected record, the camera and the narrow-viewport interaction lock.
//
// A View is owned by one page or program and is not safe for concurrent use.
package mapview

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/paulmach/orb"
)

// Record is a mural as displayed on the map.
type Record struct {
	ID          string
	Title       string
	Description string
	Latitude    float64
	Longitude   float64
	Media       []string
	Year        *int
}

func (r Record) Point() orb.Point {
	return orb.Point{r.Longitude, r.Latitude}
}

type Marker struct {
	RecordID string
	Title    string
	Point    orb.Point
}

type Camera struct {
	Center orb.Point
	Zoom   float64
	Pitch  float64
}

// Fetcher loads the record list, e.g. from GET /api/murals.
type Fetcher interface {
	FetchMurals(ctx context.Context) ([]Record, error)
}

type Options struct {
	Center           orb.Point
	Zoom             float64
	Pitch            float64
	FocusZoom        float64
	NarrowBreakpoint int
	// FitMarkers centers the default framing on the loaded markers instead of Center.
	FitMarkers bool
}

// DefaultOptions frames the Corpus Christi area.
func DefaultOptions() Options {
	return Options{
		Center:           orb.Point{-97.3, 27.7},
		Zoom:             10,
		Pitch:            45,
		FocusZoom:        15,
		NarrowBreakpoint: 1024,
	}
}

type loadState int

const (
	notLoaded loadState = iota
	loaded
	failed
)

type View struct {
	options       Options
	records       []Record
	state         loadState
	selected      *Record
	camera        Camera
	viewportWidth int
	scrollLocked  bool
	gesturesOff   bool
	closed        bool
}

func NewView(options Options) *View {
	view := &View{options: options}
	view.camera = view.defaultCamera()
	return view
}

// Load fetches the records once. A failure leaves the map without markers
// for the rest of the session; later calls do not retry.
func (v *View) Load(ctx context.Context, fetcher Fetcher) error {
	if v.state != notLoaded {
		return nil
	}
	records, err := fetcher.FetchMurals(ctx)
	if err != nil {
		v.state = failed
		v.records = nil
		slog.Error("mapview: failed to fetch murals", "error", err)
		return fmt.Errorf("failed to fetch murals: %w", err)
	}
	v.records = records
	v.state = loaded
	v.camera = v.defaultCamera()
	return nil
}

func (v *View) Failed() bool {
	return v.state == failed
}

func (v *View) Records() []Record {
	return v.records
}

func (v *View) Markers() []Marker {
	markers := make([]Marker, 0, len(v.records))
	for _, record := range v.records {
		markers = append(markers, Marker{RecordID: record.ID, Title: record.Title, Point: record.Point()})
	}
	return markers
}

// Bounds of all loaded markers. ok is false when nothing is loaded.
func (v *View) Bounds() (bound orb.Bound, ok bool) {
	if len(v.records) == 0 {
		return orb.Bound{}, false
	}
	points := make(orb.MultiPoint, 0, len(v.records))
	for _, record := range v.records {
		points = append(points, record.Point())
	}
	return points.Bound(), true
}

// SelectRecord opens the record with the given id and focuses the camera on it.
// Ids that are not among the loaded records are ignored.
func (v *View) SelectRecord(id string) bool {
	if v.closed {
		return false
	}
	for i := range v.records {
		if v.records[i].ID != id {
			continue
		}
		record := v.records[i]
		v.selected = &record
		v.camera = Camera{Center: record.Point(), Zoom: v.options.FocusZoom, Pitch: v.options.Pitch}
		v.applyLock()
		return true
	}
	return false
}

func (v *View) ClearSelection() {
	v.selected = nil
	v.camera = v.defaultCamera()
	v.restore()
}

// Close tears the view down. Scroll and gestures are always restored.
func (v *View) Close() {
	v.ClearSelection()
	v.closed = true
}

func (v *View) Selected() (Record, bool) {
	if v.selected == nil {
		return Record{}, false
	}
	return *v.selected, true
}

func (v *View) Camera() Camera {
	return v.camera
}

func (v *View) SetViewportWidth(width int) {
	v.viewportWidth = width
	if v.selected != nil {
		v.applyLock()
	}
}

func (v *View) narrow() bool {
	return v.viewportWidth > 0 && v.viewportWidth < v.options.NarrowBreakpoint
}

func (v *View) applyLock() {
	if v.narrow() {
		v.scrollLocked = true
		v.gesturesOff = true
		return
	}
	v.restore()
}

func (v *View) restore() {
	v.scrollLocked = false
	v.gesturesOff = false
}

func (v *View) ScrollLocked() bool {
	return v.scrollLocked
}

func (v *View) GesturesEnabled() bool {
	return !v.gesturesOff
}

func (v *View) defaultCamera() Camera {
	center := v.options.Center
	if v.options.FitMarkers {
		if bound, ok := v.Bounds(); ok {
			center = bound.Center()
		}
	}
	return Camera{Center: center, Zoom: v.options.Zoom, Pitch: v.options.Pitch}
}

type MediaItem struct {
	URL  string
	Kind string
}

// Panel is the detail view for the selected record.
type Panel struct {
	Title       string
	Description string
	Year        *int
	Media       []MediaItem
}

func (v *View) Panel() (Panel, bool) {
	record, ok := v.Selected()
	if !ok {
		return Panel{}, false
	}
	panel := Panel{Title: record.Title, Description: record.Description, Year: record.Year}
	for _, url := range record.Media {
		panel.Media = append(panel.Media, MediaItem{URL: url, Kind: MediaKind(url)})
	}
	return panel, true
}

// MediaKind is "video" for .mp4 files and "image" otherwise.
func MediaKind(url string) string {
	if strings.EqualFold(path.Ext(strings.SplitN(url, "?", 2)[0]), ".mp4") {
		return "video"
	}
	return "image"
}
