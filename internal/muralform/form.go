// Package muralform is the state machine behind the two-tab mural
// application form. Each tab keeps its own fields, attachments and status.
//
// A Form belongs to a single UI and is not safe for concurrent use; only
// Send may run on another goroutine.
package muralform

import (
	"errors"
	"fmt"
	"strings"
)

type Tab string

const (
	Spring Tab = "spring"
	UseIt  Tab = "useit"
)

var Tabs = []Tab{Spring, UseIt}

func (t Tab) Label() string {
	switch t {
	case Spring:
		return "Spring Mural Application"
	case UseIt:
		return "Use It or Lose It"
	default:
		return string(t)
	}
}

type Status int

const (
	Idle Status = iota
	Submitting
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Text fields in the order they are sent.
var FieldNames = []string{
	"orgName",
	"contactName",
	"email",
	"phone",
	"location",
	"aboutOrg",
	"whyMural",
	"wallDetails",
	"timeline",
	"otherNotes",
}

var requiredFields = map[string]bool{
	"orgName":     true,
	"contactName": true,
	"email":       true,
	"location":    true,
	"aboutOrg":    true,
	"whyMural":    true,
	"wallDetails": true,
}

const (
	AuthCheckbox  = "authCheckbox"
	AgreeCheckbox = "agreeCheckbox"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrBusy         = errors.New("submission already in progress")
)

// MissingFieldsError is returned before any request when required fields are blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func IsRequired(field string) bool {
	return requiredFields[field]
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
	Preview     string
}

type tabState struct {
	fields      map[string]string
	checkboxes  map[string]bool
	attachments []Attachment
	status      Status
	message     string
}

func newTabState() *tabState {
	return &tabState{
		fields:     map[string]string{},
		checkboxes: map[string]bool{AuthCheckbox: false, AgreeCheckbox: false},
	}
}

type Form struct {
	active   int
	tabs     map[Tab]*tabState
	previews *PreviewRegistry
}

func New() *Form {
	form := &Form{
		tabs:     map[Tab]*tabState{},
		previews: NewPreviewRegistry(),
	}
	for _, tab := range Tabs {
		form.tabs[tab] = newTabState()
	}
	return form
}

func (f *Form) ActiveTab() Tab {
	return Tabs[f.active]
}

func (f *Form) SwitchTab(tab Tab) bool {
	for i, candidate := range Tabs {
		if candidate == tab {
			f.active = i
			return true
		}
	}
	return false
}

// HandleKey cycles tabs on "left" and "right" with wraparound. Other keys are ignored.
func (f *Form) HandleKey(key string) bool {
	switch key {
	case "right":
		f.active = (f.active + 1) % len(Tabs)
	case "left":
		f.active = (f.active - 1 + len(Tabs)) % len(Tabs)
	default:
		return false
	}
	return true
}

func (f *Form) current() *tabState {
	return f.tabs[f.ActiveTab()]
}

func (f *Form) SetField(name, value string) error {
	if !isField(name) {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	f.current().fields[name] = value
	return nil
}

func (f *Form) SetCheckbox(name string, checked bool) error {
	state := f.current()
	if _, ok := state.checkboxes[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	state.checkboxes[name] = checked
	return nil
}

func (f *Form) Field(tab Tab, name string) string {
	if state, ok := f.tabs[tab]; ok {
		return state.fields[name]
	}
	return ""
}

func (f *Form) Checkbox(tab Tab, name string) bool {
	if state, ok := f.tabs[tab]; ok {
		return state.checkboxes[name]
	}
	return false
}

// AttachFiles replaces the active tab's attachments. Previous previews are revoked.
func (f *Form) AttachFiles(files []Attachment) {
	state := f.current()
	f.releasePreviews(state)
	state.attachments = make([]Attachment, 0, len(files))
	for _, file := range files {
		file.Preview = f.previews.Create(file.Data)
		state.attachments = append(state.attachments, file)
	}
}

func (f *Form) RemoveAttachment(index int) bool {
	state := f.current()
	if index < 0 || index >= len(state.attachments) {
		return false
	}
	f.previews.Revoke(state.attachments[index].Preview)
	state.attachments = append(state.attachments[:index], state.attachments[index+1:]...)
	return true
}

func (f *Form) Attachments(tab Tab) []Attachment {
	if state, ok := f.tabs[tab]; ok {
		return state.attachments
	}
	return nil
}

func (f *Form) Previews() *PreviewRegistry {
	return f.previews
}

func (f *Form) Status(tab Tab) (Status, string) {
	state, ok := f.tabs[tab]
	if !ok {
		return Idle, ""
	}
	return state.status, state.message
}

// CanSubmit is false while the active tab has a request in flight.
func (f *Form) CanSubmit() bool {
	return f.current().status != Submitting
}

// Dismiss returns a finished tab to idle.
func (f *Form) Dismiss() {
	state := f.current()
	if state.status == Success || state.status == Failed {
		state.status = Idle
		state.message = ""
	}
}

// Close revokes every preview.
func (f *Form) Close() {
	for _, state := range f.tabs {
		f.releasePreviews(state)
	}
}

func (f *Form) releasePreviews(state *tabState) {
	for _, attachment := range state.attachments {
		f.previews.Revoke(attachment.Preview)
	}
}

func (f *Form) missingFields() []string {
	state := f.current()
	var missing []string
	for _, name := range FieldNames {
		if requiredFields[name] && strings.TrimSpace(state.fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func isField(name string) bool {
	for _, field := range FieldNames {
		if field == name {
			return true
		}
	}
	return false
}
