// Package tui is a terminal front end for the mural application form.
package tui

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jo-hoe/muralfolio/internal/muralform"
)

var fieldLabels = map[string]string{
	"orgName":     "Organization",
	"contactName": "Contact name",
	"email":       "Email",
	"phone":       "Phone",
	"location":    "Location",
	"aboutOrg":    "About the org",
	"whyMural":    "Why a mural",
	"wallDetails": "Wall details",
	"timeline":    "Timeline",
	"otherNotes":  "Other notes",
}

const slotTabs = 0

type submitResultMsg struct {
	result muralform.Result
}

// Model focus runs: tab bar (0), text fields, the two checkboxes, media, submit.
type Model struct {
	ctx      context.Context
	form     *muralform.Form
	poster   muralform.Poster
	inputs   []textinput.Model
	media    textinput.Model
	focus    int
	notice   string
	styles   Styles
	readFile func(string) ([]byte, error)
}

func NewModel(ctx context.Context, form *muralform.Form, poster muralform.Poster) Model {
	inputs := make([]textinput.Model, len(muralform.FieldNames))
	for i, name := range muralform.FieldNames {
		input := textinput.New()
		input.Placeholder = fieldLabels[name]
		input.CharLimit = 2000
		input.Width = 50
		inputs[i] = input
	}
	media := textinput.New()
	media.Placeholder = "comma separated file paths, enter to attach"
	media.Width = 50

	return Model{
		ctx:      ctx,
		form:     form,
		poster:   poster,
		inputs:   inputs,
		media:    media,
		styles:   DefaultStyles(),
		readFile: os.ReadFile,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) authSlot() int { return len(m.inputs) + 1 }

func (m Model) agreeSlot() int { return len(m.inputs) + 2 }

func (m Model) mediaSlot() int { return len(m.inputs) + 3 }

func (m Model) submitSlot() int { return len(m.inputs) + 4 }

func (m Model) fieldIndex() (int, bool) {
	i := m.focus - 1
	return i, i >= 0 && i < len(m.inputs)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submitResultMsg:
		m.form.Finish(msg.result)
		m.loadTab()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.form.Close()
			return m, tea.Quit
		case "tab", "down":
			m.setFocus((m.focus + 1) % (m.submitSlot() + 1))
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus - 1 + m.submitSlot() + 1) % (m.submitSlot() + 1))
			return m, nil
		case "left", "right":
			if m.focus == slotTabs {
				m.form.HandleKey(msg.String())
				m.loadTab()
				return m, nil
			}
		case " ", "enter":
			if cmd, handled := m.activate(msg.String()); handled {
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	if i, ok := m.fieldIndex(); ok {
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		if err := m.form.SetField(muralform.FieldNames[i], m.inputs[i].Value()); err != nil {
			m.notice = err.Error()
		}
	} else if m.focus == m.mediaSlot() {
		m.media, cmd = m.media.Update(msg)
	}
	return m, cmd
}

func (m *Model) activate(key string) (tea.Cmd, bool) {
	switch m.focus {
	case m.authSlot(), m.agreeSlot():
		name := muralform.AuthCheckbox
		if m.focus == m.agreeSlot() {
			name = muralform.AgreeCheckbox
		}
		tab := m.form.ActiveTab()
		_ = m.form.SetCheckbox(name, !m.form.Checkbox(tab, name))
		return nil, true
	case m.mediaSlot():
		if key != "enter" {
			return nil, false
		}
		m.attach()
		return nil, true
	case m.submitSlot():
		return m.submit(), true
	}
	return nil, false
}

func (m *Model) attach() {
	var files []muralform.Attachment
	for _, path := range strings.Split(m.media.Value(), ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		data, err := m.readFile(path)
		if err != nil {
			m.notice = fmt.Sprintf("failed to read %s: %v", path, err)
			return
		}
		files = append(files, muralform.Attachment{
			Filename:    filepath.Base(path),
			ContentType: http.DetectContentType(data),
			Data:        data,
		})
	}
	m.form.AttachFiles(files)
	m.media.SetValue("")
	m.notice = fmt.Sprintf("%d file(s) attached", len(files))
}

func (m *Model) submit() tea.Cmd {
	if !m.form.CanSubmit() {
		return nil
	}
	request, err := m.form.Prepare()
	if err != nil {
		m.notice = err.Error()
		return nil
	}
	m.notice = ""
	ctx, poster := m.ctx, m.poster
	return func() tea.Msg {
		return submitResultMsg{result: muralform.Send(ctx, poster, request)}
	}
}

func (m *Model) setFocus(focus int) {
	if i, ok := m.fieldIndex(); ok {
		m.inputs[i].Blur()
	}
	m.media.Blur()
	m.focus = focus
	if i, ok := m.fieldIndex(); ok {
		m.inputs[i].Focus()
	} else if m.focus == m.mediaSlot() {
		m.media.Focus()
	}
}

// loadTab copies the active tab's fields into the inputs.
func (m *Model) loadTab() {
	tab := m.form.ActiveTab()
	for i, name := range muralform.FieldNames {
		m.inputs[i].SetValue(m.form.Field(tab, name))
	}
	m.media.SetValue("")
}

func (m Model) View() string {
	var b strings.Builder
	tab := m.form.ActiveTab()

	tabs := make([]string, 0, len(muralform.Tabs))
	for _, candidate := range muralform.Tabs {
		style := m.styles.Tab
		if candidate == tab {
			style = m.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(candidate.Label()))
	}
	marker := "  "
	if m.focus == slotTabs {
		marker = m.styles.Focused.Render("> ")
	}
	b.WriteString(marker + strings.Join(tabs, " ") + "\n\n")

	for i, name := range muralform.FieldNames {
		label := fieldLabels[name]
		if muralform.IsRequired(name) {
			label += "*"
		}
		b.WriteString(m.styles.Label.Render(label) + m.inputs[i].View() + "\n")
	}

	b.WriteString("\n" + m.checkbox(m.authSlot(), muralform.AuthCheckbox, "I am authorized to submit for this organization"))
	b.WriteString(m.checkbox(m.agreeSlot(), muralform.AgreeCheckbox, "I agree to the terms"))

	b.WriteString("\n" + m.styles.Label.Render("Media") + m.media.View() + "\n")
	for _, attachment := range m.form.Attachments(tab) {
		b.WriteString("  - " + attachment.Filename + "\n")
	}

	b.WriteString("\n")
	status, message := m.form.Status(tab)
	button := m.styles.SubmitReady.Render("Submit")
	if !m.form.CanSubmit() {
		button = m.styles.SubmitBusy.Render("Submitting...")
	}
	if m.focus == m.submitSlot() {
		button = m.styles.Focused.Render("> ") + button
	}
	b.WriteString(button + "\n")

	switch status {
	case muralform.Success:
		b.WriteString(m.styles.Success.Render("Application received. A confirmation email is on its way.") + "\n")
	case muralform.Failed:
		b.WriteString(m.styles.Error.Render(message) + "\n")
	}
	if m.notice != "" {
		b.WriteString(m.styles.Help.Render(m.notice) + "\n")
	}
	b.WriteString(m.styles.Help.Render("tab/shift+tab move  left/right switch tabs  space toggle  enter submit  esc quit"))
	return b.String()
}

func (m Model) checkbox(slot int, name, label string) string {
	box := "[ ]"
	if m.form.Checkbox(m.form.ActiveTab(), name) {
		box = "[x]"
	}
	line := box + " " + label
	if m.focus == slot {
		line = m.styles.Focused.Render("> " + line)
	} else {
		line = "  " + line
	}
	return line + "\n"
}

// Run starts the form program and blocks until the user quits.
func Run(ctx context.Context, poster muralform.Poster) error {
	form := muralform.New()
	program := tea.NewProgram(NewModel(ctx, form, poster), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run form: %w", err)
	}
	return nil
}
