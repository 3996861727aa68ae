package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ContactData feeds the contact notification.
type ContactData struct {
	Name        string
	Email       string
	ProjectType string
	Message     string
	Site        string
}

// SubmissionData feeds both mural application emails.
type SubmissionData struct {
	ID          string
	Type        string
	OrgName     string
	ContactName string
	Email       string
	Phone       string
	Location    string
	AboutOrg    string
	WhyMural    string
	WallDetails string
	Timeline    string
	OtherNotes  string
	Media       []string
	Thumbnails  []string
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// ContactMessage builds the inbox notification for a contact form message.
func ContactMessage(from, to string, data ContactData) (Message, error) {
	html, err := render("contact.html", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      []string{to},
		ReplyTo: data.Email,
		Subject: fmt.Sprintf("Portfolio Inquiry: %s - %s", data.ProjectType, data.Name),
		HTML:    html,
	}, nil
}

func SubmissionAdminMessage(from, to string, data SubmissionData) (Message, error) {
	html, err := render("submission_admin.html", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      []string{to},
		ReplyTo: data.Email,
		Subject: fmt.Sprintf("New Mural Application: %s", data.OrgName),
		HTML:    html,
	}, nil
}

func SubmissionApplicantMessage(from string, data SubmissionData) (Message, error) {
	html, err := render("submission_applicant.html", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      []string{data.Email},
		Subject: "We received your mural application",
		HTML:    html,
	}, nil
}
