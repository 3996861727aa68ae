package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
)

type fakeEmails struct {
	request *resend.SendEmailRequest
	err     error
}

func (f *fakeEmails) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.request = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "msg_1"}, nil
}

func TestResendSender_Send(t *testing.T) {
	fake := &fakeEmails{}
	sender := &ResendSender{emails: fake}

	id, err := sender.Send(context.Background(), Message{
		From:    "site@example.com",
		To:      []string{"inbox@example.com"},
		ReplyTo: "visitor@example.com",
		Subject: "Hi",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if id != "msg_1" {
		t.Fatalf("Send() id = %q, want msg_1", id)
	}
	if fake.request.ReplyTo != "visitor@example.com" || fake.request.Html != "<p>hi</p>" {
		t.Fatalf("unexpected request: %+v", fake.request)
	}
}

func TestResendSender_Errors(t *testing.T) {
	sender := &ResendSender{emails: &fakeEmails{err: errors.New("boom")}}

	if _, err := sender.Send(context.Background(), Message{To: []string{"a@b.co"}}); err == nil {
		t.Fatal("expected provider error")
	}
	if _, err := sender.Send(context.Background(), Message{}); err == nil {
		t.Fatal("expected error without recipients")
	}
}

func TestLogSender(t *testing.T) {
	id, err := NewLogSender().Send(context.Background(), Message{Subject: "x"})
	if err != nil || id == "" {
		t.Fatalf("Send() = %q, %v", id, err)
	}
}

func TestNewSender(t *testing.T) {
	if _, err := NewSender(Options{Type: TypeResend}); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := NewSender(Options{Type: "smtp"}); err == nil {
		t.Fatal("expected error for unknown type")
	}
	sender, err := NewSender(Options{})
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}
	if _, ok := sender.(*LogSender); !ok {
		t.Fatalf("NewSender() = %T, want *LogSender", sender)
	}
}

func TestContactMessage(t *testing.T) {
	message, err := ContactMessage("site@example.com", "inbox@example.com", ContactData{
		Name:        "Ana",
		Email:       "ana@example.com",
		ProjectType: "Commission",
		Message:     "<script>alert(1)</script>",
		Site:        "example.com",
	})
	if err != nil {
		t.Fatalf("ContactMessage() error = %v", err)
	}
	if message.Subject != "Portfolio Inquiry: Commission - Ana" {
		t.Fatalf("Subject = %q", message.Subject)
	}
	if message.ReplyTo != "ana@example.com" || message.To[0] != "inbox@example.com" {
		t.Fatalf("unexpected addressing: %+v", message)
	}
	if strings.Contains(message.HTML, "<script>") {
		t.Fatal("message body must be escaped")
	}
}

func TestSubmissionMessages(t *testing.T) {
	data := SubmissionData{
		ID:          "123",
		Type:        "spring",
		OrgName:     "Aquatic Center",
		ContactName: "Bo",
		Email:       "bo@example.com",
		Media:       []string{"https://cdn.example.com/a.jpg"},
	}

	admin, err := SubmissionAdminMessage("site@example.com", "inbox@example.com", data)
	if err != nil {
		t.Fatalf("SubmissionAdminMessage() error = %v", err)
	}
	if !strings.Contains(admin.HTML, "https://cdn.example.com/a.jpg") {
		t.Fatal("admin email should list attachments")
	}

	applicant, err := SubmissionApplicantMessage("site@example.com", data)
	if err != nil {
		t.Fatalf("SubmissionApplicantMessage() error = %v", err)
	}
	if applicant.To[0] != "bo@example.com" || !strings.Contains(applicant.HTML, "Aquatic Center") {
		t.Fatalf("unexpected applicant email: %+v", applicant)
	}
}
