package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jo-hoe/muralfolio/internal/backend/database"
	"github.com/jo-hoe/muralfolio/internal/backend/email"
	"github.com/jo-hoe/muralfolio/internal/backend/storage"
)

// SubmissionInput is a mural application as received from the multipart form.
// Checkbox values are the literal strings sent by the form.
type SubmissionInput struct {
	Type          string
	OrgName       string
	ContactName   string
	Email         string
	Phone         string
	Location      string
	AboutOrg      string
	WhyMural      string
	WallDetails   string
	Timeline      string
	OtherNotes    string
	AuthCheckbox  string
	AgreeCheckbox string
	Files         []Upload
}

// SubmitApplication validates, stores media and persists the application.
// Notification emails and thumbnails are best effort.
func (service *CoreService) SubmitApplication(ctx context.Context, input SubmissionInput) (*database.Submission, error) {
	if err := validateSubmission(input); err != nil {
		return nil, err
	}
	if err := service.checkSizes(input.Files); err != nil {
		return nil, err
	}

	now := service.now()
	media, err := service.storeAll(ctx, input.Files, func(i int, upload Upload) string {
		return storage.ObjectKey(submissionMediaPrefix, now, i, upload.Filename)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store submission media: %w", err)
	}

	submission, err := service.databaseService.CreateSubmission(ctx, &database.Submission{
		Type:          input.Type,
		OrgName:       input.OrgName,
		ContactName:   input.ContactName,
		Email:         input.Email,
		Phone:         input.Phone,
		Location:      input.Location,
		AboutOrg:      input.AboutOrg,
		WhyMural:      input.WhyMural,
		WallDetails:   input.WallDetails,
		Timeline:      input.Timeline,
		OtherNotes:    input.OtherNotes,
		AuthConfirmed: true,
		TermsAccepted: true,
		Media:         media,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}
	slog.Info("mural submission received", "id", submission.ID, "type", submission.Type, "media_count", len(media))

	thumbs := service.storeThumbnails(ctx, input.Files, func(i int, filename string) string {
		return storage.ObjectKey(thumbnailPrefix, now, i, filename)
	})
	service.notifySubmission(ctx, submission, thumbs)

	return submission, nil
}

func (service *CoreService) notifySubmission(ctx context.Context, submission *database.Submission, thumbs []string) {
	data := email.SubmissionData{
		ID:          submission.ID,
		Type:        submission.Type,
		OrgName:     submission.OrgName,
		ContactName: submission.ContactName,
		Email:       submission.Email,
		Phone:       submission.Phone,
		Location:    submission.Location,
		AboutOrg:    submission.AboutOrg,
		WhyMural:    submission.WhyMural,
		WallDetails: submission.WallDetails,
		Timeline:    submission.Timeline,
		OtherNotes:  submission.OtherNotes,
		Media:       submission.Media,
		Thumbnails:  thumbs,
	}
	from := service.config.Email.From

	if to := service.config.Email.ContactTo; to != "" {
		service.sendBestEffort(ctx, "submission_admin", func() (email.Message, error) {
			return email.SubmissionAdminMessage(from, to, data)
		})
	}
	service.sendBestEffort(ctx, "submission_applicant", func() (email.Message, error) {
		return email.SubmissionApplicantMessage(from, data)
	})
}
