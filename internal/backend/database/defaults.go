package database

import "time"

func withMuralDefaults(mural *Mural) *Mural {
	stored := *mural
	if stored.ID == "" {
		stored.ID = generateID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.Media = append([]string{}, mural.Media...)
	return &stored
}

func withSubmissionDefaults(submission *Submission) *Submission {
	stored := *submission
	if stored.ID == "" {
		stored.ID = generateID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.Media = append([]string{}, submission.Media...)
	return &stored
}

func withContactDefaults(message *ContactMessage) *ContactMessage {
	stored := *message
	if stored.ID == "" {
		stored.ID = generateID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	return &stored
}
