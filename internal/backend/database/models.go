package database

import "time"

// Mural is a single mural location as shown on the map and in the admin list.
type Mural struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Latitude    float64   `db:"latitude"`
	Longitude   float64   `db:"longitude"`
	Media       []string  `db:"media"` // ordered media URLs
	Year        *int      `db:"year"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}

// Submission is a mural application received from one of the application tabs.
type Submission struct {
	ID            string    `db:"id"`
	Type          string    `db:"submission_type"` // spring | useit
	OrgName       string    `db:"org_name"`
	ContactName   string    `db:"contact_name"`
	Email         string    `db:"email"`
	Phone         string    `db:"phone"`
	Location      string    `db:"location"`
	AboutOrg      string    `db:"about_org"`
	WhyMural      string    `db:"why_mural"`
	WallDetails   string    `db:"wall_details"`
	Timeline      string    `db:"timeline"`
	OtherNotes    string    `db:"other_notes"`
	AuthConfirmed bool      `db:"auth_confirmed"`
	TermsAccepted bool      `db:"terms_accepted"`
	Media         []string  `db:"media"`
	CreatedAt     time.Time `db:"created_at"`
}

// ContactMessage is a message sent through the contact form.
type ContactMessage struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	ProjectType string    `db:"project_type"`
	Message     string    `db:"message"`
	CreatedAt   time.Time `db:"created_at"`
}
