// Package card renders the digital business card: link groups, vCard and QR code.
package card

// Owner holds the details printed on the card.
type Owner struct {
	FullName     string
	Title        string
	Organization string
	Email        string
	Phone        string
	City         string
	Region       string
	SiteURL      string
	Instagram    string
	ResumeURL    string
}
