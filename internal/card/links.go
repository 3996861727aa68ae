package card

import "fmt"

// Link is one of ExternalLink, DownloadLink or ActionTrigger.
type Link interface {
	isLink()
}

// ExternalLink navigates to another page or site.
type ExternalLink struct {
	Label     string
	Href      string
	AriaLabel string
}

// DownloadLink offers a file to download.
type DownloadLink struct {
	Label     string
	Href      string
	AriaLabel string
}

// ActionTrigger opens an in-page action such as the application form.
type ActionTrigger struct {
	Label     string
	Action    string
	AriaLabel string
}

func (ExternalLink) isLink()  {}
func (DownloadLink) isLink()  {}
func (ActionTrigger) isLink() {}

type LinkGroup struct {
	Label string
	Color string
	Items []Link
}

// RenderedLink is the flattened form handed to templates.
type RenderedLink struct {
	Kind      string
	Label     string
	Href      string
	Action    string
	AriaLabel string
	Download  bool
	External  bool
	Disabled  bool
}

// Render dispatches on the link variant.
func Render(link Link) (RenderedLink, error) {
	switch l := link.(type) {
	case ExternalLink:
		return RenderedLink{
			Kind:      "external",
			Label:     l.Label,
			Href:      l.Href,
			AriaLabel: l.AriaLabel,
			External:  isAbsolute(l.Href),
			Disabled:  l.Href == "" || l.Href == "#",
		}, nil
	case DownloadLink:
		return RenderedLink{
			Kind:      "download",
			Label:     l.Label,
			Href:      l.Href,
			AriaLabel: l.AriaLabel,
			Download:  true,
			Disabled:  l.Href == "" || l.Href == "#",
		}, nil
	case ActionTrigger:
		return RenderedLink{
			Kind:      "action",
			Label:     l.Label,
			Action:    l.Action,
			AriaLabel: l.AriaLabel,
		}, nil
	default:
		return RenderedLink{}, fmt.Errorf("unknown link type %T", link)
	}
}

type RenderedGroup struct {
	Label string
	Color string
	Items []RenderedLink
}

func RenderGroups(groups []LinkGroup) ([]RenderedGroup, error) {
	out := make([]RenderedGroup, 0, len(groups))
	for _, group := range groups {
		rendered := RenderedGroup{Label: group.Label, Color: group.Color}
		for _, item := range group.Items {
			link, err := Render(item)
			if err != nil {
				return nil, fmt.Errorf("failed to render group %q: %w", group.Label, err)
			}
			rendered.Items = append(rendered.Items, link)
		}
		out = append(out, rendered)
	}
	return out, nil
}

func isAbsolute(href string) bool {
	return len(href) > 8 && (href[:7] == "http://" || href[:8] == "https://")
}

// DefaultGroups builds the landing page link groups for owner.
func DefaultGroups(owner Owner) []LinkGroup {
	connect := LinkGroup{
		Label: "Let's Connect",
		Color: "sea-life",
		Items: []Link{
			ExternalLink{Label: "Contact Me about a New Project", Href: "/contact", AriaLabel: "Open the contact form"},
			ActionTrigger{Label: "Community & Non-Profit Applications", Action: "application-form", AriaLabel: "Submit a mural request"},
		},
	}

	friends := LinkGroup{Label: "Let's Be Friends", Color: "coral"}
	if owner.Instagram != "" {
		friends.Items = append(friends.Items, ExternalLink{Label: "Instagram", Href: owner.Instagram, AriaLabel: "Visit Instagram"})
	}
	if owner.SiteURL != "" {
		friends.Items = append(friends.Items, ExternalLink{Label: "Portfolio", Href: owner.SiteURL, AriaLabel: "Visit the portfolio site"})
	}

	change := LinkGroup{
		Label: "Let's Make Change",
		Color: "sea-life",
		Items: []Link{
			ExternalLink{Label: "Show Your Support - Coming Soon", Href: "#", AriaLabel: "Support page coming soon"},
		},
	}

	keep := LinkGroup{
		Label: "Let's Keep in Touch",
		Color: "coral",
		Items: []Link{
			DownloadLink{Label: "Add Me to Your Contacts", Href: "/contact.vcf", AriaLabel: "Download contact card"},
		},
	}
	if owner.ResumeURL != "" {
		keep.Items = append(keep.Items, DownloadLink{Label: "Download My Resume", Href: owner.ResumeURL, AriaLabel: "Download resume"})
	} else {
		keep.Items = append(keep.Items, DownloadLink{Label: "Download My Resume - Coming Soon", Href: "#", AriaLabel: "Resume coming soon"})
	}

	groups := []LinkGroup{connect}
	if len(friends.Items) > 0 {
		groups = append(groups, friends)
	}
	return append(groups, change, keep)
}
