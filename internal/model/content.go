package model

import "time"

// CV section names, in the order the site renders them.
const (
	CVAwards          = "Awards & Grants"
	CVPublicWorks     = "Public Works"
	CVCollections     = "Museum Collections"
	CVSoloExhibitions = "Selected Solo Exhibitions"
	CVGroupShows      = "Selected Juried Shows & Group Exhibitions"
	CVEducation       = "Selected Education & Training"
	CVBoard           = "Board & Volunteer Positions"
	CVEmployment      = "Employment History"
)

// CVSectionNames lists every editable CV section.
var CVSectionNames = []string{
	CVAwards,
	CVPublicWorks,
	CVCollections,
	CVSoloExhibitions,
	CVGroupShows,
	CVEducation,
	CVBoard,
	CVEmployment,
}

// IsCVSection reports whether name is one of CVSectionNames.
func IsCVSection(name string) bool {
	for _, s := range CVSectionNames {
		if s == name {
			return true
		}
	}
	return false
}

// CVContent holds the about page: biography text plus CV sections.
type CVContent struct {
	Bio      string              `json:"bio"`
	Sections map[string][]string `json:"sections"`
}

// Update is a dated news item on the updates page.
type Update struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactInfo holds the contact page details.
type ContactInfo struct {
	PersonalEmail   string `json:"personal_email"`
	BusinessEmail   string `json:"business_email"`
	InstagramHandle string `json:"instagram_handle"`
	InstagramURL    string `json:"instagram_url"`
	FacebookURL     string `json:"facebook_url"`
}

// Available work statuses.
const (
	WorkStatusAvailable = "Available"
	WorkStatusSold      = "SOLD"
	WorkStatusOnHold    = "On Hold"
)

// WorkStatuses lists the accepted AvailableWork statuses.
var WorkStatuses = []string{WorkStatusAvailable, WorkStatusSold, WorkStatusOnHold}

// AvailableWork is a piece listed for sale.
type AvailableWork struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Medium string `json:"medium"`
	Price  string `json:"price"`
	Status string `json:"status"`

	// Image is the filename inside the available-works image folder.
	Image string `json:"image"`
}

// AvailableWorkInput carries the form fields for an available work.
// ImagePath is a source file to copy; empty keeps the current image.
type AvailableWorkInput struct {
	Title     string
	Medium    string
	Price     string
	Status    string
	ImagePath string
}
