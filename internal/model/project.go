package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ProjectIDPrefix is the fixed prefix of every project identifier.
const ProjectIDPrefix = "project"

// Project is a portfolio project shown in the site's work grid.
type Project struct {
	// ID is the project key (e.g., "project16"). It is the key of the
	// persisted mapping, so it is not repeated inside each entry.
	ID string `json:"-"`

	// Title is the display title of the project.
	Title string `json:"title"`

	// Subtitle is an optional second line (materials, year, venue).
	Subtitle string `json:"subtitle"`

	// Description is the body text shown on the project page.
	Description string `json:"description"`

	// Folder names the image folder. Defaults to ID.
	Folder string `json:"folder"`

	// Images lists filenames inside the project folder. The first entry
	// is the primary image used as the grid thumbnail.
	Images []string `json:"images"`
}

// PrimaryImage returns the grid thumbnail filename, or "" when the
// project has no images.
func (p Project) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Label renders the "id: title" string used in pickers.
func (p Project) Label() string {
	return fmt.Sprintf("%s: %s", p.ID, p.Title)
}

// ProjectInput carries the editable fields of a project form. Images are
// source paths to copy into the project folder; an empty list on update
// keeps the existing images.
type ProjectInput struct {
	Title       string
	Subtitle    string
	Description string
	Images      []string
}

// Normalize trims surrounding whitespace from the text fields and drops
// blank image paths.
func (in ProjectInput) Normalize() ProjectInput {
	out := ProjectInput{
		Title:       strings.TrimSpace(in.Title),
		Subtitle:    strings.TrimSpace(in.Subtitle),
		Description: strings.TrimSpace(in.Description),
	}
	for _, img := range in.Images {
		img = strings.TrimSpace(img)
		if img != "" {
			out.Images = append(out.Images, img)
		}
	}
	return out
}

// ProjectID formats the identifier for sequence number n.
func ProjectID(n int) string {
	return ProjectIDPrefix + strconv.Itoa(n)
}

// ProjectNumber extracts N from "project<N>". The boolean is false for
// identifiers that do not follow the pattern: N must be plain decimal
// digits with no sign and no leading zero, so each number has exactly
// one id.
func ProjectNumber(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, ProjectIDPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	if len(rest) > 1 && rest[0] == '0' {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}
