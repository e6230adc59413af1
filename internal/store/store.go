package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

// Document names. With the JSON backend each maps to <name>.json in the
// data directory.
const (
	DocProjects       = "projects"
	DocCV             = "cv_sections"
	DocUpdates        = "updates"
	DocAvailableWorks = "available_works"
	DocContact        = "contact_info"
)

var (
	// ErrNotFound is returned for an unknown record id.
	ErrNotFound = errors.New("not found")

	// ErrCancelled is returned when a delete confirmation is refused.
	ErrCancelled = errors.New("cancelled")
)

// ValidationError reports a missing or unacceptable field. Operations
// that return it leave the store unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func required(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Outcome is the result of a write that may partially succeed: the saved
// record plus warnings about images that could not be copied.
type Outcome[T any] struct {
	Record   T
	Warnings []string
}

// ConfirmFunc asks the user to confirm deleting p. Returning false
// cancels the delete.
type ConfirmFunc func(p model.Project) bool

// Backend persists the record mapping and the content documents. Saves
// overwrite the previous contents in full.
type Backend interface {
	// LoadProjects returns the persisted records keyed by id. A backend
	// with nothing saved yet returns an empty map.
	LoadProjects(ctx context.Context) (map[string]model.Project, error)
	SaveProjects(ctx context.Context, projects map[string]model.Project) error

	// LoadDocument decodes the named document into v. The boolean is
	// false when the document has never been saved.
	LoadDocument(ctx context.Context, name string, v any) (bool, error)
	SaveDocument(ctx context.Context, name string, v any) error

	Close() error
}

// ProjectRepository is the project API used by the UI and CLI.
type ProjectRepository interface {
	Projects() []model.Project
	Get(id string) (model.Project, bool)
	NextID() string
	Create(ctx context.Context, in model.ProjectInput) (Outcome[model.Project], error)
	Update(ctx context.Context, id string, in model.ProjectInput) (Outcome[model.Project], error)
	Delete(ctx context.Context, id string, confirm ConfirmFunc) error
}

// ContentRepository is the API for the non-project site sections.
type ContentRepository interface {
	CV(ctx context.Context) (model.CVContent, error)
	UpdateBio(ctx context.Context, bio string) error
	UpdateCVSection(ctx context.Context, name string, items []string) error

	Updates(ctx context.Context) ([]model.Update, error)
	CreateUpdate(ctx context.Context, title, content, link string) (model.Update, error)
	UpdateUpdate(ctx context.Context, id, title, content, link string) (model.Update, error)
	DeleteUpdate(ctx context.Context, id string) error

	Contact(ctx context.Context) (model.ContactInfo, error)
	SaveContact(ctx context.Context, info model.ContactInfo) error

	AvailableWorks(ctx context.Context) ([]model.AvailableWork, error)
	CreateAvailableWork(ctx context.Context, in model.AvailableWorkInput) (Outcome[model.AvailableWork], error)
	UpdateAvailableWork(ctx context.Context, id string, in model.AvailableWorkInput) (Outcome[model.AvailableWork], error)
	DeleteAvailableWork(ctx context.Context, id string) error
}
