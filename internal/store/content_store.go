package store

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/rjratcon/rachaeljuzeler/internal/media"
	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

// AvailableImagesDir is the images subfolder for available works.
const AvailableImagesDir = "available"

// ContentStore edits the about/CV, updates, contact and available-works
// documents. Each call reads its document, changes it, and writes it back
// in full while holding mu, so concurrent edits do not drop each other.
type ContentStore struct {
	backend    Backend
	copier     *media.Copier
	imagesRoot string
	log        zerolog.Logger
	now        func() time.Time

	mu gosync.Mutex
}

// NewContentStore creates a ContentStore. imagesRoot is the same root the
// ProjectStore uses.
func NewContentStore(b Backend, fs afero.Fs, imagesRoot string, log zerolog.Logger) *ContentStore {
	return &ContentStore{
		backend:    b,
		copier:     media.NewCopier(fs),
		imagesRoot: imagesRoot,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// === About / CV ===

// CV returns the biography and CV sections.
func (s *ContentStore) CV(ctx context.Context) (model.CVContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCV(ctx)
}

func (s *ContentStore) loadCV(ctx context.Context) (model.CVContent, error) {
	var cv model.CVContent
	if _, err := s.backend.LoadDocument(ctx, DocCV, &cv); err != nil {
		return model.CVContent{}, err
	}
	if cv.Sections == nil {
		cv.Sections = make(map[string][]string)
	}
	return cv, nil
}

// UpdateBio replaces the biography text.
func (s *ContentStore) UpdateBio(ctx context.Context, bio string) error {
	bio = strings.TrimSpace(bio)
	if bio == "" {
		return required("bio")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cv, err := s.loadCV(ctx)
	if err != nil {
		return err
	}
	cv.Bio = bio
	if err := s.backend.SaveDocument(ctx, DocCV, cv); err != nil {
		return err
	}
	s.log.Info().Msg("bio updated")
	return nil
}

// UpdateCVSection replaces the items of one CV section. Blank items are
// dropped; an empty list clears the section.
func (s *ContentStore) UpdateCVSection(ctx context.Context, name string, items []string) error {
	if !model.IsCVSection(name) {
		return &ValidationError{Field: "section", Reason: fmt.Sprintf("%q is not a CV section", name)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cv, err := s.loadCV(ctx)
	if err != nil {
		return err
	}
	cv.Sections[name] = nonBlank(items)
	if err := s.backend.SaveDocument(ctx, DocCV, cv); err != nil {
		return err
	}
	s.log.Info().Str("section", name).Int("items", len(cv.Sections[name])).Msg("cv section updated")
	return nil
}

// === Updates ===

// Updates returns all updates, newest first.
func (s *ContentStore) Updates(ctx context.Context) ([]model.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUpdates(ctx)
}

func (s *ContentStore) loadUpdates(ctx context.Context) ([]model.Update, error) {
	var updates []model.Update
	if _, err := s.backend.LoadDocument(ctx, DocUpdates, &updates); err != nil {
		return nil, err
	}
	slices.SortStableFunc(updates, func(a, b model.Update) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return updates, nil
}

// CreateUpdate adds a new update. Title and content are required.
func (s *ContentStore) CreateUpdate(ctx context.Context, title, content, link string) (model.Update, error) {
	u := model.Update{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(title),
		Content:   strings.TrimSpace(content),
		Link:      strings.TrimSpace(link),
		CreatedAt: s.now(),
	}
	if err := validateUpdate(u); err != nil {
		return model.Update{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updates, err := s.loadUpdates(ctx)
	if err != nil {
		return model.Update{}, err
	}
	updates = append([]model.Update{u}, updates...)
	if err := s.backend.SaveDocument(ctx, DocUpdates, updates); err != nil {
		return model.Update{}, err
	}
	s.log.Info().Str("id", u.ID).Msg("update created")
	return u, nil
}

// UpdateUpdate overwrites the fields of an existing update.
func (s *ContentStore) UpdateUpdate(ctx context.Context, id, title, content, link string) (model.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updates, err := s.loadUpdates(ctx)
	if err != nil {
		return model.Update{}, err
	}
	idx := slices.IndexFunc(updates, func(u model.Update) bool { return u.ID == id })
	if idx < 0 {
		return model.Update{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}

	u := updates[idx]
	u.Title = strings.TrimSpace(title)
	u.Content = strings.TrimSpace(content)
	u.Link = strings.TrimSpace(link)
	if err := validateUpdate(u); err != nil {
		return model.Update{}, err
	}

	updates[idx] = u
	if err := s.backend.SaveDocument(ctx, DocUpdates, updates); err != nil {
		return model.Update{}, err
	}
	s.log.Info().Str("id", id).Msg("update edited")
	return u, nil
}

// DeleteUpdate removes an update.
func (s *ContentStore) DeleteUpdate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updates, err := s.loadUpdates(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(updates, func(u model.Update) bool { return u.ID == id })
	if idx < 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	updates = slices.Delete(updates, idx, idx+1)
	if err := s.backend.SaveDocument(ctx, DocUpdates, updates); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("update deleted")
	return nil
}

func validateUpdate(u model.Update) error {
	if u.Title == "" {
		return required("title")
	}
	if u.Content == "" {
		return required("content")
	}
	return nil
}

// === Contact ===

// Contact returns the contact details.
func (s *ContentStore) Contact(ctx context.Context) (model.ContactInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var info model.ContactInfo
	if _, err := s.backend.LoadDocument(ctx, DocContact, &info); err != nil {
		return model.ContactInfo{}, err
	}
	return info, nil
}

// SaveContact replaces the contact details.
func (s *ContentStore) SaveContact(ctx context.Context, info model.ContactInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info = model.ContactInfo{
		PersonalEmail:   strings.TrimSpace(info.PersonalEmail),
		BusinessEmail:   strings.TrimSpace(info.BusinessEmail),
		InstagramHandle: strings.TrimSpace(info.InstagramHandle),
		InstagramURL:    strings.TrimSpace(info.InstagramURL),
		FacebookURL:     strings.TrimSpace(info.FacebookURL),
	}
	if err := s.backend.SaveDocument(ctx, DocContact, info); err != nil {
		return err
	}
	s.log.Info().Msg("contact info updated")
	return nil
}

// === Available works ===

// AvailableWorks returns the works in their saved order.
func (s *ContentStore) AvailableWorks(ctx context.Context) ([]model.AvailableWork, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadWorks(ctx)
}

func (s *ContentStore) loadWorks(ctx context.Context) ([]model.AvailableWork, error) {
	var works []model.AvailableWork
	if _, err := s.backend.LoadDocument(ctx, DocAvailableWorks, &works); err != nil {
		return nil, err
	}
	return works, nil
}

// CreateAvailableWork adds a work. Title and image are required; an empty
// status defaults to Available.
func (s *ContentStore) CreateAvailableWork(
	ctx context.Context,
	in model.AvailableWorkInput,
) (Outcome[model.AvailableWork], error) {
	in = normalizeWork(in)
	if err := validateWork(in); err != nil {
		return Outcome[model.AvailableWork]{}, err
	}
	if in.ImagePath == "" {
		return Outcome[model.AvailableWork]{}, required("image")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	works, err := s.loadWorks(ctx)
	if err != nil {
		return Outcome[model.AvailableWork]{}, err
	}

	w := model.AvailableWork{
		ID:     uuid.New().String(),
		Title:  in.Title,
		Medium: in.Medium,
		Price:  in.Price,
		Status: in.Status,
	}
	var out Outcome[model.AvailableWork]
	w.Image, out.Warnings = s.copyWorkImage(w.ID, in.ImagePath)

	works = append(works, w)
	if err := s.backend.SaveDocument(ctx, DocAvailableWorks, works); err != nil {
		return Outcome[model.AvailableWork]{}, err
	}
	s.log.Info().Str("id", w.ID).Msg("available work created")
	out.Record = w
	return out, nil
}

// UpdateAvailableWork overwrites a work's fields. A non-empty ImagePath
// replaces the image.
func (s *ContentStore) UpdateAvailableWork(
	ctx context.Context,
	id string,
	in model.AvailableWorkInput,
) (Outcome[model.AvailableWork], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	works, err := s.loadWorks(ctx)
	if err != nil {
		return Outcome[model.AvailableWork]{}, err
	}
	idx := slices.IndexFunc(works, func(w model.AvailableWork) bool { return w.ID == id })
	if idx < 0 {
		return Outcome[model.AvailableWork]{}, fmt.Errorf("available work %s: %w", id, ErrNotFound)
	}

	in = normalizeWork(in)
	if err := validateWork(in); err != nil {
		return Outcome[model.AvailableWork]{}, err
	}

	w := works[idx]
	w.Title = in.Title
	w.Medium = in.Medium
	w.Price = in.Price
	w.Status = in.Status

	var out Outcome[model.AvailableWork]
	if in.ImagePath != "" {
		var image string
		image, out.Warnings = s.copyWorkImage(w.ID, in.ImagePath)
		if image != "" {
			w.Image = image
		}
	}

	works[idx] = w
	if err := s.backend.SaveDocument(ctx, DocAvailableWorks, works); err != nil {
		return Outcome[model.AvailableWork]{}, err
	}
	s.log.Info().Str("id", id).Msg("available work updated")
	out.Record = w
	return out, nil
}

// DeleteAvailableWork removes a work. Its image file is kept.
func (s *ContentStore) DeleteAvailableWork(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	works, err := s.loadWorks(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(works, func(w model.AvailableWork) bool { return w.ID == id })
	if idx < 0 {
		return fmt.Errorf("available work %s: %w", id, ErrNotFound)
	}
	works = slices.Delete(works, idx, idx+1)
	if err := s.backend.SaveDocument(ctx, DocAvailableWorks, works); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("available work deleted")
	return nil
}

func (s *ContentStore) copyWorkImage(id, src string) (string, []string) {
	name := id + strings.ToLower(filepath.Ext(src))
	dir := filepath.Join(s.imagesRoot, AvailableImagesDir)
	if err := s.copier.Copy(src, dir, name); err != nil {
		s.log.Warn().Err(err).Str("id", id).Str("src", src).Msg("image copy failed")
		return "", []string{fmt.Sprintf("failed to copy image %s: %v", filepath.Base(src), err)}
	}
	return name, nil
}

func normalizeWork(in model.AvailableWorkInput) model.AvailableWorkInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Medium = strings.TrimSpace(in.Medium)
	in.Price = strings.TrimSpace(in.Price)
	in.Status = strings.TrimSpace(in.Status)
	in.ImagePath = strings.TrimSpace(in.ImagePath)
	if in.Status == "" {
		in.Status = model.WorkStatusAvailable
	}
	return in
}

func validateWork(in model.AvailableWorkInput) error {
	if in.Title == "" {
		return required("title")
	}
	if !slices.Contains(model.WorkStatuses, in.Status) {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("%q is not a known status", in.Status)}
	}
	return nil
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
