package store

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	gosync "sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/rjratcon/rachaeljuzeler/internal/legacy"
	"github.com/rjratcon/rachaeljuzeler/internal/media"
	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

// ProjectStoreOptions locates the files the ProjectStore works with.
type ProjectStoreOptions struct {
	// ImagesRoot holds one subfolder per project id.
	ImagesRoot string

	// LegacyScript is the read-only generated script. Empty disables
	// the legacy baseline.
	LegacyScript string

	// LegacyRange is the count of ids the legacy site already uses.
	LegacyRange int
}

// ProjectStore keeps the merged project records in memory and writes the
// full mapping to its Backend after every change.
type ProjectStore struct {
	backend Backend
	fs      afero.Fs
	copier  *media.Copier
	opts    ProjectStoreOptions
	log     zerolog.Logger

	mu       gosync.Mutex
	projects map[string]model.Project
}

// NewProjectStore creates an empty store. Call Load to populate it.
func NewProjectStore(
	b Backend,
	fs afero.Fs,
	opts ProjectStoreOptions,
	log zerolog.Logger,
) *ProjectStore {
	return &ProjectStore{
		backend:  b,
		fs:       fs,
		copier:   media.NewCopier(fs),
		opts:     opts,
		log:      log,
		projects: make(map[string]model.Project),
	}
}

// Load rebuilds the record set: the legacy script gives a baseline and
// persisted records replace baseline entries with the same id. A legacy
// source that is absent or unreadable leaves the baseline empty. The
// legacy result is returned so callers can report it; the error is set
// only when the persisted data could not be read, in which case the
// baseline is still loaded.
func (s *ProjectStore) Load(ctx context.Context) (legacy.Result, error) {
	res := legacy.Result{Kind: legacy.Empty}
	if s.opts.LegacyScript != "" {
		res = legacy.Read(s.fs, s.opts.LegacyScript)
	}

	merged := make(map[string]model.Project)
	switch res.Kind {
	case legacy.Parsed:
		maps.Copy(merged, res.Records)
		s.log.Info().
			Int("records", len(res.Records)).
			Str("method", string(res.Method)).
			Msg("loaded legacy projects")
	case legacy.Malformed:
		s.log.Warn().Err(res.Err).Str("path", s.opts.LegacyScript).
			Msg("legacy script unreadable, using empty baseline")
	}

	persisted, err := s.backend.LoadProjects(ctx)
	if err == nil {
		maps.Copy(merged, persisted)
	} else {
		s.log.Error().Err(err).Msg("loading persisted projects")
		err = fmt.Errorf("loading projects: %w", err)
	}

	s.mu.Lock()
	s.projects = merged
	s.mu.Unlock()
	return res, err
}

// Projects returns all records ordered by id number.
func (s *ProjectStore) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, cloneProject(p))
	}
	slices.SortFunc(out, compareProjects)
	return out
}

// Get returns the record with the given id.
func (s *ProjectStore) Get(id string) (model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	return cloneProject(p), ok
}

// NextID returns the id Create would assign now.
func (s *ProjectStore) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextIDLocked()
}

// nextIDLocked picks one above both the legacy range and the highest
// numbered id in use, so deletes never cause an id to be reused while a
// higher one exists.
func (s *ProjectStore) nextIDLocked() string {
	n := s.opts.LegacyRange
	for id := range s.projects {
		if k, ok := model.ProjectNumber(id); ok && k > n {
			n = k
		}
	}
	return model.ProjectID(n + 1)
}

// Create validates in, allocates the next id, copies the images into the
// project folder as <id>-<n><ext>, and persists the full record set.
// Images that fail to copy are reported as warnings and left out.
func (s *ProjectStore) Create(
	ctx context.Context,
	in model.ProjectInput,
) (Outcome[model.Project], error) {
	in = in.Normalize()
	if err := validateProject(in); err != nil {
		return Outcome[model.Project]{}, err
	}
	if len(in.Images) == 0 {
		return Outcome[model.Project]{}, &ValidationError{
			Field: "images", Reason: "must include at least one image",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextIDLocked()
	folder := s.projectDir(id)
	if err := s.copier.MkdirAll(folder); err != nil {
		return Outcome[model.Project]{}, fmt.Errorf("creating project %s: %w", id, err)
	}

	images, warnings := s.copyImages(id, in.Images)
	p := model.Project{
		ID:          id,
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Description: in.Description,
		Folder:      id,
		Images:      images,
	}

	s.projects[id] = p
	if err := s.persistLocked(ctx); err != nil {
		delete(s.projects, id)
		return Outcome[model.Project]{}, fmt.Errorf("creating project %s: %w", id, err)
	}

	s.log.Info().
		Str("id", id).
		Int("images", len(images)).
		Int("warnings", len(warnings)).
		Msg("project created")
	return Outcome[model.Project]{Record: cloneProject(p), Warnings: warnings}, nil
}

// Update overwrites the text fields of an existing record. When in
// carries images they are copied into the project folder and, if at least
// one copy succeeds, replace the image list.
func (s *ProjectStore) Update(
	ctx context.Context,
	id string,
	in model.ProjectInput,
) (Outcome[model.Project], error) {
	in = in.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.projects[id]
	if !ok {
		return Outcome[model.Project]{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err := validateProject(in); err != nil {
		return Outcome[model.Project]{}, err
	}

	p := cloneProject(prev)
	p.Title = in.Title
	p.Subtitle = in.Subtitle
	p.Description = in.Description
	if p.Folder == "" {
		p.Folder = id
	}

	var warnings []string
	if len(in.Images) > 0 {
		var images []string
		images, warnings = s.copyImages(id, in.Images)
		if len(images) > 0 {
			p.Images = images
		}
	}

	s.projects[id] = p
	if err := s.persistLocked(ctx); err != nil {
		s.projects[id] = prev
		return Outcome[model.Project]{}, fmt.Errorf("updating project %s: %w", id, err)
	}

	s.log.Info().Str("id", id).Int("warnings", len(warnings)).Msg("project updated")
	return Outcome[model.Project]{Record: cloneProject(p), Warnings: warnings}, nil
}

// Delete removes the record after confirm approves it. A nil confirm
// deletes without asking. Image files and the project folder are left
// on disk.
func (s *ProjectStore) Delete(ctx context.Context, id string, confirm ConfirmFunc) error {
	p, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if confirm != nil && !confirm(p) {
		return fmt.Errorf("deleting project %s: %w", id, ErrCancelled)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.projects[id]
	if !ok {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	delete(s.projects, id)
	if err := s.persistLocked(ctx); err != nil {
		s.projects[id] = prev
		return fmt.Errorf("deleting project %s: %w", id, err)
	}

	s.log.Info().Str("id", id).Msg("project deleted; image folder kept")
	return nil
}

// Persist writes the full record set to the backend.
func (s *ProjectStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

func (s *ProjectStore) persistLocked(ctx context.Context) error {
	if err := s.backend.SaveProjects(ctx, s.projects); err != nil {
		return fmt.Errorf("saving projects: %w", err)
	}
	return nil
}

func (s *ProjectStore) projectDir(id string) string {
	return filepath.Join(s.opts.ImagesRoot, id)
}

// copyImages copies srcs in order, numbering from 1 by position in srcs.
// Every source is read into a staging file before any final name is
// written, so srcs may name the project's current images in any order.
func (s *ProjectStore) copyImages(id string, srcs []string) ([]string, []string) {
	type staged struct{ tmp, name string }
	var (
		pending  []staged
		warnings []string
	)
	dir := s.projectDir(id)
	warn := func(src string, err error) {
		s.log.Warn().Err(err).Str("id", id).Str("src", src).Msg("image copy failed")
		warnings = append(warnings,
			fmt.Sprintf("failed to copy image %s: %v", filepath.Base(src), err))
	}

	for i, src := range srcs {
		name := media.ImageName(id, i+1, src)
		tmp := media.StagingName(name)
		if err := s.copier.Copy(src, dir, tmp); err != nil {
			warn(src, err)
			continue
		}
		pending = append(pending, staged{tmp: tmp, name: name})
	}

	images := make([]string, 0, len(pending))
	for _, st := range pending {
		if err := s.copier.Rename(dir, st.tmp, st.name); err != nil {
			warn(st.name, err)
			if err := s.copier.Remove(dir, st.tmp); err != nil {
				s.log.Warn().Err(err).Str("id", id).Msg("removing staged image")
			}
			continue
		}
		images = append(images, st.name)
	}
	return images, warnings
}

func validateProject(in model.ProjectInput) error {
	if in.Title == "" {
		return required("title")
	}
	if in.Description == "" {
		return required("description")
	}
	return nil
}

func cloneProject(p model.Project) model.Project {
	p.Images = slices.Clone(p.Images)
	return p
}

func compareProjects(a, b model.Project) int {
	an, aok := model.ProjectNumber(a.ID)
	bn, bok := model.ProjectNumber(b.ID)
	switch {
	case aok && bok:
		return an - bn
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(a.ID, b.ID)
	}
}
