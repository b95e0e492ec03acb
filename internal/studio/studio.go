// Package studio is the orchestration core: it owns the working
// collections of prompt entities, tracks the asynchronous visualization
// lifecycle of each entity, drives bulk renders sequentially, and
// serializes refinement edits globally. All state lives in one Studio
// container guarded by a single mutex; the mutex is never held across a
// gateway call, so independent operations interleave freely while the
// guard flags (pending set, bulk flag, active edit id) keep per-id and
// global exclusion intact.
package studio

import (
	"fmt"
	"sync"

	"larchstudio/internal/logging"
	"larchstudio/internal/store"
	"larchstudio/internal/types"
)

const defaultAspectRatio = "16:9"

// Studio holds the full orchestrator state: entity collections, the
// per-id visualization tracker, the bulk and edit guards, the gallery
// and the theme preference.
type Studio struct {
	mu sync.Mutex

	gateway     types.Gateway
	adapter     types.Adapter
	aspectRatio string

	recent []types.PromptEntity
	saved  []types.PromptEntity

	// Tracker maps. Per id, at most one of pending / error / artifact
	// determines the visible state; see stateLocked.
	pending   map[string]struct{}
	artifacts map[string]string
	visErrors map[string]*types.ServiceError

	bulkRunning bool

	activeEditID string
	instructions map[string]string
	editErr      *types.ServiceError

	gallery []types.GalleryItem
	theme   string
}

// New builds a Studio backed by the given gateway and persistence
// adapter, loading previously persisted collections. An empty
// aspectRatio falls back to "16:9".
func New(gateway types.Gateway, adapter types.Adapter, aspectRatio string) (*Studio, error) {
	if aspectRatio == "" {
		aspectRatio = defaultAspectRatio
	}
	s := &Studio{
		gateway:      gateway,
		adapter:      adapter,
		aspectRatio:  aspectRatio,
		pending:      make(map[string]struct{}),
		artifacts:    make(map[string]string),
		visErrors:    make(map[string]*types.ServiceError),
		instructions: make(map[string]string),
		theme:        "dark",
	}
	if err := s.loadState(); err != nil {
		return nil, err
	}
	logging.Studio("studio initialized: %d saved, %d gallery, theme=%s",
		len(s.saved), len(s.gallery), s.theme)
	return s, nil
}

func (s *Studio) loadState() error {
	if _, err := s.adapter.Get(store.KeySavedPrompts, &s.saved); err != nil {
		return fmt.Errorf("failed to load saved prompts: %w", err)
	}
	if _, err := s.adapter.Get(store.KeyGalleryItems, &s.gallery); err != nil {
		return fmt.Errorf("failed to load gallery: %w", err)
	}
	var theme string
	found, err := s.adapter.Get(store.KeyTheme, &theme)
	if err != nil {
		return fmt.Errorf("failed to load theme preference: %w", err)
	}
	if found && (theme == "dark" || theme == "light") {
		s.theme = theme
	}
	if _, err := s.adapter.Get(store.KeyRecentSession, &s.recent); err != nil {
		return fmt.Errorf("failed to load recent session: %w", err)
	}
	return nil
}

// SetTheme records the theme preference and persists it.
func (s *Studio) SetTheme(theme string) error {
	if theme != "dark" && theme != "light" {
		return fmt.Errorf("invalid theme %q", theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	return s.adapter.Put(store.KeyTheme, theme)
}

// Theme returns the current theme preference.
func (s *Studio) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// collectionLocked returns a snapshot copy of the named collection.
func (s *Studio) collectionLocked(tab types.Tab) []types.PromptEntity {
	var src []types.PromptEntity
	if tab == types.TabSaved {
		src = s.saved
	} else {
		src = s.recent
	}
	out := make([]types.PromptEntity, len(src))
	copy(out, src)
	return out
}

func (s *Studio) persistSavedLocked() error {
	if err := s.adapter.Put(store.KeySavedPrompts, s.saved); err != nil {
		logging.StoreError("failed to persist saved prompts: %v", err)
		return fmt.Errorf("failed to persist saved prompts: %w", err)
	}
	return nil
}

func (s *Studio) persistGalleryLocked() error {
	if err := s.adapter.Put(store.KeyGalleryItems, s.gallery); err != nil {
		logging.StoreError("failed to persist gallery: %v", err)
		return fmt.Errorf("failed to persist gallery: %w", err)
	}
	return nil
}

func (s *Studio) persistRecentLocked() error {
	if err := s.adapter.Put(store.KeyRecentSession, s.recent); err != nil {
		logging.StoreError("failed to persist recent session: %v", err)
		return fmt.Errorf("failed to persist recent session: %w", err)
	}
	return nil
}
