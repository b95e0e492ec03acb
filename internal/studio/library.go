package studio

import (
	"context"
	"fmt"
	"strings"

	"larchstudio/internal/logging"
	"larchstudio/internal/types"
)

// Generate asks the gateway for a fresh batch of prompt entities and
// replaces the entire recent collection with the result. The saved
// collection is untouched. Tracker state for the previous batch is left
// alone; the new ids start Idle.
func (s *Studio) Generate(ctx context.Context, req types.GenerateRequest) ([]types.PromptEntity, error) {
	entities, err := s.gateway.GeneratePrompts(ctx, req)
	if err != nil {
		return nil, types.Classify(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = entities
	if err := s.persistRecentLocked(); err != nil {
		return nil, err
	}
	logging.Studio("generated %d entities for concept %q", len(entities), req.Concept)
	return s.collectionLocked(types.TabRecent), nil
}

// Template fetches one random concept template from the gateway.
func (s *Studio) Template(ctx context.Context) (types.PromptTemplate, error) {
	tmpl, err := s.gateway.RandomTemplate(ctx)
	if err != nil {
		return types.PromptTemplate{}, types.Classify(err)
	}
	return tmpl, nil
}

// ToggleSaved flips an entity's membership in the saved collection. An
// unsaved entity is inserted at the front; a saved one is removed.
// Toggling twice restores the starting state. The saved collection is
// persisted after every toggle.
func (s *Studio) ToggleSaved(entity types.PromptEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.saved {
		if e.ID == entity.ID {
			s.saved = append(s.saved[:i], s.saved[i+1:]...)
			return s.persistSavedLocked()
		}
	}
	s.saved = append([]types.PromptEntity{entity}, s.saved...)
	return s.persistSavedLocked()
}

// IsSaved reports whether the id is in the saved collection.
func (s *Studio) IsSaved(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.saved {
		if e.ID == id {
			return true
		}
	}
	return false
}

// EditContent rewrites an entity's prompt text in place, in every
// collection that currently holds the id. Identity is stable; only the
// text changes.
func (s *Studio) EditContent(id, newText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inRecent := false
	for i := range s.recent {
		if s.recent[i].ID == id {
			s.recent[i].Content = newText
			inRecent = true
		}
	}
	inSaved := false
	for i := range s.saved {
		if s.saved[i].ID == id {
			s.saved[i].Content = newText
			inSaved = true
		}
	}
	if !inRecent && !inSaved {
		return fmt.Errorf("no entity with id %s", id)
	}
	if inRecent {
		if err := s.persistRecentLocked(); err != nil {
			return err
		}
	}
	if inSaved {
		if err := s.persistSavedLocked(); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns a snapshot of the recent collection.
func (s *Studio) Recent() []types.PromptEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectionLocked(types.TabRecent)
}

// Saved returns a snapshot of the saved collection.
func (s *Studio) Saved() []types.PromptEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectionLocked(types.TabSaved)
}

// ExportSession renders the named collection as a plain-text dump, one
// section per entity.
func (s *Studio) ExportSession(tab types.Tab) string {
	s.mu.Lock()
	entities := s.collectionLocked(tab)
	s.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Landscape Prompt Session (%s)\n", tab)
	fmt.Fprintf(&b, "Entities: %d\n\n", len(entities))
	for i, e := range entities {
		fmt.Fprintf(&b, "[%d] %s (%s)\n", i+1, e.Title, e.Perspective)
		b.WriteString(strings.Repeat("-", 40))
		b.WriteString("\n")
		b.WriteString(e.Content)
		b.WriteString("\n")
		if len(e.TechnicalDetails) > 0 {
			fmt.Fprintf(&b, "Technical: %s\n", strings.Join(e.TechnicalDetails, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
