package studio

import (
	"fmt"
	"time"

	"larchstudio/internal/logging"
	"larchstudio/internal/types"
)

// galleryCap bounds the gallery; sharing past the cap evicts the
// oldest item.
const galleryCap = 60

// ShareToGallery snapshots a resolved entity into the gallery. The
// snapshot is denormalized and keeps no reference to the entity; later
// edits or re-renders do not touch it. Newest items come first.
func (s *Studio) ShareToGallery(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateLocked(id) != types.StateResolved {
		return fmt.Errorf("entity %s has no resolved image to share", id)
	}
	entity, ok := s.findEntityLocked(id)
	if !ok {
		return fmt.Errorf("no entity with id %s", id)
	}
	item := types.GalleryItem{
		Artifact:    s.artifacts[id],
		Title:       entity.Title,
		Perspective: entity.Perspective,
		Content:     entity.Content,
		SharedAt:    time.Now().UnixMilli(),
	}
	s.gallery = append([]types.GalleryItem{item}, s.gallery...)
	if len(s.gallery) > galleryCap {
		s.gallery = s.gallery[:galleryCap]
	}
	logging.Studio("shared %s to gallery (%d items)", id, len(s.gallery))
	return s.persistGalleryLocked()
}

// Gallery returns a snapshot of the gallery, newest first.
func (s *Studio) Gallery() []types.GalleryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.GalleryItem, len(s.gallery))
	copy(out, s.gallery)
	return out
}

// ClearGallery removes every gallery item. Bulk clear is the only way
// items leave the gallery besides cap eviction.
func (s *Studio) ClearGallery() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gallery = nil
	return s.persistGalleryLocked()
}

func (s *Studio) findEntityLocked(id string) (types.PromptEntity, bool) {
	for _, e := range s.recent {
		if e.ID == id {
			return e, true
		}
	}
	for _, e := range s.saved {
		if e.ID == id {
			return e, true
		}
	}
	return types.PromptEntity{}, false
}
