package studio

import (
	"context"

	"larchstudio/internal/logging"
	"larchstudio/internal/types"
)

// RenderAll drives RequestVisualization across every unresolved entity
// of the named collection, strictly one at a time. Sequential fan-out
// is load-bearing: it caps the run at one outbound render call at any
// moment, bounding rate-limit exposure. Entities already Resolved or
// currently Pending are skipped; Failed entities are re-attempted. A
// second invocation while a run is active is a silent no-op.
func (s *Studio) RenderAll(ctx context.Context, tab types.Tab) {
	s.mu.Lock()
	if s.bulkRunning {
		s.mu.Unlock()
		logging.StudioDebug("bulk render already running, ignoring")
		return
	}
	s.bulkRunning = true
	targets := s.collectionLocked(tab)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.bulkRunning = false
		s.mu.Unlock()
	}()

	logging.Studio("bulk render started: %d entities in %s", len(targets), tab)
	rendered := 0
	for _, entity := range targets {
		s.mu.Lock()
		state := s.stateLocked(entity.ID)
		s.mu.Unlock()
		if state == types.StateResolved || state == types.StatePending {
			continue
		}
		// Per-item failures are absorbed by the tracker; the loop
		// always advances to the next entity.
		s.RequestVisualization(ctx, entity.ID, entity.Content)
		rendered++
	}
	logging.Studio("bulk render finished: %d of %d attempted", rendered, len(targets))
}

// BulkRunning reports whether a bulk render is currently active.
func (s *Studio) BulkRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bulkRunning
}
