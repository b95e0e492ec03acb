package studio

import (
	"context"

	"larchstudio/internal/logging"
	"larchstudio/internal/types"
)

// RequestVisualization renders one entity's prompt text into an
// artifact. A request for an id already in flight is a silent no-op.
// Requesting clears any prior error for the id; a prior artifact is
// replaced only when the new call succeeds. The returned error is the
// same classified error recorded in the tracker.
func (s *Studio) RequestVisualization(ctx context.Context, id, promptText string) error {
	s.mu.Lock()
	if _, inFlight := s.pending[id]; inFlight {
		s.mu.Unlock()
		logging.StudioDebug("visualization for %s already in flight, ignoring", id)
		return nil
	}
	s.pending[id] = struct{}{}
	delete(s.visErrors, id)
	s.mu.Unlock()

	artifact, err := s.gateway.Visualize(ctx, promptText, s.aspectRatio)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
	if err == nil && artifact == "" {
		err = &types.ServiceError{Kind: types.ErrUnknown, Message: "No image generated."}
	}
	if err != nil {
		serr := types.Classify(err)
		s.visErrors[id] = serr
		logging.StudioWarn("visualization failed for %s: [%s] %s", id, serr.Kind, serr.Message)
		return serr
	}
	s.artifacts[id] = artifact
	logging.Studio("visualization resolved for %s", id)
	return nil
}

// State derives the visualization state for an id. Pending wins over
// everything; a recorded error marks the id Failed even when a prior
// artifact is still retained underneath.
func (s *Studio) State(id string) types.VisualizationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(id)
}

func (s *Studio) stateLocked(id string) types.VisualizationState {
	if _, ok := s.pending[id]; ok {
		return types.StatePending
	}
	if s.visErrors[id] != nil {
		return types.StateFailed
	}
	if s.artifacts[id] != "" {
		return types.StateResolved
	}
	return types.StateIdle
}

// Artifact returns the current artifact for an id. An id carrying an
// error reports no artifact; the stale image stays hidden until the
// next successful resolution.
func (s *Studio) Artifact(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visErrors[id] != nil {
		return ""
	}
	return s.artifacts[id]
}

// VisError returns the recorded visualization error for an id, or nil.
func (s *Studio) VisError(id string) *types.ServiceError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visErrors[id]
}
