package studio

import (
	"context"
	"fmt"
	"strings"

	"larchstudio/internal/logging"
	"larchstudio/internal/types"
)

// SetEditInstruction buffers the refinement instruction for an entity.
// Refine consumes the buffer; a successful refine clears it.
func (s *Studio) SetEditInstruction(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == "" {
		delete(s.instructions, id)
		return
	}
	s.instructions[id] = text
}

// EditInstruction returns the buffered instruction for an id.
func (s *Studio) EditInstruction(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instructions[id]
}

// Refine applies the buffered instruction to an entity's resolved
// artifact. At most one edit session runs system-wide; a request while
// any session is active (the same id included) is rejected. The
// artifact is replaced only on success; on failure the prior artifact
// stays and the failure is recorded as the global edit error, separate
// from the entity's own visualization state.
func (s *Studio) Refine(ctx context.Context, id string) error {
	s.mu.Lock()
	instruction := strings.TrimSpace(s.instructions[id])
	if instruction == "" {
		s.mu.Unlock()
		return fmt.Errorf("no edit instruction set for %s", id)
	}
	if s.activeEditID != "" {
		active := s.activeEditID
		s.mu.Unlock()
		return fmt.Errorf("an edit is already in progress for %s", active)
	}
	if s.stateLocked(id) != types.StateResolved {
		s.mu.Unlock()
		return fmt.Errorf("entity %s has no resolved image to refine", id)
	}
	current := s.artifacts[id]
	s.activeEditID = id
	s.editErr = nil
	s.mu.Unlock()

	logging.Studio("edit session started for %s", id)
	artifact, err := s.gateway.EditImage(ctx, current, instruction)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeEditID = ""
	if err == nil && artifact == "" {
		err = &types.ServiceError{Kind: types.ErrUnknown, Message: "Edit did not return an image."}
	}
	if err != nil {
		s.editErr = types.Classify(err)
		logging.StudioWarn("edit failed for %s: [%s] %s", id, s.editErr.Kind, s.editErr.Message)
		return s.editErr
	}
	s.artifacts[id] = artifact
	delete(s.instructions, id)
	logging.Studio("edit session resolved for %s", id)
	return nil
}

// ActiveEdit returns the id of the entity currently being edited, or
// the empty string.
func (s *Studio) ActiveEdit() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeEditID
}

// EditError returns the error of the most recent failed edit, or nil.
func (s *Studio) EditError() *types.ServiceError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editErr
}

// ClearEditError dismisses the recorded edit error.
func (s *Studio) ClearEditError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editErr = nil
}
