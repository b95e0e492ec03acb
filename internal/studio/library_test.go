package studio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"larchstudio/internal/store"
	"larchstudio/internal/types"
)

func TestGenerateReplacesRecentOnly(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestStudio(t, gw)

	first := seedRecent(t, s, gw, 3)
	require.NoError(t, s.ToggleSaved(first[0]))
	require.Len(t, s.Saved(), 1)

	gw.generateFn = func(req types.GenerateRequest) ([]types.PromptEntity, error) {
		return []types.PromptEntity{{ID: "fresh-1", Title: "Fresh", Content: "new prompt"}}, nil
	}
	second, err := s.Generate(context.Background(), types.GenerateRequest{Concept: "pond"})
	require.NoError(t, err)

	assert.Len(t, second, 1)
	assert.Equal(t, second, s.Recent())
	require.Len(t, s.Saved(), 1)
	assert.Equal(t, first[0].ID, s.Saved()[0].ID)
}

func TestGenerateFailureClassified(t *testing.T) {
	gw := &fakeGateway{
		generateFn: func(types.GenerateRequest) ([]types.PromptEntity, error) {
			return nil, errors.New("API key not valid")
		},
	}
	s, _ := newTestStudio(t, gw)

	_, err := s.Generate(context.Background(), types.GenerateRequest{Concept: "pond"})
	require.Error(t, err)
	var serr *types.ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, types.ErrAPI, serr.Kind)
	assert.Empty(t, s.Recent())
}

func TestToggleSavedIdempotentPair(t *testing.T) {
	gw := &fakeGateway{}
	s, adapter := newTestStudio(t, gw)
	entities := seedRecent(t, s, gw, 2)

	require.NoError(t, s.ToggleSaved(entities[0]))
	require.NoError(t, s.ToggleSaved(entities[1]))

	// Front insert: last toggled first.
	saved := s.Saved()
	require.Len(t, saved, 2)
	assert.Equal(t, entities[1].ID, saved[0].ID)
	assert.Equal(t, entities[0].ID, saved[1].ID)
	assert.True(t, s.IsSaved(entities[0].ID))

	// Toggling again removes, restoring the starting state.
	require.NoError(t, s.ToggleSaved(entities[0]))
	require.NoError(t, s.ToggleSaved(entities[1]))
	assert.Empty(t, s.Saved())
	assert.False(t, s.IsSaved(entities[0].ID))

	// Every toggle synchronized the full collection to the adapter.
	assert.Equal(t, 4, adapter.Puts[store.KeySavedPrompts])
}

func TestEditContentPropagatesToBothCollections(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestStudio(t, gw)
	entities := seedRecent(t, s, gw, 2)
	require.NoError(t, s.ToggleSaved(entities[0]))

	require.NoError(t, s.EditContent(entities[0].ID, "rewritten"))

	assert.Equal(t, "rewritten", s.Recent()[0].Content)
	assert.Equal(t, "rewritten", s.Saved()[0].Content)

	// An id present in only one collection leaves the other alone.
	require.NoError(t, s.EditContent(entities[1].ID, "also rewritten"))
	assert.Equal(t, "also rewritten", s.Recent()[1].Content)
	require.Len(t, s.Saved(), 1)
	assert.Equal(t, "rewritten", s.Saved()[0].Content)
}

func TestEditContentUnknownID(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestStudio(t, gw)
	require.Error(t, s.EditContent("nope", "text"))
}

func TestEditContentPersistsSaved(t *testing.T) {
	gw := &fakeGateway{}
	s, adapter := newTestStudio(t, gw)
	entities := seedRecent(t, s, gw, 1)
	require.NoError(t, s.ToggleSaved(entities[0]))

	before := adapter.Puts[store.KeySavedPrompts]
	require.NoError(t, s.EditContent(entities[0].ID, "rewritten"))
	assert.Equal(t, before+1, adapter.Puts[store.KeySavedPrompts])

	var persisted []types.PromptEntity
	found, err := adapter.Get(store.KeySavedPrompts, &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "rewritten", persisted[0].Content)
}

func TestTemplatePassthrough(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestStudio(t, gw)

	tmpl, err := s.Template(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Courtyard Oasis", tmpl.Label)
	assert.Equal(t, 1, gw.templateCalls)
}

func TestExportSession(t *testing.T) {
	gw := &fakeGateway{
		generateFn: func(types.GenerateRequest) ([]types.PromptEntity, error) {
			return []types.PromptEntity{{
				ID:               "e-0",
				Title:            "Sunken Terrace",
				Perspective:      "Aerial/Birdseye View",
				Content:          "a sunken terrace with corten steel edges",
				TechnicalDetails: []string{"Corten Steel", "Bioswale"},
			}}, nil
		},
	}
	s, _ := newTestStudio(t, gw)
	seedRecent(t, s, gw, 1)

	out := s.ExportSession(types.TabRecent)
	assert.Contains(t, out, "Entities: 1")
	assert.Contains(t, out, "[1] Sunken Terrace (Aerial/Birdseye View)")
	assert.Contains(t, out, "a sunken terrace with corten steel edges")
	assert.Contains(t, out, "Technical: Corten Steel, Bioswale")
}
