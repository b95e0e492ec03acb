package studio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"larchstudio/internal/store"
	"larchstudio/internal/types"
)

func TestShareRequiresResolvedEntity(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestStudio(t, gw)
	entities := seedRecent(t, s, gw, 1)

	require.Error(t, s.ShareToGallery(entities[0].ID))
	assert.Empty(t, s.Gallery())
}

func TestShareSnapshotsNewestFirst(t *testing.T) {
	gw := &fakeGateway{}
	s, adapter := newTestStudio(t, gw)
	entities := seedRecent(t, s, gw, 2)
	resolveEntity(t, s, entities[0])
	resolveEntity(t, s, entities[1])

	require.NoError(t, s.ShareToGallery(entities[0].ID))
	require.NoError(t, s.ShareToGallery(entities[1].ID))

	gallery := s.Gallery()
	require.Len(t, gallery, 2)
	assert.Equal(t, entities[1].Title, gallery[0].Title)
	assert.Equal(t, entities[0].Title, gallery[1].Title)
	assert.Equal(t, fakeArtifact, gallery[0].Artifact)
	assert.NotZero(t, gallery[0].SharedAt)
	assert.Equal(t, 2, adapter.Puts[store.KeyGalleryItems])
}

func TestShareSnapshotIsDetached(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestStudio(t, gw)
	entities := seedRecent(t, s, gw, 1)
	resolveEntity(t, s, entities[0])
	require.NoError(t, s.ShareToGallery(entities[0].ID))

	// Later edits to the entity do not reach the snapshot.
	require.NoError(t, s.EditContent(entities[0].ID, "changed afterwards"))
	assert.Equal(t, entities[0].Content, s.Gallery()[0].Content)
}

func TestGalleryCapEvictsOldest(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestStudio(t, gw)
	entities := seedRecent(t, s, gw, 1)
	resolveEntity(t, s, entities[0])

	s.mu.Lock()
	for i := 0; i < galleryCap; i++ {
		s.gallery = append(s.gallery, types.GalleryItem{Title: fmt.Sprintf("item-%d", i)})
	}
	s.mu.Unlock()

	require.NoError(t, s.ShareToGallery(entities[0].ID))

	gallery := s.Gallery()
	require.Len(t, gallery, galleryCap)
	assert.Equal(t, entities[0].Title, gallery[0].Title)
	// The oldest item fell off the end.
	assert.Equal(t, fmt.Sprintf("item-%d", galleryCap-2), gallery[galleryCap-1].Title)
}

func TestClearGallery(t *testing.T) {
	gw := &fakeGateway{}
	s, adapter := newTestStudio(t, gw)
	entities := seedRecent(t, s, gw, 1)
	resolveEntity(t, s, entities[0])
	require.NoError(t, s.ShareToGallery(entities[0].ID))
	require.NotEmpty(t, s.Gallery())

	require.NoError(t, s.ClearGallery())
	assert.Empty(t, s.Gallery())

	var persisted []types.GalleryItem
	found, err := adapter.Get(store.KeyGalleryItems, &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, persisted)
}
