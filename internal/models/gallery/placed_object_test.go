package models

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePlacedObjectCreatesThenUpdates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	artist := createUser(t, db, "placer1", true, 0)
	col := createCollection(t, db, artist, "AR Walk", 0, false)
	obj := createObject(t, db, artist, "Statue")

	id := uuid.New()
	first := &PlacedObject{
		ID:           id,
		CollectionID: col.ID,
		ObjectID:     obj.ID,
		Position:     Placement{Lat: 51.92, Lon: 4.48, Y: 1.5},
		Scale:        Transform{X: 1, Y: 1, Z: 1},
	}
	created, err := SavePlacedObject(ctx, db, first)
	require.NoError(t, err)
	assert.True(t, created)

	second := &PlacedObject{
		ID:            id,
		CollectionID:  col.ID,
		ObjectID:      obj.ID,
		Position:      Placement{Lat: 51.93, Lon: 4.49, Z: -2},
		Rotation:      Transform{Y: 90},
		DeviceHeading: 180,
	}
	created, err = SavePlacedObject(ctx, db, second)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := GetPlacedObjectBy(ctx, db, "id = ?", []interface{}{id})
	require.NoError(t, err)
	assert.Equal(t, 51.93, stored.Position.Lat)
	assert.Equal(t, -2.0, stored.Position.Z)
	assert.Equal(t, 90.0, stored.Rotation.Y)
	assert.Equal(t, 180.0, stored.DeviceHeading)
}

func TestSavePlacedObjectKeepsBinding(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	artist := createUser(t, db, "placer2", true, 0)
	col := createCollection(t, db, artist, "Walk A", 0, false)
	other := createCollection(t, db, artist, "Walk B", 0, false)
	obj := createObject(t, db, artist, "Mural")
	obj2 := createObject(t, db, artist, "Arch")

	id := uuid.New()
	_, err := SavePlacedObject(ctx, db, &PlacedObject{ID: id, CollectionID: col.ID, ObjectID: obj.ID})
	require.NoError(t, err)

	// Re-saving under a different collection or object does not rebind.
	moved := &PlacedObject{ID: id, CollectionID: other.ID, ObjectID: obj2.ID}
	created, err := SavePlacedObject(ctx, db, moved)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, col.ID, moved.CollectionID)
	assert.Equal(t, obj.ID, moved.ObjectID)

	stored, err := GetPlacedObjectBy(ctx, db, "id = ?", []interface{}{id})
	require.NoError(t, err)
	assert.Equal(t, col.ID, stored.CollectionID)
	assert.Equal(t, obj.ID, stored.ObjectID)
}

func TestGetPlacedObjectsLoadsObjects(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	artist := createUser(t, db, "placer3", true, 0)
	col := createCollection(t, db, artist, "Sculpture Walk", 0, false)
	a := createObject(t, db, artist, "First")
	b := createObject(t, db, artist, "Second")

	for _, o := range []*Object{a, b} {
		_, err := SavePlacedObject(ctx, db, &PlacedObject{ID: uuid.New(), CollectionID: col.ID, ObjectID: o.ID})
		require.NoError(t, err)
	}

	placed, err := GetPlacedObjects(ctx, db, col.ID)
	require.NoError(t, err)
	require.Len(t, placed, 2)
	for _, p := range placed {
		assert.NotEqual(t, uuid.Nil, p.Object.ID)
		assert.NotEmpty(t, p.Object.Title)
	}
}

func TestDeletePlacedObject(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	artist := createUser(t, db, "placer4", true, 0)
	col := createCollection(t, db, artist, "Short Walk", 0, false)
	obj := createObject(t, db, artist, "Gone Soon")

	id := uuid.New()
	_, err := SavePlacedObject(ctx, db, &PlacedObject{ID: id, CollectionID: col.ID, ObjectID: obj.ID})
	require.NoError(t, err)

	p, err := GetPlacedObjectBy(ctx, db, "id = ?", []interface{}{id})
	require.NoError(t, err)
	require.NoError(t, DeletePlacedObject(ctx, db, p))

	_, err = GetPlacedObjectBy(ctx, db, "id = ?", []interface{}{id})
	require.Error(t, err)
}
