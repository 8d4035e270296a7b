package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innovator-portal/pkg/models"
)

func fixedClock(db *MemoryDatabase, start time.Time) {
	tick := start
	db.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
}

func TestMemoryDatabaseCRUD(t *testing.T) {
	db := NewMemoryDatabase()
	fixedClock(db, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	a, err := db.CreateIdea("u1", models.IdeaDraft{Title: "A"})
	require.NoError(t, err)
	b, err := db.CreateIdea("u1", models.IdeaDraft{Title: "B", Status: models.StatusActive, Visibility: models.VisibilityPrivate})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, models.StatusDraft, a.Status)
	assert.Equal(t, models.VisibilityPublic, a.Visibility)
	assert.Equal(t, []string{}, a.Tags)
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)

	list, err := db.ListIdeas("u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	title := "A2"
	updated, err := db.UpdateIdea("u1", a.ID, models.IdeaPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Title)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(a.UpdatedAt))

	require.NoError(t, db.DeleteIdea("u1", a.ID))
	assert.ErrorIs(t, db.DeleteIdea("u1", a.ID), ErrNotFound)
	_, err = db.UpdateIdea("u1", a.ID, models.IdeaPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)

	list, _ = db.ListIdeas("u1")
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestMemoryDatabaseScopesByOwner(t *testing.T) {
	db := NewMemoryDatabase()
	idea, err := db.CreateIdea("u1", models.IdeaDraft{Title: "mine"})
	require.NoError(t, err)

	assert.ErrorIs(t, db.DeleteIdea("u2", idea.ID), ErrNotFound)
	list, err := db.ListIdeas("u2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryDatabaseSeed(t *testing.T) {
	db := NewMemoryDatabase()
	created := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.Seed("u1",
		models.Idea{ID: "fixed", Title: "kept", Status: models.StatusPending, CreatedAt: created},
		models.Idea{Title: "generated"},
	))

	list, _ := db.ListIdeas("u1")
	require.Len(t, list, 2)
	assert.Equal(t, "fixed", list[0].ID)
	assert.Equal(t, created, list[0].CreatedAt)
	assert.Equal(t, created, list[0].UpdatedAt)
	assert.NotEmpty(t, list[1].ID)
	assert.Equal(t, models.StatusDraft, list[1].Status)

	err := db.Seed("u1", models.Idea{ID: "bad", Status: "archived"})
	assert.Error(t, err)
}

func TestMemoryDatabaseReturnsCopies(t *testing.T) {
	db := NewMemoryDatabase()
	idea, err := db.CreateIdea("u1", models.IdeaDraft{Title: "t", Tags: []string{"x"}})
	require.NoError(t, err)

	idea.Tags[0] = "mutated"
	list, _ := db.ListIdeas("u1")
	assert.Equal(t, []string{"x"}, list[0].Tags)
}
