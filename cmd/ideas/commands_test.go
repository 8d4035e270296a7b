package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innovator-portal/pkg/ideas"
	"innovator-portal/pkg/ideastest"
	"innovator-portal/pkg/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListAndBulkDelete(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	srv := ideastest.NewServer(t)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	srv.Seed(
		models.Idea{ID: "1", Title: "Water ATM", Status: models.StatusActive, CreatedAt: base},
		models.Idea{ID: "2", Title: "Clinic SMS", Status: models.StatusRejected, CreatedAt: base.Add(time.Hour)},
		models.Idea{ID: "3", Title: "Brick press", Status: models.StatusRejected, CreatedAt: base.Add(2 * time.Hour)},
	)
	global := []string{"--api-url", srv.URL, "--token", srv.Token()}

	out, err := run(t, append([]string{"list", "--json", "--sort", "alphabetical"}, global...)...)
	require.NoError(t, err)
	var listed []models.Idea
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 3)
	assert.Equal(t, "Brick press", listed[0].Title)

	srv.Reject(http.MethodDelete, "3", http.StatusForbidden, "Locked")
	out, err = run(t, append([]string{"bulk-delete", "--visible", "--status", "rejected"}, global...)...)
	assert.Error(t, err)
	assert.Contains(t, out, "Deleted 1 of 2 ideas")
	assert.Contains(t, out, "3: Locked")

	remaining := srv.Ideas()
	require.Len(t, remaining, 2)
	assert.Equal(t, "1", remaining[0].ID)
	assert.Equal(t, "3", remaining[1].ID)
}

func TestMissingTokenFailsBeforeRequest(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("INNOVATOR_ACCESS_TOKEN", "")
	srv := ideastest.NewServer(t)

	_, err := run(t, "delete", "42", "--api-url", srv.URL, "--token", "")
	assert.ErrorIs(t, err, ideas.ErrAuthRequired)
	assert.Equal(t, 3, exitCode(err))
	assert.Zero(t, srv.Requests())
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Not yours", describe(&ideas.RemoteRejectedError{Status: 403, Message: "Not yours"}))
	assert.Equal(t, "boom", describe(errors.New("boom")))
	assert.Equal(t, 2, exitCode(&ideas.ValidationError{Message: "x"}))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestPrintIdeas(t *testing.T) {
	var buf bytes.Buffer
	printIdeas(&buf, nil)
	assert.Equal(t, "No ideas match.\n", buf.String())

	buf.Reset()
	printIdeas(&buf, []models.Idea{{ID: "7", Title: strings.Repeat("x", 60), Status: models.StatusDraft, Views: 3}})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], strings.Repeat("x", 39)+"…")

	buf.Reset()
	printCounts(&buf, map[models.StatusFilter]int{models.FilterAll: 3, models.FilterDraft: 2, models.FilterActive: 1})
	assert.Equal(t, "all 3 · draft 2 · active 1 · pending 0 · rejected 0\n", buf.String())
}
