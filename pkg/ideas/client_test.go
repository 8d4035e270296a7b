package ideas_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innovator-portal/pkg/ideas"
	"innovator-portal/pkg/ideastest"
	"innovator-portal/pkg/models"
)

func ptr[T any](v T) *T { return &v }

func TestClientCRUDRoundTrip(t *testing.T) {
	srv := ideastest.NewServer(t)
	c := ideas.NewClient(srv.URL)
	ctx := context.Background()
	tok := srv.Token()

	created, err := c.Create(ctx, tok, models.IdeaDraft{
		Title:    "Drone pollination",
		Category: "AgriTech",
		Tags:     []string{"drones", "farming"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusDraft, created.Status)
	assert.Equal(t, models.VisibilityPublic, created.Visibility)
	assert.False(t, created.CreatedAt.IsZero())

	list, err := c.List(ctx, tok)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	updated, err := c.Update(ctx, tok, created.ID, models.IdeaPatch{
		Status:      ptr(models.StatusActive),
		Description: ptr("Autonomous pollination for greenhouses"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ID)
	assert.Equal(t, created.ID, *updated.ID)
	merged := updated.Apply(created)
	assert.Equal(t, models.StatusActive, merged.Status)
	assert.Equal(t, "Drone pollination", merged.Title)
	assert.Equal(t, "Autonomous pollination for greenhouses", merged.Description)
	assert.Equal(t, created.CreatedAt, merged.CreatedAt)

	require.NoError(t, c.Delete(ctx, tok, created.ID))
	list, err = c.List(ctx, tok)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClientAuthRequiredIssuesNoRequest(t *testing.T) {
	srv := ideastest.NewServer(t)
	c := ideas.NewClient(srv.URL)
	ctx := context.Background()

	_, err := c.List(ctx, "")
	assert.ErrorIs(t, err, ideas.ErrAuthRequired)
	_, err = c.Create(ctx, "  ", models.IdeaDraft{Title: "x"})
	assert.ErrorIs(t, err, ideas.ErrAuthRequired)
	_, err = c.Update(ctx, "", "", models.IdeaPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, ideas.ErrAuthRequired)
	err = c.Delete(ctx, "", "some-id")
	assert.ErrorIs(t, err, ideas.ErrAuthRequired)

	assert.Equal(t, ideas.KindAuthRequired, ideas.KindOf(err))
	assert.Zero(t, srv.Requests())
}

func TestClientRemoteRejected(t *testing.T) {
	srv := ideastest.NewServer(t)
	c := ideas.NewClient(srv.URL)
	ctx := context.Background()

	tests := []struct {
		name       string
		setup      func()
		call       func() error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "detail string",
			setup:      func() { srv.Reject(http.MethodDelete, "abc", http.StatusForbidden, "Not your idea") },
			call:       func() error { return c.Delete(ctx, srv.Token(), "abc") },
			wantStatus: http.StatusForbidden,
			wantMsg:    "Not your idea",
		},
		{
			name: "validation detail list",
			setup: func() {
				srv.RejectRaw(http.MethodPost, "", http.StatusUnprocessableEntity,
					`{"detail":[{"loc":["body","title"],"msg":"field required"},{"msg":"too short"}]}`)
			},
			call: func() error {
				_, err := c.Create(ctx, srv.Token(), models.IdeaDraft{Title: "t"})
				return err
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "field required; too short",
		},
		{
			name:       "legacy envelope",
			setup:      func() { srv.RejectRaw(http.MethodGet, "", http.StatusConflict, `{"success":false,"error":{"code":"CONFLICT","message":"busy"}}`) },
			call:       func() error { _, err := c.List(ctx, srv.Token()); return err },
			wantStatus: http.StatusConflict,
			wantMsg:    "busy",
		},
		{
			name:       "non-json body",
			setup:      func() { srv.RejectRaw(http.MethodPut, "xyz", http.StatusBadGateway, "<html>bad gateway</html>") },
			call:       func() error { _, err := c.Update(ctx, srv.Token(), "xyz", models.IdeaPatch{Title: ptr("t")}); return err },
			wantStatus: http.StatusBadGateway,
			wantMsg:    "request failed with status 502 (Bad Gateway)",
		},
		{
			name:       "real not found",
			setup:      func() {},
			call:       func() error { return c.Delete(ctx, srv.Token(), "missing") },
			wantStatus: http.StatusNotFound,
			wantMsg:    "Idea not found",
		},
		{
			name:       "invalid token",
			setup:      func() {},
			call:       func() error { _, err := c.List(ctx, "not-a-jwt"); return err },
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Could not validate credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv.Clear()
			tt.setup()

			err := tt.call()
			var rejected *ideas.RemoteRejectedError
			require.True(t, errors.As(err, &rejected), "got %v", err)
			assert.Equal(t, tt.wantStatus, rejected.Status)
			assert.Equal(t, tt.wantMsg, rejected.Message)
			assert.Equal(t, ideas.KindRemoteRejected, ideas.KindOf(err))
			assert.Equal(t, tt.wantMsg, ideas.UserMessage(err))
		})
	}
}

func TestClientNetworkUnavailable(t *testing.T) {
	t.Run("dropped connection", func(t *testing.T) {
		srv := ideastest.NewServer(t)
		srv.Drop(http.MethodDelete, "abc")

		err := ideas.NewClient(srv.URL).Delete(context.Background(), srv.Token(), "abc")
		assert.ErrorIs(t, err, ideas.ErrNetworkUnavailable)
		assert.Equal(t, ideas.KindNetworkUnavailable, ideas.KindOf(err))
	})

	t.Run("nothing listening", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := ideas.NewClient(url).List(context.Background(), "tok")
		var netErr *ideas.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, "list", netErr.Op)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		_, err := ideas.NewClient(srv.URL, ideas.WithTimeout(50*time.Millisecond)).List(context.Background(), "tok")
		assert.ErrorIs(t, err, ideas.ErrNetworkUnavailable)
	})

	t.Run("cancelled context keeps cause", func(t *testing.T) {
		srv := ideastest.NewServer(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := ideas.NewClient(srv.URL).List(ctx, srv.Token())
		assert.ErrorIs(t, err, ideas.ErrNetworkUnavailable)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClientResponseShapes(t *testing.T) {
	bodies := map[string]string{
		"bare":      `[{"id":"1","title":"A","status":"draft","created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-02T03:04:05Z"}]`,
		"data":      `{"success":true,"data":[{"id":"1","title":"A","status":"draft","created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-02T03:04:05Z"}]}`,
		"ideas key": `{"ideas":[{"id":"1","title":"A","status":"draft","created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-02T03:04:05Z"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			list, err := ideas.NewClient(srv.URL).List(context.Background(), "tok")
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "1", list[0].ID)
			assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), list[0].CreatedAt)
		})
	}

	t.Run("malformed list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"unexpected":true}`))
		}))
		defer srv.Close()

		_, err := ideas.NewClient(srv.URL).List(context.Background(), "tok")
		assert.Equal(t, ideas.KindRemoteRejected, ideas.KindOf(err))
	})

	t.Run("update acknowledged without body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		fields, err := ideas.NewClient(srv.URL).Update(context.Background(), "tok", "1", models.IdeaPatch{Title: ptr("t")})
		require.NoError(t, err)
		assert.True(t, fields.IsEmpty())
	})

	t.Run("update echoes a subset", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"id":"1","title":"Renamed"}}`))
		}))
		defer srv.Close()

		fields, err := ideas.NewClient(srv.URL).Update(context.Background(), "tok", "1", models.IdeaPatch{Title: ptr("Renamed")})
		require.NoError(t, err)
		require.NotNil(t, fields.Title)
		assert.Equal(t, "Renamed", *fields.Title)
		assert.Nil(t, fields.Status)
		assert.Nil(t, fields.Views)
		assert.Nil(t, fields.CreatedAt)
	})
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", ideas.UserMessage(nil))
	assert.Equal(t, "Please sign in to continue.", ideas.UserMessage(ideas.ErrAuthRequired))
	assert.Equal(t, "need a title", ideas.UserMessage(&ideas.ValidationError{Message: "need a title"}))
	assert.Contains(t, ideas.UserMessage(&ideas.NetworkError{Op: "list", Err: errors.New("boom")}), "try again")
	assert.Equal(t, ideas.KindUnknown, ideas.KindOf(errors.New("other")))
}

func TestClientLeavesSharedHTTPClientAlone(t *testing.T) {
	shared := &http.Client{}
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := ideas.NewClient(srv.URL, ideas.WithHTTPClient(shared), ideas.WithTimeout(50*time.Millisecond))
	assert.Zero(t, shared.Timeout)

	_, err := c.List(context.Background(), "tok")
	assert.ErrorIs(t, err, ideas.ErrNetworkUnavailable)
	assert.Zero(t, shared.Timeout)
}
