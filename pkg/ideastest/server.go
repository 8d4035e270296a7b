// Package ideastest runs the mock idea backend under httptest, with hooks to
// inject server rejections and dropped connections per endpoint and id.
package ideastest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"innovator-portal/api"
	"innovator-portal/pkg/config"
	"innovator-portal/pkg/database"
	"innovator-portal/pkg/models"
	"innovator-portal/pkg/utils"
)

// Secret signs the tokens handed out by Server.Token.
const Secret = "ideastest-secret"

// DefaultPrincipal owns the ideas seeded through Server.Seed.
var DefaultPrincipal = models.Principal{
	UserID: "innovator-1",
	Email:  "founder@example.com",
	Role:   api.RoleInnovator,
}

type faultKey struct {
	method string
	id     string
}

type fault struct {
	status int
	body   string
	drop   bool
}

// Server is a running mock backend.
type Server struct {
	*httptest.Server

	DB  *database.MemoryDatabase
	jwt *utils.JWTService

	mu       sync.Mutex
	faults   map[faultKey]fault
	requests atomic.Int64
}

// NewServer starts a mock backend that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()

	cfg := &config.Config{
		Environment:    "test",
		JWTSecret:      Secret,
		AllowedOrigins: []string{"*"},
	}
	s := &Server{
		DB:     database.NewMemoryDatabase(),
		jwt:    utils.NewJWTService(Secret),
		faults: make(map[faultKey]fault),
	}
	router := api.NewRouter(cfg, s.DB, nil)
	s.Server = httptest.NewServer(s.intercept(router))
	t.Cleanup(s.Close)
	return s
}

// Token returns a valid access token for DefaultPrincipal.
func (s *Server) Token() string {
	return s.TokenFor(DefaultPrincipal, time.Hour)
}

// TokenFor returns an access token for p valid for ttl.
func (s *Server) TokenFor(p models.Principal, ttl time.Duration) string {
	tok, _, err := s.jwt.GenerateAccessToken(p, ttl)
	if err != nil {
		panic("ideastest: sign token: " + err.Error())
	}
	return tok
}

// Seed stores ideas for DefaultPrincipal, keeping their ids and timestamps.
func (s *Server) Seed(ideas ...models.Idea) {
	if err := s.DB.Seed(DefaultPrincipal.UserID, ideas...); err != nil {
		panic("ideastest: " + err.Error())
	}
}

// Reject makes requests with method for id answer status with a
// {"detail": detail} body. id is "" for list and create.
func (s *Server) Reject(method, id string, status int, detail string) {
	s.RejectRaw(method, id, status, `{"detail":`+quote(detail)+`}`)
}

// RejectRaw is Reject with a verbatim response body.
func (s *Server) RejectRaw(method, id string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[faultKey{method, id}] = fault{status: status, body: body}
}

// Drop makes requests with method for id close the connection without a
// response.
func (s *Server) Drop(method, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[faultKey{method, id}] = fault{drop: true}
}

// Clear removes every injected fault.
func (s *Server) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[faultKey]fault)
}

// Requests is the number of requests that reached the server.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Ideas returns what the backend currently stores for DefaultPrincipal.
func (s *Server) Ideas() []models.Idea {
	list, _ := s.DB.ListIdeas(DefaultPrincipal.UserID)
	return list
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)

		s.mu.Lock()
		f, ok := s.faults[faultKey{r.Method, targetID(r.URL.Path)}]
		s.mu.Unlock()

		switch {
		case !ok:
			next.ServeHTTP(w, r)
		case f.drop:
			hj, canHijack := w.(http.Hijacker)
			if !canHijack {
				panic("ideastest: response writer cannot hijack")
			}
			conn, _, err := hj.Hijack()
			if err == nil {
				conn.Close()
			}
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
		}
	})
}

// targetID extracts {id} from update/delete paths; other paths have none.
func targetID(p string) string {
	if strings.Contains(p, "/update-idea/") || strings.Contains(p, "/delete-idea/") {
		return path.Base(p)
	}
	return ""
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
