// Package coordinator applies idea mutations against the backend and then
// reconciles the local store with the outcome.
//
// Every mutation is pessimistic: the store changes only after the server
// confirms. Nothing is retried automatically. BulkDelete is the one operation
// that may leave the store partially changed, and it reports exactly which ids
// were removed.
package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"innovator-portal/pkg/ideas"
	"innovator-portal/pkg/models"
	"innovator-portal/pkg/store"
)

// Remote is the backend the coordinator drives. *ideas.Client implements it.
type Remote interface {
	List(ctx context.Context, token string) ([]models.Idea, error)
	Create(ctx context.Context, token string, draft models.IdeaDraft) (models.Idea, error)
	Update(ctx context.Context, token, id string, patch models.IdeaPatch) (models.IdeaFields, error)
	Delete(ctx context.Context, token, id string) error
}

// TokenSource supplies the current bearer token; "" means signed out.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns itself.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// MaxBulkConcurrency bounds parallel deletes in BulkDelete.
const MaxBulkConcurrency = 4

// Coordinator owns the mutation flow for one list view.
type Coordinator struct {
	remote Remote
	store  *store.Store
	tokens TokenSource
	logger *zap.Logger

	bulkConcurrency int
	stateHook       func(OpKey, OpState)

	mu     sync.Mutex
	states map[OpKey]OpState

	disposed atomic.Bool
	// mutations counts store changes applied from settled mutations; Refresh
	// compares it across its flight.
	mutations atomic.Uint64
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBulkConcurrency sets how many deletes BulkDelete keeps in flight.
// 1 (the default) deletes sequentially. Values are clamped to
// [1, MaxBulkConcurrency].
func WithBulkConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n < 1 {
			n = 1
		}
		if n > MaxBulkConcurrency {
			n = MaxBulkConcurrency
		}
		c.bulkConcurrency = n
	}
}

// WithStateHook registers fn to observe every operation state transition.
// fn runs synchronously on the goroutine performing the operation.
func WithStateHook(fn func(OpKey, OpState)) Option {
	return func(c *Coordinator) { c.stateHook = fn }
}

// New creates a coordinator that mutates st through remote.
func New(remote Remote, st *store.Store, tokens TokenSource, opts ...Option) *Coordinator {
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Coordinator{
		remote:          remote,
		store:           st,
		tokens:          tokens,
		logger:          zap.NewNop(),
		bulkConcurrency: 1,
		states:          make(map[OpKey]OpState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the store this coordinator reconciles.
func (c *Coordinator) Store() *store.Store { return c.store }

// Dispose detaches the coordinator from its view. Operations that settle
// afterwards still return their results but no longer touch the store.
func (c *Coordinator) Dispose() {
	c.disposed.Store(true)
}

func (c *Coordinator) Disposed() bool { return c.disposed.Load() }

// Refresh replaces the store contents with a fresh server snapshot. The
// snapshot is authoritative: a mutation that settles while the refresh is in
// flight may be overwritten if the server answered the list request first.
func (c *Coordinator) Refresh(ctx context.Context) error {
	key := OpKey{Kind: OpRefresh}
	token, err := c.begin(key)
	if err != nil {
		return err
	}

	before := c.mutations.Load()
	items, err := c.remote.List(ctx, token)
	if err != nil {
		return c.fail(key, err)
	}

	if !c.apply(key, func() { c.store.SetItems(items) }) {
		return c.succeed(key)
	}
	if raced := c.mutations.Load() - before; raced > 0 {
		c.logger.Warn("refresh snapshot replaced the store after concurrent mutations settled",
			zap.Uint64("mutations", raced),
			zap.Int("items", len(items)))
	}
	c.logger.Debug("refreshed ideas", zap.Int("items", len(items)))
	return c.succeed(key)
}

// Create validates draft locally, submits it, and inserts the stored idea.
func (c *Coordinator) Create(ctx context.Context, draft models.IdeaDraft) (models.Idea, error) {
	key := OpKey{Kind: OpCreate}
	token, err := c.begin(key)
	if err != nil {
		return models.Idea{}, err
	}
	if err := validateDraft(draft); err != nil {
		return models.Idea{}, c.fail(key, err)
	}

	created, err := c.remote.Create(ctx, token, draft)
	if err != nil {
		return models.Idea{}, c.fail(key, err)
	}

	c.apply(key, func() { c.store.Upsert(created) })
	c.logger.Info("idea created", zap.String("id", created.ID))
	return created, c.succeed(key)
}

// Update sends patch for id and merges the confirmed result into the cached
// idea: the patch first, then whatever fields the server echoed back. Fields
// the response leaves out keep their cached values. The store is untouched
// when the server rejects the update, and an id that is not cached is left
// for the next Refresh to bring in.
func (c *Coordinator) Update(ctx context.Context, id string, patch models.IdeaPatch) (models.Idea, error) {
	key := OpKey{Kind: OpUpdate, ID: id}
	token, err := c.begin(key)
	if err != nil {
		return models.Idea{}, err
	}
	if err := validatePatch(patch); err != nil {
		return models.Idea{}, c.fail(key, err)
	}

	fields, err := c.remote.Update(ctx, token, id, patch)
	if err != nil {
		return models.Idea{}, c.fail(key, err)
	}

	merge := func(idea models.Idea) models.Idea { return fields.Apply(patch.Apply(idea)) }

	cached, ok := c.store.Get(id)
	if !ok {
		cached = models.Idea{ID: id}
	}
	merged := merge(cached)
	c.apply(key, func() {
		if stored, ok := c.store.Merge(id, merge); ok {
			merged = stored
			return
		}
		c.logger.Debug("updated idea not cached; waiting for refresh", zap.String("id", id))
	})
	c.logger.Info("idea updated", zap.String("id", id))
	return merged, c.succeed(key)
}

// Delete removes id on the server, then from the store.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	key := OpKey{Kind: OpDelete, ID: id}
	token, err := c.begin(key)
	if err != nil {
		return err
	}

	if err := c.remote.Delete(ctx, token, id); err != nil {
		return c.fail(key, err)
	}

	c.apply(key, func() { c.store.Remove(id) })
	c.logger.Info("idea deleted", zap.String("id", id))
	return c.succeed(key)
}

// DeleteSelected bulk-deletes the store's current selection.
func (c *Coordinator) DeleteSelected(ctx context.Context) (BulkResult, error) {
	return c.BulkDelete(ctx, c.store.Selection())
}

// BulkDelete issues one delete per id and never stops at the first failure.
// Once every attempt has settled, the ids that succeeded are removed from the
// store and the ids that failed stay. The returned error is non-nil only when
// the batch could not start (no token); per-id failures are in the result.
func (c *Coordinator) BulkDelete(ctx context.Context, ids []string) (BulkResult, error) {
	key := OpKey{Kind: OpBulkDelete}
	token, err := c.begin(key)
	if err != nil {
		return BulkResult{}, err
	}

	ids = dedupe(ids)
	errs := make([]error, len(ids))

	// Each goroutine writes only its own slot, and a failed delete is
	// recorded rather than returned, so the group never cancels siblings.
	var g errgroup.Group
	g.SetLimit(c.bulkConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = c.remote.Delete(ctx, token, id)
			return nil
		})
	}
	_ = g.Wait()

	result := BulkResult{
		Succeeded: make([]string, 0, len(ids)),
		Failed:    make([]string, 0),
		Errors:    make(map[string]error),
	}
	for i, id := range ids {
		if errs[i] != nil {
			result.Failed = append(result.Failed, id)
			result.Errors[id] = errs[i]
			c.logger.Warn("bulk delete: idea not deleted", zap.String("id", id), zap.Error(errs[i]))
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	if len(result.Succeeded) > 0 {
		c.apply(key, func() { c.store.RemoveAll(result.Succeeded) })
	}

	c.logger.Info("bulk delete finished",
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))

	if len(result.Failed) > 0 {
		c.setState(key, StateFailed)
	} else {
		c.setState(key, StateSucceeded)
	}
	return result, nil
}

// begin moves key to Pending and resolves the token. A missing token fails
// the operation before any request.
func (c *Coordinator) begin(key OpKey) (string, error) {
	c.setState(key, StatePending)
	token := strings.TrimSpace(c.tokens.Token())
	if token == "" {
		return "", c.fail(key, ideas.ErrAuthRequired)
	}
	return token, nil
}

func (c *Coordinator) fail(key OpKey, err error) error {
	c.setState(key, StateFailed)
	level := c.logger.Warn
	if errors.Is(err, ideas.ErrAuthRequired) || ideas.KindOf(err) == ideas.KindValidation {
		level = c.logger.Debug
	}
	level("operation failed",
		zap.String("op", key.String()),
		zap.String("kind", ideas.KindOf(err).String()),
		zap.Error(err))
	return err
}

func (c *Coordinator) succeed(key OpKey) error {
	c.setState(key, StateSucceeded)
	return nil
}

// apply runs fn against the store unless the coordinator has been disposed.
// It reports whether fn ran.
func (c *Coordinator) apply(key OpKey, fn func()) bool {
	if c.disposed.Load() {
		c.logger.Debug("discarding result for disposed view", zap.String("op", key.String()))
		return false
	}
	fn()
	if key.Kind != OpRefresh {
		c.mutations.Add(1)
	}
	return true
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
