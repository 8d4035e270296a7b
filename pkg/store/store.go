// Package store holds the in-memory copy of the idea collection behind a list
// view, together with the view's filter, search, sort and selection state.
//
// VisibleItems is a pure derivation over that state: filter by status, then by
// search term, then a stable sort by the sort key. It is recomputed on every
// call and never mutates the store.
package store

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"innovator-portal/pkg/models"
)

// Store is the client-side state of one idea list view.
// The zero value is not usable; call New.
type Store struct {
	mu sync.RWMutex

	items map[string]models.Idea
	// order holds ids in insertion order; stable sorts fall back to it.
	order []string

	filter models.StatusFilter
	search string
	sort   models.SortKey

	// selection is always a subset of the keys of items.
	selection map[string]struct{}
}

// New returns an empty store showing all statuses, newest first.
func New() *Store {
	return &Store{
		items:     make(map[string]models.Idea),
		filter:    models.FilterAll,
		sort:      models.SortNewest,
		selection: make(map[string]struct{}),
	}
}

// SetItems replaces the whole collection with a fresh server snapshot.
// Duplicate ids keep the position of their first occurrence and the value of
// their last. Selected ids that are no longer present are dropped.
func (s *Store) SetItems(ideas []models.Idea) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]models.Idea, len(ideas))
	s.order = s.order[:0]
	for _, idea := range ideas {
		if idea.ID == "" {
			continue
		}
		if _, seen := s.items[idea.ID]; !seen {
			s.order = append(s.order, idea.ID)
		}
		s.items[idea.ID] = idea.Clone()
	}

	for id := range s.selection {
		if _, ok := s.items[id]; !ok {
			delete(s.selection, id)
		}
	}
}

// Upsert inserts idea, or replaces the stored idea with the same id in place.
// It reports whether the id was new. Ideas without an id are ignored.
func (s *Store) Upsert(idea models.Idea) bool {
	if idea.ID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.items[idea.ID]
	if !exists {
		s.order = append(s.order, idea.ID)
	}
	s.items[idea.ID] = idea.Clone()
	return !exists
}

// Merge replaces the stored idea for id with fn applied to it, keeping its
// position. It reports false, without calling fn, when id is not stored.
func (s *Store) Merge(id string, fn func(models.Idea) models.Idea) (models.Idea, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[id]
	if !ok {
		return models.Idea{}, false
	}
	next := fn(cur.Clone())
	next.ID = id
	s.items[id] = next.Clone()
	return next, true
}

// Remove deletes id and drops it from the selection. It reports whether the
// id was present.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

// RemoveAll deletes every id in ids under a single lock and returns how many
// were present.
func (s *Store) RemoveAll(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, id := range ids {
		if s.removeLocked(id) {
			n++
		}
	}
	return n
}

func (s *Store) removeLocked(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	delete(s.selection, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Reset clears items, selection, and restores the default filter, search and
// sort. Used when the view is left.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]models.Idea)
	s.order = nil
	s.selection = make(map[string]struct{})
	s.filter = models.FilterAll
	s.search = ""
	s.sort = models.SortNewest
}

func (s *Store) SetFilter(f models.StatusFilter) {
	if f == "" {
		f = models.FilterAll
	}
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

func (s *Store) SetSearch(term string) {
	s.mu.Lock()
	s.search = term
	s.mu.Unlock()
}

func (s *Store) SetSort(k models.SortKey) {
	if k == "" {
		k = models.SortNewest
	}
	s.mu.Lock()
	s.sort = k
	s.mu.Unlock()
}

func (s *Store) Filter() models.StatusFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *Store) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

func (s *Store) Sort() models.SortKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// Get returns a copy of the stored idea.
func (s *Store) Get(id string) (models.Idea, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idea, ok := s.items[id]
	if !ok {
		return models.Idea{}, false
	}
	return idea.Clone(), true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Items returns every stored idea in insertion order, ignoring filter,
// search and sort.
func (s *Store) Items() []models.Idea {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Idea, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

// Counts returns the number of stored ideas per status. FilterAll holds the
// total.
func (s *Store) Counts() map[models.StatusFilter]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[models.StatusFilter]int{models.FilterAll: len(s.items)}
	for _, st := range models.Statuses {
		counts[models.StatusFilter(st)] = 0
	}
	for _, idea := range s.items {
		counts[models.StatusFilter(idea.Status)]++
	}
	return counts
}

// ToggleSelect flips the selection of id. Ids that are not stored cannot be
// selected; toggling one is a no-op that returns false.
func (s *Store) ToggleSelect(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false
	}
	if _, selected := s.selection[id]; selected {
		delete(s.selection, id)
		return false
	}
	s.selection[id] = struct{}{}
	return true
}

// SelectAll selects exactly the ideas currently visible, replacing any
// previous selection. Ideas hidden by the filter or search are not selected.
func (s *Store) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = make(map[string]struct{})
	for _, idea := range s.visibleLocked() {
		s.selection[idea.ID] = struct{}{}
	}
}

func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selection = make(map[string]struct{})
	s.mu.Unlock()
}

func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selection[id]
	return ok
}

// Selection returns the selected ids in insertion order.
func (s *Store) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.selection))
	for _, id := range s.order {
		if _, ok := s.selection[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// VisibleItems derives the list the view renders.
func (s *Store) VisibleItems() []models.Idea {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibleLocked()
}

func (s *Store) visibleLocked() []models.Idea {
	term := strings.ToLower(s.search)

	out := make([]models.Idea, 0, len(s.order))
	for _, id := range s.order {
		idea := s.items[id]
		if !s.filter.Matches(idea.Status) {
			continue
		}
		if term != "" && !matchesSearch(idea, term) {
			continue
		}
		out = append(out, idea.Clone())
	}

	sortIdeas(out, s.sort)
	return out
}

// matchesSearch reports whether the lowercased term is a substring of the
// title, description, category or any tag.
func matchesSearch(idea models.Idea, term string) bool {
	if strings.Contains(strings.ToLower(idea.Title), term) ||
		strings.Contains(strings.ToLower(idea.Description), term) ||
		strings.Contains(strings.ToLower(idea.Category), term) {
		return true
	}
	for _, tag := range idea.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// sortIdeas orders ideas in place by key. Equal keys keep their incoming
// (insertion) order.
func sortIdeas(ideas []models.Idea, key models.SortKey) {
	var less func(a, b models.Idea) bool

	switch key {
	case models.SortOldest:
		less = func(a, b models.Idea) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case models.SortAlphabetical:
		// Collator buffers are not safe for concurrent use; one per call.
		col := collate.New(language.English)
		less = func(a, b models.Idea) bool { return col.CompareString(a.Title, b.Title) < 0 }
	case models.SortMostViewed:
		less = func(a, b models.Idea) bool { return a.Views > b.Views }
	case models.SortMostInterest:
		less = func(a, b models.Idea) bool { return a.Interests > b.Interests }
	default:
		less = func(a, b models.Idea) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(ideas, func(i, j int) bool { return less(ideas[i], ideas[j]) })
}
