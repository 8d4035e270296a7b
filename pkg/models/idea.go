package models

import (
	"fmt"
	"strings"
	"time"
)

// IdeaStatus is the lifecycle status of an idea
type IdeaStatus string

const (
	StatusDraft    IdeaStatus = "draft"
	StatusActive   IdeaStatus = "active"
	StatusPending  IdeaStatus = "pending"
	StatusRejected IdeaStatus = "rejected"
)

// Statuses lists every lifecycle status in display order
var Statuses = []IdeaStatus{StatusDraft, StatusActive, StatusPending, StatusRejected}

// Valid reports whether s is one of the known lifecycle statuses
func (s IdeaStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusPending, StatusRejected:
		return true
	}
	return false
}

// Visibility controls who can see an idea on the investor side
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Idea is one innovator idea as cached on the client.
// The server owns it; ID, counters and timestamps are server-assigned.
type Idea struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Status      IdeaStatus `json:"status"`
	Visibility  Visibility `json:"visibility,omitempty"`
	Views       int        `json:"views"`
	Interests   int        `json:"interests"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Clone returns a copy that shares no slices with i
func (i Idea) Clone() Idea {
	if i.Tags != nil {
		i.Tags = append([]string(nil), i.Tags...)
	}
	return i
}

// IdeaDraft is the create payload for a not-yet-persisted idea
type IdeaDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Status      IdeaStatus `json:"status"`
	Visibility  Visibility `json:"visibility"`
}

// WithDefaults fills the status and visibility the submit form preselects
func (d IdeaDraft) WithDefaults() IdeaDraft {
	if d.Status == "" {
		d.Status = StatusDraft
	}
	if d.Visibility == "" {
		d.Visibility = VisibilityPublic
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return d
}

// HasContent reports whether the draft carries a title or a description
func (d IdeaDraft) HasContent() bool {
	return strings.TrimSpace(d.Title) != "" || strings.TrimSpace(d.Description) != ""
}

// IdeaPatch is a partial update; nil fields are left untouched
type IdeaPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Tags        *[]string   `json:"tags,omitempty"`
	Status      *IdeaStatus `json:"status,omitempty"`
	Visibility  *Visibility `json:"visibility,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p IdeaPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.Tags == nil && p.Status == nil && p.Visibility == nil
}

// Apply overlays the patch on a copy of idea
func (p IdeaPatch) Apply(idea Idea) Idea {
	out := idea.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Tags != nil {
		out.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Visibility != nil {
		out.Visibility = *p.Visibility
	}
	return out
}

// IdeaFields is an idea as the server echoes it after an update. Only the
// fields present in the response are non-nil.
type IdeaFields struct {
	ID          *string     `json:"id"`
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Category    *string     `json:"category"`
	Tags        *[]string   `json:"tags"`
	Status      *IdeaStatus `json:"status"`
	Visibility  *Visibility `json:"visibility"`
	Views       *int        `json:"views"`
	Interests   *int        `json:"interests"`
	CreatedAt   *time.Time  `json:"created_at"`
	UpdatedAt   *time.Time  `json:"updated_at"`
}

// IsEmpty reports whether the response carried no idea fields
func (f IdeaFields) IsEmpty() bool {
	return f.ID == nil && f.Title == nil && f.Description == nil && f.Category == nil &&
		f.Tags == nil && f.Status == nil && f.Visibility == nil && f.Views == nil &&
		f.Interests == nil && f.CreatedAt == nil && f.UpdatedAt == nil
}

// Apply overlays the present fields on a copy of idea. The ID is never
// changed; a null or empty value in the response does not blank a field.
func (f IdeaFields) Apply(idea Idea) Idea {
	out := idea.Clone()
	if f.Title != nil {
		out.Title = *f.Title
	}
	if f.Description != nil {
		out.Description = *f.Description
	}
	if f.Category != nil {
		out.Category = *f.Category
	}
	if f.Tags != nil {
		out.Tags = append([]string{}, (*f.Tags)...)
	}
	if f.Status != nil && *f.Status != "" {
		out.Status = *f.Status
	}
	if f.Visibility != nil && *f.Visibility != "" {
		out.Visibility = *f.Visibility
	}
	if f.Views != nil {
		out.Views = *f.Views
	}
	if f.Interests != nil {
		out.Interests = *f.Interests
	}
	if f.CreatedAt != nil && !f.CreatedAt.IsZero() {
		out.CreatedAt = *f.CreatedAt
	}
	if f.UpdatedAt != nil && !f.UpdatedAt.IsZero() {
		out.UpdatedAt = *f.UpdatedAt
	}
	return out
}

// StatusFilter selects which lifecycle status the list view shows
type StatusFilter string

const (
	FilterAll      StatusFilter = "all"
	FilterDraft    StatusFilter = StatusFilter(StatusDraft)
	FilterActive   StatusFilter = StatusFilter(StatusActive)
	FilterPending  StatusFilter = StatusFilter(StatusPending)
	FilterRejected StatusFilter = StatusFilter(StatusRejected)
)

// Matches reports whether an idea with status s passes the filter
func (f StatusFilter) Matches(s IdeaStatus) bool {
	return f == FilterAll || f == "" || IdeaStatus(f) == s
}

// ParseStatusFilter accepts "all" or any lifecycle status, case-insensitively
func ParseStatusFilter(v string) (StatusFilter, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == string(FilterAll) {
		return FilterAll, nil
	}
	if IdeaStatus(v).Valid() {
		return StatusFilter(v), nil
	}
	return "", fmt.Errorf("unknown status filter %q", v)
}

// SortKey orders the visible list
type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortAlphabetical SortKey = "alphabetical"
	SortMostViewed   SortKey = "most-viewed"
	SortMostInterest SortKey = "most-interest"
)

// SortKeys lists every sort key in the order the sort menu shows them
var SortKeys = []SortKey{SortNewest, SortOldest, SortAlphabetical, SortMostViewed, SortMostInterest}

// ParseSortKey accepts a sort key name, case-insensitively
func ParseSortKey(v string) (SortKey, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return SortNewest, nil
	}
	for _, k := range SortKeys {
		if string(k) == v {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", v)
}
