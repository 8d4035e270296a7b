package database

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"innovator-portal/pkg/models"
)

var _ IdeaRepository = (*MemoryDatabase)(nil)

// MemoryDatabase 内存数据库实现（进程退出即丢失）
type MemoryDatabase struct {
	mu sync.RWMutex
	// ideas 按用户分区；order 记录创建顺序
	ideas map[string]map[string]models.Idea
	order map[string][]string
	now   func() time.Time
}

// NewMemoryDatabase 创建内存数据库实例
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		ideas: make(map[string]map[string]models.Idea),
		order: make(map[string][]string),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ListIdeas 列出用户的所有想法
func (db *MemoryDatabase) ListIdeas(ownerID string) ([]models.Idea, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.Idea, 0, len(db.order[ownerID]))
	for _, id := range db.order[ownerID] {
		out = append(out, db.ideas[ownerID][id].Clone())
	}
	return out, nil
}

// CreateIdea 创建想法
func (db *MemoryDatabase) CreateIdea(ownerID string, draft models.IdeaDraft) (models.Idea, error) {
	draft = draft.WithDefaults()
	now := db.now()

	idea := models.Idea{
		ID:          uuid.New().String(),
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Tags:        append([]string{}, draft.Tags...),
		Status:      draft.Status,
		Visibility:  draft.Visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.putLocked(ownerID, idea)
	return idea.Clone(), nil
}

// UpdateIdea 部分更新想法
func (db *MemoryDatabase) UpdateIdea(ownerID, id string, patch models.IdeaPatch) (models.Idea, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, ok := db.ideas[ownerID][id]
	if !ok {
		return models.Idea{}, ErrNotFound
	}
	updated := patch.Apply(existing)
	updated.UpdatedAt = db.now()
	db.ideas[ownerID][id] = updated
	return updated.Clone(), nil
}

// DeleteIdea 删除想法
func (db *MemoryDatabase) DeleteIdea(ownerID, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.ideas[ownerID][id]; !ok {
		return ErrNotFound
	}
	delete(db.ideas[ownerID], id)

	order := db.order[ownerID]
	for i, v := range order {
		if v == id {
			db.order[ownerID] = append(order[:i], order[i+1:]...)
			break
		}
	}
	return nil
}

// Seed 写入完整记录，缺省的ID和时间戳会被补全
func (db *MemoryDatabase) Seed(ownerID string, ideas ...models.Idea) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, idea := range ideas {
		if idea.ID == "" {
			idea.ID = uuid.New().String()
		}
		if idea.Status == "" {
			idea.Status = models.StatusDraft
		} else if !idea.Status.Valid() {
			return fmt.Errorf("seed %s: invalid status %q", idea.ID, idea.Status)
		}
		if idea.CreatedAt.IsZero() {
			idea.CreatedAt = db.now()
		}
		if idea.UpdatedAt.IsZero() {
			idea.UpdatedAt = idea.CreatedAt
		}
		db.putLocked(ownerID, idea.Clone())
	}
	return nil
}

// HealthCheck 健康检查
func (db *MemoryDatabase) HealthCheck() error {
	return nil
}

func (db *MemoryDatabase) putLocked(ownerID string, idea models.Idea) {
	bucket, ok := db.ideas[ownerID]
	if !ok {
		bucket = make(map[string]models.Idea)
		db.ideas[ownerID] = bucket
	}
	if _, exists := bucket[idea.ID]; !exists {
		db.order[ownerID] = append(db.order[ownerID], idea.ID)
	}
	bucket[idea.ID] = idea
}
