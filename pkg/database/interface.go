package database

import (
	"errors"

	"innovator-portal/pkg/models"
)

// ErrNotFound 记录不存在（或不属于当前用户）
var ErrNotFound = errors.New("idea not found")

// IdeaRepository 定义想法数据访问接口（模拟后端使用）
type IdeaRepository interface {
	// ListIdeas 按创建顺序返回某个用户的全部想法
	ListIdeas(ownerID string) ([]models.Idea, error)
	// CreateIdea 创建想法并分配ID与时间戳
	CreateIdea(ownerID string, draft models.IdeaDraft) (models.Idea, error)
	// UpdateIdea 部分更新，只修改 patch 中非 nil 的字段
	UpdateIdea(ownerID, id string, patch models.IdeaPatch) (models.Idea, error)
	// DeleteIdea 删除想法
	DeleteIdea(ownerID, id string) error
	// Seed 直接写入完整记录（测试与演示数据用）
	Seed(ownerID string, ideas ...models.Idea) error

	// 健康检查
	HealthCheck() error
}
