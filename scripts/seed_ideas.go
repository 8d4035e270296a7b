package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"innovator-portal/pkg/config"
	"innovator-portal/pkg/coordinator"
	"innovator-portal/pkg/ideas"
	"innovator-portal/pkg/models"
	"innovator-portal/pkg/store"
)

// 向运行中的后端（通常是 ideas serve-mock）写入演示想法
// 用法: go run scripts/seed_ideas.go [api-url]
func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("❌ Failed to load config", zap.Error(err))
	}
	if len(os.Args) > 1 {
		cfg.APIBaseURL = os.Args[1]
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("❌ Invalid config", zap.Error(err))
	}

	fmt.Printf("🔗 Connecting to backend: %s (token %s)\n", cfg.APIBaseURL, maskToken(cfg.AccessToken))

	client := ideas.NewClient(cfg.APIBaseURL, ideas.WithTimeout(cfg.RequestTimeout), ideas.WithLogger(logger))
	st := store.New()
	c := coordinator.New(client, st, coordinator.StaticToken(cfg.AccessToken), coordinator.WithLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// 测试连接
	if err := c.Refresh(ctx); err != nil {
		logger.Fatal("❌ Failed to reach backend", zap.String("reason", ideas.UserMessage(err)), zap.Error(err))
	}
	fmt.Printf("✅ Connected, %d existing ideas\n", st.Len())

	fmt.Println("📄 Submitting demo ideas...")
	for _, d := range demoDrafts() {
		created, err := c.Create(ctx, d)
		if err != nil {
			fmt.Printf("⚠️  Warning: %q not created: %s\n", d.Title, ideas.UserMessage(err))
			continue
		}
		fmt.Printf("✅ %s: %s\n", created.ID, created.Title)
	}

	// 验证写入结果
	fmt.Println("🔍 Verifying...")
	if err := c.Refresh(ctx); err != nil {
		logger.Fatal("❌ Failed to list ideas", zap.Error(err))
	}
	counts := st.Counts()
	for _, s := range models.Statuses {
		fmt.Printf("   %-9s %d\n", s, counts[models.StatusFilter(s)])
	}

	fmt.Printf("🎉 Seeding completed! %d ideas in total. Try 'ideas list'.\n", counts[models.FilterAll])
}

func demoDrafts() []models.IdeaDraft {
	return []models.IdeaDraft{
		{Title: "Solar-powered cold storage", Description: "Off-grid cooling for smallholder farmers",
			Category: "AgriTech", Tags: []string{"solar", "farming"}, Status: models.StatusActive},
		{Title: "Clinic queue SMS", Description: "Text patients when their turn is near",
			Category: "HealthTech", Tags: []string{"sms"}, Status: models.StatusPending},
		{Title: "Micro-loan scoring", Category: "FinTech", Visibility: models.VisibilityPrivate},
		{Description: "Community recycling kiosks that press plastic into bricks", Category: "CleanTech"},
	}
}

// maskToken 隐藏令牌内容
func maskToken(tok string) string {
	if tok == "" {
		return "<none>"
	}
	if len(tok) > 16 {
		return tok[:6] + "***" + tok[len(tok)-4:]
	}
	return "***"
}
