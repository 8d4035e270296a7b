package config

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultRequestTimeout 单次请求超时；超时映射为 NetworkUnavailable
	DefaultRequestTimeout = 30 * time.Second
	// MaxBulkDeleteConcurrency 批量删除的并发上限
	MaxBulkDeleteConcurrency = 4

	defaultJWTSecret = "your-local-development-secret-key"
)

// Config 应用配置结构
type Config struct {
	// 环境配置
	Environment string

	// 后端API配置
	APIBaseURL     string
	AccessToken    string
	RequestTimeout time.Duration

	// 批量删除并发度（1 表示顺序执行）
	BulkDeleteConcurrency int

	// 模拟后端配置
	Port           string
	JWTSecret      string
	AllowedOrigins []string

	// 调试配置
	Debug bool
}

// Load 加载配置（环境变量优先，.env 文件兜底）
// 每次调用返回新的实例，由调用方显式传递
func Load() (*Config, error) {
	// 根据环境加载对应的 .env 文件
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development" // 默认开发环境
	}

	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	cfg := &Config{
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		APIBaseURL:  strings.TrimRight(strings.TrimSpace(getEnvWithDefault("INNOVATOR_API_URL", "http://localhost:8000")), "/"),
		AccessToken: strings.TrimSpace(os.Getenv("INNOVATOR_ACCESS_TOKEN")),
		Port:        getEnvWithDefault("PORT", "8000"),
		JWTSecret:   getEnvWithDefault("JWT_SECRET", defaultJWTSecret),
		Debug:       getEnvBool("DEBUG", false),
	}

	timeout, err := getEnvDuration("REQUEST_TIMEOUT", DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	concurrency, err := getEnvInt("BULK_DELETE_CONCURRENCY", 1)
	if err != nil {
		return nil, err
	}
	cfg.BulkDeleteConcurrency = concurrency

	// CORS配置
	allowedOrigins := getEnvWithDefault("ALLOWED_ORIGINS", "*")
	if allowedOrigins == "*" {
		cfg.AllowedOrigins = []string{"*"}
	} else {
		for _, o := range strings.Split(allowedOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	// 生产环境关闭调试
	if cfg.IsProduction() {
		cfg.Debug = false
	}

	return cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("INNOVATOR_API_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("INNOVATOR_API_URL must use http or https, got %q", u.Scheme)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.BulkDeleteConcurrency < 1 || c.BulkDeleteConcurrency > MaxBulkDeleteConcurrency {
		return fmt.Errorf("BULK_DELETE_CONCURRENCY must be between 1 and %d, got %d", MaxBulkDeleteConcurrency, c.BulkDeleteConcurrency)
	}

	return nil
}

// ValidateMockServer 验证模拟后端所需的配置
func (c *Config) ValidateMockServer() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// 辅助函数

// getEnvWithDefault 获取环境变量，如果不存在则使用默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool 获取布尔类型的环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt 获取整数类型的环境变量
func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return n, nil
}

// getEnvDuration 获取时长类型的环境变量（Go duration 格式，如 30s）
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return d, nil
}

// loadEnvFile 加载 .env 文件到环境变量
func loadEnvFile(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		return // 文件不存在或无法打开，静默返回
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// 跳过空行和注释行
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// 解析 KEY=VALUE 格式
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// 移除值两端的引号（如果有）
		if len(value) >= 2 {
			if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
				(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
				value = value[1 : len(value)-1]
			}
		}

		// 只有当环境变量不存在时才设置
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
