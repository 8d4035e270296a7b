package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"innovator-portal/pkg/models"
)

// DefaultAccessTTL 访问令牌默认有效期
const DefaultAccessTTL = 15 * time.Minute

// JWTService JWT服务（仅供模拟后端与测试签发/校验令牌）
type JWTService struct {
	secretKey []byte
}

// NewJWTService 创建JWT服务
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
	}
}

// GenerateAccessToken 生成访问令牌
func (j *JWTService) GenerateAccessToken(p models.Principal, ttl time.Duration) (string, int64, error) {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	now := time.Now()
	expiry := now.Add(ttl)

	claims := &models.TokenClaims{
		UserID: p.UserID,
		Email:  p.Email,
		Role:   p.Role,
		Type:   "access",
		Exp:    expiry.Unix(),
		Iat:    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	return tokenString, expiry.Unix(), nil
}

// ValidateToken 验证访问令牌并返回其主体
func (j *JWTService) ValidateToken(tokenString string) (*models.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Type != "access" {
		return nil, fmt.Errorf("invalid token type: expected access, got %s", claims.Type)
	}

	// 检查是否过期
	if time.Now().Unix() > claims.Exp {
		return nil, fmt.Errorf("token expired")
	}

	return &models.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
