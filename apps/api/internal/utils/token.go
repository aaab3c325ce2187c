package utils

import (
	"errors"
	"strconv"
	"time"

	"ClipServer/config"

	"github.com/golang-jwt/jwt/v5"
)

// ==================== Token 签发与校验 ====================

// ErrInvalidToken Token 无效或已过期（两种情况对外不区分）
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims JWT 负载
type Claims struct {
	UserId   int64  `json:"uid"`
	DeviceId string `json:"did,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager Token 签发器。密钥从配置注入，不读全局状态，
// 测试时可以用独立密钥构造。
type TokenManager struct {
	secret []byte
	expire time.Duration
	issuer string
}

// NewTokenManager 创建签发器
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		expire: cfg.AccessExpire,
		issuer: cfg.Issuer,
	}
}

// Sign 为用户签发 AccessToken
func (m *TokenManager) Sign(userId int64, deviceId string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserId:   userId,
		DeviceId: deviceId,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(userId, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify 校验 Token 并返回负载。
// 任何解析失败（过期、签名错、算法不符）统一返回 ErrInvalidToken，
// 调用侧把校验失败当作"未携带 Token"处理。
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserId <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
