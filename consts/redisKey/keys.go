package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL 常量 ====================

const (
	// UserInfoTTL 用户信息缓存 TTL
	UserInfoTTL = 1 * time.Hour
	// UserInfoEmptyTTL 用户信息空值缓存 TTL
	UserInfoEmptyTTL = 5 * time.Minute

	// AccessTokenTTL AccessToken 缓存 TTL（与 JWT 过期时间对齐）
	AccessTokenTTL = 24 * time.Hour

	// RequestUnreadTTL 好友申请未读计数 TTL
	RequestUnreadTTL = 7 * 24 * time.Hour

	// FeedTTL 首页动态列表缓存 TTL
	FeedTTL = 1 * time.Minute
)

// ==================== Key 构造函数 ====================

// UserInfoKey 生成用户信息缓存 Key: user:info:{id}
func UserInfoKey(userId int64) string {
	return fmt.Sprintf("user:info:%d", userId)
}

// AccessTokenKey 生成 AccessToken Key: auth:at:{user_id}:{device_id}
func AccessTokenKey(userId int64, deviceId string) string {
	return fmt.Sprintf("auth:at:%d:%s", userId, deviceId)
}

// RequestUnreadKey 生成好友申请未读计数 Key: friend:request:unread:{user_id}
func RequestUnreadKey(userId int64) string {
	return fmt.Sprintf("friend:request:unread:%d", userId)
}

// FeedKey 生成首页动态列表缓存 Key: post:feed:{limit}
func FeedKey(limit int) string {
	return fmt.Sprintf("post:feed:%d", limit)
}

// ==================== Gateway Key 构造函数 ====================

// IPBlacklistKey 网关 IP 黑名单 Key: gateway:blacklist:ips
func IPBlacklistKey() string {
	return "gateway:blacklist:ips"
}

// IPRateLimitKey 网关 IP 限流 Key: rate:limit:ip:{ip}
func IPRateLimitKey(ip string) string {
	return fmt.Sprintf("rate:limit:ip:%s", ip)
}
