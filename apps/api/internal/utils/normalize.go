package utils

import (
	"errors"
	"strings"

	"ClipServer/consts"
)

// ==================== 标识符规范化 ====================
// 登录标识（邮箱/手机号/用户名）统一在这里做规范化：
// 存储永远用规范形式，查询时才展开历史变体。

var (
	// ErrInvalidEmail 邮箱格式非法
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPhone 手机号格式非法
	ErrInvalidPhone = errors.New("invalid phone")
	// ErrInvalidHandle 用户名格式非法
	ErrInvalidHandle = errors.New("invalid handle")
)

// NormalizeEmail 规范化邮箱：去首尾空白、转小写，要求 x@y.z 的基本形状
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", ErrInvalidEmail
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return "", ErrInvalidEmail
	}
	if strings.ContainsAny(email, " \t") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// NormalizeHandle 规范化用户名：去空白、剥掉开头的 @，
// 结果必须是 3~24 位的 [A-Za-z0-9_.]
func NormalizeHandle(raw string) (string, error) {
	handle := strings.TrimSpace(raw)
	handle = strings.TrimLeft(handle, "@")
	if len(handle) < 3 || len(handle) > 24 {
		return "", ErrInvalidHandle
	}
	for _, r := range handle {
		if !isHandleRune(r) {
			return "", ErrInvalidHandle
		}
	}
	return handle, nil
}

func isHandleRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '.'
}

// NormalizeTrPhone 规范化土耳其手机号到 10 位本地形式。
// 剥掉所有非数字后：
//
//	11 位且以国内长途 0 开头 -> 去掉 0
//	12 位且以国际前缀 90 开头 -> 去掉 90
//	其余必须恰好 10 位
//
// 注意：这是针对单一国家的定长规则，扩展到其他区域时要重写。
func NormalizeTrPhone(raw string) (string, error) {
	digits := digitsOnly(raw)
	switch {
	case len(digits) == 11 && digits[0] == '0':
		digits = digits[1:]
	case len(digits) == 12 && strings.HasPrefix(digits, "90"):
		digits = digits[2:]
	}
	if len(digits) != 10 {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// PhoneCandidates 给出同一逻辑手机号在历史数据里可能出现过的所有存储形式：
// 原始数字串、规范 10 位、加 0 前缀、加 90 前缀。
// 只用于查询时 OR 匹配（读侧兼容旧数据），写入永远只存规范形式。
func PhoneCandidates(raw string) []string {
	rawDigits := digitsOnly(raw)

	var candidates []string
	seen := make(map[string]struct{})
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		candidates = append(candidates, s)
	}

	add(rawDigits)
	if canonical, err := NormalizeTrPhone(raw); err == nil {
		add(canonical)
		add("0" + canonical)
		add("90" + canonical)
	}
	return candidates
}

// NormalizeLanguage 语言码只接受支持列表内的值。
// 不在列表内返回 ok=false，语义是"保持原值"而不是"非法"，
// 资料更新路径据此跳过该字段。
func NormalizeLanguage(raw string) (string, bool) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := consts.SupportedLanguages[code]; !ok {
		return "", false
	}
	return code, true
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
