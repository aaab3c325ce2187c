package utils

import (
	"strings"
	"unicode/utf8"
)

// MaskTelephone 手机号脱敏
// 示例: 5551234567 -> 555****567
func MaskTelephone(telephone string) string {
	if len(telephone) < 7 {
		return telephone
	}
	return telephone[:3] + "****" + telephone[len(telephone)-3:]
}

// MaskEmail 邮箱脱敏
// 示例: example@gmail.com -> e*****e@gmail.com
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	username := parts[0]
	if utf8.RuneCountInString(username) <= 2 {
		return email
	}
	return string(username[0]) + "*****" + string(username[len(username)-1]) + "@" + parts[1]
}

// MaskDeviceId 设备标识脱敏，只保留前后 4 位
func MaskDeviceId(deviceId string) string {
	if len(deviceId) <= 8 {
		return deviceId
	}
	return deviceId[:4] + "****" + deviceId[len(deviceId)-4:]
}
