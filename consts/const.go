package consts

// 通用错误码
const (
	CodeSuccess = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       = 10001 // 参数验证失败
	CodeBodyError        = 10002 // 请求体格式错误
	CodeResourceNotFound = 10003 // 资源不存在
	CodeMethodNotAllowed = 10004 // 请求方法不允许
	CodeTooManyRequests  = 10005 // 请求过于频繁
	CodeBodyTooLarge     = 10006 // 请求体过大
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized   = 20001 // 未认证
	CodeInvalidToken   = 20002 // Token 无效
	CodeTokenExpired   = 20003 // Token 已过期
	CodePermissionDeny = 20004 // 权限不足
)

// 用户模块错误 (11xxx)
const (
	CodeUserNotFound     = 11001 // 用户不存在
	CodeEmailTaken       = 11002 // 邮箱已被占用
	CodePhoneTaken       = 11003 // 手机号已被占用
	CodeHandleTaken      = 11004 // 用户名已被占用
	CodeDeviceTaken      = 11005 // 设备标识已被占用
	CodePasswordError    = 11006 // 密码错误
	CodePasswordNotSet   = 11007 // 账号未设置密码
	CodeInvalidEmail     = 11008 // 邮箱格式错误
	CodeInvalidPhone     = 11009 // 手机号格式错误
	CodeInvalidHandle    = 11010 // 用户名格式错误
	CodeInvalidAvatarUri = 11011 // 头像地址不可用（设备本地路径）
	CodeIdentifierError  = 11012 // 登录标识无法识别
)

// 好友模块错误 (12xxx)
const (
	CodeAlreadyFriend     = 12001 // 已经是好友
	CodeRequestPending    = 12002 // 好友申请已发送（待处理）
	CodeIncomingExists    = 12003 // 对方已向你发送申请
	CodeRequestNotFound   = 12004 // 好友申请不存在
	CodeNotRequestTarget  = 12005 // 不是该申请的接收方
	CodeCannotAddSelf     = 12006 // 不能添加自己为好友
	CodeFriendshipMissing = 12007 // 不存在该好友关系
)

// 动态模块错误 (13xxx)
const (
	CodePostNotFound  = 13001 // 动态不存在
	CodeNotPostOwner  = 13002 // 不是动态的作者
	CodeUploadFail    = 13003 // 文件上传失败
	CodeMediaTooLarge = 13004 // 媒体文件过大
	CodeMediaType     = 13005 // 媒体类型不支持
)

// 服务端错误 (3xxxx)
const (
	CodeInternalError      = 30001 // 服务器内部错误
	CodeServiceUnavailable = 30002 // 服务暂不可用
)

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	// 客户端错误
	CodeParamError:       "参数验证失败",
	CodeBodyError:        "请求体格式错误",
	CodeResourceNotFound: "资源不存在",
	CodeMethodNotAllowed: "请求方法不允许",
	CodeTooManyRequests:  "请求过于频繁",
	CodeBodyTooLarge:     "请求体过大",

	// 认证错误
	CodeUnauthorized:   "未认证",
	CodeInvalidToken:   "Token 无效",
	CodeTokenExpired:   "Token 已过期",
	CodePermissionDeny: "权限不足",

	// 用户模块
	CodeUserNotFound:     "用户不存在",
	CodeEmailTaken:       "邮箱已被占用",
	CodePhoneTaken:       "手机号已被占用",
	CodeHandleTaken:      "用户名已被占用",
	CodeDeviceTaken:      "设备标识已被占用",
	CodePasswordError:    "密码错误",
	CodePasswordNotSet:   "账号未设置密码",
	CodeInvalidEmail:     "邮箱格式错误",
	CodeInvalidPhone:     "手机号格式错误",
	CodeInvalidHandle:    "用户名格式错误",
	CodeInvalidAvatarUri: "头像地址不可用",
	CodeIdentifierError:  "登录标识无法识别",

	// 好友模块
	CodeAlreadyFriend:     "已经是好友",
	CodeRequestPending:    "好友申请已发送",
	CodeIncomingExists:    "对方已向你发送申请",
	CodeRequestNotFound:   "好友申请不存在",
	CodeNotRequestTarget:  "不是该申请的接收方",
	CodeCannotAddSelf:     "不能添加自己为好友",
	CodeFriendshipMissing: "不存在该好友关系",

	// 动态模块
	CodePostNotFound:  "动态不存在",
	CodeNotPostOwner:  "不是动态的作者",
	CodeUploadFail:    "文件上传失败",
	CodeMediaTooLarge: "媒体文件过大",
	CodeMediaType:     "媒体类型不支持",

	// 服务端错误
	CodeInternalError:      "服务器内部错误",
	CodeServiceUnavailable: "服务暂不可用",
}

// IsNonServerError 判断是否为非服务端错误（客户端/业务错误不记 error 日志）
func IsNonServerError(code int32) bool {
	return code != CodeSuccess && code < CodeInternalError
}

// GetMessage 根据错误码获取错误消息
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}

// ==================== 冲突字段标签 ====================

// 冲突响应中返回给客户端的 field 标签，方便前端高亮对应输入框
const (
	FieldEmail  = "email"
	FieldPhone  = "phone"
	FieldHandle = "handle"
	FieldDevice = "deviceId"
)

// ConflictCodeByField 根据冲突字段返回对应的业务错误码
func ConflictCodeByField(field string) int32 {
	switch field {
	case FieldEmail:
		return CodeEmailTaken
	case FieldPhone:
		return CodePhoneTaken
	case FieldHandle:
		return CodeHandleTaken
	case FieldDevice:
		return CodeDeviceTaken
	default:
		return CodeInternalError
	}
}

// ==================== 支持的语言 ====================

// SupportedLanguages 客户端可选的界面语言集合
var SupportedLanguages = map[string]struct{}{
	"tr": {},
	"en": {},
	"de": {},
	"fr": {},
	"es": {},
	"ar": {},
}
