package service

import (
	"errors"

	"ClipServer/apps/api/internal/repository"
	"ClipServer/consts"
)

// ==================== Service 层统一错误 ====================
// 所有业务失败在 service 边界收敛成带错误码的 BizError，
// 不允许裸 error 泄漏到 handler。

// BizError 带业务错误码的错误，冲突类错误附带字段标签
type BizError struct {
	Code  int32
	Field string
}

func (e *BizError) Error() string {
	return consts.GetMessage(e.Code)
}

// NewBizError 按错误码创建业务错误
func NewBizError(code int32) *BizError {
	return &BizError{Code: code}
}

// NewConflictError 按冲突字段创建业务错误（注册/改资料的 409 语义）
func NewConflictError(field string) *BizError {
	return &BizError{Code: consts.ConflictCodeByField(field), Field: field}
}

// CodeOf 从 error 提取错误码和冲突字段，未知错误归为内部错误
func CodeOf(err error) (int32, string) {
	if err == nil {
		return consts.CodeSuccess, ""
	}
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr.Code, bizErr.Field
	}
	return consts.CodeInternalError, ""
}

// wrapStoreConflict 把 repository 的唯一键冲突翻译成字段级业务错误。
// 预检查和约束竞态两条路径从这里汇合成同一种对外结果。
func wrapStoreConflict(err error) error {
	var conflict *repository.ConflictError
	if errors.As(err, &conflict) {
		return NewConflictError(conflict.Field)
	}
	if errors.Is(err, repository.ErrDuplicateKey) {
		return NewBizError(consts.CodeParamError)
	}
	return NewBizError(consts.CodeInternalError)
}
