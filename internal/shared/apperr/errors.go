// Package apperr 定义业务层领域错误
//
// 所有业务失败通过这些哨兵错误（或其 %w 包装）向调用方传播，
// HTTP 层用 errors.Is 将其映射为状态码。会话校验是唯一例外：
// 它将一切失败折叠为布尔 false，不向外暴露错误。
package apperr

import "errors"

var (
	// ErrNotFound 实体不存在
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized 凭证错误 / 找回码错误或过期 / 权限不足
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict 唯一字段重复
	ErrConflict = errors.New("conflict")

	// ErrRateLimited 找回码请求过于频繁
	ErrRateLimited = errors.New("rate limited")

	// ErrBadRequest 输入格式错误
	ErrBadRequest = errors.New("bad request")

	// ErrInternal 数据不一致或下游意外失败
	ErrInternal = errors.New("internal error")
)
