// Package storage 定义存储层领域错误和存储接口
//
// 这些错误用于隔离业务层与底层存储引擎的错误类型，
// repository 层负责将底层错误（sql.ErrNoRows、唯一键冲突）转换为这些领域错误。
package storage

import "errors"

var (
	// ErrNotFound 实体不存在
	// 替代 sql.ErrNoRows
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate 唯一键冲突（username / email 重复）
	ErrDuplicate = errors.New("duplicate: entity already exists")
)
