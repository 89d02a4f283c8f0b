package redis

import (
	"context"
	"fmt"
	"time"
)

// keyRecoveryThrottle 找回码节流键前缀
const keyRecoveryThrottle = "recovery:throttle:"

// MarkRecoveryRequested 以 SETNX 记录一次找回码请求
//
// 返回 true 表示窗口内首次请求（放行），false 表示键已存在（应限流）。
// 该缓存只是数据库时间戳之外的快速前置防线：缓存不可用或条目丢失时，
// 数据库中的 recovery_code_generated_at 仍然是权威判据。
func (s *Store) MarkRecoveryRequested(ctx context.Context, email string, window time.Duration) (bool, error) {
	key := keyRecoveryThrottle + email
	ok, err := s.client.SetNX(ctx, key, time.Now().Format(time.RFC3339), window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark recovery request: %w", err)
	}
	return ok, nil
}

// ClearRecoveryThrottle 清除节流条目（密码重置成功后调用，允许立即再次找回）
func (s *Store) ClearRecoveryThrottle(ctx context.Context, email string) error {
	return s.client.Del(ctx, keyRecoveryThrottle+email).Err()
}
