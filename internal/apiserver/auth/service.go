package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"shop-admin/internal/shared/apperr"
	"shop-admin/internal/shared/mail"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

// recoveryWindow 找回码有效期。硬编码常量，不可配置。
const recoveryWindow = 5 * time.Minute

// UserStore 认证服务所需的用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	SetRecoveryCode(ctx context.Context, email, code string, generatedAt time.Time) error
	ClearRecoveryCode(ctx context.Context, email string) error
}

// AuditStore 登录审计存储接口
type AuditStore interface {
	CreateLoginAudit(ctx context.Context, audit *model.LoginAudit) error
}

// RecoveryThrottle 找回码签发的缓存节流防线（可选，nil 时跳过）
//
// 数据库中的 recovery_code_generated_at 始终是限流的权威判据，
// 该接口只在签发前占位，拦住并发请求的重复签发。
type RecoveryThrottle interface {
	MarkRecoveryRequested(ctx context.Context, email string, window time.Duration) (bool, error)
	ClearRecoveryThrottle(ctx context.Context, email string) error
}

// Metrics 认证指标挂钩（可选，nil 时跳过）
type Metrics interface {
	RecordLogin(outcome string)
	RecordRecoveryRequest(outcome string)
}

// ClientInfo 登录请求的客户端信息（审计用）
type ClientInfo struct {
	IP        string
	UserAgent string
}

// Service 会话签发/校验与密码找回流程
type Service struct {
	users    UserStore
	audits   AuditStore
	mailer   mail.Mailer
	throttle RecoveryThrottle // 可为 nil
	metrics  Metrics          // 可为 nil
	cfg      Config
	nowFn    func() time.Time // 测试注入
}

// NewService 创建认证服务
func NewService(users UserStore, audits AuditStore, mailer mail.Mailer, cfg Config) *Service {
	return &Service{
		users:  users,
		audits: audits,
		mailer: mailer,
		cfg:    cfg,
		nowFn:  time.Now,
	}
}

// SetThrottle 挂接缓存节流防线（可选）
func (s *Service) SetThrottle(t RecoveryThrottle) {
	s.throttle = t
}

// SetMetrics 挂接指标记录器（可选）
func (s *Service) SetMetrics(m Metrics) {
	s.metrics = m
}

// getUserByIdentifier 先按用户名查找，未命中时回退到邮箱
func (s *Service) getUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	return s.users.GetUserByEmail(ctx, identifier)
}

// ============================================================================
// 会话
// ============================================================================

// Authenticate 校验凭证并签发会话令牌
//
// identifier 可以是用户名或邮箱。成功时写入一条登录审计记录；
// 审计写入失败会使整个登录失败（与审计不可缺失的要求一致）。
func (s *Service) Authenticate(ctx context.Context, identifier, password string, client ClientInfo) (string, error) {
	user, err := s.getUserByIdentifier(ctx, identifier)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		s.recordLogin("failure")
		return "", fmt.Errorf("%w: unknown user or email", apperr.ErrUnauthorized)
	}

	if !CheckPassword(password, user.PasswordHash) {
		s.recordLogin("failure")
		return "", fmt.Errorf("%w: invalid password", apperr.ErrUnauthorized)
	}

	token, err := GenerateSessionToken(s.cfg, user.Username, user.Email, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}

	audit := &model.LoginAudit{
		ID:        generateID("aud"),
		UserID:    user.ID,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		CreatedAt: s.nowFn(),
	}
	if err := s.audits.CreateLoginAudit(ctx, audit); err != nil {
		return "", fmt.Errorf("audit login: %w", err)
	}

	s.recordLogin("success")
	log.Printf("[auth] User logged in: %s", user.Username)
	return token, nil
}

// ValidateSession 校验会话令牌
//
// 签名和有效期校验通过后，按令牌内嵌的用户名重新查询用户：
// 用户被删除或改名会使一个密码学上仍然有效的令牌失效。
// 任何失败（格式错误、过期、用户不存在）都折叠为 false，不传播错误。
func (s *Service) ValidateSession(ctx context.Context, token string) bool {
	claims, err := ParseToken(s.cfg, token)
	if err != nil {
		log.Printf("[auth] session validation failed: %v", err)
		return false
	}

	user, err := s.getUserByIdentifier(ctx, claims.Username)
	if err != nil {
		log.Printf("[auth] session validation lookup error: %v", err)
		return false
	}
	return user != nil
}

// Register 注册新用户
//
// username 和 email 全局唯一，重复时返回 ErrConflict。
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	user := &model.User{
		ID:           generateID("usr"),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.UserRoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username or email already registered", apperr.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Printf("[auth] User registered: %s (%s)", user.Username, user.ID)
	return user, nil
}

// ============================================================================
// 密码找回
// ============================================================================

// RecoverPassword 启动密码找回流程
//
// 状态机：NONE →（签发找回码）→ PENDING →（重置成功/过期后重发）→ ...
// 已有未过期找回码时返回 ErrRateLimited，不签发新码；
// 过期后允许重新签发。失败先记日志再向调用方传播。
func (s *Service) RecoverPassword(ctx context.Context, email string) error {
	err := s.recoverPassword(ctx, email)
	switch {
	case err == nil:
		s.recordRecovery("issued")
	case errors.Is(err, apperr.ErrRateLimited):
		s.recordRecovery("throttled")
	default:
		s.recordRecovery("failed")
	}
	if err != nil {
		log.Printf("[auth] password recovery for %s failed: %v", email, err)
	}
	return err
}

func (s *Service) recoverPassword(ctx context.Context, email string) error {
	user, err := s.getUserByIdentifier(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("%w: no user with email %s", apperr.ErrNotFound, email)
	}

	if user.RecoveryCode != nil {
		generatedAt := user.RecoveryCodeGeneratedAt
		if generatedAt == nil {
			// 码存在但时间戳缺失：不签发新码也不报错，留给 ChangePassword 暴露不一致
			return nil
		}
		if s.nowFn().Sub(*generatedAt) < recoveryWindow {
			return fmt.Errorf("%w: recovery code already issued", apperr.ErrRateLimited)
		}
	}

	// 数据库判定放行后才在缓存占位：被数据库拒绝的请求不会续命节流键。
	// 占位拦住并发请求的重复签发；缓存不可用时直接放行，时间戳仍是权威判据。
	if s.throttle != nil {
		ok, terr := s.throttle.MarkRecoveryRequested(ctx, user.Email, recoveryWindow)
		if terr != nil {
			log.Printf("[auth] recovery throttle unavailable: %v", terr)
		} else if !ok {
			return fmt.Errorf("%w: recovery code already issued", apperr.ErrRateLimited)
		}
	}

	code := GenerateOTPCode()
	if err := s.users.SetRecoveryCode(ctx, user.Email, code, s.nowFn()); err != nil {
		s.clearThrottle(ctx, user.Email)
		return fmt.Errorf("persist recovery code: %w", err)
	}
	if err := s.mailer.SendRecoveryCode(user.Email, code); err != nil {
		s.clearThrottle(ctx, user.Email)
		return fmt.Errorf("dispatch recovery mail: %w", err)
	}

	log.Printf("[auth] %s requested account recovery", user.Email)
	return nil
}

// ChangePassword 用找回码重置密码
//
// 校验顺序：用户存在 → 码匹配 → 时间戳存在 → 未过期。
// 成功后清除找回码，状态机回到 NONE。失败先记日志再传播。
func (s *Service) ChangePassword(ctx context.Context, email, code, newPassword string) error {
	err := s.changePassword(ctx, email, code, newPassword)
	if err != nil {
		log.Printf("[auth] password change for %s failed: %v", email, err)
	}
	return err
}

func (s *Service) changePassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.getUserByIdentifier(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("%w: no user with email %s", apperr.ErrNotFound, email)
	}

	if user.RecoveryCode == nil || *user.RecoveryCode != code {
		return fmt.Errorf("%w: no valid recovery code", apperr.ErrUnauthorized)
	}

	generatedAt := user.RecoveryCodeGeneratedAt
	if generatedAt == nil {
		// 码存在但时间戳缺失：数据不一致
		return fmt.Errorf("%w: recovery code has no generation timestamp", apperr.ErrInternal)
	}
	if s.nowFn().Sub(*generatedAt) >= recoveryWindow {
		return fmt.Errorf("%w: recovery code expired", apperr.ErrUnauthorized)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.users.ClearRecoveryCode(ctx, user.Email); err != nil {
		return fmt.Errorf("clear recovery code: %w", err)
	}
	s.clearThrottle(ctx, user.Email)

	log.Printf("[auth] password changed for %s", user.Email)
	return nil
}

// clearThrottle 清除缓存节流条目，失败只记日志
func (s *Service) clearThrottle(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.ClearRecoveryThrottle(ctx, email); err != nil {
		log.Printf("[auth] clear recovery throttle for %s: %v", email, err)
	}
}

func (s *Service) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(outcome)
	}
}

func (s *Service) recordRecovery(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordRecoveryRequest(outcome)
	}
}
