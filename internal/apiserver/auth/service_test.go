package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-admin/internal/shared/apperr"
	"shop-admin/internal/shared/storage/driver/sqlite"
	"shop-admin/internal/shared/storage/repository"
)

// captureMailer 记录最后一次投递，供测试断言
type captureMailer struct {
	email string
	code  string
	fail  bool
}

func (m *captureMailer) SendRecoveryCode(email, code string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.email = email
	m.code = code
	return nil
}

// fakeThrottle 可编程的节流桩
type fakeThrottle struct {
	allow   bool
	err     error
	marks   int
	cleared []string
}

func (f *fakeThrottle) MarkRecoveryRequested(ctx context.Context, email string, window time.Duration) (bool, error) {
	f.marks++
	return f.allow, f.err
}

func (f *fakeThrottle) ClearRecoveryThrottle(ctx context.Context, email string) error {
	f.cleared = append(f.cleared, email)
	return nil
}

// fakeMetrics 记录指标调用，供测试断言
type fakeMetrics struct {
	logins     []string
	recoveries []string
}

func (f *fakeMetrics) RecordLogin(outcome string) {
	f.logins = append(f.logins, outcome)
}

func (f *fakeMetrics) RecordRecoveryRequest(outcome string) {
	f.recoveries = append(f.recoveries, outcome)
}

func newTestService(t *testing.T) (*Service, *repository.Store, *captureMailer) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	dialect := sqlite.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))

	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })

	mailer := &captureMailer{}
	svc := NewService(store, store, mailer, Config{JWTSecret: "test-secret", TokenTTL: time.Hour})
	return svc, store, mailer
}

// ============================================================================
// 注册 / 登录
// ============================================================================

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "password123", user.PasswordHash)

	// 用户名登录
	token, err := svc.Authenticate(ctx, "alice", "password123", ClientInfo{IP: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	claims, err := ParseToken(Config{JWTSecret: "test-secret"}, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	// 邮箱回退登录
	_, err = svc.Authenticate(ctx, "alice@example.com", "password123", ClientInfo{})
	require.NoError(t, err)

	// 每次成功登录写一条审计记录
	audits, err := store.ListLoginAudits(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, audits, 2)
	ips := []string{audits[0].IP, audits[1].IP}
	assert.Contains(t, ips, "10.0.0.1")
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "password123")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Register(ctx, "alice2", "alice@example.com", "password123")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAuthenticateFailures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "alice", "wrong-password", ClientInfo{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "nobody", "password123", ClientInfo{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestValidateSession(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	token, err := svc.Authenticate(ctx, "alice", "password123", ClientInfo{})
	require.NoError(t, err)

	assert.True(t, svc.ValidateSession(ctx, token))
	assert.False(t, svc.ValidateSession(ctx, "garbage"))
	assert.False(t, svc.ValidateSession(ctx, ""))

	// 用户删除后，密码学上有效的令牌也会失效
	require.NoError(t, store.DeleteUser(ctx, user.ID))
	assert.False(t, svc.ValidateSession(ctx, token))
}

// ============================================================================
// 密码找回
// ============================================================================

func TestRecoverPasswordIssuesCode(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.RecoverPassword(ctx, "bob@example.com"))

	// 投递的码与数据库一致
	assert.Equal(t, "bob@example.com", mailer.email)
	require.Len(t, mailer.code, 4)

	got, err := store.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.NotNil(t, got.RecoveryCode)
	assert.Equal(t, mailer.code, *got.RecoveryCode)
	require.NotNil(t, got.RecoveryCodeGeneratedAt)
}

func TestRecoverPasswordUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.RecoverPassword(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRecoverPasswordRateLimited(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	base := time.Now()
	svc.nowFn = func() time.Time { return base }

	require.NoError(t, svc.RecoverPassword(ctx, "bob@example.com"))
	firstCode := mailer.code

	// 窗口内重复请求被拒绝，不签发新码
	svc.nowFn = func() time.Time { return base.Add(2 * time.Minute) }
	err = svc.RecoverPassword(ctx, "bob@example.com")
	assert.ErrorIs(t, err, apperr.ErrRateLimited)
	assert.Equal(t, firstCode, mailer.code)

	// 过期后允许重发
	svc.nowFn = func() time.Time { return base.Add(6 * time.Minute) }
	require.NoError(t, svc.RecoverPassword(ctx, "bob@example.com"))
}

func TestRecoverPasswordMailFailure(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	mailer.fail = true
	err = svc.RecoverPassword(ctx, "bob@example.com")
	require.Error(t, err)

	// 码已落库：投递失败不回滚持久化状态
	got, err := store.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.NotNil(t, got.RecoveryCode)
}

func TestChangePassword(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "bob@example.com", "oldpassword")
	require.NoError(t, err)
	require.NoError(t, svc.RecoverPassword(ctx, "bob@example.com"))

	require.NoError(t, svc.ChangePassword(ctx, "bob@example.com", mailer.code, "newpassword"))

	// 新密码生效，旧密码失效
	_, err = svc.Authenticate(ctx, "bob", "newpassword", ClientInfo{})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "bob", "oldpassword", ClientInfo{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	// 找回码一次性：重放被拒绝
	err = svc.ChangePassword(ctx, "bob@example.com", mailer.code, "thirdpassword")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestChangePasswordFailures(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	// 无找回流程
	err = svc.ChangePassword(ctx, "bob@example.com", "AAAA", "newpassword")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	// 未知邮箱
	err = svc.ChangePassword(ctx, "nobody@example.com", "AAAA", "newpassword")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// 错误的码
	base := time.Now()
	svc.nowFn = func() time.Time { return base }
	require.NoError(t, svc.RecoverPassword(ctx, "bob@example.com"))
	err = svc.ChangePassword(ctx, "bob@example.com", "XXXX", "newpassword")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	// 过期的码
	svc.nowFn = func() time.Time { return base.Add(6 * time.Minute) }
	err = svc.ChangePassword(ctx, "bob@example.com", mailer.code, "newpassword")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

// ============================================================================
// 缓存节流防线
// ============================================================================

func TestRecoveryThrottle(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	base := time.Now()
	svc.nowFn = func() time.Time { return base }

	t.Run("throttle blocks issuance", func(t *testing.T) {
		svc.SetThrottle(&fakeThrottle{allow: false})
		err := svc.RecoverPassword(ctx, "bob@example.com")
		assert.ErrorIs(t, err, apperr.ErrRateLimited)
		assert.Empty(t, mailer.code)
	})

	t.Run("throttle error falls back to db", func(t *testing.T) {
		svc.SetThrottle(&fakeThrottle{err: errors.New("redis down")})
		require.NoError(t, svc.RecoverPassword(ctx, "bob@example.com"))
		assert.NotEmpty(t, mailer.code)
	})

	t.Run("db rejection leaves throttle untouched", func(t *testing.T) {
		// 窗口内的重试由数据库时间戳拒绝，不得重新占位节流键，
		// 否则缓存条目丢失后的一次重试会把限流拖过窗口期
		ft := &fakeThrottle{allow: true}
		svc.SetThrottle(ft)
		svc.nowFn = func() time.Time { return base.Add(2 * time.Minute) }
		err := svc.RecoverPassword(ctx, "bob@example.com")
		assert.ErrorIs(t, err, apperr.ErrRateLimited)
		assert.Zero(t, ft.marks)

		// 窗口过后重发：此时才占位
		svc.nowFn = func() time.Time { return base.Add(6 * time.Minute) }
		require.NoError(t, svc.RecoverPassword(ctx, "bob@example.com"))
		assert.Equal(t, 1, ft.marks)
	})

	t.Run("successful reset clears throttle", func(t *testing.T) {
		ft := &fakeThrottle{allow: true}
		svc.SetThrottle(ft)
		require.NoError(t, svc.ChangePassword(ctx, "bob@example.com", mailer.code, "newpassword"))
		assert.Contains(t, ft.cleared, "bob@example.com")
	})
}

func TestAuthMetricsOutcomes(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	fm := &fakeMetrics{}
	svc.SetMetrics(fm)

	_, err := svc.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "bob", "password123", ClientInfo{})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "bob", "wrong", ClientInfo{})
	require.Error(t, err)
	assert.Equal(t, []string{"success", "failure"}, fm.logins)

	base := time.Now()
	svc.nowFn = func() time.Time { return base }
	require.NoError(t, svc.RecoverPassword(ctx, "bob@example.com"))
	err = svc.RecoverPassword(ctx, "bob@example.com")
	assert.ErrorIs(t, err, apperr.ErrRateLimited)
	err = svc.RecoverPassword(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, []string{"issued", "throttled", "failed"}, fm.recoveries)
}
