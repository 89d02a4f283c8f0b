package repository

import (
	"context"
	"database/sql"
	"time"

	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

const userColumns = `id, username, email, password_hash, role, recovery_code, recovery_code_generated_at, created_at, updated_at`

// CreateUser 创建用户
// username / email 唯一键冲突时返回 storage.ErrDuplicate
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	query := s.rebind(`INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	_, err := s.q.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.Role, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil && s.dialect.IsUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	return err
}

// GetUserByUsername 通过用户名查找用户
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE username = $1`)
	return scanUser(s.q.QueryRowContext(ctx, query, username))
}

// GetUserByEmail 通过邮箱查找用户
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE email = $1`)
	return scanUser(s.q.QueryRowContext(ctx, query, email))
}

// GetUserByID 通过 ID 查找用户
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = $1`)
	return scanUser(s.q.QueryRowContext(ctx, query, id))
}

// ListUsers 列出所有用户
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserPassword 更新用户密码
func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	query := s.rebind(`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`)
	_, err := s.q.ExecContext(ctx, query, passwordHash, time.Now(), id)
	return err
}

// UpdateUserRole 更新用户角色
func (s *Store) UpdateUserRole(ctx context.Context, id string, role model.UserRole) error {
	query := s.rebind(`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`)
	_, err := s.q.ExecContext(ctx, query, role, time.Now(), id)
	return err
}

// UpdateUserProfile 更新用户名和邮箱
func (s *Store) UpdateUserProfile(ctx context.Context, id, username, email string) error {
	query := s.rebind(`UPDATE users SET username = $1, email = $2, updated_at = $3 WHERE id = $4`)
	_, err := s.q.ExecContext(ctx, query, username, email, time.Now(), id)
	if err != nil && s.dialect.IsUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	return err
}

// SetRecoveryCode 写入找回码和签发时间（两者成对出现）
func (s *Store) SetRecoveryCode(ctx context.Context, email, code string, generatedAt time.Time) error {
	query := s.rebind(`UPDATE users SET recovery_code = $1, recovery_code_generated_at = $2, updated_at = $3 WHERE email = $4`)
	_, err := s.q.ExecContext(ctx, query, code, generatedAt, time.Now(), email)
	return err
}

// ClearRecoveryCode 清除找回码（状态机回到 NONE）
func (s *Store) ClearRecoveryCode(ctx context.Context, email string) error {
	query := s.rebind(`UPDATE users SET recovery_code = NULL, recovery_code_generated_at = NULL, updated_at = $1 WHERE email = $2`)
	_, err := s.q.ExecContext(ctx, query, time.Now(), email)
	return err
}

// DeleteUser 删除用户
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	query := s.rebind(`DELETE FROM users WHERE id = $1`)
	_, err := s.q.ExecContext(ctx, query, id)
	return err
}

// scanUser 辅助函数
func scanUser(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.User, error) {
	u := &model.User{}
	err := scanner.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.RecoveryCode, &u.RecoveryCodeGeneratedAt, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
