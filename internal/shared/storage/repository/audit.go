package repository

import (
	"context"

	"shop-admin/internal/shared/model"
)

// CreateLoginAudit 写入一条登录审计记录
func (s *Store) CreateLoginAudit(ctx context.Context, audit *model.LoginAudit) error {
	query := s.rebind(`INSERT INTO login_audits (id, user_id, ip, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5)`)
	_, err := s.q.ExecContext(ctx, query,
		audit.ID, audit.UserID, audit.IP, audit.UserAgent, audit.CreatedAt)
	return err
}

// ListLoginAudits 列出某用户的登录审计记录，按时间倒序
func (s *Store) ListLoginAudits(ctx context.Context, userID string, limit int) ([]*model.LoginAudit, error) {
	query := s.rebind(`SELECT id, user_id, ip, user_agent, created_at
		 FROM login_audits WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`)
	rows, err := s.q.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []*model.LoginAudit
	for rows.Next() {
		a := &model.LoginAudit{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.IP, &a.UserAgent, &a.CreatedAt); err != nil {
			return nil, err
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}
