package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"respa-server/internal/domain/user"
)

// UserRepository MySQL実装のUserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository 新しいUserRepositoryを作成
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID ユーザーIDでユーザーを取得
func (r *UserRepository) FindByID(ctx context.Context, userID string) (*user.User, error) {
	query := `
		SELECT id, email, first_name, last_name, preferred_language, is_staff
		FROM users
		WHERE id = ?
	`

	u, err := scanUser(r.db.conn(ctx).QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindApproversByResourceID リソースの予約を承認できるユーザーを取得
func (r *UserRepository) FindApproversByResourceID(ctx context.Context, resourceID int64, limit int) ([]*user.User, error) {
	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.preferred_language, u.is_staff
		FROM users u
		INNER JOIN resource_approvers ra ON ra.user_id = u.id
		WHERE ra.resource_id = ?
		ORDER BY u.id
		LIMIT ?
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, resourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query approvers: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate approvers: %w", err)
	}
	return users, nil
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		id, email, firstName, lastName, language string
		isStaff                                  bool
	)
	err := row.Scan(&id, &email, &firstName, &lastName, &language, &isStaff)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user.NewUser(id, email, firstName, lastName, language, isStaff)
}
