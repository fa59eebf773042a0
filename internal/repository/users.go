package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

func (t *Tx) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT name, email, password_hash, role, created_at, version
		FROM users WHERE id = $1
	`

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	dst := []any{&user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.Version}
	if err := t.tx.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, translateError(err, domain.ErrUserNotFound)
	}

	return user, nil
}

func (t *Tx) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, password_hash, role, created_at, version
		FROM users WHERE email = $1
	`

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	user := &domain.User{
		Email: email,
	}

	dst := []any{&user.ID, &user.Name, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.Version}
	if err := t.tx.QueryRowContext(ctx, query, email).Scan(dst...); err != nil {
		return nil, translateError(err, domain.ErrUserNotFound)
	}

	return user, nil
}

// UpdateUser 依赖 version 做乐观锁，版本不一致时返回 domain.ErrVersionConflict
func (t *Tx) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET
			name = $1,
			email = $2,
			password_hash = $3,
			role = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING created_at, version
	`

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	args := []any{user.Name, user.Email, user.PasswordHash, user.Role, user.ID, user.Version}
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt, &user.Version); err != nil {
		return translateError(err, domain.ErrVersionConflict)
	}

	return nil
}

func (t *Tx) ListUsers(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at, version
		FROM users ORDER BY id
	`

	return t.queryUsers(ctx, query)
}

func (t *Tx) ListUsersByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at, version
		FROM users WHERE role = $1 ORDER BY id
	`

	return t.queryUsers(ctx, query, role)
}

func (t *Tx) queryUsers(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (t *Tx) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	args := []any{user.Name, user.Email, user.PasswordHash, user.Role}
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.Version); err != nil {
		return translateError(err, nil)
	}

	return nil
}
