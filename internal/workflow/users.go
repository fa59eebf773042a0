package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

type NewUser struct {
	Name     string      `validate:"required"`
	Email    string      `validate:"required,email"`
	Password string      `validate:"required"`
	Role     domain.Role `validate:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser 创建用户，邮箱在所有角色之间全局唯一
func (s *Service) RegisterUser(ctx context.Context, in NewUser) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, domain.InvalidInput("未知的用户角色")
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Role:         in.Role,
	}

	if err := s.withTx(ctx, func(tx Tx) error {
		return tx.CreateUser(ctx, user)
	}); err != nil {
		return nil, err
	}

	slog.Info("已创建用户", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return user, nil
}

// Authenticate 校验邮箱和密码，邮箱不存在和密码错误返回同一个错误
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := s.withTx(ctx, func(tx Tx) error {
		var err error
		user, err = tx.GetUserByID(ctx, id)
		return err
	})
	return user, err
}

func (s *Service) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := s.withTx(ctx, func(tx Tx) error {
		var err error
		user, err = tx.GetUserByEmail(ctx, normalizeEmail(email))
		return err
	})
	return user, err
}

func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.withTx(ctx, func(tx Tx) error {
		var err error
		users, err = tx.ListUsers(ctx)
		return err
	})
	return users, err
}

// UpdateUser 更新姓名、邮箱和角色，依赖 Version 做乐观锁
func (s *Service) UpdateUser(ctx context.Context, user *domain.User) error {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = normalizeEmail(user.Email)

	if user.Name == "" {
		return domain.InvalidInput("姓名不能为空")
	}
	if err := s.validate.Var(user.Email, "required,email"); err != nil {
		return domain.InvalidInput("邮箱格式错误")
	}
	if !user.Role.Valid() {
		return domain.InvalidInput("未知的用户角色")
	}

	return s.withTx(ctx, func(tx Tx) error {
		return tx.UpdateUser(ctx, user)
	})
}

func (s *Service) ChangePassword(ctx context.Context, user *domain.User, newPassword string) error {
	if newPassword == "" {
		return domain.InvalidInput("密码不能为空")
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash

	return s.withTx(ctx, func(tx Tx) error {
		return tx.UpdateUser(ctx, user)
	})
}
