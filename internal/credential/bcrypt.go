package credential

import (
	"errors"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Hasher 负责生成和校验密码哈希，数据库中只保存哈希后的密码
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

type Bcrypt struct {
	Cost int
}

func NewBcrypt(cost int) *Bcrypt {
	return &Bcrypt{Cost: cost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify 在密码不匹配时返回 domain.ErrInvalidCredentials，其余错误原样返回
func (b *Bcrypt) Verify(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrInvalidCredentials
		}
		return err
	}
	return nil
}
