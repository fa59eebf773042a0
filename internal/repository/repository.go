package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

var _ workflow.Store = (*Repository)(nil)

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// BeginTx 开启一个事务，事务的存活时间受 TransactionTimeout 限制
func (r *Repository) BeginTx(ctx context.Context) (workflow.Tx, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		cancel()
		return nil, err
	}

	return &Tx{
		tx:           tx,
		cancel:       cancel,
		queryTimeout: time.Duration(r.cfg.Database.QueryTimeout) * time.Second,
	}, nil
}

// Tx 包装了 *sql.Tx，所有查询都在同一个事务中执行
type Tx struct {
	tx           *sql.Tx
	cancel       context.CancelFunc
	queryTimeout time.Duration
}

var _ workflow.Tx = (*Tx)(nil)

func (t *Tx) Commit() error {
	defer t.cancel()
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	defer t.cancel()
	return t.tx.Rollback()
}

func (t *Tx) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.queryTimeout)
}
