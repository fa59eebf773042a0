package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/joho/godotenv"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/credential"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/repository"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow"
)

// app 保存命令之间共享的依赖，在第一次执行命令前才连接数据库
type app struct {
	cfg     *config.Config
	svc     *workflow.Service
	migrate func(ctx context.Context) error
	now     func() time.Time

	dbpool *sql.DB
}

func (a *app) setup() error {
	if a.svc != nil {
		return nil
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	dbpool, err := repository.OpenDB(cfg)
	if err != nil {
		return err
	}

	repo := repository.NewRepository(cfg, dbpool)

	a.cfg = cfg
	a.dbpool = dbpool
	a.svc = workflow.New(repo, credential.NewBcrypt(cfg.Credential.BcryptCost))
	a.migrate = repo.Migrate
	return nil
}

func (a *app) close() {
	if a.dbpool != nil {
		a.dbpool.Close()
		a.dbpool = nil
	}
}
