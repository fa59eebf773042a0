package main

import (
	"context"
	"log/slog"
	"os"
	"time"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	a := &app{now: time.Now}
	defer a.close()

	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		logger.Error("命令执行失败", slog.String("error", err.Error()))
		a.close()
		os.Exit(1)
	}
}
