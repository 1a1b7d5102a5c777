package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"signal_board/internal/auth"
	"signal_board/internal/modules/api"
	"signal_board/internal/modules/board"
	"signal_board/internal/modules/config"
	"signal_board/internal/modules/health"
	"signal_board/internal/modules/storage"
	telegram "signal_board/internal/modules/telegram_bot"
	"signal_board/internal/modules/tracing"
	"signal_board/pkg/logger"
)

// issueAdmin печатает токен администратора и завершает процесс без запуска сервиса.
func issueAdmin(username string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	u, token, err := auth.IssueAdmin(auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), username)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "admin %s id=%s ttl=%s\n", u.Username, u.ID, cfg.Auth.TokenTTL)
	fmt.Println(token)
	return nil
}

func main() {
	admin := flag.String("issue-admin", "", "print an admin token for the given username and exit")
	flag.Parse()

	if *admin != "" {
		if err := issueAdmin(*admin); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	logger.SetServiceName("signal-board")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		fx.Invoke(func(cfg *config.Config) error {
			return logger.Init(cfg.LogLevel)
		}),
		tracing.Module(),
		storage.Module(),
		board.Module(),
		telegram.Module(),
		api.Module(),
		health.Module(),
		fx.NopLogger,
	)
	defer logger.Sync()

	app.Run()
}
