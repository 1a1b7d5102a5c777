package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"

	"signal_board/internal/api"
	"signal_board/internal/auth"
	"signal_board/internal/modules/config"
	"signal_board/pkg/logger"
)

func NewJWTManager(cfg *config.Config) *auth.JWTManager {
	return auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

func NewServer(cfg *config.Config, b api.Board, jwt *auth.JWTManager) *http.Server {
	return &http.Server{
		Addr: cfg.PublicAddr(),
		Handler: api.NewRouter(b, jwt, api.Options{
			AllowedOrigins: cfg.Service.AllowedOrigins,
			RequestTimeout: 30 * time.Second,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func RunHTTP(lc fx.Lifecycle, srv *http.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("public api on %s", srv.Addr)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("public api: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("api",
		fx.Provide(
			NewJWTManager,
			NewServer,
		),
		fx.Invoke(RunHTTP),
	)
}
