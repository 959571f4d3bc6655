package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"mlmadmin/cmd/fx/account_fx"
	"mlmadmin/cmd/fx/catalog_fx"
	"mlmadmin/cmd/fx/config_fx"
	"mlmadmin/cmd/fx/controllers_fx"
	"mlmadmin/cmd/fx/dashboard_fx"
	"mlmadmin/cmd/fx/db_fx"
	"mlmadmin/cmd/fx/events_fx"
	"mlmadmin/cmd/fx/mail_fx"
	"mlmadmin/cmd/fx/memcache_fx"
	"mlmadmin/cmd/fx/subscription_fx"
	"mlmadmin/cmd/fx/wallet_fx"
	"mlmadmin/internal/config"
	"mlmadmin/pkg/middleware"
)

func main() {
	app := fx.New(
		config_fx.Module,
		fx.Invoke(setupLogging),
		db_fx.Module,
		memcache_fx.Module,
		mail_fx.Module,
		account_fx.Module,
		wallet_fx.Module,
		catalog_fx.Module,
		events_fx.Module,
		subscription_fx.Module,
		dashboard_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func setupLogging(cfg *config.Config) {
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.DebugLevel)
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				logrus.WithField("addr", srv.Addr).Info("starting HTTP server")
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logrus.WithError(err).Fatal("HTTP server stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logrus.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, deps)

	return r
}
