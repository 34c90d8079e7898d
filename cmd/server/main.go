package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nandanugg/linewatch/config"
	"github.com/nandanugg/linewatch/module/core"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "linewatch",
	Short: "Geofence monitor that alerts when the tracked position strays past its radius",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func serve(ctx context.Context) error {
	log := zap.L()

	db, err := config.NewDatabase(cfg)
	if err != nil {
		return eris.Wrap(err, "journal store")
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		return eris.Wrap(err, "rabbitmq")
	}
	defer func() { _ = amqpConn.Close() }()

	coreModule, err := core.Build(ctx, cfg, db, amqpConn)
	if err != nil {
		return eris.Wrap(err, "core module")
	}

	mqttClient, err := config.NewMQTT(cfg, coreModule.OnMQTTConnect)
	if err != nil {
		return eris.Wrap(err, "mqtt")
	}
	defer mqttClient.Disconnect(250)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	health := config.NewHealthChecker(db, amqpConn, mqttClient)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	log.Info("listening",
		zap.String("addr", addr),
		zap.Float64("radius_meters", cfg.Geofence.RadiusMeters),
	)
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !eris.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server")
	}
	log.Info("shut down")
	return nil
}

func main() {
	rootCmd.AddCommand(configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
