package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	v1 "murphy/api/v1"
	"murphy/api/v1/handlers"
	"murphy/internal/config"
	"murphy/internal/identity"
	"murphy/internal/ledger"
	"murphy/internal/metrics"
	"murphy/internal/ratelimit"
	"murphy/internal/store"
	"murphy/pkg/async"
	"murphy/pkg/logger"
	"murphy/pkg/server"
	"murphy/pkg/third/geetest"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp/reuseport"
	_ "go.uber.org/automaxprocs"
)

func main() {
	root := &cobra.Command{
		Use:          "app",
		Short:        "Murphy's Laws archive API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create tables and seed default categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context())
		},
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.Configure(cfg.Level(), cfg.LogFile)

	db, err := store.Open(cfg.DBDriver, cfg.DB, cfg.DBDebug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func migrate(ctx context.Context) error {
	_, db, err := setup()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	log.Info().Msg("数据库迁移完成")
	return nil
}

func serve() error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		log.Info().Msg("关闭数据库连接中...")
		_ = db.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SQLite deployments usually skip the migrate step
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	var rl ratelimit.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		rl = ratelimit.NewRedis(client, "murphy:rl", cfg.Limits(), cfg.RateWindow)
		log.Info().Str("addr", cfg.RedisAddr).Msg("使用 Redis 限流")
	} else {
		mem := ratelimit.NewMemory(cfg.Limits(), cfg.RateWindow)
		mem.StartCleanup(ctx, cfg.RateWindow)
		rl = mem
	}

	deps := handlers.Deps{
		Store:     db,
		Ledger:    ledger.New(db),
		Limiter:   rl,
		Metrics:   metrics.New(),
		SystemKey: cfg.SystemKey,
	}
	if cfg.CaptchaEnabled() {
		deps.Captcha = geetest.New(cfg.GeetestID, cfg.GeetestKey)
	}

	app := server.NewFiber(server.Options{AllowOrigins: cfg.CORSOrigins, AccessLog: true})
	if cfg.GlobalLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:          cfg.GlobalLimit,
			Expiration:   time.Second * 60,
			KeyGenerator: identity.FromCtx,
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.ErrTooManyRequests
			},
		}))
	}
	v1.SetupRoutes(app, deps)

	return run(app, cfg)
}

func run(app *fiber.App, cfg *config.Config) error {
	if cfg.IsDev() {
		log.Info().Msg("开发模式已启用")
		return app.Listen(cfg.Port)
	}

	ln, err := reuseport.Listen("tcp4", cfg.Port)
	if err != nil {
		return fmt.Errorf("无法监听: %w", err)
	}
	served := async.ErrAble(func() error {
		return app.Listener(ln)
	})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case err := <-served:
		return err
	case sig := <-c:
		if sig == syscall.SIGHUP {
			log.Info().Msg("正在热更新服务端...")
			if err := restart(os.Executable); err != nil {
				return err
			}
		}
	}
	return app.ShutdownWithTimeout(10 * time.Second)
}

// restart starts a copy of the running binary with the same arguments.
func restart(executable func() (string, error)) error {
	exe, err := executable()
	if err != nil {
		log.Error().Err(err).Msg("无法定位可执行文件>_<")
		return err
	}
	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Start(); err != nil {
		log.Error().Err(err).Msg("启动新端失败>_<")
		return err
	}
	return nil
}
