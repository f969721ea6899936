package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lonng/coins"
	"github.com/lonng/coins/internal/log"
	"github.com/lonng/coins/node"
	"github.com/lonng/coins/protocol/codec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := cli.NewApp()

	app.Name = "coins"
	app.Version = coins.VERSION
	app.Copyright = "nano authors reserved"
	app.Usage = "real-time coin counter over websocket"

	app.Flags = flags()
	app.Action = serve

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (yaml, toml or json)", EnvVars: []string{"COINS_CONFIG"}},
		&cli.StringFlag{Name: "addr", Value: ":8081", Usage: "http listen address"},
		&cli.StringFlag{Name: "path", Value: "/ws", Usage: "websocket path"},
		&cli.StringFlag{Name: "static", Usage: "static client directory served at /"},
		&cli.StringFlag{Name: "metrics", Value: "/metrics", Usage: "prometheus metrics path, empty to disable"},
		&cli.StringFlag{Name: "service-addr", Usage: "grpc health service address, empty to disable"},
		&cli.StringFlag{Name: "codec", Value: "json", Usage: "frame codec: json or proto"},
		&cli.DurationFlag{Name: "heartbeat", Value: defaults["heartbeat"].(time.Duration), Usage: "websocket ping interval, 0 to disable"},
		&cli.DurationFlag{Name: "audit", Value: defaults["audit"].(time.Duration), Usage: "reconciliation interval, 0 to disable"},
		&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
	}
}

// overrides 只有命令行上显式设置的参数才覆盖配置文件
func overrides(ctx *cli.Context) map[string]any {
	values := map[string]any{}
	for _, name := range []string{"addr", "path", "static", "metrics", "service-addr", "codec"} {
		if ctx.IsSet(name) {
			values[name] = ctx.String(name)
		}
	}
	for _, name := range []string{"heartbeat", "audit"} {
		if ctx.IsSet(name) {
			values[name] = ctx.Duration(name)
		}
	}
	if ctx.IsSet("debug") {
		values["debug"] = ctx.Bool("debug")
	}
	return values
}

func serve(ctx *cli.Context) error {
	cfg, err := loadConfig(viper.New(), ctx.String("config"), overrides(ctx))
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e, err := newEngine(cfg, log.NewZapLogger(logger), reg)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		err := e.Run(cfg.Addr, newMux(e, cfg, reg))
		if errors.Is(err, node.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		e.Shutdown()
		return nil
	})
	return g.Wait()
}

func newEngine(cfg *Config, logger log.Logger, reg prometheus.Registerer) (*coins.Engine, error) {
	c, err := codec.Lookup(cfg.Codec)
	if err != nil {
		return nil, err
	}

	opts := []coins.Option{
		coins.WithLogger(logger),
		coins.WithCodec(c),
		coins.WithHeartbeatInterval(cfg.Heartbeat),
		coins.WithAuditInterval(cfg.Audit),
		coins.WithServiceAddr(cfg.ServiceAddr),
		coins.WithMetrics(reg),
	}
	if cfg.Debug {
		opts = append(opts, coins.WithDebugMode())
	}
	return coins.New(opts...), nil
}

// newMux websocket 路径, 指标路径和静态客户端目录
func newMux(e *coins.Engine, cfg *Config, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, e)
	if cfg.Metrics != "" {
		mux.Handle(cfg.Metrics, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.Static != "" {
		log.Info("Serving static client from %s", cfg.Static)
		mux.Handle("/", http.FileServer(http.Dir(cfg.Static)))
	}
	return mux
}

func newLogger(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}
