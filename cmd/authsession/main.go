// Command authsession drives a session Manager from the shell.
//
// Configuration comes from AUTHSESSION_* environment variables (a .env file in the
// working directory is loaded first) and can be overridden by flags.
//
// Usage:
//
//	authsession [global flags] signup -user alice -email alice@example.com -password ...
//	authsession [global flags] login  -user alice -password ...
//	authsession [global flags] status
//	authsession [global flags] logout
//	authsession [global flags] watch  [-metrics-addr :9102]
//
// The session survives between invocations through the selected durable store:
//
//	authsession -store sqlite -path ./session.db login -user alice -password ...
//	authsession -store sqlite -path ./session.db status
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/authsession"
	"github.com/MrEthical07/authsession/transport"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const usage = `usage: authsession [global flags] <signup|login|status|logout|watch> [flags]

global flags:
`

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "authsession: %v\n", err)
		os.Exit(1)
	}
}

type globalOptions struct {
	baseURL   string
	driver    string
	path      string
	redisAddr string
	prefix    string
	verbose   bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := authsession.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var opts globalOptions
	fs := flag.NewFlagSet("authsession", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.baseURL, "base-url", cfg.Backend.BaseURL, "backend base URL")
	fs.StringVar(&opts.driver, "store", cfg.Store.Driver, "durable store: memory, file, sqlite or redis")
	fs.StringVar(&opts.path, "path", cfg.Store.Path, "file or sqlite path; empty uses the user config dir")
	fs.StringVar(&opts.redisAddr, "redis-addr", cfg.Store.RedisAddr, `redis address; "embedded" starts an in-process miniredis`)
	fs.StringVar(&opts.prefix, "key-prefix", cfg.Store.KeyPrefix, "prefix for the persisted record keys")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}

	cfg.Backend.BaseURL = opts.baseURL
	cfg.Store.Driver = opts.driver
	cfg.Store.Path = opts.path
	cfg.Store.RedisAddr = opts.redisAddr
	cfg.Store.KeyPrefix = opts.prefix
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(stderr, opts.verbose)
	defer func() { _ = logger.Sync() }()

	kv, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	tr, err := transport.New(cfg.Backend, transport.WithLogger(logger.Named("transport")))
	if err != nil {
		return err
	}

	m, err := authsession.New().
		WithConfig(cfg).
		WithTransport(tr).
		WithStore(kv).
		WithLogger(logger).
		WithNavigator(authsession.NavigatorFunc(func(route string) {
			logger.Debug("navigate", zap.String("route", route))
		})).
		Build()
	if err != nil {
		return err
	}
	defer m.Close()

	c := &cli{m: m, out: stdout, errOut: stderr, logger: logger}
	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "signup":
		return c.signup(ctx, cmdArgs)
	case "login":
		return c.login(ctx, cmdArgs)
	case "status":
		return c.status(ctx, cmdArgs)
	case "logout":
		return c.logout(ctx, cmdArgs)
	case "watch":
		return c.watch(ctx, cmdArgs)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}
