package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/confcascade/internal/application"
	"github.com/eugenenazirov/confcascade/internal/config"
	"github.com/eugenenazirov/confcascade/internal/envstore"
	"github.com/eugenenazirov/confcascade/internal/logging"
	"github.com/eugenenazirov/confcascade/internal/provider"
)

var signalNotify = signal.Notify

// Exit codes of the get command.
const (
	exitFound    = 0
	exitNotFound = 1
	exitFailure  = 2
)

func main() {
	kingpinApp := kingpin.New("confcascade", "Cascading configuration lookups over .env files, the environment and defaults")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	envFiles := kingpinApp.Flag("env-file", "Path to a .env file; repeat to load several, later files win").Strings()
	encoding := kingpinApp.Flag("encoding", "Character encoding of the .env files").String()
	var debugSet bool
	debug := kingpinApp.Flag("debug", "Print which .env files are loaded and which variables are kept").IsSetByUser(&debugSet).Bool()
	defaultsFile := kingpinApp.Flag("defaults", "Path to a YAML file of default values").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()

	getCmd := kingpinApp.Command("get", "Print the value of a configuration key")
	getKey := getCmd.Arg("key", "Configuration key").Required().String()
	getNumber := getCmd.Flag("number", "Read the value as a number").Bool()
	getRequired := getCmd.Flag("required", "Fail when the key has no value").Bool()

	serveCmd := kingpinApp.Command("serve", "Serve configuration lookups over HTTP")
	addr := serveCmd.Flag("addr", "HTTP address to listen on").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		EnvFiles:   *envFiles,
	}
	if *encoding != "" {
		overrides.Encoding = encoding
	}
	if debugSet {
		overrides.Debug = debug
	}
	if *defaultsFile != "" {
		overrides.DefaultsFile = defaultsFile
	}
	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}
	if *addr != "" {
		overrides.Addr = addr
	}
	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}
	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()

	switch command {
	case getCmd.FullCommand():
		p, _, err := application.LoadProvider(ctx, cfg, envstore.NewOSStore(), logger)
		if err != nil {
			logger.Error("failed to load configuration sources", zap.Error(err))
			_ = logger.Sync()
			os.Exit(exitFailure)
		}
		code := runGet(ctx, p, *getKey, *getNumber, *getRequired, os.Stdout, os.Stderr)
		_ = logger.Sync()
		os.Exit(code)

	case serveCmd.FullCommand():
		app, err := application.New(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("failed to initialize application", zap.Error(err))
		}

		if err := app.Start(); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}

		shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
	}
}

// runGet prints the value of key to out and returns the process exit code.
func runGet(ctx context.Context, p provider.Provider, key string, number, required bool, out, errOut io.Writer) int {
	var (
		text  string
		found bool
		err   error
	)

	if number {
		var n float64
		if required {
			n, err = p.RequireNumber(ctx, key)
			found = err == nil
		} else {
			n, found, err = p.GetNumber(ctx, key)
		}
		text = formatNumber(n)
	} else {
		if required {
			text, err = p.RequireString(ctx, key)
			found = err == nil
		} else {
			text, found, err = p.GetString(ctx, key)
		}
	}

	switch {
	case errors.Is(err, provider.ErrMissingRequiredKey):
		fmt.Fprintln(errOut, err)
		return exitNotFound
	case err != nil:
		fmt.Fprintln(errOut, err)
		return exitFailure
	case !found:
		return exitNotFound
	}

	fmt.Fprintln(out, text)
	return exitFound
}

func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
