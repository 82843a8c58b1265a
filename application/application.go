package application

import (
	"fmt"
	"os"
	"strings"

	"github.com/lk2023060901/protoframe-go/internal/framing"
	zlog "github.com/lk2023060901/protoframe-go/pkg/log"
	zviper "github.com/lk2023060901/protoframe-go/pkg/util/viper"
)

// Application is the runtime container shared by protoframe tools.
// It owns configuration and process-wide logging.
type Application struct {
	cfg     *zviper.Config
	loggers map[string]*zlog.MLogger
}

// New creates a new Application instance.
func New() *Application {
	return &Application{}
}

// Run loads configuration and initializes logging.
// The configuration file path is resolved with the following priority:
//  1. Default: ./config.yaml
//  2. Env: PROTOFRAME_CONFIG_FILE_PATH
//  3. CLI: --config <path> or --config=<path>
func (a *Application) Run() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := a.initLogging(); err != nil {
		return err
	}

	return nil
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *zviper.Config {
	return a.cfg
}

// Framing returns the framing section of the configuration.
// Missing keys fall back to the zero value of each option.
func (a *Application) Framing() (framing.Options, error) {
	var opts framing.Options
	if a.cfg == nil {
		return opts, nil
	}
	if err := a.cfg.UnmarshalKey("framing", &opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// Logger returns a named logger created from configuration.
// If the name is unknown, it falls back to the global logger.
func (a *Application) Logger(name string) *zlog.MLogger {
	if a.loggers == nil {
		return &zlog.MLogger{Logger: zlog.L()}
	}
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return &zlog.MLogger{Logger: zlog.L()}
}

// loadConfig resolves the config file path and loads it via the viper wrapper.
func (a *Application) loadConfig() (*zviper.Config, error) {
	configPath := "./config.yaml"

	if envPath := os.Getenv("PROTOFRAME_CONFIG_FILE_PATH"); envPath != "" {
		configPath = envPath
	}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value after --config")
			}
			configPath = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			val := strings.TrimPrefix(arg, "--config=")
			if val != "" {
				configPath = val
			}
			continue
		}
	}

	cfg := zviper.New()
	cfg.BindEnvPrefix("PROTOFRAME")
	if err := cfg.LoadFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", configPath, err)
	}

	return cfg, nil
}

// initLogging initializes global and module-level loggers.
func (a *Application) initLogging() error {
	if err := a.initGlobalLoggerFromEnv(); err != nil {
		return err
	}
	if err := a.initModuleLoggersFromConfig(); err != nil {
		return err
	}
	return nil
}

// initGlobalLoggerFromEnv configures the process-wide logger based on PROTOFRAME_LOG_* env vars.
//
// Priority:
//   - PROTOFRAME_LOG_ENABLE: "1"/"true" to enable outputs; others treated as disabled.
//   - PROTOFRAME_LOG_LEVEL: log level (default "info").
//   - PROTOFRAME_LOG_STDOUT: whether to log to stdout (default false).
//   - PROTOFRAME_LOG_FILE_DIR: log directory.
//   - PROTOFRAME_LOG_FILE: log file name (empty means no file).
//   - PROTOFRAME_LOG_FORMAT: log format ("text" or "json", default "text").
func (a *Application) initGlobalLoggerFromEnv() error {
	enabled := getenvBool("PROTOFRAME_LOG_ENABLE", false)

	cfg := &zlog.Config{
		Level:             getenvDefault("PROTOFRAME_LOG_LEVEL", "info"),
		Format:            getenvDefault("PROTOFRAME_LOG_FORMAT", "text"),
		DisableTimestamp:  false,
		Stdout:            getenvBool("PROTOFRAME_LOG_STDOUT", false),
		DisableCaller:     false,
		DisableStacktrace: false,
		File: zlog.FileLogConfig{
			RootPath: getenvDefault("PROTOFRAME_LOG_FILE_DIR", ""),
			Filename: getenvDefault("PROTOFRAME_LOG_FILE", ""),
		},
	}

	// When not enabled, direct all outputs to a discarded sink.
	if !enabled {
		cfg.Stdout = false
		cfg.File.Filename = ""
	}

	logger, props, err := zlog.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("init global logger from env: %w", err)
	}
	zlog.ReplaceGlobals(logger, props)
	return nil
}

// initModuleLoggersFromConfig creates named loggers from YAML config under the "logging" key.
//
// Example:
//
//	logging:
//	  receiver:
//	    level: debug
//	    stdout: true
//	    file:
//	      rootpath: ./logs
//	      filename: receiver.log
func (a *Application) initModuleLoggersFromConfig() error {
	if a.cfg == nil {
		return nil
	}

	raw := make(map[string]zlog.Config)
	if err := a.cfg.UnmarshalKey("logging", &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(raw))
	for name, lc := range raw {
		cfgCopy := lc
		logger, _, err := zlog.InitLogger(&cfgCopy)
		if err != nil {
			return fmt.Errorf("init module logger %q: %w", name, err)
		}
		a.loggers[name] = &zlog.MLogger{Logger: logger}
	}

	return nil
}

func getenvDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getenvBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
