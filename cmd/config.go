package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"github.com/urfave/cli/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rubiojr/templated/bundler"
	"github.com/rubiojr/templated/external"
)

const (
	configBaseName   = "templated"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "TEMPLATED"

	ignoreKey          = "ignore"
	extensionsKey      = "extensions"
	entryKey           = "entry"
	jobsKey            = "jobs"
	collectAllKey      = "collect_all"
	externalCommandKey = "external.command"
	externalConfigKey  = "external.config"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultJobs          = 1
	defaultLogLevel      = "warn"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

func init() {
	setDefaults()
}

func setDefaults() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(ignoreKey, bundler.DefaultIgnore)
	viper.SetDefault(extensionsKey, bundler.DefaultExtensions)
	viper.SetDefault(entryKey, "")
	viper.SetDefault(jobsKey, defaultJobs)
	viper.SetDefault(collectAllKey, false)
	viper.SetDefault(externalCommandKey, external.DefaultCommand)

	viper.SetDefault(logFilenameKey, "")
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// readConfig loads templated.yaml from dir. A missing file is not an error.
func readConfig(dir string) error {
	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

// bundlerOptions merges the configuration with the flags set on cmd.
// Flags take precedence.
func bundlerOptions(cmd *cli.Command, version string) bundler.Options {
	opts := bundler.Options{
		Ignore:     viper.GetStringSlice(ignoreKey),
		Extensions: viper.GetStringSlice(extensionsKey),
		Jobs:       viper.GetInt(jobsKey),
		CollectAll: viper.GetBool(collectAllKey),
		Emit: bundler.EmitOptions{
			Tool:    configBaseName,
			Version: version,
			Entry:   viper.GetString(entryKey),
		},
	}
	if cmd.IsSet("ignore") {
		opts.Ignore = cmd.StringSlice("ignore")
	}
	if cmd.IsSet("jobs") {
		opts.Jobs = int(cmd.Int("jobs"))
	}
	if cmd.IsSet("collect-all") {
		opts.CollectAll = cmd.Bool("collect-all")
	}
	if cmd.IsSet("entry") {
		opts.Emit.Entry = cmd.String("entry")
	}
	return opts
}

func externalOptions() external.Options {
	opts := external.Options{Command: viper.GetStringSlice(externalCommandKey)}
	if viper.IsSet(externalConfigKey) {
		opts.Config = viper.GetStringMap(externalConfigKey)
	}
	return opts
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs the default slog logger. Records go to the
// rotated file named by log.filename, or to stderr when none is set.
func configureLogger(stderr io.Writer, verbose bool) {
	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelWarn)
	if verbose {
		logLevel = slog.LevelDebug
	}

	w := stderr
	if name := strings.TrimSpace(viper.GetString(logFilenameKey)); name != "" {
		w = &lumberjack.Logger{
			Filename:   name,
			MaxSize:    viper.GetInt(logMaxSizeKey),
			MaxBackups: viper.GetInt(logMaxBackupsKey),
			MaxAge:     viper.GetInt(logMaxAgeKey),
			Compress:   viper.GetBool(logCompressKey),
		}
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}
