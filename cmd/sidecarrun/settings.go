package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/giantswarm/sidecarrun"
	"github.com/giantswarm/sidecarrun/internal/envfile"
)

// envPrefix prefixes the environment variable bound to every flag:
// --ready-delay is SIDECARRUN_READY_DELAY.
const envPrefix = "SIDECARRUN_"

// disabled turns off --probe and --history.
const disabled = "off"

// settings is the CLI's view of the supervisor configuration. Values come
// from flags, then the environment, then the .env file, then defaults.
type settings struct {
	java         string
	minJava      int
	depDir       string
	jar          string
	depConfig    string
	jvmArgs      string
	readyDelay   time.Duration
	probe        string
	liveness     bool
	main         string
	mainDir      string
	mainDetached bool
	stateDir     string
	history      string
	noLock       bool
	stopTimeout  time.Duration
	envFile      string
	logLevel     string
	logFormat    string

	// jvmArgsSet distinguishes an empty --jvm-args from an unset one.
	jvmArgsSet bool

	environ func() []string
	stderr  io.Writer
}

func newSettings(stderr io.Writer) *settings {
	return &settings{environ: os.Environ, stderr: stderr}
}

// unbound flags have no environment variable.
var unbound = map[string]bool{"env-file": true}

func (s *settings) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.java, "java", "", "Java runtime binary (default $JAVA_HOME/bin/java, then java on PATH)")
	fs.IntVar(&s.minJava, "min-java", sidecarrun.DefaultMinRuntimeVersion, "minimum Java major version")
	fs.StringVar(&s.depDir, "dep-dir", sidecarrun.DefaultDependencyDir, "Lavalink directory holding the jar, application.yml and plugins")
	fs.StringVar(&s.jar, "jar", "", "Lavalink jar (default <dep-dir>/"+sidecarrun.DefaultJarName+")")
	fs.StringVar(&s.depConfig, "dep-config", "", "Lavalink config (default <dep-dir>/"+sidecarrun.DefaultConfigName+")")
	fs.StringVar(&s.jvmArgs, "jvm-args", "", "arguments placed before -jar, space separated")
	fs.DurationVar(&s.readyDelay, "ready-delay", sidecarrun.DefaultReadyDelay, "how long to wait for Lavalink before starting the bot")
	fs.StringVar(&s.probe, "probe", "", `address probed for readiness (default LAVALINK_HOST:LAVALINK_PORT, "off" to disable)`)
	fs.BoolVar(&s.liveness, "liveness", true, "fail if Lavalink is gone after the readiness wait")
	fs.StringVar(&s.main, "main", strings.Join(sidecarrun.DefaultMainCommand(), " "), "bot command line")
	fs.StringVar(&s.mainDir, "main-dir", "", "bot working directory (default current directory)")
	fs.BoolVar(&s.mainDetached, "main-detached", false, "write bot output to the log directory instead of the terminal")
	fs.StringVar(&s.stateDir, "state-dir", sidecarrun.DefaultStateDir, "directory for logs, the lock file and the run history")
	fs.StringVar(&s.history, "history", "", `run history database (default <state-dir>/`+sidecarrun.DefaultHistoryFileName+`, "off" to disable)`)
	fs.BoolVar(&s.noLock, "no-lock", false, "allow several supervisors in the same state directory")
	fs.DurationVar(&s.stopTimeout, "stop-timeout", sidecarrun.DefaultStopTimeout, "grace period between SIGTERM and SIGKILL")
	fs.StringVar(&s.envFile, "env-file", sidecarrun.DefaultEnvFile, "settings file read at startup")
	fs.StringVar(&s.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&s.logFormat, "log-format", logFormatText, "log format: text or json")
}

// envKey returns the environment variable bound to a flag.
func envKey(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// load reads the .env file and fills every flag that was not given on the
// command line from its environment variable. It then installs the logger.
func (s *settings) load(fs *pflag.FlagSet) error {
	env, err := envfile.Load(s.envFile, s.environ())
	if err != nil {
		return err
	}

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || unbound[f.Name] {
			return
		}
		key := envKey(f.Name)
		v, ok := env.Lookup(key)
		if !ok {
			return
		}
		if err := fs.Set(f.Name, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	})
	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.jvmArgsSet = fs.Changed("jvm-args")

	logger, err := newLogger(s.stderr, s.logLevel, s.logFormat)
	if err != nil {
		return err
	}
	sidecarrun.SetLogger(logger.With("component", "sidecarrun"))
	return nil
}

// historyPath returns the history database path, or "" when disabled.
func (s *settings) historyPath() string {
	switch s.history {
	case disabled:
		return ""
	case "":
		return filepath.Join(s.stateDir, sidecarrun.DefaultHistoryFileName)
	default:
		return s.history
	}
}

// options converts the settings into supervisor options. Invalid values are
// reported as errors here because the With* functions panic on them.
func (s *settings) options() ([]sidecarrun.Option, error) {
	var errs []error
	if s.minJava <= 0 {
		errs = append(errs, fmt.Errorf("min-java must be greater than 0, got %d", s.minJava))
	}
	if s.readyDelay < 0 {
		errs = append(errs, fmt.Errorf("ready-delay must not be negative, got %v", s.readyDelay))
	}
	if s.stopTimeout <= 0 {
		errs = append(errs, fmt.Errorf("stop-timeout must be greater than 0, got %v", s.stopTimeout))
	}
	mainCmd := strings.Fields(s.main)
	if len(mainCmd) == 0 {
		errs = append(errs, errors.New("main command must not be empty"))
	}
	if s.depDir == "" {
		errs = append(errs, errors.New("dep-dir must not be empty"))
	}
	if s.stateDir == "" {
		errs = append(errs, errors.New("state-dir must not be empty"))
	}
	if s.envFile == "" {
		errs = append(errs, errors.New("env-file must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	opts := []sidecarrun.Option{
		sidecarrun.WithMinRuntimeVersion(s.minJava),
		sidecarrun.WithDependencyDir(s.depDir),
		sidecarrun.WithReadyDelay(s.readyDelay),
		sidecarrun.WithLivenessCheck(s.liveness),
		sidecarrun.WithMainCommand(mainCmd...),
		sidecarrun.WithMainDetached(s.mainDetached),
		sidecarrun.WithStateDir(s.stateDir),
		sidecarrun.WithStopTimeout(s.stopTimeout),
		sidecarrun.WithEnvFile(s.envFile),
		sidecarrun.WithEnviron(s.environ()),
	}
	if s.java != "" {
		opts = append(opts, sidecarrun.WithJava(s.java))
	}
	if s.jar != "" {
		opts = append(opts, sidecarrun.WithJar(s.jar))
	}
	if s.depConfig != "" {
		opts = append(opts, sidecarrun.WithDependencyConfig(s.depConfig))
	}
	if s.jvmArgsSet {
		opts = append(opts, sidecarrun.WithJVMArgs(strings.Fields(s.jvmArgs)...))
	}
	switch s.probe {
	case "":
	case disabled:
		opts = append(opts, sidecarrun.WithoutProbe())
	default:
		opts = append(opts, sidecarrun.WithProbeAddr(s.probe))
	}
	if s.mainDir != "" {
		opts = append(opts, sidecarrun.WithMainDir(s.mainDir))
	}
	if p := s.historyPath(); p != "" {
		opts = append(opts, sidecarrun.WithHistoryPath(p))
	}
	if s.noLock {
		opts = append(opts, sidecarrun.WithoutLock())
	}
	return opts, nil
}
