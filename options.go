package sidecarrun

import (
	"fmt"
	"time"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("sidecarrun: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonNegative panics if v < 0 with a descriptive message.
func requireNonNegative(name string, v time.Duration) {
	if v < 0 {
		panic(fmt.Sprintf("sidecarrun: %s must not be negative, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("sidecarrun: %s must not be empty", name))
	}
}

// Option configures a Supervisor during construction via New.
//
// Several With* functions panic on invalid input (empty paths, non-positive
// durations). Option values are typically constants or come from an
// already-validated settings layer, so an invalid value is a programmer
// error. The pattern mirrors [regexp.MustCompile].
type Option func(*config)

// WithJava sets an explicit Java runtime binary. By default the runtime is
// $JAVA_HOME/bin/java, falling back to java on PATH.
// Panics if path is empty.
func WithJava(path string) Option {
	requireNonEmpty("java path", path)
	return func(c *config) {
		c.Java = path
	}
}

// WithMinRuntimeVersion sets the minimum Java major version.
//
// Default: 17.
//
// Panics if v <= 0.
func WithMinRuntimeVersion(v int) Option {
	requirePositive("minimum runtime version", v)
	return func(c *config) {
		c.MinRuntimeVersion = v
	}
}

// WithDependencyDir sets the dependency directory. Jar, config and plugin
// paths that are not set explicitly are derived from it.
//
// Default: "lavalink".
//
// Panics if dir is empty.
func WithDependencyDir(dir string) Option {
	requireNonEmpty("dependency directory", dir)
	return func(c *config) {
		c.DependencyDir = dir
	}
}

// WithJar sets the server jar path.
// Panics if path is empty.
func WithJar(path string) Option {
	requireNonEmpty("jar path", path)
	return func(c *config) {
		c.JarPath = path
	}
}

// WithDependencyConfig sets the server's application.yml path.
// Panics if path is empty.
func WithDependencyConfig(path string) Option {
	requireNonEmpty("dependency config path", path)
	return func(c *config) {
		c.DependencyConfig = path
	}
}

// WithExampleConfig sets the example config copied into place when the
// server config is missing.
// Panics if path is empty.
func WithExampleConfig(path string) Option {
	requireNonEmpty("example config path", path)
	return func(c *config) {
		c.ExampleConfig = path
	}
}

// WithPluginsDir sets the server's plugin directory, inspected by the
// config sanity check.
// Panics if dir is empty.
func WithPluginsDir(dir string) Option {
	requireNonEmpty("plugins directory", dir)
	return func(c *config) {
		c.PluginsDir = dir
	}
}

// WithJVMArgs replaces the runtime arguments placed before -jar. Calling it
// with no arguments removes the defaults.
func WithJVMArgs(args ...string) Option {
	return func(c *config) {
		c.JVMArgs = append([]string{}, args...)
	}
}

// WithListenAddr sets the address the server will bind. It is checked
// before spawning so a port conflict fails the launch immediately.
// Panics if addr is empty.
func WithListenAddr(addr string) Option {
	requireNonEmpty("listen address", addr)
	return func(c *config) {
		c.ListenAddr = addr
	}
}

// WithProbeAddr sets the TCP address probed during the readiness wait.
// Panics if addr is empty.
func WithProbeAddr(addr string) Option {
	requireNonEmpty("probe address", addr)
	return func(c *config) {
		c.ProbeAddr = addr
		c.noProbe = false
	}
}

// WithoutProbe disables the readiness probe, including the one derived
// from LAVALINK_HOST and LAVALINK_PORT. The readiness wait is then a plain
// delay.
func WithoutProbe() Option {
	return func(c *config) {
		c.ProbeAddr = ""
		c.noProbe = true
	}
}

// WithReadyDelay sets the readiness wait.
//
// Default: 10 seconds.
//
// Panics if d < 0.
func WithReadyDelay(d time.Duration) Option {
	requireNonNegative("ready delay", d)
	return func(c *config) {
		c.ReadyDelay = d
	}
}

// WithLivenessCheck enables or disables the check that the dependency is
// still running after the readiness wait.
//
// Default: enabled.
func WithLivenessCheck(enabled bool) Option {
	return func(c *config) {
		c.LivenessCheck = enabled
	}
}

// WithMainCommand sets the main process command line.
//
// Default: python3 bot.py.
//
// Panics if no arguments are given or the first is empty.
func WithMainCommand(args ...string) Option {
	if len(args) == 0 {
		panic("sidecarrun: main command must not be empty")
	}
	requireNonEmpty("main command", args[0])
	return func(c *config) {
		c.MainCommand = append([]string{}, args...)
	}
}

// WithMainDir sets the main process working directory.
// Panics if dir is empty.
func WithMainDir(dir string) Option {
	requireNonEmpty("main directory", dir)
	return func(c *config) {
		c.MainDir = dir
	}
}

// WithMainDetached sends the main process output to log files in the log
// directory instead of the supervisor's terminal.
//
// Default: attached.
func WithMainDetached(detached bool) Option {
	return func(c *config) {
		c.MainDetached = detached
	}
}

// WithStateDir sets the directory for logs and the lock file.
//
// Default: ".sidecarrun".
//
// Panics if dir is empty.
func WithStateDir(dir string) Option {
	requireNonEmpty("state directory", dir)
	return func(c *config) {
		c.stateDir = dir
	}
}

// WithLogDir sets the child log directory.
//
// Default: "<state dir>/logs".
//
// Panics if dir is empty.
func WithLogDir(dir string) Option {
	requireNonEmpty("log directory", dir)
	return func(c *config) {
		c.LogDir = dir
	}
}

// WithLockPath sets the single-instance lock file.
//
// Default: "<state dir>/sidecarrun.lock".
//
// Panics if path is empty.
func WithLockPath(path string) Option {
	requireNonEmpty("lock path", path)
	return func(c *config) {
		c.LockPath = path
		c.noLock = false
	}
}

// WithoutLock disables the single-instance lock.
func WithoutLock() Option {
	return func(c *config) {
		c.LockPath = ""
		c.noLock = true
	}
}

// WithHistoryPath enables the run history and stores it at path.
// Panics if path is empty.
func WithHistoryPath(path string) Option {
	requireNonEmpty("history path", path)
	return func(c *config) {
		c.historyPath = path
	}
}

// WithEnvFile sets the .env file read at startup. A missing file is not an
// error.
//
// Default: ".env".
//
// Panics if path is empty.
func WithEnvFile(path string) Option {
	requireNonEmpty("env file path", path)
	return func(c *config) {
		c.envFile = path
	}
}

// WithEnviron replaces the base environment (os.Environ() by default) that
// is overlaid on the .env file.
func WithEnviron(environ []string) Option {
	return func(c *config) {
		c.environ = append([]string{}, environ...)
	}
}

// WithStopTimeout sets the grace period between SIGTERM and SIGKILL when a
// child is stopped.
//
// Default: 10 seconds.
//
// Panics if d <= 0.
func WithStopTimeout(d time.Duration) Option {
	requirePositive("stop timeout", d)
	return func(c *config) {
		c.StopTimeout = d
	}
}
