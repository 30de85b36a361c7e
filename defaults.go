package sidecarrun

import "time"

// Default configuration values for New.
const (
	// DefaultDependencyDir is the directory holding the server jar, its
	// application.yml and the plugins directory. It is also the server's
	// working directory.
	DefaultDependencyDir = "lavalink"

	// DefaultJarName is the server jar inside the dependency directory.
	DefaultJarName = "Lavalink.jar"

	// DefaultConfigName is the server config inside the dependency directory.
	DefaultConfigName = "application.yml"

	// DefaultExampleConfigName is copied to DefaultConfigName when the
	// config is missing.
	DefaultExampleConfigName = "application.yml.example"

	// DefaultPluginsDirName is the server's plugin directory inside the
	// dependency directory.
	DefaultPluginsDirName = "plugins"

	// DefaultMinRuntimeVersion is the minimum Java major version.
	DefaultMinRuntimeVersion = 17

	// DefaultReadyDelay is the readiness wait. With a probe address it is
	// the upper bound of the probe.
	DefaultReadyDelay = 10 * time.Second

	// DefaultStopTimeout is the grace period between SIGTERM and SIGKILL
	// when stopping a child.
	DefaultStopTimeout = 10 * time.Second

	// DefaultStateDir holds child logs, the lock file and the run history.
	DefaultStateDir = ".sidecarrun"

	// DefaultLogDirName is the child log directory inside the state dir.
	DefaultLogDirName = "logs"

	// DefaultLockFileName is the single-instance lock inside the state dir.
	DefaultLockFileName = "sidecarrun.lock"

	// DefaultHistoryFileName is the run history database inside the state
	// dir, used by the CLI.
	DefaultHistoryFileName = "history.db"

	// DefaultEnvFile is the .env file read at startup.
	DefaultEnvFile = ".env"

	// DefaultDependencyName and DefaultMainName label the children in logs
	// and log file names.
	DefaultDependencyName = "lavalink"
	DefaultMainName       = "bot"
)

// DefaultMainCommand returns the main process command line used when none
// is configured.
func DefaultMainCommand() []string {
	return []string{"python3", "bot.py"}
}
