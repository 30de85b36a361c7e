package core

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the fully resolved supervisor configuration.
//
// All fields are immutable after construction via NewSupervisor.
type Config struct {
	// Runtime prerequisite. Java is an explicit runtime path; when empty the
	// runtime is looked up through JAVA_HOME and then PATH.
	Java              string
	MinRuntimeVersion int

	// Dependency. ExampleConfig is copied to DependencyConfig when the
	// latter is missing. ListenAddr is checked for a free port before
	// spawning; ProbeAddr enables the TCP readiness probe.
	DependencyName   string
	DependencyDir    string
	JarPath          string
	DependencyConfig string
	ExampleConfig    string
	PluginsDir       string
	JVMArgs          []string
	ListenAddr       string
	ProbeAddr        string
	ReadyDelay       time.Duration
	LivenessCheck    bool

	// Main process.
	MainName     string
	MainCommand  []string
	MainDir      string
	MainDetached bool

	// Supervisor state. An empty LockPath disables the single-instance lock.
	LogDir      string
	LockPath    string
	StopTimeout time.Duration
}

// Validate checks all Config invariants and returns an error describing
// every violation found.
func (c Config) Validate() error {
	var errs []error

	if c.MinRuntimeVersion <= 0 {
		errs = append(errs, fmt.Errorf("minimum runtime version must be greater than 0, got %d", c.MinRuntimeVersion))
	}
	if c.JarPath == "" {
		errs = append(errs, errors.New("dependency jar path must not be empty"))
	}
	if c.ReadyDelay < 0 {
		errs = append(errs, fmt.Errorf("ready delay must not be negative, got %s", c.ReadyDelay))
	}
	if len(c.MainCommand) == 0 || c.MainCommand[0] == "" {
		errs = append(errs, errors.New("main command must not be empty"))
	}
	if c.LogDir == "" {
		errs = append(errs, errors.New("log directory must not be empty"))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, fmt.Errorf("stop timeout must be greater than 0, got %s", c.StopTimeout))
	}

	return errors.Join(errs...)
}
