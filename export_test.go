package sidecarrun

import (
	"time"

	"github.com/giantswarm/sidecarrun/internal/envfile"
)

// ConfigSnapshot holds a copy of the resolved configuration for test
// assertions. Exported only via export_test.go so that the _test package can
// verify option closures and path resolution without accessing internals.
type ConfigSnapshot struct {
	Java              string
	MinRuntimeVersion int
	DependencyDir     string
	JarPath           string
	DependencyConfig  string
	ExampleConfig     string
	PluginsDir        string
	JVMArgs           []string
	ListenAddr        string
	ProbeAddr         string
	ReadyDelay        time.Duration
	LivenessCheck     bool
	MainCommand       []string
	MainDir           string
	MainDetached      bool
	LogDir            string
	LockPath          string
	StopTimeout       time.Duration
	HistoryPath       string
	EnvFile           string
}

// ResolveForTesting applies opts to the default config and resolves it
// against env (standing in for the .env file plus process environment).
func ResolveForTesting(env map[string]string, opts ...Option) (ConfigSnapshot, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	resolved, err := cfg.resolve(envfile.FromMap(env))
	if err != nil {
		return ConfigSnapshot{}, err
	}
	return ConfigSnapshot{
		Java:              resolved.Java,
		MinRuntimeVersion: resolved.MinRuntimeVersion,
		DependencyDir:     resolved.DependencyDir,
		JarPath:           resolved.JarPath,
		DependencyConfig:  resolved.DependencyConfig,
		ExampleConfig:     resolved.ExampleConfig,
		PluginsDir:        resolved.PluginsDir,
		JVMArgs:           resolved.JVMArgs,
		ListenAddr:        resolved.ListenAddr,
		ProbeAddr:         resolved.ProbeAddr,
		ReadyDelay:        resolved.ReadyDelay,
		LivenessCheck:     resolved.LivenessCheck,
		MainCommand:       resolved.MainCommand,
		MainDir:           resolved.MainDir,
		MainDetached:      resolved.MainDetached,
		LogDir:            resolved.LogDir,
		LockPath:          resolved.LockPath,
		StopTimeout:       resolved.StopTimeout,
		HistoryPath:       cfg.historyPath,
		EnvFile:           cfg.envFile,
	}, nil
}
