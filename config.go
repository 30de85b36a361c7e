package sidecarrun

import (
	"fmt"
	"net"
	"path/filepath"

	"github.com/giantswarm/sidecarrun/internal/core"
	"github.com/giantswarm/sidecarrun/internal/envfile"
)

// config holds configuration for a Supervisor. It embeds core.Config,
// keeping internal/core types out of the public API signature, and adds
// the settings that only matter while resolving it.
type config struct {
	core.Config

	stateDir    string
	envFile     string
	historyPath string
	environ     []string // nil means os.Environ()

	noProbe bool
	noLock  bool
}

// defaultConfig returns a config populated with all default values. Paths
// derived from the dependency and state directories are filled in by
// resolve, after options have been applied.
func defaultConfig() config {
	return config{
		Config: core.Config{
			MinRuntimeVersion: DefaultMinRuntimeVersion,
			DependencyName:    DefaultDependencyName,
			DependencyDir:     DefaultDependencyDir,
			ReadyDelay:        DefaultReadyDelay,
			LivenessCheck:     true,
			MainName:          DefaultMainName,
			MainCommand:       DefaultMainCommand(),
			StopTimeout:       DefaultStopTimeout,
		},
		stateDir: DefaultStateDir,
		envFile:  DefaultEnvFile,
	}
}

// resolve derives unset paths, makes them absolute (the dependency runs
// with its own working directory) and fills the probe address from
// LAVALINK_HOST and LAVALINK_PORT.
func (c config) resolve(env *envfile.Env) (core.Config, error) {
	out := c.Config
	if c.JVMArgs != nil {
		out.JVMArgs = append([]string{}, c.JVMArgs...)
	}

	setDefault(&out.JarPath, filepath.Join(out.DependencyDir, DefaultJarName))
	setDefault(&out.DependencyConfig, filepath.Join(out.DependencyDir, DefaultConfigName))
	setDefault(&out.ExampleConfig, filepath.Join(out.DependencyDir, DefaultExampleConfigName))
	setDefault(&out.PluginsDir, filepath.Join(out.DependencyDir, DefaultPluginsDirName))
	setDefault(&out.LogDir, filepath.Join(c.stateDir, DefaultLogDirName))
	if !c.noLock {
		setDefault(&out.LockPath, filepath.Join(c.stateDir, DefaultLockFileName))
	}

	for _, p := range []*string{
		&out.DependencyDir, &out.JarPath, &out.DependencyConfig, &out.ExampleConfig,
		&out.PluginsDir, &out.LogDir, &out.LockPath,
	} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return core.Config{}, fmt.Errorf("resolve path %s: %w", *p, err)
		}
		*p = abs
	}

	if out.ProbeAddr == "" && !c.noProbe {
		host, port := env.Get("LAVALINK_HOST"), env.Get("LAVALINK_PORT")
		if host != "" && port != "" {
			out.ProbeAddr = net.JoinHostPort(host, port)
			// A local server will bind this port, so a conflict can be
			// detected before spawning.
			if out.ListenAddr == "" && isLoopback(host) {
				out.ListenAddr = out.ProbeAddr
			}
		}
	}

	return out, nil
}

func setDefault(p *string, def string) {
	if *p == "" {
		*p = def
	}
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
