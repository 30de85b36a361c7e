// Package sidecarrun supervises a two-process application: a dependency
// server (a Lavalink node started as `java -jar`) and a main process that
// needs it (a music bot).
//
// A run checks preconditions (a Java runtime of at least the required major
// version, the server jar, a sane server config), starts the dependency
// detached from the terminal, waits for it to become usable, verifies it is
// still alive, and then runs the main process attached to the operator's
// terminal. Whatever ends the run (main process exit, a failure, SIGINT,
// SIGTERM or SIGHUP), the dependency is torn down exactly once before Run
// returns.
//
// # Basic Usage
//
//	import "github.com/giantswarm/sidecarrun"
//
//	sup, err := sidecarrun.New(
//	    sidecarrun.WithDependencyDir("lavalink"),
//	    sidecarrun.WithMainCommand("python3", "bot.py"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sup.Close()
//
//	out := sup.Run(context.Background())
//	os.Exit(out.ExitCode)
//
// # Readiness
//
// The dependency gives no readiness signal, so the supervisor waits a fixed
// delay (WithReadyDelay). When a probe address is known (WithProbeAddr, or
// LAVALINK_HOST and LAVALINK_PORT in the environment) the wait ends as soon
// as the address accepts TCP connections; the delay remains the upper bound
// either way.
//
// # Environment
//
// Settings are read from the process environment overlaid on a .env file.
// The children receive the same environment unchanged.
package sidecarrun
