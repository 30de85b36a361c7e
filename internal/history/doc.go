// Package history persists one record per supervisor run to a local SQLite
// database so operators can see past outcomes (cause, exit code, child
// PIDs) after the terminal has scrolled away.
package history
