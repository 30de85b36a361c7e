// Package sidecar manages the dependency process: a Java server (Lavalink by
// default) started as `java [jvm args] -jar <jar>`, detached from the
// supervisor's terminal, with its output in log files.
//
// It handles seeding the server config from its shipped example, an optional
// pre-spawn check that the listen port is free, the readiness wait (a fixed
// delay, or a TCP probe bounded by the same delay), and teardown.
package sidecar
