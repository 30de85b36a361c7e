// Package netutil provides the network checks the supervisor performs
// against the dependency's advertised endpoint: a pre-spawn check that the
// port is not already bound, and a TCP connect probe used while waiting for
// the dependency to become ready.
package netutil
