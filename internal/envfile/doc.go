// Package envfile composes the environment handed to the supervised
// children: the supervisor's own environment overlaid on values read from
// a .env file. Variables already set in the process environment take
// precedence over the file, so an operator can override a single key on
// the command line without editing it.
package envfile
