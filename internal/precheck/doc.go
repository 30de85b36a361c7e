// Package precheck implements the supervisor's precondition gate: the
// required runtime is installed at or above a minimum major version, the
// dependency jar exists, and the dependency's application.yml has no known
// critical plugin misconfiguration. Checks run concurrently and report
// findings; only error-severity findings fail the gate.
package precheck
