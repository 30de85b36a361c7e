// Package mainproc runs the primary application process. By default it is
// attached to the supervisor's stdin, stdout and stderr so its console output
// reaches the operator in real time; in detached mode its output goes to log
// files instead. It inherits no supervisory logic.
package mainproc
