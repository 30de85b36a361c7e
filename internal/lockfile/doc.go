// Package lockfile provides the single-instance supervisor lock: an
// advisory exclusive file lock held for the supervisor's lifetime.
package lockfile
