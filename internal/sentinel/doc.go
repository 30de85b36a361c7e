// Package sentinel provides a string-backed error type that can be declared
// as a const. sidecarrun uses it for every sentinel error so callers can match
// them with errors.Is without the values ever being reassigned.
package sentinel
