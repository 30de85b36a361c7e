// Package fileutil provides the small set of filesystem helpers the supervisor
// needs: creating state and log directories, checking for dependency
// artefacts, and seeding a dependency config file from its shipped example.
package fileutil
