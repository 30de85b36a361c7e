package precheck

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/giantswarm/sidecarrun/internal/sentinel"
)

// ErrRuntimeNotFound is returned when the runtime binary cannot be located.
const ErrRuntimeNotFound = sentinel.Error("runtime not found")

// ErrRuntimeTooOld is returned when the runtime's major version is below the
// required minimum.
const ErrRuntimeTooOld = sentinel.Error("runtime version below required minimum")

// ErrUnparsableVersion is returned when the runtime's version banner has no
// recognizable version string.
const ErrUnparsableVersion = sentinel.Error("cannot parse runtime version")

// versionProbeTimeout bounds the `java -version` call. A JVM that cannot
// print its banner in this time is not going to serve the dependency either.
const versionProbeTimeout = 15 * time.Second

// versionRe matches the quoted version in banners such as
// `openjdk version "17.0.9" 2023-10-17` or `java version "1.8.0_392"`.
var versionRe = regexp.MustCompile(`version "([^"]+)"`)

// ResolveRuntime picks the runtime binary: an explicit override wins, then
// $JAVA_HOME/bin/java, then "java" from PATH. The returned path is absolute
// when it was found via PATH.
func ResolveRuntime(override, javaHome string) (string, error) {
	candidate := override
	if candidate == "" && javaHome != "" {
		candidate = filepath.Join(javaHome, "bin", "java")
	}
	if candidate == "" {
		candidate = "java"
	}
	path, err := exec.LookPath(candidate)
	if err != nil {
		return "", fmt.Errorf("%s: %w", candidate, ErrRuntimeNotFound)
	}
	return path, nil
}

// ParseMajorVersion extracts the major version from a `java -version`
// banner. Legacy "1.x" versions map to x.
func ParseMajorVersion(banner string) (int, string, error) {
	m := versionRe.FindStringSubmatch(banner)
	if m == nil {
		return 0, "", ErrUnparsableVersion
	}
	raw := m[1]
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '.' || r == '_' || r == '+' || r == '-'
	})
	if len(parts) == 0 {
		return 0, raw, fmt.Errorf("%q: %w", raw, ErrUnparsableVersion)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, raw, fmt.Errorf("%q: %w", raw, ErrUnparsableVersion)
	}
	if major == 1 && len(parts) > 1 {
		if legacy, err := strconv.Atoi(parts[1]); err == nil {
			major = legacy
		}
	}
	return major, raw, nil
}

// RuntimeVersion runs `<bin> -version` and parses the banner. The JVM
// prints it on stderr; stdout is included for runtimes that do not.
func RuntimeVersion(ctx context.Context, bin string) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, bin, "-version").CombinedOutput() //nolint:gosec // G204: bin is the resolved runtime
	if err != nil {
		return 0, "", fmt.Errorf("run %s -version: %w", bin, err)
	}
	return ParseMajorVersion(string(out))
}
