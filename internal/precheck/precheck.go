package precheck

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/sidecarrun/internal/fileutil"
)

// Severity classifies a finding.
type Severity int

const (
	// SeverityWarning is reported but does not fail the gate.
	SeverityWarning Severity = iota
	// SeverityError fails the gate.
	SeverityError
)

// String returns "warning" or "error".
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Finding is a single observation made by a check.
type Finding struct {
	Check    string
	Severity Severity
	Message  string
}

// Config configures Run.
type Config struct {
	// RuntimeOverride is an explicit runtime path; empty means JavaHome/PATH.
	RuntimeOverride string
	JavaHome        string
	MinMajorVersion int

	// JarPath is checked for existence when set.
	JarPath string

	// AppConfigPath and PluginsDir enable the dependency config check.
	AppConfigPath string
	PluginsDir    string
	// ExampleConfigPath seeds a missing AppConfigPath before it is checked.
	ExampleConfigPath string

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Result is the outcome of the precondition gate.
type Result struct {
	Satisfied      bool
	Detail         string
	Findings       []Finding
	RuntimePath    string
	RuntimeVersion string
}

// Errors returns the error-severity findings.
func (r Result) Errors() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Run evaluates all preconditions concurrently. Checks never abort each
// other: every unmet requirement is reported in one pass.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.Getenv == nil {
		cfg.Getenv = os.Getenv
	}

	var (
		runtimeFindings []Finding
		jarFindings     []Finding
		appFindings     []Finding
		runtimePath     string
		runtimeVersion  string
	)

	// Each goroutine writes only its own variables; g.Wait provides the
	// happens-before edge for reading them afterwards.
	var g errgroup.Group
	g.Go(func() error {
		runtimePath, runtimeVersion, runtimeFindings = checkRuntime(ctx, cfg)
		return nil
	})
	if cfg.JarPath != "" {
		g.Go(func() error {
			jarFindings = checkJar(cfg.JarPath)
			return nil
		})
	}
	if cfg.AppConfigPath != "" {
		g.Go(func() error {
			appFindings = checkSeededAppConfig(cfg)
			return nil
		})
	}
	_ = g.Wait() // goroutines report through findings, never through errors

	res := Result{RuntimePath: runtimePath, RuntimeVersion: runtimeVersion}
	res.Findings = append(res.Findings, runtimeFindings...)
	res.Findings = append(res.Findings, jarFindings...)
	res.Findings = append(res.Findings, appFindings...)

	errs := res.Errors()
	res.Satisfied = len(errs) == 0
	if res.Satisfied {
		res.Detail = fmt.Sprintf("runtime %s (version %s) satisfies minimum %d", runtimePath, runtimeVersion, cfg.MinMajorVersion)
	} else {
		msgs := make([]string, 0, len(errs))
		for _, f := range errs {
			msgs = append(msgs, f.Message)
		}
		res.Detail = strings.Join(msgs, "; ")
	}
	return res
}

func checkRuntime(ctx context.Context, cfg Config) (string, string, []Finding) {
	const check = "runtime"

	path, err := ResolveRuntime(cfg.RuntimeOverride, cfg.JavaHome)
	if err != nil {
		return "", "", []Finding{{Check: check, Severity: SeverityError,
			Message: fmt.Sprintf("required runtime is not installed or not in PATH: %v", err)}}
	}
	major, raw, err := RuntimeVersion(ctx, path)
	if err != nil {
		return path, raw, []Finding{{Check: check, Severity: SeverityError,
			Message: fmt.Sprintf("cannot determine runtime version: %v", err)}}
	}
	if major < cfg.MinMajorVersion {
		return path, raw, []Finding{{Check: check, Severity: SeverityError,
			Message: fmt.Sprintf("%s: runtime %s is version %s (major %d), need %d or newer",
				ErrRuntimeTooOld, path, raw, major, cfg.MinMajorVersion)}}
	}
	return path, raw, nil
}

func checkJar(path string) []Finding {
	ok, err := fileutil.IsFile(path)
	if err != nil {
		return []Finding{{Check: "dependency-jar", Severity: SeverityError, Message: err.Error()}}
	}
	if !ok {
		return []Finding{{Check: "dependency-jar", Severity: SeverityError,
			Message: fmt.Sprintf("dependency jar %s not found", path)}}
	}
	return nil
}

// checkSeededAppConfig puts the example config in place when the config is
// missing, so the file the dependency will be started with is the one that
// gets checked.
func checkSeededAppConfig(cfg Config) []Finding {
	var findings []Finding
	copied, err := SeedAppConfig(cfg.AppConfigPath, cfg.ExampleConfigPath)
	if err != nil {
		return []Finding{{Check: appConfigCheck, Severity: SeverityError,
			Message: fmt.Sprintf("create %s from %s: %v", cfg.AppConfigPath, cfg.ExampleConfigPath, err)}}
	}
	if copied {
		findings = append(findings, Finding{Check: appConfigCheck, Severity: SeverityWarning,
			Message: fmt.Sprintf("created %s from %s; review it before production use", cfg.AppConfigPath, cfg.ExampleConfigPath)})
	}
	return append(findings, CheckAppConfig(cfg.AppConfigPath, cfg.PluginsDir, cfg.Getenv)...)
}
