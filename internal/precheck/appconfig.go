package precheck

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/sidecarrun/internal/fileutil"
)

// Plugin jar name patterns looked up in the plugins directory.
const (
	youtubePluginGlob = "youtube-plugin-*.jar"
	lavasrcPluginGlob = "[Ll]ava[Ss]rc-*.jar"

	appConfigCheck = "dependency-config"

	spotifyClientIDRef     = "${SPOTIFY_CLIENT_ID}"
	spotifyClientSecretRef = "${SPOTIFY_CLIENT_SECRET}"
)

// appConfig is the subset of the dependency's application.yml the gate
// inspects. Youtube is untyped because Spring placeholders are legal there.
type appConfig struct {
	Lavalink struct {
		Server struct {
			Sources struct {
				Youtube any `yaml:"youtube"`
			} `yaml:"sources"`
		} `yaml:"server"`
	} `yaml:"lavalink"`
	Plugins struct {
		Lavasrc *struct {
			Spotify struct {
				ClientID     string `yaml:"clientId"`
				ClientSecret string `yaml:"clientSecret"`
			} `yaml:"spotify"`
		} `yaml:"lavasrc"`
	} `yaml:"plugins"`
}

func (c appConfig) builtinYoutubeEnabled() bool {
	switch v := c.Lavalink.Server.Sources.Youtube.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

// CheckAppConfig inspects the dependency config at path against the plugins
// found in pluginsDir. getenv resolves environment variables (os.Getenv in
// production).
func CheckAppConfig(path, pluginsDir string, getenv func(string) string) []Finding {
	const check = appConfigCheck

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from supervisor config
	if errors.Is(err, fs.ErrNotExist) {
		return []Finding{{Check: check, Severity: SeverityWarning,
			Message: fmt.Sprintf("%s not found; the dependency will run on its defaults", path)}}
	}
	if err != nil {
		return []Finding{{Check: check, Severity: SeverityError, Message: fmt.Sprintf("read %s: %v", path, err)}}
	}

	var cfg appConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return []Finding{{Check: check, Severity: SeverityError, Message: fmt.Sprintf("parse %s: %v", path, err)}}
	}

	var findings []Finding
	if hasPlugin(pluginsDir, youtubePluginGlob) && cfg.builtinYoutubeEnabled() {
		findings = append(findings, Finding{Check: check, Severity: SeverityError, Message: fmt.Sprintf(
			"%s: lavalink.server.sources.youtube must be false when the YouTube plugin is installed", path)})
	}

	if hasPlugin(pluginsDir, lavasrcPluginGlob) {
		if ls := cfg.Plugins.Lavasrc; ls != nil &&
			(ls.Spotify.ClientID != spotifyClientIDRef || ls.Spotify.ClientSecret != spotifyClientSecretRef) {
			findings = append(findings, Finding{Check: check, Severity: SeverityWarning, Message: fmt.Sprintf(
				"%s: plugins.lavasrc.spotify should use %s and %s instead of literal credentials",
				path, spotifyClientIDRef, spotifyClientSecretRef)})
		}
		if getenv("SPOTIFY_CLIENT_ID") == "" || getenv("SPOTIFY_CLIENT_SECRET") == "" {
			findings = append(findings, Finding{Check: check, Severity: SeverityWarning,
				Message: "SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET is not set; the LavaSrc plugin will likely fail"})
		}
	}
	return findings
}

// SeedAppConfig copies example to path when path does not exist and example
// does. It reports whether a copy happened. An empty example is a no-op.
func SeedAppConfig(path, example string) (bool, error) {
	if example == "" {
		return false, nil
	}
	ok, err := fileutil.IsFile(example)
	if err != nil || !ok {
		return false, err
	}
	return fileutil.CopyIfMissing(example, path, 0o600)
}

func hasPlugin(dir, pattern string) bool {
	if dir == "" {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	return err == nil && len(matches) > 0
}
