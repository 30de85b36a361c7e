package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultPath is the .env file looked up in the working directory.
const DefaultPath = ".env"

// PassThroughKeys are the settings consumed by the children rather than by
// the supervisor. They are forwarded untouched; the list only drives the
// startup log line reporting which of them are set.
var PassThroughKeys = []string{
	"LAVALINK_HOST",
	"LAVALINK_PORT",
	"LAVALINK_PASSWORD",
	"DEFAULT_VOLUME",
	"MAX_QUEUE_SIZE",
	"MAX_PLAYLIST_SIZE",
	"LOG_LEVEL",
	"LOG_FILE",
	"CACHE_DIR",
	"CACHE_MAX_SIZE",
	"SPOTIFY_CLIENT_ID",
	"SPOTIFY_CLIENT_SECRET",
	"DISCORD_TOKEN",
}

// Env is an immutable set of environment variables.
type Env struct {
	vars map[string]string
}

// Load reads the .env file at path (a missing file is not an error) and
// overlays base, a slice in os.Environ form.
func Load(path string, base []string) (*Env, error) {
	vars := map[string]string{}

	if path != "" {
		fileVars, err := godotenv.Read(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		default:
			maps.Copy(vars, fileVars)
		}
	}

	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}

	return &Env{vars: vars}, nil
}

// FromMap builds an Env directly from vars.
func FromMap(vars map[string]string) *Env {
	if vars == nil {
		return &Env{vars: map[string]string{}}
	}
	return &Env{vars: maps.Clone(vars)}
}

// Get returns the value of key or "".
func (e *Env) Get(key string) string {
	return e.vars[key]
}

// Lookup returns the value of key and whether it is set.
func (e *Env) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Environ returns the variables as sorted KEY=VALUE pairs, suitable for
// exec.Cmd.Env.
func (e *Env) Environ() []string {
	keys := slices.Sorted(maps.Keys(e.vars))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e.vars[k])
	}
	return out
}

// PassThrough returns the PassThroughKeys that are set, in list order.
func (e *Env) PassThrough() []string {
	var out []string
	for _, k := range PassThroughKeys {
		if _, ok := e.vars[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
