package precheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuntime writes an executable script named java into dir that prints
// banner to stderr the way a JVM does.
func fakeRuntime(t *testing.T, dir, banner string) string {
	t.Helper()
	path := filepath.Join(dir, "java")
	script := "#!/bin/sh\necho '" + banner + "' >&2\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755)) //nolint:gosec // G306: test script must be executable
	return path
}

func TestParseMajorVersion(t *testing.T) {
	t.Parallel()

	type testCase struct {
		banner    string
		wantMajor int
		wantRaw   string
		wantErr   bool
	}

	tests := map[string]testCase{
		"openjdk 17": {
			banner:    `openjdk version "17.0.9" 2023-10-17`,
			wantMajor: 17,
			wantRaw:   "17.0.9",
		},
		"legacy 1.8": {
			banner:    `java version "1.8.0_392"`,
			wantMajor: 8,
			wantRaw:   "1.8.0_392",
		},
		"bare major": {
			banner:    `openjdk version "21" 2023-09-19`,
			wantMajor: 21,
			wantRaw:   "21",
		},
		"early access suffix": {
			banner:    `openjdk version "22-ea" 2024-03-19`,
			wantMajor: 22,
			wantRaw:   "22-ea",
		},
		"multi-line banner": {
			banner: "openjdk version \"11.0.20\" 2023-07-18\n" +
				"OpenJDK Runtime Environment (build 11.0.20+8)\n",
			wantMajor: 11,
			wantRaw:   "11.0.20",
		},
		"no version": {
			banner:  "command not found",
			wantErr: true,
		},
		"non-numeric": {
			banner:  `java version "abc"`,
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			major, raw, err := ParseMajorVersion(tc.banner)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnparsableVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantMajor, major)
			assert.Equal(t, tc.wantRaw, raw)
		})
	}
}

func TestResolveRuntime(t *testing.T) {
	t.Parallel()

	t.Run("override wins over java home", func(t *testing.T) {
		t.Parallel()
		override := fakeRuntime(t, t.TempDir(), `openjdk version "17"`)

		home := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(home, "bin"), 0o750))
		fakeRuntime(t, filepath.Join(home, "bin"), `openjdk version "21"`)

		got, err := ResolveRuntime(override, home)
		require.NoError(t, err)
		assert.Equal(t, override, got)
	})

	t.Run("java home", func(t *testing.T) {
		t.Parallel()
		home := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(home, "bin"), 0o750))
		want := fakeRuntime(t, filepath.Join(home, "bin"), `openjdk version "21"`)

		got, err := ResolveRuntime("", home)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing override", func(t *testing.T) {
		t.Parallel()
		_, err := ResolveRuntime(filepath.Join(t.TempDir(), "nope"), "")
		require.ErrorIs(t, err, ErrRuntimeNotFound)
	})

	t.Run("java home without binary", func(t *testing.T) {
		t.Parallel()
		_, err := ResolveRuntime("", t.TempDir())
		require.ErrorIs(t, err, ErrRuntimeNotFound)
	})
}

func TestRuntimeVersion(t *testing.T) {
	t.Parallel()

	bin := fakeRuntime(t, t.TempDir(), `openjdk version "17.0.2" 2022-01-18`)
	major, raw, err := RuntimeVersion(context.Background(), bin)
	require.NoError(t, err)
	assert.Equal(t, 17, major)
	assert.Equal(t, "17.0.2", raw)
}
