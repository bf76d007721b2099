package system

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resultflow/items"
)

func TestProcessLauncher_SplitsCommandLine(t *testing.T) {
	var gotName string
	var gotArgs []string
	l := NewProcessLauncher(nil)
	l.start = func(name string, args ...string) (*exec.Cmd, error) {
		gotName, gotArgs = name, args
		return nil, nil
	}

	require.NoError(t, l.SpawnDetached(`xterm -e "htop -d 10"`))
	assert.Equal(t, "xterm", gotName)
	assert.Equal(t, []string{"-e", "htop -d 10"}, gotArgs)
}

func TestProcessLauncher_Errors(t *testing.T) {
	l := NewProcessLauncher(nil)
	l.start = func(string, ...string) (*exec.Cmd, error) {
		return nil, errors.New("not found")
	}

	assert.ErrorIs(t, l.SpawnDetached("   "), ErrEmptyCommand)
	assert.Error(t, l.SpawnDetached(`echo "unterminated`))

	err := l.SpawnDetached("missing-binary --flag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing-binary")
}

func TestIconResolver(t *testing.T) {
	dir := t.TempDir()
	iconPath := filepath.Join(dir, "app.png")
	require.NoError(t, os.WriteFile(iconPath, []byte("png"), 0o600))

	fallback := items.Icon{Path: "default.png"}
	r := &IconResolver{Default: fallback, Dirs: []string{t.TempDir(), dir}}

	tests := []struct {
		name string
		in   items.Icon
		want items.Icon
	}{
		{name: "empty", in: items.Icon{}, want: fallback},
		{name: "remote", in: items.Icon{Path: "https://img.example/icon.png"}, want: items.Icon{Path: "https://img.example/icon.png"}},
		{name: "absolute existing", in: items.Icon{Path: iconPath}, want: items.Icon{Path: iconPath}},
		{name: "absolute missing", in: items.Icon{Path: filepath.Join(dir, "nope.png")}, want: fallback},
		{name: "relative in dirs", in: items.Icon{Path: "app.png"}, want: items.Icon{Path: iconPath}},
		{name: "relative missing", in: items.Icon{Path: "other.png"}, want: fallback},
		{name: "directory", in: items.Icon{Path: dir}, want: fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.in))
		})
	}
}

func TestHideFunc(t *testing.T) {
	calls := 0
	HideFunc(func() { calls++ }).HideWindow()
	assert.Equal(t, 1, calls)

	var nilFunc HideFunc
	assert.NotPanics(t, nilFunc.HideWindow)
	assert.NotPanics(t, LogWindow{}.HideWindow)
}
