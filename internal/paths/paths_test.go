package paths

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHomeDir_NoSudo(t *testing.T) {
	t.Setenv("SUDO_USER", "")

	got, err := UserHomeDir()
	require.NoError(t, err)
	expected, _ := os.UserHomeDir()
	assert.Equal(t, expected, got)
}

func TestUserHomeDir_WithSudoUser(t *testing.T) {
	current, err := user.Current()
	if err != nil || current.Username == "root" {
		t.Skip("needs a non-root current user")
	}
	t.Setenv("SUDO_USER", current.Username)

	got, err := UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, current.HomeDir, got)
}

func TestUserHomeDir_SudoUserRootIgnored(t *testing.T) {
	t.Setenv("SUDO_USER", "root")

	got, err := UserHomeDir()
	require.NoError(t, err)
	expected, _ := os.UserHomeDir()
	assert.Equal(t, expected, got)
}

func TestDirs_FollowXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("SUDO_USER", "")
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "coverflow"), dir)

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"config", ConfigPath, filepath.Join(dir, "config.toml")},
		{"covers", CoversDir, filepath.Join(dir, "covers")},
		{"database", DatabasePath, filepath.Join(dir, "coverflow.db")},
		{"log", LogPath, filepath.Join(dir, "logs", "coverflow.log")},
		{"env", EnvPath, filepath.Join(dir, ".env")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
