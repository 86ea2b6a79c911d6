package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveFallsBackToFilesystemWhenNoDSN(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "acme"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "beta"), 0o755))

	names, err := Resolve(context.Background(), "", root)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"acme", "beta"}, names)
}

func TestResolveFallsBackWhenRegistryUnreachable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "acme"), 0o755))

	names, err := Resolve(context.Background(), "invalid:user@tcp(127.0.0.1:1)/nope", root)
	require.NoError(t, err)
	require.Equal(t, []string{"acme"}, names)
}
