package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecretsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := SecretsDir
	SecretsDir = dir
	t.Cleanup(func() { SecretsDir = prev })
	return dir
}

func TestReadSecret(t *testing.T) {
	dir := withSecretsDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("  s3cret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blank"), []byte("\n"), 0o600))

	secret, err := ReadSecret("db_password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)

	_, err = ReadSecret("blank")
	assert.Error(t, err)

	_, err = ReadSecret("missing")
	assert.Error(t, err)
}

func TestReadSecretOrEnv(t *testing.T) {
	dir := withSecretsDir(t)
	t.Setenv("DB_PASSWORD", "from-env")

	assert.Equal(t, "from-env", ReadSecretOrEnv("db_password", "DB_PASSWORD"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("from-file"), 0o600))
	assert.Equal(t, "from-file", ReadSecretOrEnv("db_password", "DB_PASSWORD"))
}
