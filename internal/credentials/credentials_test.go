package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"username": "me@example.com", "password": "hunter2"}`), 0o600))

	creds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Username: "me@example.com", Password: "hunter2"}, creds)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`username: me`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFields(t *testing.T) {
	files := map[string]string{
		"unrelated key":  `{"user": "x"}`,
		"no password":    `{"username": "me@example.com"}`,
		"empty username": `{"username": "", "password": "hunter2"}`,
	}

	for name, contents := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "creds.json")
			require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

			creds, err := Load(path)
			assert.ErrorIs(t, err, ErrMissingField)
			assert.Equal(t, Credentials{}, creds)
		})
	}
}
