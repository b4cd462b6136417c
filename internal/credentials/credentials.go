package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrMissingField = errors.New("credentials file must set username and password")

// Credentials is the MoneyBrilliant login pair.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Load reads a {"username": ..., "password": ...} JSON file. Both fields must
// be present and non-empty.
func Load(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}
	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, fmt.Errorf("%w: %s", ErrMissingField, path)
	}
	return creds, nil
}
