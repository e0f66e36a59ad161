package functions

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/fnmanifest/internal/params"
)

// FirebaseConfigEnv names the environment variable holding the project
// config, either inline JSON or a path to a JSON file.
const FirebaseConfigEnv = "FIREBASE_CONFIG"

// FirebaseConfig is the subset of the project config used at assembly.
type FirebaseConfig struct {
	ProjectID     string `json:"projectId"`
	StorageBucket string `json:"storageBucket"`
	DatabaseURL   string `json:"databaseURL"`
}

// LoadFirebaseConfig reads FIREBASE_CONFIG through lookup. It returns nil
// and no error when the variable is unset or empty.
func LoadFirebaseConfig(lookup params.LookupFunc) (*FirebaseConfig, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	raw, ok := lookup(FirebaseConfigEnv)
	if !ok || raw == "" {
		return nil, nil
	}

	data := []byte(raw)
	if !strings.HasPrefix(raw, "{") {
		var err error
		data, err = os.ReadFile(raw)
		if err != nil {
			return nil, fmt.Errorf("unable to read %s file %s: %w", FirebaseConfigEnv, raw, err)
		}
	}

	var cfg FirebaseConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s is not valid JSON: %w", FirebaseConfigEnv, err)
	}
	return &cfg, nil
}
