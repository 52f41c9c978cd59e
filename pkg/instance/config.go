package instance

import (
	"encoding/json"
	"os"
	"path/filepath"

	ckerrors "github.com/provide-io/craftkit/pkg/errors"
)

// ConfigFile is the per-instance launcher settings file.
const ConfigFile = "config.json"

// Mod types recorded in config.json.
const (
	ModTypeVanilla = "Vanilla"
	ModTypeForge   = "Forge"
	ModTypeFabric  = "Fabric"
)

// ModType returns the loader recorded for the instance, "Vanilla" if unset.
func ModType(dir string) (string, error) {
	fields, err := readConfig(dir)
	if err != nil {
		return "", err
	}
	var modType string
	if raw, ok := fields["mod_type"]; ok {
		if err := json.Unmarshal(raw, &modType); err != nil {
			return "", &ckerrors.JSONError{Content: string(raw), Err: err}
		}
	}
	if modType == "" {
		modType = ModTypeVanilla
	}
	return modType, nil
}

// SetModType records the loader type, keeping every other field of config.json.
func SetModType(dir, modType string) error {
	fields, err := readConfig(dir)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(modType)
	if err != nil {
		return err
	}
	fields["mod_type"] = raw

	return writeJSON(filepath.Join(dir, ConfigFile), fields)
}

// readConfig loads config.json as raw fields. A missing file is empty.
func readConfig(dir string) (map[string]json.RawMessage, error) {
	path := filepath.Join(dir, ConfigFile)
	fields := make(map[string]json.RawMessage)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fields, nil
		}
		return nil, ckerrors.Path("read", path, err)
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &ckerrors.JSONError{Content: string(data), Err: err}
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}
	return fields, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ckerrors.Path("mkdir", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ckerrors.Path("write", path, err)
	}
	return nil
}
