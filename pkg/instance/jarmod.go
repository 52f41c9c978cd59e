package instance

import (
	"encoding/json"
	"os"
	"path/filepath"

	ckerrors "github.com/provide-io/craftkit/pkg/errors"
)

const (
	JarModsDir  = "jarmods"
	JarModsFile = "jarmods.json"
)

// JarMod is one overlay applied on top of the game jar, in order.
type JarMod struct {
	Filename string `json:"filename"`
	Enabled  bool   `json:"enabled"`
}

// JarMods is the jarmods.json index.
type JarMods struct {
	Mods []JarMod `json:"mods"`
}

// LoadJarMods reads jarmods.json. A missing file is an empty index.
func LoadJarMods(dir string) (*JarMods, error) {
	path := filepath.Join(dir, JarModsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &JarMods{Mods: []JarMod{}}, nil
		}
		return nil, ckerrors.Path("read", path, err)
	}

	var mods JarMods
	if err := json.Unmarshal(data, &mods); err != nil {
		return nil, &ckerrors.JSONError{Content: string(data), Err: err}
	}
	return &mods, nil
}

// InsertJarMod stores data as jarmods/<name>.zip and enables it in
// jarmods.json. Inserting the same name again replaces the file only.
func InsertJarMod(dir string, data []byte, name string) error {
	filename := name + ".zip"
	modsDir := filepath.Join(dir, JarModsDir)
	if err := os.MkdirAll(modsDir, 0o755); err != nil {
		return ckerrors.Path("mkdir", modsDir, err)
	}

	path := filepath.Join(modsDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ckerrors.Path("write", path, err)
	}

	index, err := LoadJarMods(dir)
	if err != nil {
		return err
	}
	for _, m := range index.Mods {
		if m.Filename == filename {
			return nil
		}
	}
	index.Mods = append(index.Mods, JarMod{Filename: filename, Enabled: true})
	return writeJSON(filepath.Join(dir, JarModsFile), index)
}
