package config

import (
	"bytes"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Save writes settings to the default config path.
func Save(cfg Settings) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(path, cfg)
}

// SaveToPath replaces the file at path with the encoded settings. Readers
// never observe a partial file.
func SaveToPath(path string, cfg Settings) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func Encode(cfg Settings) ([]byte, error) {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	file, err := os.CreateTemp(dir, ".tmp-*.toml")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(file.Name())
	}()

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	if err := os.Chmod(file.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(file.Name(), path)
}
