package lconfig

import (
	"github.com/ghodss/yaml"
	"github.com/spf13/afero"
	"io"
	"os"
)

// LoadYamlFile reads a YAML document from the filesystem into target.
// Used for configuration values too structured to live in a single
// environment variable, e.g. hyperparameter maps.
func LoadYamlFile(filename string, filesystem afero.Fs, target interface{}) error {
	file, err := filesystem.OpenFile(filename, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(content, target)
}
