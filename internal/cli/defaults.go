package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultsFile is read from the working directory when -config is not given.
const DefaultsFile = "predictgen.yaml"

// Defaults are the settings a defaults file may provide. Flags given on the
// command line win over them.
type Defaults struct {
	Env       string `yaml:"env" json:"env"`
	StackName string `yaml:"stackName" json:"stackName"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	Format    string `yaml:"format" json:"format"`
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
}

// LoadDefaults reads the defaults file at path. A missing file yields empty
// defaults unless required is set.
func LoadDefaults(path string, required bool) (*Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return &Defaults{}, nil
		}
		return nil, fmt.Errorf("reading defaults file: %w", err)
	}

	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing defaults file %s: %w", path, err)
	}
	return &d, nil
}
