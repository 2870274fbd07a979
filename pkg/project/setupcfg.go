package project

import (
	"errors"
	"io/fs"

	"github.com/datawire/scmdist/pkg/python"
)

// DefaultSetupCfg is the INI file that per-command option defaults are read from.
const DefaultSetupCfg = "setup.cfg"

// LoadCommandDefaults reads per-command option defaults, the way distutils reads "setup.cfg".  A
// missing file is the same as an empty one.
func LoadCommandDefaults(filename string) (python.Config, error) {
	config, err := python.NewConfigParser().ParseFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return python.Config{}, nil
		}
		return nil, err
	}
	return config, nil
}
