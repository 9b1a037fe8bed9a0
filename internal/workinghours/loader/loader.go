// Package loader reads the fallback working hours applied to tenants that
// have no stored configuration.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"clinicsched/internal/scheduling/hours"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"gopkg.in/yaml.v3"
)

// File is the root of the default working hours YAML document.
type File struct {
	WorkingHours model.WorkingHours `yaml:"working_hours"`
}

// Load reads path. A missing file yields no default and is not an error;
// a file that does not parse or validate is.
func Load(path string, log *logger.Logger) (model.WorkingHours, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Default working hours file not found, tenants without configuration are closed", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("read working hours file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (model.WorkingHours, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse working hours file: %w", err)
	}
	if err := hours.Validate(f.WorkingHours); err != nil {
		return nil, fmt.Errorf("validate working hours file: %w", err)
	}
	return f.WorkingHours, nil
}
