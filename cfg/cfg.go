// Package cfg loads the program config for the toon CLI.
package cfg

import (
	"io/fs"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
)

// Root represents all settings of the program
type Root struct {
	// WatchDebounce represents how long to wait after a file change event before re-running the conversion.
	//
	// File saves often arrive as bursts of write events; only the last one in a burst triggers a run.
	WatchDebounce time.Duration `koanf:"watch_debounce"`

	// ZstdLevel represents the zstd compression level used for compressed output, from 1 (fastest) to 4 (best).
	ZstdLevel int `koanf:"zstd_level"`
}

// defCfg is written to the config path when no config file exists yet.
const defCfg = `# toon program config.

# How long to wait after a file change event before re-running the conversion.
watch_debounce: 200ms

# Compression level for --zstd output, from 1 (fastest) to 4 (best).
zstd_level: 2
`

// defaults returns the built-in settings, which match defCfg.
func defaults() Root {
	return Root{
		WatchDebounce: 200 * time.Millisecond,
		ZstdLevel:     2,
	}
}

// Init returns config instance and true if a default config was created at <cfgFilePath>.
//
// If the config file does not exist, writes a default one and returns built-in defaults.
func Init(log *logrus.Logger, cfgFilePath string) (Root, bool, error) {
	root := defaults()

	ko := koanf.New(".")
	if err := ko.Load(file.Provider(cfgFilePath), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("Config file not found, creating a default")
			if err := os.WriteFile(cfgFilePath, []byte(defCfg), 0644); err != nil {
				return root, false, errors.Wrap(err, "Write default config")
			}
			return root, true, nil
		}
		return root, false, errors.Wrap(err, "Load config")
	}

	err := ko.UnmarshalWithConf("", &root, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			ErrorUnused:      true,
			Result:           &root,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return root, false, errors.Wrap(err, "Decode config")
	}
	if root.ZstdLevel < 1 || root.ZstdLevel > 4 {
		return root, false, errors.Newf("Bad zstd_level %d, expected 1 to 4", root.ZstdLevel)
	}
	return root, false, nil
}
