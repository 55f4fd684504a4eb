// Package config defines the CLI structure and configuration for img2cell.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/wbrown/img2cell/internal/cmd"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "IMG2CELL_"

type Log struct {
	Level string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"IMG2CELL_LOG_LEVEL"`
	File  string `help:"Log file path (default: none; logs only to stderr)" env:"IMG2CELL_LOG_FILE"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Log `embed:"" prefix:"log."`

	Config string `help:"Configuration file (JSON, YAML or TOML)" env:"IMG2CELL_CONFIG" type:"path" placeholder:"FILE"`

	Convert   cmd.Convert   `cmd:"" default:"withargs" help:"Convert an image to terminal cells"`
	Show      cmd.Show      `cmd:"" help:"Convert an image and display it full screen until a key is pressed"`
	Calibrate cmd.Calibrate `cmd:"" help:"Measure glyph coverage for a font and cell size"`
	Palette   cmd.Palette   `cmd:"" help:"Print a built-in, file or computed palette"`
}

// FindUserConfig returns the value of --config from raw arguments, or
// the IMG2CELL_CONFIG environment variable.
func FindUserConfig(args []string) string {
	for i, a := range args {
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv(EnvPrefix + "CONFIG")
}

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "img2cell"), nil
}

// CandidatePaths lists configuration files to try, per loader, in
// priority order.
//
// Each loader resolves keys its own way:
//   - YAML nests command flags under the command ("convert:" then
//     "  cell-width: 4").
//   - JSON names flags at the top level with underscores
//     ({"cell_width": 4}) and splits dotted flags ({"log": {"level": ..}}).
//   - TOML names flags at the top level ("cell-width = 4"). Keys that are
//     not flag names are rejected.
//
// Top-level keys apply to every command that has the flag. A user supplied file is routed to the loader matching
// its extension and takes precedence over the defaults.
func CandidatePaths(userCfg string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if userCfg != "" {
		switch strings.ToLower(filepath.Ext(userCfg)) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, userCfg)
		case ".toml":
			tomlPaths = append(tomlPaths, userCfg)
		default:
			jsonPaths = append(jsonPaths, userCfg)
		}
	}
	if dir, err := DefaultConfigDir(); err == nil {
		jsonPaths = append(jsonPaths, filepath.Join(dir, "config.json"))
		yamlPaths = append(yamlPaths,
			filepath.Join(dir, "config.yaml"), filepath.Join(dir, "config.yml"))
		tomlPaths = append(tomlPaths, filepath.Join(dir, "config.toml"))
	}
	return jsonPaths, yamlPaths, tomlPaths
}
