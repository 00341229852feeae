package fifod

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// PinConfig names the GPIO lines wired to the display, in the form accepted
// by periph.io's gpioreg (e.g. "GPIO10" or "10").
type PinConfig struct {
	RS string `toml:"rs"`
	EN string `toml:"en"`
	D4 string `toml:"d4"`
	D5 string `toml:"d5"`
	D6 string `toml:"d6"`
	D7 string `toml:"d7"`
}

// Config is the daemon configuration.
type Config struct {
	// Dir is where the three FIFO nodes are created.
	Dir string `toml:"dir"`

	Pins PinConfig `toml:"pins"`

	// Line1 and Line2 are written to the display at startup. Values longer
	// than 16 characters are silently truncated by the display's per-line
	// cap; they are passed through untouched here.
	Line1 string `toml:"line1"`
	Line2 string `toml:"line2"`
}

// DefaultConfig matches the original wiring schematic and greeting text.
func DefaultConfig() Config {
	return Config{
		Dir: "/run/displaylcd",
		Pins: PinConfig{
			RS: "GPIO10",
			EN: "GPIO9",
			D4: "GPIO6",
			D5: "GPIO13",
			D6: "GPIO19",
			D7: "GPIO26",
		},
		Line1: " Raspberry Pi 3 ",
		Line2: "  LCD  Display  ",
	}
}

// LoadConfig reads a TOML config file on top of the defaults. A missing file
// is not an error: the defaults are returned as-is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("fifod: read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("fifod: parse config: %w", err)
	}
	return cfg, nil
}
