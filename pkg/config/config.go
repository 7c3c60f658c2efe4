// Package config assembles the settings shared by the imglink tools.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/robotalks/imglink/pkg/host"
	"github.com/robotalks/imglink/pkg/image"
	"github.com/robotalks/imglink/pkg/process"
	"github.com/robotalks/imglink/pkg/relay/mqtt"
	"github.com/robotalks/imglink/pkg/transfer"
)

// Config is the tool configuration. A config file uses the toml keys.
type Config struct {
	// Link is the URL of the link, see package dial.
	Link string `toml:"link"`
	// MQTT is the broker URL for relaying images; empty disables relaying.
	MQTT string `toml:"mqtt"`
	// Op is the operation run by the device simulator.
	Op string `toml:"op"`
	// Height, Width and Format give the image shape of the device simulator.
	Height uint16 `toml:"height"`
	Width  uint16 `toml:"width"`
	Format string `toml:"format"`

	Transfer transfer.Config `toml:"transfer"`
	Host     host.Config     `toml:"host"`
}

var (
	defaultConfig = Config{
		Link:   "serial:///dev/ttyACM0",
		Op:     process.OpNone.String(),
		Height: image.QQVGAHeight,
		Width:  image.QQVGAWidth,
		Format: "grayscale",
	}
	configFile string
)

// SetupFlags sets up command line flags, including the ones of the transfer
// and host configs.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "Config file in TOML, overrides flags.")
	flag.StringVar(&defaultConfig.Link, "link", defaultConfig.Link, "Link URL: serial:///dev/ttyACM0?baud=N, tcp://host:port, tcp-listen://:port, ws://host/path.")
	flag.StringVar(&defaultConfig.MQTT, "mqtt", defaultConfig.MQTT, "MQTT broker URL for relaying images, e.g. "+mqtt.DefaultURL+".")
	flag.StringVar(&defaultConfig.Op, "op", defaultConfig.Op, "Device operation.")
	flag.Func("height", fmt.Sprintf("Image height (default %d).", defaultConfig.Height), dimensionFlag(&defaultConfig.Height))
	flag.Func("width", fmt.Sprintf("Image width (default %d).", defaultConfig.Width), dimensionFlag(&defaultConfig.Width))
	flag.StringVar(&defaultConfig.Format, "format", defaultConfig.Format, "Image format: grayscale, rgb565, rgb888.")
	transfer.SetupFlags()
	host.SetupFlags()
}

func dimensionFlag(v *uint16) func(string) error {
	return func(s string) error {
		var n uint16
		if _, err := fmt.Sscan(s, &n); err != nil {
			return err
		}
		*v = n
		return nil
	}
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default values, including the current
// transfer and host defaults.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Transfer = *transfer.Default()
	conf.Host = *host.Default()
	return &conf
}

// Load creates a Config from defaults and the file given by -config, if any.
func Load() (*Config, error) {
	return LoadFile(configFile)
}

// LoadFile creates a Config from defaults overridden by the values defined
// in path. An empty path only returns defaults.
func LoadFile(path string) (*Config, error) {
	conf := NewConfig()
	if path == "" {
		return conf, nil
	}
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return conf, nil
}

// Shape validates the configured image shape.
func (c *Config) Shape() (height, width uint16, format image.Format, err error) {
	if format, err = image.ParseFormat(c.Format); err != nil {
		return
	}
	if c.Height == 0 || c.Width == 0 {
		err = fmt.Errorf("%w: image %dx%d", image.ErrInvalidArgument, c.Width, c.Height)
		return
	}
	return c.Height, c.Width, format, nil
}

// Operation parses the configured operation.
func (c *Config) Operation() (process.Op, error) {
	return process.ParseOp(c.Op)
}

func init() {
	if val := os.Getenv("IMGLINK_LINK"); val != "" {
		defaultConfig.Link = val
	}
	if val := os.Getenv("IMGLINK_MQTT_URL"); val != "" {
		defaultConfig.MQTT = val
	}
	if val := os.Getenv("IMGLINK_CONFIG"); val != "" {
		configFile = val
	}
}
