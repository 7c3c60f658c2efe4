package transfer

import (
	"flag"
	"time"
)

// Config defines the timeouts of a Transport. Values are read once per call
// site and never change during a transfer.
type Config struct {
	// MetadataTimeout bounds each marker/metadata write.
	MetadataTimeout time.Duration `toml:"metadata_timeout"`
	// SendChunkTimeout bounds each payload chunk written by Send.
	SendChunkTimeout time.Duration `toml:"send_chunk_timeout"`
	// ReceiveChunkTimeout bounds each payload chunk read by Receive. The peer
	// may be working before it answers, so it is far longer than the send side.
	ReceiveChunkTimeout time.Duration `toml:"receive_chunk_timeout"`
	// DrainDelay is slept after Send to let the link drain.
	DrainDelay time.Duration `toml:"drain_delay"`
}

var defaultConfig = Config{
	MetadataTimeout:     10 * time.Millisecond,
	SendChunkTimeout:    1000 * time.Millisecond,
	ReceiveChunkTimeout: 10000 * time.Millisecond,
	DrainDelay:          time.Millisecond,
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.MetadataTimeout, "metadata-timeout", defaultConfig.MetadataTimeout, "Timeout of each marker/metadata write.")
	flag.DurationVar(&defaultConfig.SendChunkTimeout, "send-timeout", defaultConfig.SendChunkTimeout, "Timeout of each payload chunk sent.")
	flag.DurationVar(&defaultConfig.ReceiveChunkTimeout, "receive-timeout", defaultConfig.ReceiveChunkTimeout, "Timeout of each payload chunk received.")
	flag.DurationVar(&defaultConfig.DrainDelay, "drain-delay", defaultConfig.DrainDelay, "Delay after sending an image.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}
