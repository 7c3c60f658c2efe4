package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/imglink/pkg/image"
	"github.com/robotalks/imglink/pkg/process"
)

func TestNewConfig(t *testing.T) {
	conf := NewConfig()
	assert.Equal(t, 10*time.Millisecond, conf.Transfer.MetadataTimeout)
	assert.Equal(t, 10*time.Second, conf.Transfer.ReceiveChunkTimeout)
	h, w, f, err := conf.Shape()
	require.NoError(t, err)
	assert.Equal(t, image.QQVGAHeight, h)
	assert.Equal(t, image.QQVGAWidth, w)
	assert.Equal(t, image.Grayscale, f)
	op, err := conf.Operation()
	require.NoError(t, err)
	assert.Equal(t, process.OpNone, op)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imglink.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
link = "tcp://127.0.0.1:9000"
op = "threshold-rgb"
height = 128
width = 128
format = "rgb888"

[transfer]
receive_chunk_timeout = "50ms"

[host]
poll_timeout = "20ms"
`), 0644))

	conf, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:9000", conf.Link)
	assert.Equal(t, 50*time.Millisecond, conf.Transfer.ReceiveChunkTimeout)
	assert.Equal(t, time.Second, conf.Transfer.SendChunkTimeout)
	assert.Equal(t, 20*time.Millisecond, conf.Host.PollTimeout)
	h, w, f, err := conf.Shape()
	require.NoError(t, err)
	assert.Equal(t, uint16(128), h)
	assert.Equal(t, uint16(128), w)
	assert.Equal(t, image.RGB888, f)
	op, err := conf.Operation()
	require.NoError(t, err)
	assert.Equal(t, process.OpThresholdRGB, op)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("height = [1"), 0644))
	_, err = LoadFile(path)
	require.Error(t, err)
}

func TestShapeInvalid(t *testing.T) {
	conf := NewConfig()
	conf.Format = "cmyk"
	_, _, _, err := conf.Shape()
	require.ErrorIs(t, err, image.ErrInvalidArgument)
	conf.Format = "gray"
	conf.Width = 0
	_, _, _, err = conf.Shape()
	require.ErrorIs(t, err, image.ErrInvalidArgument)
}
