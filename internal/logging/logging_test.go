package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitWriterLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	InitWriter(&buf, false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	logger := WithComponent("scanner")
	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	InitWriter(&buf, true)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	logger = WithComponent("scanner")
	logger.Debug().Msg("frame classified")
	assert.Contains(t, buf.String(), "frame classified")
	assert.Contains(t, buf.String(), "component=scanner")
}
