package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTerminal(&buf, "hello", LevelQ))
	assert.Contains(t, buf.String(), "█")
	assert.Greater(t, bytes.Count(buf.Bytes(), []byte("\n")), 10)

	assert.ErrorIs(t, PrintTerminal(&buf, "", LevelM), ErrEmptyPayload)
}
