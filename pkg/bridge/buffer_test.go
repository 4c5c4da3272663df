package bridge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferThreshold(t *testing.T) {
	assert.Equal(t, 3200, bufferThreshold("mulaw", 8000))
	assert.Equal(t, 6400, bufferThreshold("linear16", 8000))
	assert.Equal(t, 12800, bufferThreshold("linear16", 16000))
}

func TestAudioBufferAccumulates(t *testing.T) {
	buf := newAudioBuffer(3200)
	frame := bytes.Repeat([]byte{0x7F}, 160) // one 20ms mulaw frame

	for i := 0; i < 19; i++ {
		require.Nil(t, buf.Add(frame), "no release before the threshold")
	}
	assert.Equal(t, 19*160, buf.Len())

	chunk := buf.Add(frame)
	require.NotNil(t, chunk)
	assert.Len(t, chunk, 3200)
	assert.Equal(t, 0, buf.Len(), "buffer resets after release")
}

func TestAudioBufferReleasesOversizedAccumulation(t *testing.T) {
	buf := newAudioBuffer(300)
	chunk := buf.Add(bytes.Repeat([]byte{0x01}, 500))
	require.NotNil(t, chunk)
	assert.Len(t, chunk, 500)
}

func TestAudioBufferFlush(t *testing.T) {
	buf := newAudioBuffer(3200)
	buf.Add(bytes.Repeat([]byte{0x02}, 800))

	rest := buf.Flush()
	require.Len(t, rest, 800)
	assert.Nil(t, buf.Flush(), "second flush returns nothing")
	assert.Equal(t, 0, buf.Len())
}
