package wasmlauncher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrame_RoundTrip(t *testing.T) {
	payload := []byte{0x00, 'h', 'i'}
	frame := EncodeFrame(payload)
	require.Len(t, frame, frameLenPrefixSize+len(payload))

	length := DecodeLength(frame)
	assert.Equal(t, uint32(len(payload)), length)
	assert.Equal(t, payload, frame[frameLenPrefixSize:])
}

func TestEncodeFrame_EmptyPayload(t *testing.T) {
	frame := EncodeFrame(nil)
	require.Len(t, frame, frameLenPrefixSize)
	assert.Equal(t, uint32(0), DecodeLength(frame))
}

func TestDecodeLength_LittleEndian(t *testing.T) {
	b := []byte{0x01, 0x00, 0x00, 0x00}
	assert.Equal(t, uint32(1), DecodeLength(b))
}
