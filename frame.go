package wasmlauncher

import "encoding/binary"

// frameLenPrefixSize is the byte width of the little-endian length prefix
// that precedes every frame's payload in guest linear memory (spec §4.A).
const frameLenPrefixSize = 4

// EncodeFrame returns len_le32(payload) ++ payload. A zero-length payload is
// valid: it encodes to a bare 4-byte zero prefix.
func EncodeFrame(payload []byte) []byte {
	buf := make([]byte, frameLenPrefixSize+len(payload))
	binary.LittleEndian.PutUint32(buf[:frameLenPrefixSize], uint32(len(payload)))
	copy(buf[frameLenPrefixSize:], payload)
	return buf
}

// DecodeLength reads the 4-byte little-endian length prefix from the first
// four bytes of b. Insufficient input is a caller bug, not a failure mode:
// callers are expected to have already read exactly frameLenPrefixSize
// bytes from guest memory.
func DecodeLength(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b[:frameLenPrefixSize])
}
