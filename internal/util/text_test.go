package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTextData(t *testing.T) {
	assert.True(t, IsTextData([]byte("hello\nworld\t")))
	assert.False(t, IsTextData([]byte{0x00, 0x01}))
	assert.False(t, IsTextData([]byte{'h', 'i', 0xBC}))
	assert.True(t, IsTextData(nil))
}

func TestHexDump(t *testing.T) {
	out := HexDump([]byte("ABCDEFGH12345678x"))
	assert.Contains(t, out, "0000  41 42 43 44 45 46 47 48  31 32 33 34 35 36 37 38  |ABCDEFGH12345678|")
	assert.Contains(t, out, "0010  78")
	assert.Contains(t, out, "|x|")
}

func TestHexDumpNonPrintable(t *testing.T) {
	out := HexDump([]byte{0xBC, 0x27, 0x00})
	assert.Contains(t, out, "bc 27 00")
	assert.Contains(t, out, "|...|")
}
