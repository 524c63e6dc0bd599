package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.Equal(t, uint16(0x1234), Combine(0x12, 0x34))
	assert.Equal(t, uint16(0xFF00), Combine(0xFF, 0x00))
	assert.Equal(t, uint8(0x12), High(0x1234))
	assert.Equal(t, uint8(0x34), Low(0x1234))
}

func TestSetReset(t *testing.T) {
	tests := []struct {
		name  string
		index uint8
		in    uint8
		set   uint8
		reset uint8
	}{
		{"bit 0", 0, 0x00, 0x01, 0x00},
		{"bit 7", 7, 0x0F, 0x8F, 0x0F},
		{"already set", 3, 0xFF, 0xFF, 0xF7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.set, Set(tt.index, tt.in))
			assert.Equal(t, tt.reset, Reset(tt.index, tt.in))
			assert.Equal(t, tt.set, SetTo(tt.index, tt.in, true))
			assert.Equal(t, tt.reset, SetTo(tt.index, tt.in, false))
		})
	}
}

func TestIsSet(t *testing.T) {
	assert.True(t, IsSet(7, 0x80))
	assert.False(t, IsSet(6, 0x80))
	assert.True(t, IsSet16(12, 0x1000))
	assert.False(t, IsSet16(11, 0x1000))
	assert.Equal(t, uint8(1), Value(2, 0x04))
	assert.Equal(t, uint8(0), Value(3, 0x04))
}

func TestField(t *testing.T) {
	assert.Equal(t, uint8(0b101), Field(0b11010110, 6, 4))
	assert.Equal(t, uint8(0x3), Field(0xC0, 7, 6))
	assert.Equal(t, uint8(0xFF), Field(0xFF, 7, 0))
}

func TestBool(t *testing.T) {
	assert.Equal(t, uint8(1), Bool(true))
	assert.Equal(t, uint8(0), Bool(false))
}
