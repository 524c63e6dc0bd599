// Package romtest builds small ROM images with valid headers for tests.
package romtest

const (
	entryPoint     = 0x0100
	titleOffset    = 0x0134
	typeOffset     = 0x0147
	romSizeOffset  = 0x0148
	ramSizeOffset  = 0x0149
	checksumOffset = 0x014D
	bankSize       = 0x4000
)

type image struct {
	cartType    uint8
	romSizeCode uint8
	ramSizeCode uint8
	title       string
	markers     bool
	patches     map[uint16][]byte
	badChecksum bool
	length      int
}

// Option customizes the generated image.
type Option func(*image)

// WithType sets the cartridge type byte at 0x147.
func WithType(t uint8) Option { return func(i *image) { i.cartType = t } }

// WithROMSizeCode sets the byte at 0x148; the image is 32KB << code long.
func WithROMSizeCode(code uint8) Option { return func(i *image) { i.romSizeCode = code } }

// WithRAMSizeCode sets the byte at 0x149.
func WithRAMSizeCode(code uint8) Option { return func(i *image) { i.ramSizeCode = code } }

// WithTitle sets the header title.
func WithTitle(title string) Option { return func(i *image) { i.title = title } }

// WithBankMarkers writes each bank's number at the first byte of the bank
// (bank 0 is left alone).
func WithBankMarkers() Option { return func(i *image) { i.markers = true } }

// At places data at address, applied after everything else except the
// header checksum.
func At(address uint16, data ...byte) Option {
	return func(i *image) { i.patches[address] = data }
}

// WithBadChecksum stores a header checksum that does not match.
func WithBadChecksum() Option { return func(i *image) { i.badChecksum = true } }

// Truncated cuts the image to n bytes after it is built.
func Truncated(n int) Option { return func(i *image) { i.length = n } }

// New returns a ROM image with program placed at the 0x0100 entry point.
func New(program []byte, opts ...Option) []byte {
	img := &image{title: "ROMTEST", patches: map[uint16][]byte{}}
	for _, opt := range opts {
		opt(img)
	}

	data := make([]byte, (2*bankSize)<<img.romSizeCode)
	if img.markers {
		for bank := 1; bank*bankSize < len(data); bank++ {
			data[bank*bankSize] = byte(bank)
		}
	}

	copy(data[entryPoint:], program)
	copy(data[titleOffset:titleOffset+16], img.title)
	data[typeOffset] = img.cartType
	data[romSizeOffset] = img.romSizeCode
	data[ramSizeOffset] = img.ramSizeCode

	for address, patch := range img.patches {
		copy(data[address:], patch)
	}

	data[checksumOffset] = Checksum(data)
	if img.badChecksum {
		data[checksumOffset]++
	}

	if img.length > 0 && img.length < len(data) {
		data = data[:img.length]
	}
	return data
}

// Checksum computes the header checksum over 0x134-0x14C.
func Checksum(data []byte) uint8 {
	var x uint8
	for i := titleOffset; i < checksumOffset; i++ {
		x = x - data[i] - 1
	}
	return x
}
