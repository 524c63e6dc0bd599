package sdl2

import (
	"encoding/binary"
	"image"

	"github.com/valerio/jeebie-core/jeebie/video"
)

const bytesPerPixel = 4

// fillPixels writes the frame as R,G,B,A bytes, the memory layout of
// PIXELFORMAT_ABGR8888 on little-endian machines.
func fillPixels(dst []byte, frame *video.FrameBuffer) {
	for i, shade := range frame.Shades() {
		c := video.ByteToColor(shade).RGBA()
		p := dst[i*bytesPerPixel : i*bytesPerPixel+bytesPerPixel]
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
	}
}

// fillImage copies img into dst with the same layout as fillPixels.
func fillImage(dst []byte, img *image.RGBA) {
	copy(dst, img.Pix)
}

// samplesToBytes encodes signed 16-bit samples as AUDIO_S16LSB.
func samplesToBytes(dst []byte, src []int16) []byte {
	dst = dst[:0]
	for _, s := range src {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(s))
	}
	return dst
}

// queueLimit is how many bytes may sit in the device queue before new
// samples are dropped, roughly latency seconds of stereo 16-bit audio.
func queueLimit(sampleRate int, latency float64) uint32 {
	return uint32(float64(sampleRate)*latency) * 2 * 2
}
