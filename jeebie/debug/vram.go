package debug

import (
	"image"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/video"
)

const (
	TileDataSize     = 16
	TilePixelWidth   = 8
	TilePixelHeight  = 8
	TilePatternCount = 384
	TilesPerRow      = 16
	TileRows         = TilePatternCount / TilesPerRow
)

// TileSheet draws all 384 tiles in video memory as a 16x24 tile grid, using
// the raw color indices (0 white, 3 black) rather than a palette.
func TileSheet(mem video.VRAMReader) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TilesPerRow*TilePixelWidth, TileRows*TilePixelHeight))
	for tile := range TilePatternCount {
		base := addr.VRAMStart + uint16(tile*TileDataSize)
		ox := (tile % TilesPerRow) * TilePixelWidth
		oy := (tile / TilesPerRow) * TilePixelHeight
		for y := range TilePixelHeight {
			row := video.FetchTileRow(mem, base, y)
			for x := range TilePixelWidth {
				img.SetRGBA(ox+x, oy+y, video.ByteToColor(row.GetPixel(x)).RGBA())
			}
		}
	}
	return img
}
