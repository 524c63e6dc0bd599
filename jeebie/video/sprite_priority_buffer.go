package video

// SpritePriorityBuffer resolves DMG sprite-to-sprite priority per pixel:
// the sprite with the lower X wins, and on equal X the lower OAM index wins.
// Reference: https://gbdev.io/pandocs/OAM.html#drawing-priority
//
//	Pixels:    10 11 12 13 14 15 16 17 18 19 20
//	Sprite 1:        [-----D-----]              (X=12, OAM=1)
//	Sprite 3:        [-----C-----]              (X=12, OAM=3)
//	Sprite 5:  [-----E-----]                    (X=10, OAM=5)
//	Result:    [-----E-----]--D-]
//
// Sprites claim pixels during selection, in OAM order, so the render pass
// only draws the pixels each sprite owns and never sorts.
type SpritePriorityBuffer struct {
	// ownerIndex is the OAM index owning each pixel, -1 when unowned.
	ownerIndex [FramebufferWidth]int
	ownerX     [FramebufferWidth]int
}

// Clear resets the buffer for a new scanline.
func (s *SpritePriorityBuffer) Clear() {
	for i := range FramebufferWidth {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0xFF
	}
}

// TryClaimPixel claims pixelX for the sprite if it is unowned, if the sprite
// has a lower X than the owner, or if X ties and the OAM index is lower.
func (s *SpritePriorityBuffer) TryClaimPixel(pixelX, spriteIndex, spriteX int) bool {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return false
	}

	owner := s.ownerIndex[pixelX]
	currentX := s.ownerX[pixelX]
	if owner != -1 && spriteX > currentX {
		return false
	}
	if owner != -1 && spriteX == currentX && spriteIndex > owner {
		return false
	}

	s.ownerIndex[pixelX] = spriteIndex
	s.ownerX[pixelX] = spriteX
	return true
}

// GetOwner returns the OAM index owning pixelX, or -1.
func (s *SpritePriorityBuffer) GetOwner(pixelX int) int {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1
	}
	return s.ownerIndex[pixelX]
}
