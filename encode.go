package w3e

import "fmt"

// Encode serializes a Terrain document back into W3E bytes, the exact
// inverse field order of Decode. Palette count fields are recomputed from
// the palette slice lengths, so the document cannot carry a stale count.
// Subfield values wider than their declared bit width are masked
// deterministically; use EncodeStrict to reject them instead.
func Encode(t *Terrain) ([]byte, error) { return encode(t, false) }

// EncodeStrict is Encode with silent truncation disabled: any corner field
// outside its declared bit width fails with an error wrapping
// ErrInvalidFieldValue.
func EncodeStrict(t *Terrain) ([]byte, error) { return encode(t, true) }

func encode(t *Terrain, strict bool) ([]byte, error) {
	h := &t.Header
	if len(t.Corners) != h.Width*h.Height {
		return nil, fmt.Errorf("corner count %d does not match %dx%d grid",
			len(t.Corners), h.Width, h.Height)
	}

	w := newBitWriter()
	if err := w.writeTag4(FileID); err != nil {
		return nil, fmt.Errorf("file id: %w", err)
	}
	w.writeU32(uint32(h.Version))
	w.writeChar(h.BaseTileset)
	w.writeU32(h.HasCustomTileset)

	w.writeU32(uint32(len(h.TilePalette)))
	if err := w.writeTag4Array(h.TilePalette); err != nil {
		return nil, fmt.Errorf("tile palette: %w", err)
	}
	w.writeU32(uint32(len(h.CliffTilePalette)))
	if err := w.writeTag4Array(h.CliffTilePalette); err != nil {
		return nil, fmt.Errorf("cliff tile palette: %w", err)
	}

	w.writeU32(uint32(h.Width))
	w.writeU32(uint32(h.Height))
	w.writeF32(h.X)
	w.writeF32(h.Y)

	for i := range t.Corners {
		if err := writeCorner(w, &t.Corners[i], strict); err != nil {
			return nil, fmt.Errorf("corner %d: %w", i, err)
		}
	}
	return w.bytes(), nil
}

// writeCorner packs one corner into its 7-byte wire record.
func writeCorner(w *bitWriter, c *Corner, strict bool) error {
	groundRaw := rawFromHeight(c.GroundHeight)
	waterRaw := rawFromHeight(c.WaterHeight)

	if strict {
		switch {
		case groundRaw < 0 || groundRaw > 0xFFFF:
			return fmt.Errorf("ground height %v (raw %d) outside 16-bit range: %w",
				c.GroundHeight, groundRaw, ErrInvalidFieldValue)
		case waterRaw < 0 || waterRaw > waterRawMask:
			return fmt.Errorf("water height %v (raw %d) outside 14-bit range: %w",
				c.WaterHeight, waterRaw, ErrInvalidFieldValue)
		case c.MapEdge > mapEdgeMax:
			return fmt.Errorf("map edge %d outside 2-bit range: %w", c.MapEdge, ErrInvalidFieldValue)
		case c.GroundTexture > groundTextureMask:
			return fmt.Errorf("ground texture %d outside 4-bit range: %w", c.GroundTexture, ErrInvalidFieldValue)
		case c.GroundVariation > groundVariationMask:
			return fmt.Errorf("ground variation %d outside 5-bit range: %w", c.GroundVariation, ErrInvalidFieldValue)
		case c.CliffVariation > cliffVariationMax:
			return fmt.Errorf("cliff variation %d outside 3-bit range: %w", c.CliffVariation, ErrInvalidFieldValue)
		case c.CliffTexture > cliffTextureMask:
			return fmt.Errorf("cliff texture %d outside 4-bit range: %w", c.CliffTexture, ErrInvalidFieldValue)
		case c.LayerHeight > layerHeightMax:
			return fmt.Errorf("layer height %d outside 4-bit range: %w", c.LayerHeight, ErrInvalidFieldValue)
		}
	}

	w.writeU16(uint16(groundRaw))

	waterWord := uint16(waterRaw)&waterRawMask | uint16(c.MapEdge&mapEdgeMax)<<mapEdgeShift
	w.writeU16(waterWord)

	flags := c.GroundTexture & groundTextureMask
	if c.Ramp {
		flags |= rampBit
	}
	if c.Water {
		flags |= waterBit
	}
	if c.Blight {
		flags |= blightBit
	}
	if c.Boundary {
		flags |= boundaryBit
	}
	w.writeU8(flags)

	w.writeU8(c.GroundVariation&groundVariationMask | (c.CliffVariation&cliffVariationMax)<<cliffVariationShift)
	w.writeU8(c.CliffTexture&cliffTextureMask | (c.LayerHeight&layerHeightMax)<<layerHeightShift)
	return nil
}
