package w3e

import "fmt"

// Input sanity limits — all well above any real map. The largest maps the
// game editor produces are 480×480 with 16-entry palettes; the caps exist so
// crafted count fields fail fast instead of driving huge allocations.
const (
	maxGridDim    = 16384
	maxPaletteLen = 256
)

// Decode parses a raw W3E buffer into a Terrain document. The pass is a
// fixed linear read of the header followed by width×height corner records;
// a buffer that ends early anywhere returns an error wrapping
// ErrUnexpectedEOF, never a partially zero-filled document.
func Decode(raw []byte) (*Terrain, error) {
	r := newBitReader(raw)

	id, err := r.readTag4()
	if err != nil {
		return nil, fmt.Errorf("file id: %w", err)
	}
	if id != FileID {
		return nil, fmt.Errorf("not a W3E buffer: file id %q, want %q", id, FileID)
	}

	version, err := r.readU32()
	if err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("unsupported W3E version %d (supported: %d)", version, FormatVersion)
	}

	baseTileset, err := r.readChar()
	if err != nil {
		return nil, fmt.Errorf("base tileset: %w", err)
	}

	custom, err := r.readU32()
	if err != nil {
		return nil, fmt.Errorf("custom tileset flag: %w", err)
	}

	tilePalette, err := readPalette(r, "tile palette")
	if err != nil {
		return nil, err
	}
	cliffPalette, err := readPalette(r, "cliff tile palette")
	if err != nil {
		return nil, err
	}

	width, err := r.readU32()
	if err != nil {
		return nil, fmt.Errorf("width: %w", err)
	}
	height, err := r.readU32()
	if err != nil {
		return nil, fmt.Errorf("height: %w", err)
	}
	if width > maxGridDim || height > maxGridDim {
		return nil, fmt.Errorf("grid %dx%d exceeds maximum dimension %d", width, height, maxGridDim)
	}

	x, err := r.readF32()
	if err != nil {
		return nil, fmt.Errorf("x origin: %w", err)
	}
	y, err := r.readF32()
	if err != nil {
		return nil, fmt.Errorf("y origin: %w", err)
	}

	// Check the full corner region before allocating: a truncated grid is
	// detected here rather than surfacing as a partial document. int64
	// arithmetic keeps the bit count from overflowing on 32-bit platforms.
	total := int(width) * int(height)
	if int64(r.pos)+int64(total)*cornerBytes*8 > int64(len(raw))*8 {
		return nil, fmt.Errorf("corner grid: %dx%d corners need %d bytes, %d remain: %w",
			width, height, int64(total)*cornerBytes, len(raw)-r.pos/8, ErrUnexpectedEOF)
	}

	corners := make([]Corner, total)
	for i := range corners {
		if err := readCorner(r, &corners[i]); err != nil {
			return nil, fmt.Errorf("corner %d: %w", i, err)
		}
	}

	return &Terrain{
		Header: Header{
			Version:          int(version),
			BaseTileset:      baseTileset,
			HasCustomTileset: custom,
			TilePalette:      tilePalette,
			CliffTilePalette: cliffPalette,
			Width:            int(width),
			Height:           int(height),
			X:                x,
			Y:                y,
		},
		Corners: corners,
	}, nil
}

// readPalette reads a count-prefixed sequence of 4-character tags.
func readPalette(r *bitReader, name string) ([]string, error) {
	count, err := r.readU32()
	if err != nil {
		return nil, fmt.Errorf("%s count: %w", name, err)
	}
	if count > maxPaletteLen {
		return nil, fmt.Errorf("%s count %d exceeds maximum %d", name, count, maxPaletteLen)
	}
	tags, err := r.readTag4Array(int(count))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return tags, nil
}

// readCorner decodes one 7-byte corner record at the cursor.
func readCorner(r *bitReader, c *Corner) error {
	groundRaw, err := r.readU16()
	if err != nil {
		return err
	}
	waterWord, err := r.readU16()
	if err != nil {
		return err
	}
	flags, err := r.readU8()
	if err != nil {
		return err
	}
	variation, err := r.readU8()
	if err != nil {
		return err
	}
	cliff, err := r.readU8()
	if err != nil {
		return err
	}

	c.GroundHeight = heightFromRaw(groundRaw)
	c.WaterHeight = heightFromRaw(waterWord & waterRawMask)
	c.MapEdge = uint8(waterWord >> mapEdgeShift)

	c.GroundTexture = flags & groundTextureMask
	c.Ramp = flags&rampBit != 0
	c.Water = flags&waterBit != 0
	c.Blight = flags&blightBit != 0
	c.Boundary = flags&boundaryBit != 0

	c.GroundVariation = variation & groundVariationMask
	c.CliffVariation = variation >> cliffVariationShift

	c.CliffTexture = cliff & cliffTextureMask
	c.LayerHeight = cliff >> layerHeightShift
	return nil
}
