package w3e

import "math"

// Format identity. W3E version 11 is the only layout in the wild; Decode
// rejects anything else.
const (
	FileID        = "W3ER"
	FormatVersion = 11
)

// Corner bitfield layout. Each corner record is 7 bytes on the wire:
//
//	u16 @0   groundHeight raw, fixed point (raw − 8192) / 4
//	u16 @2   bits 0–13 waterHeight raw (same fixed point), bits 14–15 mapEdge
//	u8  @4   bits 0–3 groundTexture, 4 ramp, 5 water, 6 blight, 7 boundary
//	u8  @5   bits 0–4 groundVariation, bits 5–7 cliffVariation
//	u8  @6   bits 0–3 cliffTexture, bits 4–7 layerHeight
const (
	cornerBytes = 7

	waterRawMask  = 0x3FFF
	mapEdgeShift  = 14
	mapEdgeMax    = 0x3

	groundTextureMask = 0x0F
	rampBit           = 1 << 4
	waterBit          = 1 << 5
	blightBit         = 1 << 6
	boundaryBit       = 1 << 7

	groundVariationMask = 0x1F
	cliffVariationShift = 5
	cliffVariationMax   = 0x7

	cliffTextureMask = 0x0F
	layerHeightShift = 4
	layerHeightMax   = 0xF
)

// heightBias centers the unsigned raw height so that raw 8192 is logical 0.
// Heights are quarter-unit fixed point: logical = (raw − 8192) / 4.
const heightBias = 8192

// heightFromRaw converts a stored raw height to its logical value.
func heightFromRaw(raw uint16) float32 {
	return (float32(raw) - heightBias) / 4
}

// rawFromHeight converts a logical height back to its raw form, rounding to
// the nearest quarter unit. The result may exceed 16 bits for out-of-range
// inputs; the caller masks or rejects per its truncation policy.
func rawFromHeight(h float32) int64 {
	return int64(math.Round(float64(h)*4)) + heightBias
}

// Header holds the fixed and palette fields preceding the corner grid.
// Palette counts are not stored: they are recomputed from the slice lengths
// at encode time, so the two can never disagree.
type Header struct {
	Version          int
	BaseTileset      byte   // single-character tileset tag, e.g. 'O'
	HasCustomTileset uint32 // boolean flag stored as a full word on the wire
	TilePalette      []string
	CliffTilePalette []string
	Width            int
	Height           int
	X                float32 // world-space origin offset
	Y                float32
}

// Corner is one grid-cell record with its bitfields unpacked into typed
// fields. Multi-bit fields keep their wire width (see the layout constants);
// oversized values are masked on encode.
type Corner struct {
	GroundHeight float32 // quarter-unit fixed point on the wire
	WaterHeight  float32 // 14-bit raw range
	MapEdge      uint8   // 2 bits

	GroundTexture uint8 // 4 bits
	Ramp          bool
	Water         bool
	Blight        bool
	Boundary      bool

	GroundVariation uint8 // 5 bits
	CliffVariation  uint8 // 3 bits

	CliffTexture uint8 // 4 bits
	LayerHeight  uint8 // 4 bits
}

// Terrain is a decoded map: header plus width×height corners stored
// row-major, Corners[row*Width+col]. Row 0 is the southern (bottom) row in
// world space, so renderers must flip rows.
type Terrain struct {
	Header  Header
	Corners []Corner
}

// NewTerrain returns a blank width×height document: flat ground at height 0,
// no water, empty palettes. The caller fills in tileset and palettes before
// encoding.
func NewTerrain(width, height int) *Terrain {
	return &Terrain{
		Header: Header{
			Version: FormatVersion,
			Width:   width,
			Height:  height,
		},
		Corners: make([]Corner, width*height),
	}
}

// Index returns the flat corner index for (col, row). Bounds are not
// checked; use At for checked access.
func (t *Terrain) Index(col, row int) int {
	return row*t.Header.Width + col
}

// At returns the corner at (col, row), or nil if the coordinates fall
// outside the grid. The pointer aliases the document for in-place mutation.
func (t *Terrain) At(col, row int) *Corner {
	if col < 0 || col >= t.Header.Width || row < 0 || row >= t.Header.Height {
		return nil
	}
	return &t.Corners[t.Index(col, row)]
}
