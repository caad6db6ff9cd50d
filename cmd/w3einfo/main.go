// Command w3einfo inspects Warcraft III terrain (.w3e) files.
//
// Usage:
//
//	w3einfo [flags] <file.w3e>
//
// Examples:
//
//	w3einfo map.w3e
//	w3einfo -json map.w3e
//	w3einfo -png heightmap.png map.w3e
//	w3einfo -verify map.w3e
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	w3e "github.com/giveyousomecolorlooklook/w3eGenWeb"
)

// jsonHeader mirrors the header fields in -json output.
type jsonHeader struct {
	Version          int      `json:"version"`
	BaseTileset      string   `json:"base_tileset"`
	HasCustomTileset uint32   `json:"has_custom_tileset"`
	TilePalette      []string `json:"tile_palette"`
	CliffTilePalette []string `json:"cliff_tile_palette"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	X                float32  `json:"x"`
	Y                float32  `json:"y"`
}

// jsonStats summarizes the corner grid in -json output.
type jsonStats struct {
	MinGroundHeight float32 `json:"min_ground_height"`
	MaxGroundHeight float32 `json:"max_ground_height"`
	WaterCorners    int     `json:"water_corners"`
	BlightCorners   int     `json:"blight_corners"`
	RampCorners     int     `json:"ramp_corners"`
	BoundaryCorners int     `json:"boundary_corners"`
}

// jsonOutput is the top-level -json response.
type jsonOutput struct {
	File   string     `json:"file"`
	Bytes  int        `json:"bytes"`
	Header jsonHeader `json:"header"`
	Stats  jsonStats  `json:"stats"`
}

func main() {
	asJSON := flag.Bool("json", false, "Output header and statistics as JSON")
	pngOut := flag.String("png", "", "Write a heightmap render to this PNG file")
	verify := flag.Bool("verify", false, "Re-encode the decoded document and check byte-for-byte fidelity")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "error: exactly one .w3e file is required")
		usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	raw, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading %s: %v", path, err)
	}

	t, err := w3e.Decode(raw)
	if err != nil {
		fatalf("decoding %s: %v", path, err)
	}

	if *verify {
		out, err := w3e.Encode(t)
		if err != nil {
			fatalf("re-encoding: %v", err)
		}
		if !bytes.Equal(out, raw) {
			fatalf("round-trip mismatch: input %d bytes, re-encoded %d bytes", len(raw), len(out))
		}
		fmt.Printf("round-trip OK: %d bytes\n", len(raw))
	}

	stats := collectStats(t)

	if *asJSON {
		emitJSON(jsonOutput{
			File:  path,
			Bytes: len(raw),
			Header: jsonHeader{
				Version:          t.Header.Version,
				BaseTileset:      string(t.Header.BaseTileset),
				HasCustomTileset: t.Header.HasCustomTileset,
				TilePalette:      t.Header.TilePalette,
				CliffTilePalette: t.Header.CliffTilePalette,
				Width:            t.Header.Width,
				Height:           t.Header.Height,
				X:                t.Header.X,
				Y:                t.Header.Y,
			},
			Stats: stats,
		})
	} else {
		printInfo(path, len(raw), t, stats)
	}

	if *pngOut != "" {
		if err := writeHeightmap(*pngOut, t); err != nil {
			fatalf("writing %s: %v", *pngOut, err)
		}
		fmt.Printf("wrote %s (%dx%d)\n", *pngOut, t.Header.Width, t.Header.Height)
	}
}

// collectStats scans the corner grid once for the summary numbers.
func collectStats(t *w3e.Terrain) jsonStats {
	var s jsonStats
	for i := range t.Corners {
		c := &t.Corners[i]
		if i == 0 || c.GroundHeight < s.MinGroundHeight {
			s.MinGroundHeight = c.GroundHeight
		}
		if i == 0 || c.GroundHeight > s.MaxGroundHeight {
			s.MaxGroundHeight = c.GroundHeight
		}
		if c.Water {
			s.WaterCorners++
		}
		if c.Blight {
			s.BlightCorners++
		}
		if c.Ramp {
			s.RampCorners++
		}
		if c.Boundary {
			s.BoundaryCorners++
		}
	}
	return s
}

func printInfo(path string, size int, t *w3e.Terrain, s jsonStats) {
	h := &t.Header
	fmt.Printf("\n")
	fmt.Printf("  File          : %s (%d bytes)\n", path, size)
	fmt.Printf("  Version       : %d\n", h.Version)
	fmt.Printf("  Base tileset  : %c (custom: %d)\n", h.BaseTileset, h.HasCustomTileset)
	fmt.Printf("  Tile palette  : %v\n", h.TilePalette)
	fmt.Printf("  Cliff palette : %v\n", h.CliffTilePalette)
	fmt.Printf("  Grid          : %dx%d corners, origin (%g, %g)\n", h.Width, h.Height, h.X, h.Y)
	fmt.Printf("\n")
	fmt.Printf("  Ground height : %g .. %g\n", s.MinGroundHeight, s.MaxGroundHeight)
	fmt.Printf("  Water corners : %d\n", s.WaterCorners)
	fmt.Printf("  Blight corners: %d\n", s.BlightCorners)
	fmt.Printf("  Ramp corners  : %d\n", s.RampCorners)
	fmt.Printf("  Boundary      : %d\n", s.BoundaryCorners)
	fmt.Printf("\n")
}

// writeHeightmap renders the ground heights to a grayscale-with-water PNG.
// Corner row 0 is the southern row in world space, so rows are flipped to
// put north at the top of the image.
func writeHeightmap(path string, t *w3e.Terrain) error {
	w, h := t.Header.Width, t.Header.Height
	if w <= 0 || h <= 0 {
		return fmt.Errorf("grid %dx%d has nothing to render", w, h)
	}

	min, max := t.Corners[0].GroundHeight, t.Corners[0].GroundHeight
	for i := range t.Corners {
		gh := t.Corners[i].GroundHeight
		if gh < min {
			min = gh
		}
		if gh > max {
			max = gh
		}
	}
	span := max - min
	if span == 0 {
		span = 1 // flat map: render mid-gray
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := t.At(col, row)
			v := uint8(64 + 128*(c.GroundHeight-min)/span)
			pix := color.NRGBA{R: v, G: v, B: v, A: 255}
			if c.Water {
				pix = color.NRGBA{R: v / 3, G: v / 2, B: 192, A: 255}
			}
			img.SetNRGBA(col, h-1-row, pix) // southern row at the bottom
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func emitJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("encoding JSON: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `w3einfo — inspect Warcraft III terrain (.w3e) files

Usage:
  w3einfo [flags] <file.w3e>

Flags:`)
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, `
Examples:
  w3einfo map.w3e
  w3einfo -json map.w3e
  w3einfo -png heightmap.png map.w3e
  w3einfo -verify map.w3e`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
