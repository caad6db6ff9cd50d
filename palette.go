package w3e

// RGB is an 8-bit-per-channel color. The editor uses small palettes of these
// to map reference-image pixels onto terrain texture slots.
type RGB struct {
	R, G, B uint8
}

// ClassifyNearestColor returns the index of the palette entry nearest to c
// by squared Euclidean distance in RGB space. Integer arithmetic keeps the
// metric exact; ties keep the first-encountered entry so classification is
// deterministic. Returns -1 for an empty palette.
func ClassifyNearestColor(c RGB, palette []RGB) int {
	best := -1
	bestDist := 0
	for i, p := range palette {
		dr := int(c.R) - int(p.R)
		dg := int(c.G) - int(p.G)
		db := int(c.B) - int(p.B)
		d := dr*dr + dg*dg + db*db
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
