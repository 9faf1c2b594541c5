package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/chaosfield/internal/physics"
	"github.com/san-kum/chaosfield/internal/sim"
)

// TipPathSVG traces the outer bob through the snapshots as an SVG path.
// The pivot sits at the centre and the full reach spans the drawing.
func TipPathSVG(w io.Writer, snaps []sim.Snapshot, size int, stroke string) error {
	if len(snaps) < 2 {
		return fmt.Errorf("tip path needs at least 2 snapshots, got %d", len(snaps))
	}
	reach := physics.Reach(snaps[0].Pair)
	if reach <= 0 {
		reach = 1
	}
	half := float64(size) / 2
	scale := 0.95 * half / reach

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1" d="`, size, size, size, size, stroke)

	for i, s := range snaps {
		_, _, x, y := physics.TipPositions(s.Pair)
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(bw, "%s%.2f,%.2f", cmd, half+scale*x, half+scale*y)
	}
	fmt.Fprintf(bw, "\"/>\n<circle cx=\"%.1f\" cy=\"%.1f\" r=\"2\" fill=\"#ffffff\"/>\n</svg>\n", half, half)
	return bw.Flush()
}
