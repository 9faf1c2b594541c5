package viz

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const upperHalf = "▀"

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// Blocks renders img as half-block cells: text line r shows image rows 2r
// (foreground) and 2r+1 (background). The cell at cursor is replaced by a
// crosshair when cursor lies inside the image.
func Blocks(img *image.RGBA, cursor image.Point) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	rows := (b.Dy() + 1) / 2
	var sb strings.Builder
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		y := b.Min.Y + 2*r
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			bottom := top
			if y+1 < b.Max.Y {
				bottom = img.RGBAAt(x, y+1)
			}
			style := lipgloss.NewStyle().Background(hex(bottom))
			if cursor.X == x-b.Min.X && cursor.Y == r {
				sb.WriteString(style.Foreground(lipgloss.Color("#ffffff")).Bold(true).Render("┼"))
				continue
			}
			sb.WriteString(style.Foreground(hex(top)).Render(upperHalf))
		}
	}
	return sb.String()
}
