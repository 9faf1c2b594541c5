package export

import (
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"

	"github.com/san-kum/chaosfield/internal/sim"
)

var ErrNoFrames = errors.New("export: animation has no frames")

// Animation collects frames for a looping GIF.
type Animation struct {
	Delay  int // hundredths of a second per frame
	frames []*image.Paletted
}

func NewAnimation(delay int) *Animation {
	if delay <= 0 {
		delay = 2
	}
	return &Animation{Delay: delay}
}

func (a *Animation) Add(img image.Image) {
	b := img.Bounds()
	frame := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(frame, frame.Bounds(), img, b.Min)
	a.frames = append(a.frames, frame)
}

func (a *Animation) Len() int { return len(a.frames) }

func (a *Animation) Encode(w io.Writer) error {
	if len(a.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, f := range a.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, a.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

// PendulumAnimation draws every n-th snapshot on a square dark background.
func PendulumAnimation(snaps []sim.Snapshot, size, every int, o Overlay) (*Animation, error) {
	if every <= 0 {
		every = 1
	}
	bg := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(bg, bg.Bounds(), image.NewUniform(color.RGBA{R: 10, G: 10, B: 10, A: 255}), image.Point{}, draw.Src)

	anim := NewAnimation(2)
	for i := 0; i < len(snaps); i += every {
		frame, err := DrawPendulum(bg, snaps[i].Pair, o)
		if err != nil {
			return nil, err
		}
		anim.Add(frame)
	}
	return anim, nil
}
