package field_test

import (
	"image"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/field"
)

func evaluator(steps int, eps float64) *field.Evaluator {
	s := field.DefaultSettings()
	s.Params.StepCount = steps
	s.Epsilon = eps
	e, err := field.NewEvaluator(s)
	Expect(err).NotTo(HaveOccurred())
	return e
}

var _ = Describe("Evaluator", func() {
	It("is deterministic", func() {
		e := evaluator(100, 1e-4)
		for _, a := range [][2]float64{{2.5, -1}, {0.1, 0.2}, {3, 3}} {
			Expect(e.Divergence(a)).To(Equal(e.Divergence(a)))
			Expect(e.At(a)).To(Equal(e.At(a)))
		}
	})

	It("converges as epsilon shrinks near equilibrium", func() {
		start := [2]float64{0.1, 0.1}
		coarse := evaluator(50, 1e-4).Divergence(start)
		fine := evaluator(50, 1e-6).Divergence(start)

		for i := 0; i < 2; i++ {
			Expect(fine[i]).To(BeNumerically("<", 1e-5))
			Expect(coarse[i] / fine[i]).To(BeNumerically("~", 100, 10))
		}
	})

	It("renders the stable equilibrium dark", func() {
		c := evaluator(100, 1e-4).At([2]float64{0, 0})
		Expect(c.A).To(Equal(uint8(255)))
		Expect(int(c.R) + int(c.G) + int(c.B)).To(BeNumerically("<", 6))
	})

	It("renders a chaotic start bright", func() {
		c := evaluator(200, 1e-4).At([2]float64{2.8, 2.6})
		Expect(max(c.R, c.G, c.B)).To(BeNumerically(">", 20))
	})

	It("shows no divergence with zero epsilon", func() {
		d := evaluator(100, 0).Divergence([2]float64{2, 1})
		Expect(d).To(Equal([2]float64{0, 0}))
	})

	It("fills rows with the per-pixel colors", func() {
		e := evaluator(20, 1e-4)
		v := field.DefaultViewport(5, 4)
		img := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))

		e.RenderRows(img, v, 0, 2)
		e.RenderRows(img, v, 2, 4)

		for y := 0; y < v.Height; y++ {
			for x := 0; x < v.Width; x++ {
				Expect(img.RGBAAt(x, y)).To(Equal(e.At(v.PixelAngles(x, y))))
			}
		}
	})

	It("rejects invalid settings", func() {
		s := field.DefaultSettings()
		s.Dt = 0
		_, err := field.NewEvaluator(s)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))

		s = field.DefaultSettings()
		s.Params.Masses[0] = 0
		_, err = field.NewEvaluator(s)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))

		s = field.DefaultSettings()
		s.Epsilon = math.NaN()
		_, err = field.NewEvaluator(s)
		Expect(err).To(HaveOccurred())
	})
})
