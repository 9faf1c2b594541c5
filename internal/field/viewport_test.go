package field_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/field"
)

var _ = Describe("Viewport", func() {
	var v field.Viewport

	BeforeEach(func() {
		v = field.DefaultViewport(2, 2)
	})

	It("maps fragment coordinates affinely", func() {
		a := v.Angles(1, 1)
		Expect(a[0]).To(BeNumerically("~", 0, 1e-15))
		Expect(a[1]).To(BeNumerically("~", 0, 1e-15))

		a = v.Angles(2, 0)
		Expect(a[0]).To(BeNumerically("~", math.Pi, 1e-15))
		Expect(a[1]).To(BeNumerically("~", -math.Pi, 1e-15))
	})

	It("puts image row zero at the top", func() {
		top := v.PixelAngles(1, 0)
		Expect(top[0]).To(BeNumerically("~", math.Pi/2, 1e-15))
		Expect(top[1]).To(BeNumerically("~", math.Pi/2, 1e-15))

		bottom := v.PixelAngles(0, 1)
		Expect(bottom[0]).To(BeNumerically("~", -math.Pi/2, 1e-15))
		Expect(bottom[1]).To(BeNumerically("~", -math.Pi/2, 1e-15))
	})

	It("applies the center offset", func() {
		v.Center = [2]float64{1, -2}
		a := v.Angles(1, 1)
		Expect(a).To(Equal([2]float64{1, -2}))
	})

	It("inverts pixel angles", func() {
		v = field.Viewport{Center: [2]float64{0.3, -1}, Size: [2]float64{2, 5}, Width: 64, Height: 48}
		for _, p := range [][2]int{{0, 0}, {63, 47}, {10, 30}} {
			x, y := v.PixelOf(v.PixelAngles(p[0], p[1]))
			Expect(x).To(BeNumerically("~", float64(p[0])+0.5, 1e-9))
			Expect(y).To(BeNumerically("~", float64(p[1])+0.5, 1e-9))
		}
		Expect(v.Contains([2]float64{0.3, -1})).To(BeTrue())
		Expect(v.Contains([2]float64{5, -1})).To(BeFalse())
	})

	It("keeps the anchor fixed while zooming", func() {
		v = field.DefaultViewport(100, 80)
		before := v.Angles(25, 80-10)
		z := v.Zoom(0.5, 25, 10)
		after := z.Angles(25, 80-10)

		Expect(z.Size[0]).To(BeNumerically("~", math.Pi, 1e-12))
		Expect(after[0]).To(BeNumerically("~", before[0], 1e-12))
		Expect(after[1]).To(BeNumerically("~", before[1], 1e-12))
		Expect(v.Zoom(0, 1, 1)).To(Equal(v))
	})

	It("pans with the drag direction", func() {
		v = field.DefaultViewport(100, 100)
		p := v.Pan(50, 50)
		Expect(p.Center[0]).To(BeNumerically("~", -math.Pi, 1e-12))
		Expect(p.Center[1]).To(BeNumerically("~", math.Pi, 1e-12))
	})

	DescribeTable("validation",
		func(mutate func(*field.Viewport), ok bool) {
			mutate(&v)
			err := v.Validate()
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
			}
		},
		Entry("default", func(*field.Viewport) {}, true),
		Entry("zero width", func(v *field.Viewport) { v.Width = 0 }, false),
		Entry("negative size", func(v *field.Viewport) { v.Size[1] = -1 }, false),
		Entry("nan center", func(v *field.Viewport) { v.Center[0] = math.NaN() }, false),
	)
})
