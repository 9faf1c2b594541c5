package integrators

import (
	"testing"

	"github.com/san-kum/chaosfield/internal/dynamo"
)

func BenchmarkRK4Step(b *testing.B) {
	rk := RK4{Gravity: 9.81, Dt: 0.002}
	p := dynamo.DefaultParams().Pair([2]float64{2, 1})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rk.Step(&p)
	}
}

func BenchmarkRK4Pixel(b *testing.B) {
	rk := RK4{Gravity: 9.81, Dt: 0.03}
	start := dynamo.DefaultParams().Pair([2]float64{2, 1})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := start
		rk.StepN(&p, 100)
	}
}
