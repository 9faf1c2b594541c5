package config_test

import (
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaosfield/internal/config"
	"github.com/san-kum/chaosfield/internal/dynamo"
)

var _ = Describe("Config", func() {
	Describe("DefaultConfig", func() {
		It("is valid", func() {
			Expect(config.DefaultConfig().Validate()).To(Succeed())
		})

		It("covers one turn of both angles", func() {
			v := config.DefaultConfig().Viewport()
			Expect(v.Center).To(Equal([2]float64{0, 0}))
			Expect(v.Size[0]).To(BeNumerically("~", 2*math.Pi, 1e-15))
		})

		It("feeds the same parameters to field and simulator", func() {
			cfg := config.DefaultConfig()
			s := cfg.FieldSettings()
			Expect(s.Params).To(Equal(cfg.Params()))
			Expect(s.Params.StepCount).To(Equal(config.DefaultStepCount))
		})
	})

	Describe("Load and Save", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("round-trips through YAML", func() {
			cfg := config.DefaultConfig()
			cfg.Physics.Masses = [2]float64{2, 5}
			cfg.Simulator.ClickedAngles = &[2]float64{1.5, -0.25}
			path := filepath.Join(dir, "cfg.yaml")

			Expect(config.Save(path, cfg)).To(Succeed())
			loaded, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("fills missing keys from the defaults", func() {
			path := filepath.Join(dir, "partial.yaml")
			Expect(os.WriteFile(path, []byte("physics:\n  gravity: 3.7\n"), 0644)).To(Succeed())

			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Physics.Gravity).To(Equal(3.7))
			Expect(cfg.Physics.Lengths).To(Equal([2]float64{1, 1}))
			Expect(cfg.Field.StepCount).To(Equal(config.DefaultStepCount))
		})

		It("reports malformed files", func() {
			path := filepath.Join(dir, "bad.yaml")
			Expect(os.WriteFile(path, []byte("physics: [\n"), 0644)).To(Succeed())
			_, err := config.Load(path)
			Expect(err).To(HaveOccurred())

			_, err = config.Load(filepath.Join(dir, "missing.yaml"))
			Expect(err).To(HaveOccurred())
		})
	})

	DescribeTable("Validate rejects bad parameters",
		func(mutate func(*config.Config)) {
			cfg := config.DefaultConfig()
			mutate(cfg)
			Expect(cfg.Validate()).To(MatchError(dynamo.ErrParameterBounds))
		},
		Entry("zero gravity", func(c *config.Config) { c.Physics.Gravity = 0 }),
		Entry("negative length", func(c *config.Config) { c.Physics.Lengths[0] = -1 }),
		Entry("zero mass", func(c *config.Config) { c.Physics.Masses[1] = 0 }),
		Entry("zero step count", func(c *config.Config) { c.Field.StepCount = 0 }),
		Entry("zero field dt", func(c *config.Config) { c.Field.Dt = 0 }),
		Entry("zero view width", func(c *config.Config) { c.View.Width = 0 }),
		Entry("zero simulator dt", func(c *config.Config) { c.Simulator.Dt = 0 }),
		Entry("nan clicked angle", func(c *config.Config) { c.Simulator.ClickedAngles = &[2]float64{math.NaN(), 0} }),
		Entry("negative workers", func(c *config.Config) { c.Field.Workers = -2 }),
	)

	It("rejects unknown output formats", func() {
		cfg := config.DefaultConfig()
		cfg.Output.Format = "gif"
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	Describe("Presets", func() {
		It("lists every preset in order", func() {
			Expect(config.ListPresets()).To(Equal([]string{"classic", "deep-zoom", "golden", "heavy-lower", "long-arm", "moon"}))
		})

		It("returns valid independent copies", func() {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				Expect(cfg).NotTo(BeNil(), name)
				Expect(cfg.Validate()).To(Succeed(), name)
			}

			a := config.GetPreset("moon")
			a.Simulator.ClickedAngles[0] = 9
			b := config.GetPreset("moon")
			Expect(b.Simulator.ClickedAngles[0]).To(BeNumerically("~", math.Pi/2, 1e-15))
		})

		It("returns nil for unknown names", func() {
			Expect(config.GetPreset("nonexistent")).To(BeNil())
		})
	})

	It("stores a moved viewport", func() {
		cfg := config.DefaultConfig()
		v := cfg.Viewport().Zoom(0.5, 0, 0)
		cfg.SetViewport(v)
		Expect(cfg.Viewport()).To(Equal(v))
	})
})
