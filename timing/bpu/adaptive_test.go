package bpu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rvsimlab/rvsim/timing/bpu"
)

var _ = Describe("AdaptivePredictor", func() {
	var ap *bpu.AdaptivePredictor

	BeforeEach(func() {
		ap = bpu.NewAdaptivePredictor(bpu.Config{
			BHTSize:     16,
			PHTSize:     16,
			HistoryBits: 4,
			Mix:         bpu.MixNone,
		})
	})

	Describe("Probe", func() {
		It("should miss for an untracked pc", func() {
			Expect(ap.Probe(0x3000)).To(BeFalse())
		})

		It("should hit after the pc is added", func() {
			ap.Add(0x3000)
			Expect(ap.Probe(0x3000)).To(BeTrue())
		})

		It("should miss when another pc owns the slot", func() {
			// 16 slots x 4-byte instructions: stride 64 aliases.
			ap.Add(0x3000)
			ap.Add(0x3040)

			Expect(ap.Probe(0x3000)).To(BeFalse())
			Expect(ap.Probe(0x3040)).To(BeTrue())
		})
	})

	Describe("Direction", func() {
		It("should start not-taken", func() {
			ap.Add(0x3000)
			Expect(ap.Direction(0x3000, nil)).To(BeFalse())
		})

		It("should learn an always-taken branch", func() {
			ap.Add(0x3000)
			for i := 0; i < 10; i++ {
				ap.Update(0x3000, true)
			}
			Expect(ap.Direction(0x3000, nil)).To(BeTrue())
		})

		It("should learn a strict alternation", func() {
			ap.Add(0x3000)
			for i := 0; i < 32; i++ {
				ap.Update(0x3000, i%2 == 0)
			}

			// Last recorded outcome was not-taken; the learned pattern
			// says taken comes next.
			Expect(ap.Direction(0x3000, nil)).To(BeTrue())

			ap.Update(0x3000, true)
			Expect(ap.Direction(0x3000, nil)).To(BeFalse())
		})
	})

	Describe("Flush", func() {
		It("should forget tracked branches and learned patterns", func() {
			ap.Add(0x3000)
			for i := 0; i < 10; i++ {
				ap.Update(0x3000, true)
			}

			ap.Flush()

			Expect(ap.Probe(0x3000)).To(BeFalse())
			ap.Add(0x3000)
			Expect(ap.Direction(0x3000, nil)).To(BeFalse())
		})
	})
})
