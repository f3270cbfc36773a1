package frontend_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rvsimlab/rvsim/timing/bpu"
	"github.com/rvsimlab/rvsim/timing/frontend"
	"github.com/rvsimlab/rvsim/trace"
)

var _ = Describe("FrontEnd", func() {
	var fe *frontend.FrontEnd

	BeforeEach(func() {
		fe = frontend.New(
			bpu.Config{Mode: bpu.ModeBimodal, BTBSets: 16, BTBWays: 2},
			frontend.Config{BranchLatency: 1, MispredictPenalty: 10},
		)
	})

	Describe("OnBranch", func() {
		It("should warm up an unconditional branch in two resolutions", func() {
			pc := uint64(0x4000)
			target := uint64(0x5000)

			// First pass: BTB miss, predicted not-taken -> mispredict.
			// Second pass: entry exists but target is untrained -> mispredict.
			// Third pass: target known -> correct.
			for i := 0; i < 3; i++ {
				fe.OnBranch(pc, target, bpu.BranchUnconditional, true, bpu.PrivU)
			}

			stats := fe.Stats()
			Expect(stats.Branches).To(Equal(uint64(3)))
			Expect(stats.Mispredictions).To(Equal(uint64(2)))
			Expect(stats.Correct).To(Equal(uint64(1)))
		})

		It("should charge the penalty only on mispredictions", func() {
			pc := uint64(0x4000)
			target := uint64(0x5000)

			for i := 0; i < 5; i++ {
				fe.OnBranch(pc, target, bpu.BranchUnconditional, true, bpu.PrivU)
			}

			stats := fe.Stats()
			Expect(stats.PenaltyCycles).To(Equal(uint64(2 * 10)))
			Expect(stats.Cycles).To(Equal(uint64(5 + 2*10)))
		})

		It("should count a not-taken conditional predicted not-taken as correct", func() {
			pc := uint64(0x1000)

			fe.OnBranch(pc, 0x2000, bpu.BranchConditional, false, bpu.PrivU)
			fe.OnBranch(pc, 0x2000, bpu.BranchConditional, false, bpu.PrivU)

			stats := fe.Stats()
			Expect(stats.Correct).To(Equal(uint64(2)))
			Expect(stats.Mispredictions).To(Equal(uint64(0)))
		})

		It("should count a wrong target as a misprediction", func() {
			pc := uint64(0x4000)

			// Train toward one target, then branch somewhere else.
			fe.OnBranch(pc, 0x5000, bpu.BranchUnconditional, true, bpu.PrivU)
			fe.OnBranch(pc, 0x5000, bpu.BranchUnconditional, true, bpu.PrivU)
			fe.OnBranch(pc, 0x5000, bpu.BranchUnconditional, true, bpu.PrivU)
			before := fe.Stats().Mispredictions

			fe.OnBranch(pc, 0x6000, bpu.BranchUnconditional, true, bpu.PrivU)

			Expect(fe.Stats().Mispredictions).To(Equal(before + 1))
		})

		It("should bucket BTB statistics by privilege level", func() {
			fe.OnBranch(0x1000, 0x2000, bpu.BranchConditional, true, bpu.PrivM)
			fe.OnBranch(0x1000, 0x2000, bpu.BranchConditional, true, bpu.PrivM)
			fe.OnBranch(0x8000, 0x9000, bpu.BranchConditional, true, bpu.PrivU)

			privStats := fe.PrivStats()
			Expect(privStats[bpu.PrivM].Probes).To(Equal(uint64(2)))
			Expect(privStats[bpu.PrivM].Inserts).To(Equal(uint64(1)))
			Expect(privStats[bpu.PrivU].Probes).To(Equal(uint64(1)))
		})
	})

	Describe("Run", func() {
		It("should replay every record of a trace", func() {
			tr := &trace.Trace{Records: []trace.Record{
				{PC: 0x1000, Target: 0x2000, Kind: bpu.BranchConditional, Taken: true, Priv: bpu.PrivU},
				{PC: 0x1000, Target: 0x2000, Kind: bpu.BranchConditional, Taken: true, Priv: bpu.PrivU},
				{PC: 0x4000, Target: 0x5000, Kind: bpu.BranchUnconditional, Taken: true, Priv: bpu.PrivS},
			}}

			stats := fe.Run(tr)

			Expect(stats.Branches).To(Equal(uint64(3)))
			Expect(fe.PrivStats()[bpu.PrivU].Probes).To(Equal(uint64(2)))
			Expect(fe.PrivStats()[bpu.PrivS].Probes).To(Equal(uint64(1)))
		})
	})

	Describe("Accuracy", func() {
		It("should report rates over replayed branches", func() {
			pc := uint64(0x4000)
			for i := 0; i < 4; i++ {
				fe.OnBranch(pc, 0x5000, bpu.BranchUnconditional, true, bpu.PrivU)
			}

			stats := fe.Stats()
			Expect(stats.Accuracy()).To(BeNumerically("~", 50.0, 0.1))
			Expect(stats.MispredictionRate()).To(BeNumerically("~", 50.0, 0.1))
		})

		It("should report zero on an empty run", func() {
			Expect(fe.Stats().Accuracy()).To(Equal(0.0))
		})
	})

	Describe("Reset", func() {
		It("should clear frontend and per-privilege statistics", func() {
			fe.OnBranch(0x1000, 0x2000, bpu.BranchConditional, true, bpu.PrivU)

			fe.Reset()

			Expect(fe.Stats().Branches).To(Equal(uint64(0)))
			Expect(fe.PrivStats()[bpu.PrivU].Probes).To(Equal(uint64(0)))
		})

		It("should flush predictor state", func() {
			fe.OnBranch(0x1000, 0x2000, bpu.BranchConditional, true, bpu.PrivU)
			fe.Reset()

			result := fe.Unit().Probe(0x1000, bpu.PrivU)
			Expect(result.BTBHit).To(BeFalse())
		})
	})
})
