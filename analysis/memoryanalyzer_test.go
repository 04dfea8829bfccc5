package analysis

import (
	. "github.com/onsi/ginkgo/v2"
	gomock "go.uber.org/mock/gomock"

	"github.com/etauto-an/351PA3/sim"
)

var _ = Describe("MemoryAnalyzer", func() {
	var (
		mockCtrl       *gomock.Controller
		timeTeller     *MockTimeTeller
		logger         *MockPerfLogger
		user           *MockFrameUser
		memoryAnalyzer *MemoryAnalyzer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		logger = NewMockPerfLogger(mockCtrl)
		user = NewMockFrameUser(mockCtrl)
		user.EXPECT().Name().Return("MM").AnyTimes()

		memoryAnalyzer = MakeMemoryAnalyzerBuilder().
			WithPerfLogger(logger).
			WithTimeTeller(timeTeller).
			WithPeriod(20).
			WithFrameUser(user).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should calculate average frame usage", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTick(4))
		user.EXPECT().UsedFrames().Return(2)

		memoryAnalyzer.Func(sim.HookCtx{
			Domain: user,
			Pos:    sim.HookPosAfterEvent,
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTick(23)).AnyTimes()
		user.EXPECT().UsedFrames().Return(5)
		logger.EXPECT().AddDataEntry(PerfAnalyzerEntry{
			Start:     0,
			End:       20,
			Where:     "MM",
			What:      "UsedFrames",
			EntryType: "Memory",
			Value:     1.6,
			Unit:      "frame",
		})

		memoryAnalyzer.Func(sim.HookCtx{
			Domain: user,
			Pos:    sim.HookPosAfterEvent,
		})
	})

	It("should summarize the whole run when no period is set", func() {
		wholeRun := MakeMemoryAnalyzerBuilder().
			WithPerfLogger(logger).
			WithTimeTeller(timeTeller).
			WithFrameUser(user).
			Build()

		timeTeller.EXPECT().CurrentTime().Return(sim.VTick(5))
		user.EXPECT().UsedFrames().Return(3)
		wholeRun.Func(sim.HookCtx{
			Domain: user,
			Pos:    sim.HookPosAfterEvent,
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTick(15))
		user.EXPECT().UsedFrames().Return(0)
		wholeRun.Func(sim.HookCtx{
			Domain: user,
			Pos:    sim.HookPosAfterEvent,
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTick(20))
		logger.EXPECT().AddDataEntry(PerfAnalyzerEntry{
			Start:     0,
			End:       20,
			Where:     "MM",
			What:      "UsedFrames",
			EntryType: "Memory",
			Value:     1.5,
			Unit:      "frame",
		})

		wholeRun.summarize()
	})
})
