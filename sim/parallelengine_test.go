package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("ParallelEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *ParallelEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewParallelEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should run events in time order", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)

		evt1.EXPECT().Time().Return(VTick(2)).AnyTimes()
		evt1.EXPECT().Handler().Return(handler).AnyTimes()
		evt1.EXPECT().IsSecondary().Return(false).AnyTimes()
		evt2.EXPECT().Time().Return(VTick(4)).AnyTimes()
		evt2.EXPECT().Handler().Return(handler).AnyTimes()
		evt2.EXPECT().IsSecondary().Return(false).AnyTimes()

		handleEvt1 := handler.EXPECT().Handle(evt1)
		handler.EXPECT().Handle(evt2).After(handleEvt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		_ = engine.Run()

		Expect(engine.CurrentTime()).To(Equal(VTick(4)))
	})

	It("should run all events of the same tick", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)

		evt1.EXPECT().Time().Return(VTick(3)).AnyTimes()
		evt1.EXPECT().Handler().Return(handler).AnyTimes()
		evt1.EXPECT().IsSecondary().Return(false).AnyTimes()
		evt2.EXPECT().Time().Return(VTick(3)).AnyTimes()
		evt2.EXPECT().Handler().Return(handler).AnyTimes()
		evt2.EXPECT().IsSecondary().Return(false).AnyTimes()

		handler.EXPECT().Handle(evt1)
		handler.EXPECT().Handle(evt2)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		_ = engine.Run()
	})

	It("should run secondary events after primary events of the same tick",
		func() {
			handler1 := NewMockHandler(mockCtrl)
			handler2 := NewMockHandler(mockCtrl)
			evt1 := NewMockEvent(mockCtrl)
			evt2 := NewMockEvent(mockCtrl)

			evt1.EXPECT().Time().Return(VTick(2)).AnyTimes()
			evt1.EXPECT().Handler().Return(handler1).AnyTimes()
			evt1.EXPECT().IsSecondary().Return(true).AnyTimes()
			evt2.EXPECT().Time().Return(VTick(2)).AnyTimes()
			evt2.EXPECT().Handler().Return(handler2).AnyTimes()
			evt2.EXPECT().IsSecondary().Return(false).AnyTimes()

			handleEvt2 := handler2.EXPECT().Handle(evt2)
			handler1.EXPECT().Handle(evt1).After(handleEvt2)

			engine.Schedule(evt1)
			engine.Schedule(evt2)

			_ = engine.Run()
		})

	It("should stop when the tick budget is exceeded", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)

		evt1.EXPECT().Time().Return(VTick(5)).AnyTimes()
		evt1.EXPECT().Handler().Return(handler).AnyTimes()
		evt1.EXPECT().IsSecondary().Return(false).AnyTimes()
		evt2.EXPECT().Time().Return(VTick(11)).AnyTimes()
		evt2.EXPECT().Handler().Return(handler).AnyTimes()
		evt2.EXPECT().IsSecondary().Return(false).AnyTimes()

		handler.EXPECT().Handle(evt1)

		engine.SetTickBudget(10)
		engine.Schedule(evt1)
		engine.Schedule(evt2)

		err := engine.Run()

		Expect(err).To(MatchError(ErrTickBudgetExceeded))
		Expect(engine.CurrentTime()).To(Equal(VTick(5)))
	})
})
