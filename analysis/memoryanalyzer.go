package analysis

import (
	"github.com/etauto-an/351PA3/sim"
	"github.com/tebeka/atexit"
)

// MemoryAnalyzer can periodically record the number of page frames a frame
// user holds.
type MemoryAnalyzer struct {
	PerfLogger
	sim.TimeTeller

	user      FrameUser
	usePeriod bool
	period    sim.VTick

	lastTime       sim.VTick
	lastUsed       int
	usedToDuration map[int]sim.VTick
}

// Func is a function that records frame usage change. It samples the frame
// user on every hook invocation, so any admission or completion refreshes
// the running average.
func (a *MemoryAnalyzer) Func(ctx sim.HookCtx) {
	now := a.CurrentTime()
	user := ctx.Domain.(FrameUser)
	currUsed := user.UsedFrames()

	if a.usePeriod {
		lastPeriodEndTime := a.periodEndTime(a.lastTime)

		if now > lastPeriodEndTime {
			a.summarize()
			a.resetPeriod()
		}
	}

	a.usedToDuration[a.lastUsed] += now - a.lastTime
	a.lastUsed = currUsed
	a.lastTime = now
}

func (a *MemoryAnalyzer) summarize() {
	now := a.CurrentTime()

	if !a.usePeriod {
		a.summarizePeriod(now, 0, now)
		return
	}

	periodStartTime := a.periodStartTime(a.lastTime)
	periodEndTime := a.periodEndTime(a.lastTime)

	for periodEndTime < now {
		a.summarizePeriod(now, periodStartTime, periodEndTime)

		a.usedToDuration = make(map[int]sim.VTick)
		a.lastTime = periodEndTime
		periodStartTime = periodEndTime
		periodEndTime = periodStartTime + a.period
	}
}

func (a *MemoryAnalyzer) summarizePeriod(
	now, periodStartTime, periodEndTime sim.VTick,
) {
	sumUsed := 0.0
	sumDuration := 0.0
	for used, duration := range a.usedToDuration {
		sumUsed += float64(used) * float64(duration)
		sumDuration += float64(duration)
	}

	summarizeEndTime := minTick(periodEndTime, now)
	if summarizeEndTime > a.lastTime {
		remainingTime := summarizeEndTime - a.lastTime
		sumUsed += float64(a.lastUsed) * float64(remainingTime)
		sumDuration += float64(remainingTime)
	}

	if sumDuration == 0 {
		return
	}

	avgUsed := sumUsed / sumDuration
	if avgUsed == 0 {
		return
	}

	a.PerfLogger.AddDataEntry(PerfAnalyzerEntry{
		Start:     periodStartTime,
		End:       periodEndTime,
		Where:     a.user.Name(),
		What:      "UsedFrames",
		EntryType: "Memory",
		Value:     avgUsed,
		Unit:      "frame",
	})
}

func (a *MemoryAnalyzer) resetPeriod() {
	now := a.CurrentTime()

	a.usedToDuration = make(map[int]sim.VTick)

	a.lastTime = a.periodStartTime(now)
}

func (a *MemoryAnalyzer) periodStartTime(t sim.VTick) sim.VTick {
	return t / a.period * a.period
}

func (a *MemoryAnalyzer) periodEndTime(t sim.VTick) sim.VTick {
	return a.periodStartTime(t) + a.period
}

// MemoryAnalyzerBuilder can build a MemoryAnalyzer.
type MemoryAnalyzerBuilder struct {
	perfLogger PerfLogger
	timeTeller sim.TimeTeller
	usePeriod  bool
	period     sim.VTick
	user       FrameUser
}

// MakeMemoryAnalyzerBuilder creates a MemoryAnalyzerBuilder.
func MakeMemoryAnalyzerBuilder() MemoryAnalyzerBuilder {
	return MemoryAnalyzerBuilder{
		perfLogger: nil,
		timeTeller: nil,
		usePeriod:  false,
		period:     0,
	}
}

// WithPerfLogger sets the PerfLogger to use.
func (b MemoryAnalyzerBuilder) WithPerfLogger(
	perfLogger PerfLogger,
) MemoryAnalyzerBuilder {
	b.perfLogger = perfLogger
	return b
}

// WithTimeTeller sets the TimeTeller to use.
func (b MemoryAnalyzerBuilder) WithTimeTeller(
	timeTeller sim.TimeTeller,
) MemoryAnalyzerBuilder {
	b.timeTeller = timeTeller
	return b
}

// WithPeriod sets the period to use.
func (b MemoryAnalyzerBuilder) WithPeriod(
	period sim.VTick,
) MemoryAnalyzerBuilder {
	b.usePeriod = true
	b.period = period
	return b
}

// WithFrameUser sets the frame user to observe.
func (b MemoryAnalyzerBuilder) WithFrameUser(
	user FrameUser,
) MemoryAnalyzerBuilder {
	b.user = user
	return b
}

// Build creates a MemoryAnalyzer.
func (b MemoryAnalyzerBuilder) Build() *MemoryAnalyzer {
	if b.perfLogger == nil {
		panic("perfLogger is not set")
	}

	if b.timeTeller == nil {
		panic("timeTeller is not set")
	}

	if b.user == nil {
		panic("frame user is not set")
	}

	if b.usePeriod && b.period <= 0 {
		panic("period must be positive")
	}

	analyzer := &MemoryAnalyzer{
		PerfLogger:     b.perfLogger,
		TimeTeller:     b.timeTeller,
		user:           b.user,
		usePeriod:      b.usePeriod,
		period:         b.period,
		lastTime:       0,
		lastUsed:       0,
		usedToDuration: make(map[int]sim.VTick),
	}

	atexit.Register(func() {
		analyzer.summarize()
	})

	return analyzer
}
