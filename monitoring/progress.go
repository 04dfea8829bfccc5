package monitoring

import (
	"sync"
	"time"

	"github.com/etauto-an/351PA3/memmgr"
	"github.com/etauto-an/351PA3/sim"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// TrackProcesses creates a progress bar that follows the processes handled by
// the registered memory manager. Admitted processes count as in-progress work,
// completed processes as finished work.
func (m *Monitor) TrackProcesses(mgr *memmgr.Comp, total uint64) *ProgressBar {
	bar := m.CreateProgressBar("Completed processes", total)

	mgr.AcceptHook(&processProgressHook{bar: bar})

	return bar
}

type processProgressHook struct {
	bar *ProgressBar
}

func (h *processProgressHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case memmgr.HookPosProcessAdmitted:
		h.bar.IncrementInProgress(1)
	case memmgr.HookPosProcessCompleted:
		h.bar.MoveInProgressToFinished(1)
	}
}
