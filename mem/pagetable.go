// Package mem provides the paged physical memory model that the admission
// engine allocates processes into.
package mem

import (
	"errors"
	"fmt"
	"log"
)

// PID stands for Process ID.
type PID int

// FreePID marks a frame that no process owns. Valid process IDs are
// positive.
const FreePID PID = 0

// ErrInvalidConfiguration is returned when the total memory size and the
// page size do not describe a whole number of frames.
var ErrInvalidConfiguration = errors.New("invalid memory configuration")

// An Extent is one entry of an occupancy report. It describes a range of
// addresses that is either free or owned by one process. Free extents merge
// maximal runs of free frames. Owned extents cover exactly one frame each,
// tagged with the per-process page ordinal assigned at allocation time.
type Extent struct {
	StartAddr int
	EndAddr   int
	Owner     PID
	PageNum   int
}

// IsFree tells if the extent describes unowned frames.
func (e Extent) IsFree() bool {
	return e.Owner == FreePID
}

// A PageTable tracks the ownership of the fixed set of page frames. It
// decides admission feasibility, performs atomic multi-segment allocation,
// and reclaims frames on completion.
type PageTable interface {
	// Allocate grants pid one run of frames per segment, scanning frames
	// first-fit in index order. Allocation is all or nothing. When the free
	// frames cannot cover every segment, Allocate returns false and the
	// table is left untouched.
	Allocate(pid PID, segments []int) bool

	// Deallocate frees every frame owned by pid. Deallocating a process
	// that owns no frames is a no-op.
	Deallocate(pid PID)

	// PagesNeeded returns the total frame count required by the segments,
	// rounding each segment up to whole frames.
	PagesNeeded(segments []int) int

	// OccupancyReport renders the frame-by-frame state of the table.
	OccupancyReport() []Extent

	FrameCount() int
	FreeFrameCount() int
	PageSize() int
	OwnerOf(frame int) PID
}

// NewPageTable creates a PageTable with totalMemory/pageSize frames. Both
// sizes are in KB. totalMemory must be a positive multiple of pageSize.
func NewPageTable(totalMemory, pageSize int) (PageTable, error) {
	if pageSize <= 0 || totalMemory <= 0 {
		return nil, fmt.Errorf(
			"%w: total memory %d KB, page size %d KB, both must be positive",
			ErrInvalidConfiguration, totalMemory, pageSize)
	}

	if totalMemory%pageSize != 0 {
		return nil, fmt.Errorf(
			"%w: total memory %d KB is not a multiple of page size %d KB",
			ErrInvalidConfiguration, totalMemory, pageSize)
	}

	return &pageTableImpl{
		pageSize:     pageSize,
		frames:       make([]PID, totalMemory/pageSize),
		pageNums:     make([]int, totalMemory/pageSize),
		nextPageNums: make(map[PID]int),
	}, nil
}

// pageTableImpl is the default implementation of a PageTable. It is owned
// and mutated by a single event loop, so it carries no lock.
type pageTableImpl struct {
	pageSize int
	frames   []PID

	// pageNums[i] is the page ordinal of frame i within its owning process.
	pageNums     []int
	nextPageNums map[PID]int
}

func (pt *pageTableImpl) Allocate(pid PID, segments []int) bool {
	if pid <= FreePID {
		log.Panicf("allocating for invalid pid %d", pid)
	}

	if pt.PagesNeeded(segments) > pt.FreeFrameCount() {
		return false
	}

	for _, segment := range segments {
		if !pt.claimFrames(pid, pt.pagesForSegment(segment)) {
			// Unreachable after the feasibility check, but a shortfall must
			// never leave partial ownership behind.
			pt.Deallocate(pid)
			return false
		}
	}

	return true
}

func (pt *pageTableImpl) claimFrames(pid PID, numPages int) bool {
	claimed := 0
	for i := 0; i < len(pt.frames) && claimed < numPages; i++ {
		if pt.frames[i] != FreePID {
			continue
		}

		pt.frames[i] = pid
		pt.nextPageNums[pid]++
		pt.pageNums[i] = pt.nextPageNums[pid]
		claimed++
	}

	return claimed == numPages
}

func (pt *pageTableImpl) Deallocate(pid PID) {
	for i, owner := range pt.frames {
		if owner == pid {
			pt.frames[i] = FreePID
			pt.pageNums[i] = 0
		}
	}

	delete(pt.nextPageNums, pid)
}

func (pt *pageTableImpl) PagesNeeded(segments []int) int {
	numPages := 0
	for _, segment := range segments {
		numPages += pt.pagesForSegment(segment)
	}

	return numPages
}

func (pt *pageTableImpl) pagesForSegment(segment int) int {
	return (segment + pt.pageSize - 1) / pt.pageSize
}

func (pt *pageTableImpl) OccupancyReport() []Extent {
	report := make([]Extent, 0)

	for i := 0; i < len(pt.frames); i++ {
		if pt.frames[i] != FreePID {
			report = append(report, Extent{
				StartAddr: i * pt.pageSize,
				EndAddr:   (i+1)*pt.pageSize - 1,
				Owner:     pt.frames[i],
				PageNum:   pt.pageNums[i],
			})
			continue
		}

		runEnd := i
		for runEnd+1 < len(pt.frames) && pt.frames[runEnd+1] == FreePID {
			runEnd++
		}

		report = append(report, Extent{
			StartAddr: i * pt.pageSize,
			EndAddr:   (runEnd+1)*pt.pageSize - 1,
			Owner:     FreePID,
		})
		i = runEnd
	}

	return report
}

func (pt *pageTableImpl) FrameCount() int {
	return len(pt.frames)
}

func (pt *pageTableImpl) FreeFrameCount() int {
	count := 0
	for _, owner := range pt.frames {
		if owner == FreePID {
			count++
		}
	}

	return count
}

func (pt *pageTableImpl) PageSize() int {
	return pt.pageSize
}

func (pt *pageTableImpl) OwnerOf(frame int) PID {
	return pt.frames[frame]
}
