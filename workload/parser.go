package workload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/etauto-an/351PA3/mem"
	"github.com/etauto-an/351PA3/sim"
)

// ErrMalformedInput is returned when a workload file cannot be parsed or
// describes an invalid set of processes.
var ErrMalformedInput = errors.New("malformed workload")

// LoadFile reads a plain-text workload file.
//
// The format is whitespace separated: a process count, then for each process
// its id, its arrival time and lifetime, the number of segments, and the
// segment sizes in KB.
func LoadFile(path string) ([]*Process, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	processes, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return processes, nil
}

// Parse reads the plain-text workload format from r.
func Parse(r io.Reader) ([]*Process, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	fields := fieldScanner{scanner: scanner}

	count, err := fields.nextInt("process count")
	if err != nil {
		return nil, err
	}

	if count < 0 {
		return nil, fmt.Errorf(
			"%w: process count %d is negative", ErrMalformedInput, count)
	}

	processes := make([]*Process, 0, count)
	for i := 0; i < count; i++ {
		process, err := fields.nextProcess()
		if err != nil {
			return nil, err
		}

		processes = append(processes, process)
	}

	if err := Validate(processes); err != nil {
		return nil, err
	}

	return processes, nil
}

type fieldScanner struct {
	scanner *bufio.Scanner
}

func (s *fieldScanner) nextInt(field string) (int, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return 0, err
		}

		return 0, fmt.Errorf("%w: missing %s", ErrMalformedInput, field)
	}

	value, err := strconv.Atoi(s.scanner.Text())
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer",
			ErrMalformedInput, field, s.scanner.Text())
	}

	return value, nil
}

func (s *fieldScanner) nextProcess() (*Process, error) {
	id, err := s.nextInt("process id")
	if err != nil {
		return nil, err
	}

	arrival, err := s.nextInt(fmt.Sprintf("arrival time of process %d", id))
	if err != nil {
		return nil, err
	}

	lifetime, err := s.nextInt(fmt.Sprintf("lifetime of process %d", id))
	if err != nil {
		return nil, err
	}

	numSegments, err := s.nextInt(
		fmt.Sprintf("segment count of process %d", id))
	if err != nil {
		return nil, err
	}

	if numSegments < 0 {
		return nil, fmt.Errorf("%w: process %d has negative segment count %d",
			ErrMalformedInput, id, numSegments)
	}

	segments := make([]int, numSegments)
	for i := range segments {
		segments[i], err = s.nextInt(
			fmt.Sprintf("segment %d of process %d", i+1, id))
		if err != nil {
			return nil, err
		}
	}

	return &Process{
		ID:          mem.PID(id),
		ArrivalTime: sim.VTick(arrival),
		Lifetime:    sim.VTick(lifetime),
		Segments:    segments,
		StartTime:   NotStarted,
	}, nil
}

// Validate checks the contract the simulation core relies on: positive
// unique ids, non-negative arrival times, positive lifetimes, and at least
// one positive segment per process.
func Validate(processes []*Process) error {
	seen := make(map[mem.PID]bool)

	for _, p := range processes {
		if p.ID <= 0 {
			return fmt.Errorf(
				"%w: process id %d is not positive", ErrMalformedInput, p.ID)
		}

		if seen[p.ID] {
			return fmt.Errorf(
				"%w: duplicated process id %d", ErrMalformedInput, p.ID)
		}
		seen[p.ID] = true

		if p.ArrivalTime < 0 {
			return fmt.Errorf("%w: process %d arrival time %d is negative",
				ErrMalformedInput, p.ID, p.ArrivalTime)
		}

		if p.Lifetime <= 0 {
			return fmt.Errorf("%w: process %d lifetime %d is not positive",
				ErrMalformedInput, p.ID, p.Lifetime)
		}

		if len(p.Segments) == 0 {
			return fmt.Errorf(
				"%w: process %d has no segments", ErrMalformedInput, p.ID)
		}

		for i, segment := range p.Segments {
			if segment <= 0 {
				return fmt.Errorf(
					"%w: process %d segment %d size %d is not positive",
					ErrMalformedInput, p.ID, i+1, segment)
			}
		}
	}

	return nil
}
