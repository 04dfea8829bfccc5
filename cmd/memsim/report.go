package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/etauto-an/351PA3/datarecording"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a recorded simulation run.",
	Long: "`report --sqlite [file]` reads the trace recorded by a previous " +
		"run and prints one line per process plus aggregate statistics.",
	RunE: reportRun,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("sqlite", "",
		"SQLite file written by a previous run")
	_ = reportCmd.MarkFlagRequired("sqlite")
}

type traceRecord struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	StartTime int64
	EndTime   int64
}

type execInfoRecord struct {
	Property string
	Value    string
}

// A processReport aggregates the queue-wait and residency tasks of one
// process.
type processReport struct {
	pid      int
	queuedAt int64
	admitted bool
	admitAt  int64
	endedAt  int64
}

func reportRun(cmd *cobra.Command, _ []string) error {
	sqliteFile, _ := cmd.Flags().GetString("sqlite")

	reader := datarecording.NewReader(sqliteFile)
	defer reader.Close()

	reader.MapTable("exec_info", execInfoRecord{})
	reader.MapTable("trace", traceRecord{})

	printExecInfo(reader)

	reports, err := collectProcessReports(reader)
	if err != nil {
		return err
	}

	printProcessReports(reports)

	return nil
}

func printExecInfo(reader datarecording.DataReader) {
	rows, _, err := reader.Query(
		context.Background(), "exec_info", datarecording.QueryParams{})
	if err != nil {
		return
	}

	fmt.Println("Recorded run:")
	for _, row := range rows {
		entry := row.(*execInfoRecord)
		fmt.Printf("  %s: %s\n", entry.Property, entry.Value)
	}
	fmt.Println()
}

func collectProcessReports(
	reader datarecording.DataReader,
) ([]*processReport, error) {
	rows, _, err := reader.Query(context.Background(), "trace",
		datarecording.QueryParams{OrderBy: "StartTime, ID"})
	if err != nil {
		return nil, err
	}

	byPID := make(map[int]*processReport)
	for _, row := range rows {
		task := row.(*traceRecord)

		pid, stage, ok := parseTaskID(task.ID)
		if !ok {
			continue
		}

		r := byPID[pid]
		if r == nil {
			r = &processReport{pid: pid}
			byPID[pid] = r
		}

		switch stage {
		case "queue":
			r.queuedAt = task.StartTime
		case "resident":
			r.admitted = true
			r.admitAt = task.StartTime
			r.endedAt = task.EndTime
		}
	}

	reports := make([]*processReport, 0, len(byPID))
	for _, r := range byPID {
		reports = append(reports, r)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].pid < reports[j].pid
	})

	return reports, nil
}

// parseTaskID splits a task ID of the form "p<pid>.<stage>".
func parseTaskID(id string) (pid int, stage string, ok bool) {
	if !strings.HasPrefix(id, "p") {
		return 0, "", false
	}

	parts := strings.SplitN(strings.TrimPrefix(id, "p"), ".", 2)
	if len(parts) != 2 {
		return 0, "", false
	}

	pid, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}

	return pid, parts[1], true
}

func printProcessReports(reports []*processReport) {
	fmt.Printf("%4s %10s %10s %10s %10s %12s\n",
		"ID", "Queued", "Admitted", "Waited", "Ended", "Turnaround")

	turnaroundSum := int64(0)
	turnaroundCount := 0

	for _, r := range reports {
		if !r.admitted {
			fmt.Printf("%4d %10d %10s %10s %10s %12s\n",
				r.pid, r.queuedAt, "-", "-", "-", "-")
			continue
		}

		turnaround := r.endedAt - r.queuedAt
		turnaroundSum += turnaround
		turnaroundCount++

		fmt.Printf("%4d %10d %10d %10d %10d %12d\n",
			r.pid, r.queuedAt, r.admitAt,
			r.admitAt-r.queuedAt, r.endedAt, turnaround)
	}

	fmt.Println()

	if turnaroundCount == 0 {
		fmt.Println("No admitted processes recorded.")
		return
	}

	fmt.Printf("Average turnaround over %d processes: %.2f\n",
		turnaroundCount,
		float64(turnaroundSum)/float64(turnaroundCount))
}
