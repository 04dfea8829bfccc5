package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/etauto-an/351PA3/analysis"
	"github.com/etauto-an/351PA3/mem"
	"github.com/etauto-an/351PA3/memmgr"
	"github.com/etauto-an/351PA3/report"
	"github.com/etauto-an/351PA3/sim"
	"github.com/etauto-an/351PA3/simulation"
	"github.com/etauto-an/351PA3/tracing"
	"github.com/etauto-an/351PA3/workload"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a memory management simulation.",
	Long: "`run --workload [file]` simulates the processes described in the " +
		"file and prints a transcript of every arrival, admission, and " +
		"completion.",
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("workload", "w", "", "workload file (text or YAML)")
	runCmd.Flags().Int("memory", 2000, "total memory size in KB")
	runCmd.Flags().Int("page-size", 100, "page size in KB")
	runCmd.Flags().Int64("max-ticks", 100000,
		"refuse to simulate past this tick")
	runCmd.Flags().Bool("quiet", false, "suppress the console transcript")
	runCmd.Flags().Bool("log-events", false,
		"log every engine event to stderr")
	runCmd.Flags().String("output", "",
		"name of the recording database, without extension")
	runCmd.Flags().String("trace-file", "",
		"write the task trace to a CSV file")
	runCmd.Flags().Bool("trace-mysql", false,
		"write the task trace to a MySQL server")
	runCmd.Flags().String("perf", "",
		"record buffer level and frame usage metrics to this file, "+
			"without extension")
	runCmd.Flags().Int64("perf-period", 0,
		"length in ticks of each performance sampling period, "+
			"0 summarizes the whole run")
	runCmd.Flags().Bool("perf-sqlite", false,
		"write performance metrics to SQLite instead of CSV")
	runCmd.Flags().Bool("stats", false,
		"print queue and residency statistics after the run")
	runCmd.Flags().Bool("monitor", false, "start the monitoring server")
	runCmd.Flags().Int("monitor-port", 0, "port of the monitoring server")
	runCmd.Flags().Bool("open", false,
		"open the monitoring dashboard in a browser")

	_ = runCmd.MarkFlagRequired("workload")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	workloadPath, _ := flags.GetString("workload")
	totalMemory, _ := flags.GetInt("memory")
	pageSize, _ := flags.GetInt("page-size")
	maxTicks, _ := flags.GetInt64("max-ticks")
	quiet, _ := flags.GetBool("quiet")
	logEvents, _ := flags.GetBool("log-events")
	output, _ := flags.GetString("output")
	traceFile, _ := flags.GetString("trace-file")
	traceMySQL, _ := flags.GetBool("trace-mysql")
	perfOut, _ := flags.GetString("perf")
	perfPeriod, _ := flags.GetInt64("perf-period")
	perfSQLite, _ := flags.GetBool("perf-sqlite")
	stats, _ := flags.GetBool("stats")
	monitorOn, _ := flags.GetBool("monitor")
	monitorPort, _ := flags.GetInt("monitor-port")
	open, _ := flags.GetBool("open")

	processes, err := loadWorkload(workloadPath)
	if err != nil {
		return err
	}

	pageTable, err := mem.NewPageTable(totalMemory, pageSize)
	if err != nil {
		return err
	}

	builder := simulation.MakeBuilder().
		WithTickBudget(sim.VTick(maxTicks))
	if !monitorOn {
		builder = builder.WithoutMonitoring()
	}
	if monitorPort > 0 {
		builder = builder.WithMonitorPort(monitorPort)
	}
	if output != "" {
		builder = builder.WithOutputFileName(output)
	}

	s := builder.Build()
	defer s.Terminate()

	manager := memmgr.MakeBuilder().
		WithEngine(s.GetEngine()).
		WithPageTable(pageTable).
		WithProcesses(processes).
		Build("MM")
	s.RegisterMemoryManager(manager)

	if !quiet {
		reporter := report.NewConsoleReporter(os.Stdout, manager)
		s.GetEngine().RegisterSimulationEndHandler(reporter)
	}

	if logEvents {
		eventLogger := sim.NewEventLogger(log.New(os.Stderr, "", 0))
		s.GetEngine().AcceptHook(eventLogger)
	}

	if traceFile != "" {
		csvTracer := tracing.NewCSVTracer(s.GetEngine(), traceFile)
		csvTracer.Init()
		tracing.CollectTrace(manager, csvTracer)
	}

	if traceMySQL {
		mysqlTracer := tracing.NewMySQLTracer(s.GetEngine())
		mysqlTracer.Init()
		tracing.CollectTrace(manager, mysqlTracer)
	}

	if perfOut != "" {
		perfBuilder := analysis.MakePerfAnalyzerBuilder().
			WithDBFilename(perfOut)
		if perfPeriod > 0 {
			perfBuilder = perfBuilder.WithPeriod(sim.VTick(perfPeriod))
		}
		if perfSQLite {
			perfBuilder = perfBuilder.WithSQLiteBackend()
		}

		perfAnalyzer := perfBuilder.Build()
		perfAnalyzer.RegisterEngine(s.GetEngine())
		perfAnalyzer.RegisterComponent(manager)
	}

	var runStats *statCollection
	if stats {
		runStats = collectStats(s.GetEngine(), manager)
	}

	if monitorOn {
		s.GetMonitor().TrackProcesses(manager, uint64(len(processes)))
	}

	if open {
		if s.GetMonitor() == nil {
			return errors.New("cannot open the dashboard without --monitor")
		}

		err = s.GetMonitor().OpenDashboard()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open the dashboard: %s\n", err)
		}
	}

	manager.Start()

	err = s.GetEngine().Run()
	if err != nil && !errors.Is(err, sim.ErrTickBudgetExceeded) {
		return err
	}

	s.GetEngine().Finished()

	if runStats != nil {
		runStats.print(os.Stdout, s.GetEngine().CurrentTime())
	}

	return nil
}

func loadWorkload(path string) ([]*workload.Process, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return workload.LoadYAMLFile(path)
	default:
		return workload.LoadFile(path)
	}
}

type statCollection struct {
	queueWait *tracing.AverageTimeTracer
	residency *tracing.AverageTimeTracer
	totalRes  *tracing.TotalTimeTracer
	busy      *tracing.BusyTimeTracer
	blocked   *tracing.StepCountTracer
}

func collectStats(engine sim.Engine, manager *memmgr.Comp) *statCollection {
	c := &statCollection{
		queueWait: tracing.NewAverageTimeTracer(engine, queueTaskFilter),
		residency: tracing.NewAverageTimeTracer(engine, residencyTaskFilter),
		totalRes:  tracing.NewTotalTimeTracer(engine, residencyTaskFilter),
		busy:      tracing.NewBusyTimeTracer(engine, residencyTaskFilter),
		blocked:   tracing.NewStepCountTracer(queueTaskFilter),
	}

	tracing.CollectTrace(manager, c.queueWait)
	tracing.CollectTrace(manager, c.residency)
	tracing.CollectTrace(manager, c.totalRes)
	tracing.CollectTrace(manager, c.busy)
	tracing.CollectTrace(manager, c.blocked)

	return c
}

func queueTaskFilter(t tracing.Task) bool {
	return t.Kind == "queue_wait"
}

func residencyTaskFilter(t tracing.Task) bool {
	return t.Kind == "residency"
}

func (c *statCollection) print(w io.Writer, now sim.VTick) {
	c.busy.TerminateAllTasks(now)

	fmt.Fprint(w, "\nQueue and residency statistics:\n")
	fmt.Fprintf(w, "  admitted processes:         %d\n",
		c.residency.TotalCount())
	fmt.Fprintf(w, "  average queue wait:         %.2f\n",
		c.queueWait.AverageTime())
	fmt.Fprintf(w, "  average residency:          %.2f\n",
		c.residency.AverageTime())
	fmt.Fprintf(w, "  total residency ticks:      %d\n",
		c.totalRes.TotalTime())
	fmt.Fprintf(w, "  memory busy ticks:          %d\n", c.busy.BusyTime())
	fmt.Fprintf(w, "  blocked admission attempts: %d\n",
		c.blocked.StepCount("admission blocked"))
}
