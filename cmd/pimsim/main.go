// Command pimsim runs one kernel on the simulated PIM memory system and
// prints the cycles spent in each phase.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/pimdriver/api"
	"github.com/sarchlab/pimdriver/kernel"
	"github.com/sarchlab/pimdriver/pim"
	"github.com/sarchlab/pimdriver/tensor"
	"github.com/tebeka/atexit"
)

var (
	kernelFlag   = flag.String("kernel", "gemv", "kernel to run: gemv, add, sub, mul or relu")
	outDimFlag   = flag.Int("out", 1024, "GEMV output dimension")
	inDimFlag    = flag.Int("in", 1024, "GEMV input dimension")
	dimFlag      = flag.Int("dim", 256, "elementwise dimension")
	batchFlag    = flag.Int("batch", 1, "batch size")
	verifyFlag   = flag.Bool("verify", false, "compare outputs with a reference")
	randomFlag   = flag.Bool("random", false, "fill operands with random values")
	seedFlag     = flag.Uint64("seed", 1, "seed of the random fill")
	deviceFlag   = flag.String("device", "", "device configuration file")
	systemFlag   = flag.String("system", "", "system configuration file")
	channelsFlag = flag.Int("channels", 0, "PIM channels to use, 0 for all")
	ranksFlag    = flag.Int("ranks", 0, "PIM ranks to use, 0 for all")
	outDirFlag   = flag.String("outdir", "", "directory for statistics and traces")
	tagFlag      = flag.String("tag", "pimsim", "prefix of output files")
	traceFlag    = flag.Bool("trace", false, "write a JSON trace log")
	monitorFlag  = flag.Bool("monitor", false, "serve the akita monitor")
	reportFlag   = flag.String("report", "", "file to save the verification report to")
)

func dims() (tensor.Dims, error) {
	k, err := tensor.ParseKernelType(*kernelFlag)
	if err != nil {
		return tensor.Dims{}, err
	}

	d := tensor.Dims{
		Kernel:     k,
		Batch:      *batchFlag,
		OutputDim:  *dimFlag,
		InputDim:   *dimFlag,
		Seed:       *seedFlag,
		WantGolden: *verifyFlag,
	}

	if k == tensor.GEMV {
		d.OutputDim = *outDimFlag
		d.InputDim = *inDimFlag
	}

	if *randomFlag {
		d.Fill = tensor.FillRandom
	}

	return d, nil
}

func setupTrace() (*os.File, error) {
	dir := *outDirFlag
	if dir == "" {
		dir = "."
	}

	f, err := os.Create(filepath.Join(dir, *tagFlag+".json.log"))
	if err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: pim.LevelTrace,
	})
	slog.SetDefault(slog.New(handler))

	return f, nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "pimsim:", err)
	atexit.Exit(1)
}

func main() {
	flag.Parse()

	d, err := dims()
	if err != nil {
		fail(err)
	}

	if *traceFlag {
		f, err := setupTrace()
		if err != nil {
			fail(err)
		}
		atexit.Register(func() { f.Close() })
	}

	msb := api.MemorySystemBuilder{}.
		WithDeviceConfig(*deviceFlag).
		WithSystemConfig(*systemFlag).
		WithOutputDir(*outDirFlag).
		WithTraceTag(*tagFlag)

	var monitor *monitoring.Monitor
	if *monitorFlag {
		monitor = monitoring.NewMonitor()
		msb = msb.WithMonitor(monitor)
	}

	s, err := kernel.SessionBuilder{}.
		WithMemorySystem(msb).
		WithChannels(*channelsFlag).
		WithRanks(*ranksFlag).
		WithVerification(*verifyFlag).
		Build("PIM")
	if err != nil {
		fail(err)
	}

	if monitor != nil {
		monitor.StartServer()
	}

	r, err := s.Run(kernel.For(d))
	if err != nil {
		fail(err)
	}

	kernel.WriteSummary(os.Stdout, r)
	fmt.Println(pim.RenderStats(s.MemorySystem().Device().Stats()))

	if *reportFlag != "" && r.Report != nil {
		if err := r.Report.SaveReportToFile(*reportFlag); err != nil {
			fail(err)
		}
	}

	if err := s.Close(); err != nil {
		fail(err)
	}

	atexit.Exit(0)
}
