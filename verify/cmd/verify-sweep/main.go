package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/pimdriver/api"
	"github.com/sarchlab/pimdriver/burst"
	"github.com/sarchlab/pimdriver/kernel"
	"github.com/sarchlab/pimdriver/tensor"
	"github.com/tebeka/atexit"
)

var shapes = []tensor.Dims{
	{Kernel: tensor.GEMV, Batch: 1, OutputDim: 8, InputDim: 128},
	{Kernel: tensor.GEMV, Batch: 4, OutputDim: 64, InputDim: 256},
	{Kernel: tensor.GEMV, Batch: 1, OutputDim: 256, InputDim: 1024},
	{Kernel: tensor.GEMV, Batch: 1, OutputDim: 1024, InputDim: 1024},
	{Kernel: tensor.ADD, Batch: 2, OutputDim: 1024, InputDim: 1024},
	{Kernel: tensor.MUL, Batch: 1, OutputDim: 4096, InputDim: 4096},
	{Kernel: tensor.RELU, Batch: 1, OutputDim: 256, InputDim: 256},
}

func main() {
	fmt.Println("==============================================================================")
	fmt.Println("PIM KERNEL VERIFICATION SWEEP")
	fmt.Println("==============================================================================")

	failed := 0

	for i, d := range shapes {
		d.Fill = tensor.FillRandom
		d.Seed = uint64(i + 1)

		sb := kernel.SessionBuilder{}.
			WithMemorySystem(api.MemorySystemBuilder{}).
			WithVerification(true)
		if d.Kernel == tensor.GEMV {
			sb = sb.WithTolerance(burst.Tolerance{
				Scale: d.InputDim,
				Slack: burst.DefaultSlack,
			})
		}

		s, err := sb.Build("PIM")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			atexit.Exit(1)
		}

		r, err := s.Run(kernel.For(d))
		if err != nil {
			fmt.Printf("❌ %s: %v\n", d, err)
			failed++
			continue
		}

		l := r.Latencies()
		if r.Report.Passed() {
			fmt.Printf("✅ %-20s %10d cycles\n", d, l.Total())
			continue
		}

		failed++
		r.Report.WriteReport(os.Stdout)
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d kernels failed\n", failed, len(shapes))
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
