package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/pimdriver/api"
	"github.com/sarchlab/pimdriver/kernel"
	"github.com/sarchlab/pimdriver/pim"
	"github.com/sarchlab/pimdriver/tensor"
	"github.com/tebeka/atexit"
)

func relu(s *kernel.Session) {
	d := tensor.Dims{
		Kernel:    tensor.RELU,
		Batch:     1,
		OutputDim: 256,
		InputDim:  256,
		Fill:      tensor.FillRandom,
		Seed:      42,
	}

	r, err := s.Run(kernel.NewRelu(d))
	if err != nil {
		panic(err)
	}

	data, err := tensor.Planner{}.Plan(d)
	if err != nil {
		panic(err)
	}

	fmt.Println(data.Input0.Float32s()[:16])
	fmt.Println(r.Outputs()[:16])

	kernel.WriteSummary(os.Stdout, r)
}

func main() {
	f, err := os.Create("relu.json.log")
	if err != nil {
		panic(err)
	}
	atexit.Register(func() { f.Close() })

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: pim.LevelTrace,
	})
	slog.SetDefault(slog.New(handler))

	monitor := monitoring.NewMonitor()

	s, err := kernel.SessionBuilder{}.
		WithMemorySystem(api.MemorySystemBuilder{}.WithMonitor(monitor)).
		WithVerification(true).
		Build("PIM")
	if err != nil {
		panic(err)
	}

	monitor.StartServer()

	relu(s)
	atexit.Exit(0)
}
