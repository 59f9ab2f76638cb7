package main

import (
	"fmt"

	"github.com/sarchlab/pimdriver/api"
	"github.com/sarchlab/pimdriver/kernel"
	"github.com/sarchlab/pimdriver/tensor"
	"github.com/tebeka/atexit"
)

func gemv(k *api.Kernel) {
	fmt.Printf("%d PIM units\n", k.Geometry().NumUnits())

	orch := kernel.Builder{}.
		WithEngine(k).
		WithVerification(true).
		Build()

	d := tensor.Dims{
		Kernel:    tensor.GEMV,
		Batch:     1,
		OutputDim: 8,
		InputDim:  128,
	}

	r, err := orch.Run(kernel.GEMV{Dims: d})
	if err != nil {
		panic(err)
	}

	fmt.Println(r.Outputs())
	fmt.Println(r.Golden.Float32s())

	l := r.Latencies()
	fmt.Printf("preload %d, execute %d, read %d cycles\n",
		l.Preload, l.Execute, l.Read)

	if r.Report.Passed() {
		fmt.Println("✅ output matches expected gemv")
	} else {
		fmt.Printf("❌ output mismatches gemv: %d\n", r.Report.MismatchCount)
	}
}

func main() {
	s, err := kernel.SessionBuilder{}.
		WithMemorySystem(api.MemorySystemBuilder{}).
		WithChannels(1).
		WithRanks(1).
		Build("PIM")
	if err != nil {
		panic(err)
	}

	gemv(s.Kernel())

	if err := s.Close(); err != nil {
		panic(err)
	}

	atexit.Exit(0)
}
