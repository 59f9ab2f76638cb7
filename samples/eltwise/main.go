package main

import (
	"fmt"

	"github.com/sarchlab/pimdriver/api"
	"github.com/sarchlab/pimdriver/kernel"
	"github.com/sarchlab/pimdriver/tensor"
	"github.com/tebeka/atexit"
)

func add(s *kernel.Session) {
	d := tensor.Dims{
		Kernel:    tensor.ADD,
		Batch:     1,
		OutputDim: 256,
		InputDim:  256,
	}

	r, err := s.Run(kernel.NewEltwise(d))
	if err != nil {
		panic(err)
	}

	out := r.Outputs()
	fmt.Println(out[:16])

	if r.Report.Passed() {
		fmt.Println("✅ output matches expected add")
	} else {
		fmt.Printf("❌ output mismatches add: %d\n", r.Report.MismatchCount)
	}
}

func main() {
	s, err := kernel.SessionBuilder{}.
		WithMemorySystem(api.MemorySystemBuilder{}).
		WithVerification(true).
		Build("PIM")
	if err != nil {
		panic(err)
	}

	add(s)
	atexit.Exit(0)
}
