package kernel_test

import (
	"errors"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/pimdriver/kernel"
	"github.com/sarchlab/pimdriver/pim"
	"github.com/sarchlab/pimdriver/tensor"
)

var errEngine = errors.New("engine failure")

func cycles(readings ...uint64) func() uint64 {
	i := 0
	return func() uint64 {
		r := readings[i]
		if i < len(readings)-1 {
			i++
		}
		return r
	}
}

var _ = Describe("Orchestrator", func() {
	var (
		mockCtrl   *gomock.Controller
		engine     *MockEngine
		orch       *kernel.Orchestrator
		gemv8x128  tensor.Dims
		add256     tensor.Dims
		relu256    tensor.Dims
		inputShape tensor.Shape
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)
		orch = kernel.Builder{}.WithEngine(engine).Build()

		gemv8x128 = tensor.Dims{Batch: 1, OutputDim: 8, InputDim: 128}
		add256 = tensor.Dims{
			Kernel: tensor.ADD, Batch: 1, OutputDim: 256, InputDim: 256}
		relu256 = tensor.Dims{Batch: 1, OutputDim: 256, InputDim: 256}
		inputShape = tensor.Shape{Rows: 1, Bursts: 8}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should run GEMV phases in order", func() {
		engine.EXPECT().CurrentCycle().
			DoAndReturn(cycles(0, 10, 30, 35)).Times(4)

		gomock.InOrder(
			engine.EXPECT().PreloadWeights(gomock.Any()),
			engine.EXPECT().RunToQuiescence(),
			engine.EXPECT().ExecuteGemv(gomock.Any(), gomock.Any(), false),
			engine.EXPECT().RunToQuiescence(),
			engine.EXPECT().ResultColumnForGemv(inputShape, 8).Return(8),
			engine.EXPECT().ReadResult(gomock.Any(), pim.OddBank, 8, 0, 0, 8),
			engine.EXPECT().RunToQuiescence(),
		)

		r, err := orch.Run(kernel.GEMV{Dims: gemv8x128})

		Expect(err).NotTo(HaveOccurred())
		Expect(orch.Phase()).To(Equal(kernel.Done))
		Expect(r.Kernel).To(Equal(tensor.GEMV))
		Expect(r.Raw).To(HaveLen(8))
		Expect(r.Golden).To(BeNil())
		Expect(r.Report).To(BeNil())
		Expect(r.Marks).To(Equal(kernel.Marks{
			Start: 0, Preload: 10, Execute: 30, Read: 35}))
		Expect(r.Latencies()).To(Equal(kernel.Latencies{
			Preload: 10, Execute: 20, Read: 5}))
	})

	It("should pass the accumulate flag through", func() {
		engine.EXPECT().CurrentCycle().Return(uint64(0)).AnyTimes()
		engine.EXPECT().RunToQuiescence().AnyTimes()
		engine.EXPECT().PreloadWeights(gomock.Any())
		engine.EXPECT().ExecuteGemv(gomock.Any(), gomock.Any(), true)
		engine.EXPECT().ResultColumnForGemv(gomock.Any(), gomock.Any())
		engine.EXPECT().ReadResult(gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any())

		_, err := orch.Run(kernel.GEMV{Dims: gemv8x128, Accumulate: true})

		Expect(err).NotTo(HaveOccurred())
	})

	It("should run elementwise kernels on the default rows", func() {
		shape := tensor.Shape{Rows: 1, Bursts: 16}
		engine.EXPECT().CurrentCycle().Return(uint64(0)).AnyTimes()

		gomock.InOrder(
			engine.EXPECT().PreloadNoReplacement(gomock.Any(), 0, 0),
			engine.EXPECT().PreloadNoReplacement(gomock.Any(), 128, 0),
			engine.EXPECT().RunToQuiescence(),
			engine.EXPECT().ExecuteEltwise(
				shape, pim.AllBank, tensor.ADD, 0, 256, 128),
			engine.EXPECT().RunToQuiescence(),
			engine.EXPECT().ReadData(gomock.Any(), shape, 256, 0),
			engine.EXPECT().RunToQuiescence(),
		)

		r, err := orch.Run(kernel.NewEltwise(add256))

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Raw).To(HaveLen(16))
	})

	It("should run RELU with a single operand", func() {
		shape := tensor.Shape{Rows: 1, Bursts: 16}
		engine.EXPECT().CurrentCycle().Return(uint64(0)).AnyTimes()

		gomock.InOrder(
			engine.EXPECT().PreloadNoReplacement(gomock.Any(), 0, 0),
			engine.EXPECT().RunToQuiescence(),
			engine.EXPECT().ExecuteEltwise(
				shape, pim.AllBank, tensor.RELU, 0, 256),
			engine.EXPECT().RunToQuiescence(),
			engine.EXPECT().ReadData(gomock.Any(), shape, 256, 0),
			engine.EXPECT().RunToQuiescence(),
		)

		r, err := orch.Run(kernel.NewRelu(relu256))

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Kernel).To(Equal(tensor.RELU))
	})

	It("should return planner errors before touching the engine", func() {
		bad := gemv8x128
		bad.InputDim = 100

		_, err := orch.Run(kernel.GEMV{Dims: bad})

		Expect(err).To(MatchError(tensor.ErrInvalidDims))
		Expect(orch.Phase()).To(Equal(kernel.Idle))
	})

	It("should stop at the failing phase", func() {
		engine.EXPECT().CurrentCycle().Return(uint64(0)).AnyTimes()
		engine.EXPECT().PreloadWeights(gomock.Any())
		engine.EXPECT().RunToQuiescence()
		engine.EXPECT().ExecuteGemv(gomock.Any(), gomock.Any(), false).
			Return(errEngine)

		_, err := orch.Run(kernel.GEMV{Dims: gemv8x128})

		Expect(err).To(MatchError(errEngine))
		Expect(err.Error()).To(ContainSubstring("Executing"))
		Expect(orch.Phase()).To(Equal(kernel.Executing))
	})

	It("should propagate quiescence failures", func() {
		engine.EXPECT().CurrentCycle().Return(uint64(0)).AnyTimes()
		engine.EXPECT().PreloadWeights(gomock.Any())
		engine.EXPECT().RunToQuiescence().Return(errEngine)

		_, err := orch.Run(kernel.GEMV{Dims: gemv8x128})

		Expect(err).To(MatchError(errEngine))
		Expect(orch.Phase()).To(Equal(kernel.Preloading))
	})

	It("should reject a non-binary kernel in an elementwise invocation", func() {
		engine.EXPECT().CurrentCycle().Return(uint64(0)).AnyTimes()
		d := add256
		d.Kernel = tensor.RELU

		_, err := orch.Run(kernel.NewEltwise(d))

		Expect(err).To(HaveOccurred())
	})

	It("should record mismatches without failing the run", func() {
		orch = kernel.Builder{}.
			WithEngine(engine).
			WithVerification(true).
			Build()

		engine.EXPECT().CurrentCycle().Return(uint64(0)).AnyTimes()
		engine.EXPECT().RunToQuiescence().AnyTimes()
		engine.EXPECT().PreloadNoReplacement(gomock.Any(), gomock.Any(), 0).Times(2)
		engine.EXPECT().ExecuteEltwise(gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
		engine.EXPECT().ReadData(gomock.Any(), gomock.Any(), 256, 0)

		r, err := orch.Run(kernel.NewEltwise(add256))

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Golden).NotTo(BeNil())
		Expect(r.Report).NotTo(BeNil())
		Expect(r.Report.Passed()).To(BeFalse())
	})

	It("should select invocations by kernel type", func() {
		Expect(kernel.For(gemv8x128)).To(BeAssignableToTypeOf(kernel.GEMV{}))
		Expect(kernel.For(add256)).To(BeAssignableToTypeOf(kernel.Eltwise{}))

		relu := relu256
		relu.Kernel = tensor.RELU
		Expect(kernel.For(relu)).To(BeAssignableToTypeOf(kernel.Relu{}))
	})
})

var _ = Describe("Profiler", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should keep the last reading", func() {
		engine.EXPECT().CurrentCycle().DoAndReturn(cycles(3, 7))

		p := kernel.NewProfiler(engine)
		Expect(p.Last()).To(Equal(uint64(3)))

		engine.EXPECT().CurrentCycle().DoAndReturn(cycles(7))
		Expect(p.Sample()).To(Equal(uint64(7)))
		Expect(p.Last()).To(Equal(uint64(7)))
	})

	It("should panic when the counter goes backwards", func() {
		engine.EXPECT().CurrentCycle().Return(uint64(10))
		p := kernel.NewProfiler(engine)

		engine.EXPECT().CurrentCycle().Return(uint64(9))
		Expect(func() { p.Sample() }).To(Panic())
	})

	It("should derive latencies from marks", func() {
		m := kernel.Marks{Start: 100, Preload: 150, Execute: 400, Read: 420}

		l := m.Latencies()

		Expect(l).To(Equal(kernel.Latencies{
			Preload: 50, Execute: 250, Read: 20}))
		Expect(l.Total()).To(Equal(uint64(320)))
	})
})
