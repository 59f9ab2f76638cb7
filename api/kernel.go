package api

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pimdriver/burst"
	"github.com/sarchlab/pimdriver/pim"
	"github.com/sarchlab/pimdriver/tensor"
)

// Errors reported by kernels.
var (
	ErrWeightsNotResident = errors.New("weights not resident")
	ErrShapeMismatch      = errors.New("shape mismatch")
	ErrRowOverlap         = errors.New("source and result rows overlap")
	ErrBufferTooSmall     = errors.New("buffer too small")
	ErrUnsupportedKernel  = errors.New("unsupported kernel")
)

// gemvLayout records the weights currently held by the even banks.
type gemvLayout struct {
	shape tensor.Shape
	slots int
}

// Kernel issues PIM work to a memory system. It turns tensors into bank
// transactions and drains the device whenever its queue fills up.
type Kernel struct {
	ms       *MemorySystem
	device   *pim.Device
	geometry pim.Geometry
	resident *gemvLayout
}

// Geometry returns the banks the kernel spreads data over.
func (k *Kernel) Geometry() pim.Geometry {
	return k.geometry
}

// CurrentCycle returns the device cycle counter.
func (k *Kernel) CurrentCycle() uint64 {
	return k.device.CurrentCycle()
}

// RunToQuiescence runs the memory system until every issued transaction has
// retired.
func (k *Kernel) RunToQuiescence() error {
	return k.ms.Run()
}

func (k *Kernel) reserve() error {
	if k.device.CanEnqueue() {
		return nil
	}

	return k.ms.Run()
}

func (k *Kernel) slotsFor(outputDim int) int {
	units := k.geometry.NumUnits()
	return (outputDim + units - 1) / units
}

// PreloadWeights places a GEMV weight matrix into the even banks. Row o of
// the matrix goes to unit o mod units, slot o / units.
func (k *Kernel) PreloadWeights(w *tensor.NearBankTensor) error {
	g := k.geometry
	units := g.NumUnits()
	inBursts := w.Shape.Bursts
	slots := k.slotsFor(w.Shape.Rows)

	if slots*inBursts > g.BurstsPerBank() {
		return fmt.Errorf("%w: %s weights need %d bursts per bank, have %d",
			pim.ErrAddressOutOfRange, w.Shape, slots*inBursts, g.BurstsPerBank())
	}

	for o := 0; o < w.Shape.Rows; o++ {
		id := g.UnitBank(o%units, pim.EvenBank)
		base := (o / units) * inBursts

		for kb := 0; kb < inBursts; kb++ {
			loc, err := g.Locate(id, 0, 0, base+kb)
			if err != nil {
				return err
			}

			if err := k.reserve(); err != nil {
				return err
			}

			k.device.Write(loc, w.Bursts[o*inBursts+kb])
		}
	}

	k.resident = &gemvLayout{shape: w.Shape, slots: slots}

	pim.Trace("WeightsPreloaded",
		"Shape", w.Shape.String(),
		"Slots", slots,
		"Cycle", k.CurrentCycle(),
	)

	return nil
}

// PreloadNoReplacement spreads a tensor over all banks, starting at (row,
// col) in every bank. Bursts go to channels first, then banks.
func (k *Kernel) PreloadNoReplacement(
	t *tensor.NearBankTensor,
	row, col int,
) error {
	for j, b := range t.Bursts {
		id, off := k.geometry.SpreadBank(j)

		loc, err := k.geometry.Locate(id, row, col, off)
		if err != nil {
			return err
		}

		if err := k.reserve(); err != nil {
			return err
		}

		k.device.Write(loc, b)
	}

	return nil
}

// ResultColumnForGemv returns the burst offset, relative to row 0 column 0
// of the odd banks, where GEMV results start.
func (k *Kernel) ResultColumnForGemv(
	inputShape tensor.Shape,
	outputDim int,
) int {
	return k.slotsFor(outputDim) * inputShape.Bursts
}

func (k *Kernel) resultLocation(i, row, col, endCol int) (pim.Location, error) {
	units := k.geometry.NumUnits()
	id := k.geometry.UnitBank(i%units, pim.OddBank)

	return k.geometry.Locate(id, row, col, endCol+i/units)
}

// ExecuteGemv multiplies the resident weights with each row of the input.
// Output o of batch b becomes result burst b*outputDim + o. With accumulate
// set, the previous result burst seeds the accumulator.
func (k *Kernel) ExecuteGemv(
	w, in *tensor.NearBankTensor,
	accumulate bool,
) error {
	if k.resident == nil || k.resident.shape != w.Shape {
		return fmt.Errorf("%w: %s", ErrWeightsNotResident, w.Shape)
	}

	if in.Shape.Bursts != w.Shape.Bursts {
		return fmt.Errorf("%w: input %s, weights %s",
			ErrShapeMismatch, in.Shape, w.Shape)
	}

	outputDim := w.Shape.Rows
	inBursts := w.Shape.Bursts
	endCol := k.ResultColumnForGemv(in.Shape, outputDim)

	_, err := k.resultLocation(in.Shape.Rows*outputDim-1, 0, 0, endCol)
	if err != nil {
		return err
	}

	for b := 0; b < in.Shape.Rows; b++ {
		for s := 0; s < k.resident.slots; s++ {
			err := k.gemvSlot(in, b, s, outputDim, inBursts, endCol, accumulate)
			if err != nil {
				return err
			}
		}
	}

	pim.Trace("GemvIssued",
		"Weights", w.Shape.String(),
		"Batch", in.Shape.Rows,
		"Accumulate", accumulate,
		"Cycle", k.CurrentCycle(),
	)

	return nil
}

// gemvSlot computes up to one output per unit: the outputs held in slot s.
func (k *Kernel) gemvSlot(
	in *tensor.NearBankTensor,
	b, s, outputDim, inBursts, endCol int,
	accumulate bool,
) error {
	g := k.geometry
	units := g.NumUnits()

	byChannel := make([][]int, g.Channels)
	for u := 0; u < units; u++ {
		if s*units+u < outputDim {
			ch := g.UnitBank(u, pim.EvenBank).Channel
			byChannel[ch] = append(byChannel[ch], u)
		}
	}

	for ch, us := range byChannel {
		if len(us) == 0 {
			continue
		}

		seeds := make([]pim.AccSeed, len(us))
		for i, u := range us {
			seeds[i].Unit = g.UnitBank(u, pim.EvenBank)
			if !accumulate {
				continue
			}

			from, err := k.resultLocation(b*outputDim+s*units+u, 0, 0, endCol)
			if err != nil {
				return err
			}
			seeds[i].From = &from
		}

		if err := k.reserve(); err != nil {
			return err
		}
		k.device.Seed(ch, seeds)
	}

	for kb := 0; kb < inBursts; kb++ {
		loc, err := g.Locate(pim.BankID{}, 0, 0, s*inBursts+kb)
		if err != nil {
			return err
		}

		x := in.Bursts[b*inBursts+kb]

		for ch, us := range byChannel {
			if len(us) == 0 {
				continue
			}

			ids := make([]pim.BankID, len(us))
			for i, u := range us {
				ids[i] = g.UnitBank(u, pim.EvenBank)
			}

			if err := k.reserve(); err != nil {
				return err
			}
			k.device.MAC(ch, ids, loc.Row, loc.Col, x)
		}
	}

	for ch, us := range byChannel {
		if len(us) == 0 {
			continue
		}

		moves := make([]pim.AccMove, len(us))
		for i, u := range us {
			to, err := k.resultLocation(b*outputDim+s*units+u, 0, 0, endCol)
			if err != nil {
				return err
			}

			moves[i] = pim.AccMove{Unit: g.UnitBank(u, pim.EvenBank), To: to}
		}

		if err := k.reserve(); err != nil {
			return err
		}
		k.device.Writeback(ch, moves)
	}

	return nil
}

func eltwiseOp(op tensor.KernelType) func(reg, operand burst.Burst) burst.Burst {
	switch op {
	case tensor.ADD:
		return burst.Add
	case tensor.SUB:
		return burst.Sub
	case tensor.MUL:
		return burst.Mul
	case tensor.RELU:
		return func(reg, _ burst.Burst) burst.Burst { return burst.Relu(reg) }
	default:
		return nil
	}
}

// rowSpan returns the number of rows a spread tensor occupies in a bank.
func (k *Kernel) rowSpan(shape tensor.Shape) int {
	total := k.geometry.TotalBanks()
	perBank := (shape.NumBursts() + total - 1) / total

	return (perBank + k.geometry.Cols - 1) / k.geometry.Cols
}

func overlaps(a, b, span int) bool {
	return a < b+span && b < a+span
}

// ExecuteEltwise applies op to a tensor spread over the banks selected by
// bank. The first operand starts at row0, the second operand of a binary
// op at row1[0]. Results are stored starting at resultRow.
func (k *Kernel) ExecuteEltwise(
	shape tensor.Shape,
	bank pim.BankSelector,
	op tensor.KernelType,
	row0, resultRow int,
	row1 ...int,
) error {
	f := eltwiseOp(op)
	if f == nil {
		return fmt.Errorf("%w: %s is not elementwise", ErrUnsupportedKernel, op)
	}

	if op.IsEltwise() && len(row1) != 1 {
		return fmt.Errorf("%w: %s needs one second-operand row, got %d",
			ErrShapeMismatch, op, len(row1))
	}

	span := k.rowSpan(shape)
	srcRows := []int{row0}
	if op.IsEltwise() {
		srcRows = append(srcRows, row1[0])
	}
	for _, r := range srcRows {
		if overlaps(r, resultRow, span) {
			return fmt.Errorf("%w: source row %d, result row %d, span %d",
				ErrRowOverlap, r, resultRow, span)
		}
	}

	groups := k.spreadGroups(shape.NumBursts(), bank)
	for _, grp := range groups {
		if err := k.eltwiseGroup(grp, op, f, row0, resultRow, row1); err != nil {
			return err
		}
	}

	pim.Trace("EltwiseIssued",
		"Op", op.String(),
		"Shape", shape.String(),
		"Bank", bank.Name(),
		"Cycle", k.CurrentCycle(),
	)

	return nil
}

// spreadGroup is the set of banks of one channel that hold a burst at the
// same offset.
type spreadGroup struct {
	channel int
	offset  int
	banks   []pim.BankID
}

func (k *Kernel) spreadGroups(n int, bank pim.BankSelector) []spreadGroup {
	var groups []spreadGroup

	index := make(map[[2]int]int)
	for j := 0; j < n; j++ {
		id, off := k.geometry.SpreadBank(j)
		if !bank.Matches(id.Bank) {
			continue
		}

		key := [2]int{off, id.Channel}
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, spreadGroup{channel: id.Channel, offset: off})
		}

		groups[gi].banks = append(groups[gi].banks, id)
	}

	return groups
}

func (k *Kernel) locateAll(
	ids []pim.BankID,
	row, offset int,
) ([]pim.Location, error) {
	locs := make([]pim.Location, len(ids))
	for i, id := range ids {
		loc, err := k.geometry.Locate(id, row, 0, offset)
		if err != nil {
			return nil, err
		}
		locs[i] = loc
	}

	return locs, nil
}

func (k *Kernel) eltwiseGroup(
	grp spreadGroup,
	op tensor.KernelType,
	f func(reg, operand burst.Burst) burst.Burst,
	row0, resultRow int,
	row1 []int,
) error {
	src, err := k.locateAll(grp.banks, row0, grp.offset)
	if err != nil {
		return err
	}

	operand := src
	if op.IsEltwise() {
		operand, err = k.locateAll(grp.banks, row1[0], grp.offset)
		if err != nil {
			return err
		}
	}

	dst, err := k.locateAll(grp.banks, resultRow, grp.offset)
	if err != nil {
		return err
	}

	if err := k.reserve(); err != nil {
		return err
	}
	k.device.EltLoad(grp.channel, src)

	if err := k.reserve(); err != nil {
		return err
	}
	k.device.EltCompute(grp.channel, operand, f)

	if err := k.reserve(); err != nil {
		return err
	}
	k.device.EltStore(grp.channel, dst)

	return nil
}

// ReadResult reads count GEMV result bursts from the banks selected by bank.
// Result i lives in unit i mod units at offset endCol + i / units from
// (row, col).
func (k *Kernel) ReadResult(
	buf []burst.Burst,
	bank pim.BankSelector,
	count, row, col, endCol int,
) error {
	if bank == pim.AllBank {
		return fmt.Errorf("%w: %s", pim.ErrUnsupportedBank, bank.Name())
	}

	if len(buf) < count {
		return fmt.Errorf("%w: %d bursts for %d results",
			ErrBufferTooSmall, len(buf), count)
	}

	units := k.geometry.NumUnits()
	for i := 0; i < count; i++ {
		id := k.geometry.UnitBank(i%units, bank)

		loc, err := k.geometry.Locate(id, row, col, endCol+i/units)
		if err != nil {
			return err
		}

		if err := k.reserve(); err != nil {
			return err
		}
		k.device.Read(loc, &buf[i])
	}

	return nil
}

// ReadData reads a tensor spread with PreloadNoReplacement back into buf.
func (k *Kernel) ReadData(
	buf []burst.Burst,
	shape tensor.Shape,
	row, col int,
) error {
	n := shape.NumBursts()
	if len(buf) < n {
		return fmt.Errorf("%w: %d bursts for shape %s",
			ErrBufferTooSmall, len(buf), shape)
	}

	for j := 0; j < n; j++ {
		id, off := k.geometry.SpreadBank(j)

		loc, err := k.geometry.Locate(id, row, col, off)
		if err != nil {
			return err
		}

		if err := k.reserve(); err != nil {
			return err
		}
		k.device.Read(loc, &buf[j])
	}

	return nil
}
