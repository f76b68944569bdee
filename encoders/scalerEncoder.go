package encoders

import (
	"fmt"
	"math"

	"github.com/htm-community/streamhtm/utils"
	"github.com/voodooEntity/archivist"
)

/*
 Params for the scalar encoder. Exactly one of N, Radius and Resolution
sizes the output.

W -- The number of bits that are set to encode a single value, the
"width" of the output signal. Must be odd.

N -- The number of bits in the output. Must be greater than W.

Radius -- Two inputs separated by more than the radius have non-overlapping
representations. Two inputs separated by less than the radius will
in general overlap in at least some of their bits. You can think
of this as the radius of the input.

Resolution -- Two inputs separated by greater than, or equal to the resolution are guaranteed
to have different representations.
*/
type ScalerEncoderParams struct {
	W          int
	MinVal     float64
	MaxVal     float64
	Periodic   bool
	N          int
	Radius     float64
	Resolution float64
	//Clip out of range input to the range instead of failing
	ClipInput bool
	Name      string
	Verbosity int
}

func NewScalerEncoderParams(width int, minVal float64, maxVal float64) *ScalerEncoderParams {
	p := new(ScalerEncoderParams)
	p.W = width
	p.MinVal = minVal
	p.MaxVal = maxVal
	return p
}

/*
 A scalar encoder encodes a numeric (floating point) value into an array
of bits. The output is 0's except for a contiguous block of 1's. The
location of this contiguous block varies continuously with the input value.

The encoding is linear. If you want a nonlinear encoding, just transform
the scalar (e.g. by applying a logarithm function) before encoding.
It is not recommended to bin the data as a pre-processing step, e.g.
"1" = $0 - $.20, "2" = $.21-$0.80, "3" = $.81-$1.20, etc. as this
removes a lot of information and prevents nearby values from overlapping
in the output. Instead, use a continuous transformation that scales
the data (a piecewise transformation is fine).
*/
type ScalerEncoder struct {
	Params ScalerEncoderParams

	n             int
	radius        float64
	resolution    float64
	padding       int
	halfWidth     int
	rangeInternal float64
	//range of the encoded values, one resolution wider than rangeInternal
	//for non periodic encoders
	valueRange float64
	//nInternal represents the output area excluding the possible padding on each side
	nInternal int
}

func NewScalerEncoder(p *ScalerEncoderParams) (*ScalerEncoder, error) {
	if p.W <= 0 || p.W%2 == 0 {
		return nil, fmt.Errorf("encoders: scalar %q: width must be an odd positive number, got %d", p.Name, p.W)
	}
	if p.MinVal >= p.MaxVal {
		return nil, fmt.Errorf("encoders: scalar %q: min value %v must be below max value %v", p.Name, p.MinVal, p.MaxVal)
	}

	se := &ScalerEncoder{Params: *p}
	se.halfWidth = (p.W - 1) / 2
	// For non-periodic inputs, padding is the number of bits "outside" the range,
	// on each side. I.e. the representation of minval is centered on some bit, and
	// there are "halfwidth" bits to the left of that centered bit.
	if !p.Periodic {
		se.padding = se.halfWidth
	}
	se.rangeInternal = p.MaxVal - p.MinVal

	sizers := 0
	for _, set := range []bool{p.N != 0, p.Radius != 0, p.Resolution != 0} {
		if set {
			sizers++
		}
	}
	if sizers != 1 {
		return nil, fmt.Errorf("encoders: scalar %q: exactly one of n, radius and resolution must be set", p.Name)
	}

	if p.N != 0 {
		if p.N <= p.W {
			return nil, fmt.Errorf("encoders: scalar %q: n (%d) must be greater than w (%d)", p.Name, p.N, p.W)
		}
		se.n = p.N
		if p.Periodic {
			se.resolution = se.rangeInternal / float64(se.n)
		} else {
			se.resolution = se.rangeInternal / float64(se.n-p.W)
		}
		se.radius = float64(p.W) * se.resolution
		se.valueRange = se.rangeInternal
		if !p.Periodic {
			se.valueRange += se.resolution
		}
	} else {
		if p.Radius != 0 {
			se.radius = p.Radius
			se.resolution = p.Radius / float64(p.W)
		} else {
			se.resolution = p.Resolution
			se.radius = p.Resolution * float64(p.W)
		}
		if se.radius <= 0 {
			return nil, fmt.Errorf("encoders: scalar %q: radius and resolution must be positive", p.Name)
		}
		se.valueRange = se.rangeInternal
		if !p.Periodic {
			se.valueRange += se.resolution
		}
		nfloat := float64(p.W)*(se.valueRange/se.radius) + 2*float64(se.padding)
		se.n = int(math.Ceil(nfloat))
		if se.n <= p.W {
			return nil, fmt.Errorf("encoders: scalar %q: computed n (%d) must be greater than w (%d)", p.Name, se.n, p.W)
		}
	}
	se.nInternal = se.n - 2*se.padding

	return se, nil
}

func (se *ScalerEncoder) Name() string {
	return se.Params.Name
}

func (se *ScalerEncoder) Width() int {
	return se.n
}

func (se *ScalerEncoder) ActiveBits() int {
	return se.Params.W
}

func (se *ScalerEncoder) Resolution() float64 {
	return se.resolution
}

/* Return the bit offset of the first bit to be set in the encoder output.
For periodic encoders, this can be a negative number when the encoded output
wraps around. */
func (se *ScalerEncoder) getFirstOnBit(input float64) (int, error) {
	p := &se.Params
	if math.IsNaN(input) {
		return 0, fmt.Errorf("%w: %s is NaN", ErrOutOfRange, p.Name)
	}

	if input < p.MinVal {
		//Don't clip periodic inputs. Out-of-range input is always an error
		if p.ClipInput && !p.Periodic {
			if p.Verbosity > 0 {
				archivist.DebugF("Clipped input %v=%v to minval %v", p.Name, input, p.MinVal)
			}
			input = p.MinVal
		} else {
			return 0, fmt.Errorf("%w: input %v less than range %v - %v", ErrOutOfRange, input, p.MinVal, p.MaxVal)
		}
	}

	if p.Periodic {
		if input >= p.MaxVal {
			return 0, fmt.Errorf("%w: input %v greater than periodic range %v - %v", ErrOutOfRange, input, p.MinVal, p.MaxVal)
		}
	} else if input > p.MaxVal {
		if !p.ClipInput {
			return 0, fmt.Errorf("%w: input %v greater than range %v - %v", ErrOutOfRange, input, p.MinVal, p.MaxVal)
		}
		if p.Verbosity > 0 {
			archivist.DebugF("Clipped input %v=%v to maxval %v", p.Name, input, p.MaxVal)
		}
		input = p.MaxVal
	}

	var centerbin int
	if p.Periodic {
		centerbin = int((input-p.MinVal)*float64(se.nInternal)/se.valueRange) + se.padding
	} else {
		centerbin = int(((input-p.MinVal)+se.resolution/2)/se.resolution) + se.padding
	}

	// We use the first bit to be set in the encoded output as the bucket index
	return centerbin - se.halfWidth, nil
}

/*
 Returns bucket index for given input. For periodic encoders the bucket is
the index of the center bit, otherwise the index of the left bit.
*/
func (se *ScalerEncoder) BucketIndex(value interface{}) (int, error) {
	input, err := ParseFloat(value)
	if err != nil {
		return 0, err
	}
	minbin, err := se.getFirstOnBit(input)
	if err != nil {
		return 0, err
	}

	if se.Params.Periodic {
		return utils.Mod(minbin+se.halfWidth, se.n), nil
	}
	return minbin, nil
}

//Number of distinct buckets
func (se *ScalerEncoder) NumBuckets() int {
	if se.Params.Periodic {
		return se.n
	}
	return se.n - se.Params.W + 1
}

//Value at the center of a bucket
func (se *ScalerEncoder) BucketValue(bucketIdx int) float64 {
	p := &se.Params
	if p.Periodic {
		return p.MinVal + se.valueRange*float64(bucketIdx)/float64(se.nInternal)
	}
	return math.Min(p.MinVal+se.resolution*float64(bucketIdx), p.MaxVal)
}

func (se *ScalerEncoder) Encode(value interface{}) ([]bool, error) {
	input, err := ParseFloat(value)
	if err != nil {
		return nil, err
	}
	return se.EncodeFloat(input)
}

func (se *ScalerEncoder) EncodeFloat(input float64) ([]bool, error) {
	minbin, err := se.getFirstOnBit(input)
	if err != nil {
		return nil, err
	}

	output := make([]bool, se.n)
	maxbin := minbin + 2*se.halfWidth

	if se.Params.Periodic {
		// Handle the edges by computing wrap-around
		if maxbin >= se.n {
			bottombins := maxbin - se.n + 1
			utils.FillSliceRangeBool(output, true, 0, bottombins)
			maxbin = se.n - 1
		}
		if minbin < 0 {
			topbins := -minbin
			utils.FillSliceRangeBool(output, true, se.n-topbins, topbins)
			minbin = 0
		}
	}

	if minbin < 0 || maxbin >= se.n {
		panic(fmt.Sprintf("scalar %q: bins [%d,%d] outside output of %d bits", se.Params.Name, minbin, maxbin, se.n))
	}

	// set the output (except for periodic wraparound)
	utils.FillSliceRangeBool(output, true, minbin, maxbin-minbin+1)

	if se.Params.Verbosity >= 2 {
		archivist.DebugF("input: %v range: %v - %v n: %v w: %v resolution: %v radius: %v periodic: %v output: %v",
			input, se.Params.MinVal, se.Params.MaxVal, se.n, se.Params.W, se.resolution,
			se.radius, se.Params.Periodic, utils.OnIndices(output))
	}

	return output, nil
}

//Range of input values
type ValueRange struct {
	Min float64
	Max float64
}

/*
 Decodes an encoding back into the ranges of input values it represents.
Gaps narrower than half the width are filled in before the runs of on bits
are converted to value ranges.
*/
func (se *ScalerEncoder) Decode(encoded []bool) []ValueRange {
	p := &se.Params
	tmp := make([]bool, se.n)
	copy(tmp, encoded)
	if utils.CountTrue(tmp) == 0 {
		return nil
	}

	// Fill in holes of up to halfWidth zeros between two on bits
	for i := 0; i < se.halfWidth; i++ {
		subLen := i + 3
		last := se.n - subLen
		if p.Periodic {
			last = se.n - 1
		}
		for j := 0; j <= last; j++ {
			match := true
			for k := 0; k < subLen && match; k++ {
				want := k == 0 || k == subLen-1
				match = tmp[(j+k)%se.n] == want
			}
			if match {
				for k := 0; k < subLen; k++ {
					tmp[(j+k)%se.n] = true
				}
			}
		}
	}

	// Runs of on bits as start, length
	var runs [][2]int
	for i := 0; i < se.n; i++ {
		if !tmp[i] {
			continue
		}
		if len(runs) > 0 {
			last := &runs[len(runs)-1]
			if last[0]+last[1] == i {
				last[1]++
				continue
			}
		}
		runs = append(runs, [2]int{i, 1})
	}

	// Merge a run wrapping around a periodic output
	if p.Periodic && len(runs) > 1 {
		first, last := runs[0], runs[len(runs)-1]
		if first[0] == 0 && last[0]+last[1] == se.n {
			runs[len(runs)-1][1] += first[1]
			runs = runs[1:]
		}
	}

	var ranges []ValueRange
	for _, run := range runs {
		start, runLen := run[0], run[1]
		var left, right int
		if runLen <= p.W {
			left = start + runLen/2
			right = left
		} else {
			left = start + se.halfWidth
			right = start + runLen - 1 - se.halfWidth
		}

		var inMin, inMax float64
		if p.Periodic {
			inMin = float64(left-se.padding)*se.valueRange/float64(se.nInternal) + p.MinVal
			inMax = float64(right-se.padding)*se.valueRange/float64(se.nInternal) + p.MinVal
			if inMin >= p.MaxVal {
				inMin -= se.valueRange
				inMax -= se.valueRange
			}
		} else {
			inMin = float64(left-se.padding)*se.resolution + p.MinVal
			inMax = float64(right-se.padding)*se.resolution + p.MinVal
		}

		inMin = math.Max(inMin, p.MinVal)
		inMax = math.Max(inMax, p.MinVal)
		if p.Periodic && inMax >= p.MaxVal {
			ranges = append(ranges, ValueRange{inMin, p.MaxVal}, ValueRange{p.MinVal, inMax - se.valueRange})
			continue
		}
		ranges = append(ranges, ValueRange{math.Min(inMin, p.MaxVal), math.Min(inMax, p.MaxVal)})
	}

	return ranges
}
