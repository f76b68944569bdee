package encoders

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/gonum/floats"
	"github.com/htm-community/streamhtm/utils"
)

/*
 Given a coordinate in an N-dimensional space, and a radius around
that coordinate, the Coordinate Encoder returns an SDR representation
of that position.

The Coordinate Encoder uses an N-dimensional integer coordinate space.
For example, a valid coordinate in this space is (150, -49, 58), whereas
an invalid coordinate would be (55.4, -5, 85.8475).

It uses the following algorithm:

1. Find all the coordinates around the input coordinate, within the
specified radius.
2. For each coordinate, use a uniform hash function to
deterministically map it to a real number between 0 and 1. This is the
"order" of the coordinate.
3. Of these coordinates, pick the top W by order, where W is the
number of active bits desired in the SDR.
4. For each of these W coordinates, use a uniform hash function to
deterministically map it to one of the bits in the SDR. Make this bit active.
5. This results in a final SDR with exactly W bits active
(barring chance hash collisions).
*/
type CoordinateEncoder struct {
	//Number of active bits in SDR
	activeBits int
	width      int
	name       string
}

//Coordinate and radius to encode
type CoordinateInput struct {
	Coordinate []int
	Radius     int
}

func NewCoordinateEncoder(activeBits int, width int) (*CoordinateEncoder, error) {
	if activeBits <= 0 || activeBits%2 == 0 {
		return nil, fmt.Errorf("encoders: coordinate: active bits must be an odd positive integer, got %d", activeBits)
	}

	if width <= 6*activeBits {
		return nil, fmt.Errorf("encoders: coordinate: width %d must be at least 6 times active bits, ideally 11 times", width)
	}

	return &CoordinateEncoder{activeBits: activeBits, width: width}, nil
}

func (e *CoordinateEncoder) Name() string {
	if e.name != "" {
		return e.name
	}
	return fmt.Sprintf("[%v:%v]", e.width, e.activeBits)
}

func (e *CoordinateEncoder) Width() int {
	return e.width
}

func (e *CoordinateEncoder) ActiveBits() int {
	return e.activeBits
}

//Uniform hash of a coordinate
func hashCoordinate(coord []int) int64 {
	parts := make([]string, len(coord))
	for i, val := range coord {
		parts[i] = strconv.Itoa(val)
	}
	sum := md5.Sum([]byte(strings.Join(parts, ",")))
	return int64(binary.BigEndian.Uint64(sum[8:]))
}

//returns a coords order
func order(coord []int) float64 {
	return rand.New(rand.NewSource(hashCoordinate(coord))).Float64()
}

//Map coordinate to active bit index
func (e *CoordinateEncoder) coordBit(coord []int) int {
	return rand.New(rand.NewSource(hashCoordinate(coord))).Intn(e.width)
}

/*
 Parses string input made of the comma separated coordinate and the
radius, e.g. []string{"100,200", "7"}.
*/
func parseCoordinateInput(input []string) (CoordinateInput, error) {
	if len(input) != 2 {
		return CoordinateInput{}, fmt.Errorf("%w: coordinate input needs a coordinate and a radius", ErrValueType)
	}

	cordstr := strings.Split(input[0], ",")
	coords := make([]int, 0, len(cordstr))
	for _, val := range cordstr {
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return CoordinateInput{}, fmt.Errorf("%w: invalid coordinate: %v", ErrValueType, err)
		}
		coords = append(coords, i)
	}

	radf, err := strconv.ParseFloat(strings.TrimSpace(input[1]), 64)
	if err != nil {
		return CoordinateInput{}, fmt.Errorf("%w: invalid radius: %v", ErrValueType, err)
	}
	return CoordinateInput{Coordinate: coords, Radius: int(utils.RoundPrec(radf, 0))}, nil
}

//Coordinates within radius of the input in every dimension
func neighbors(coords []int, radius int) [][]int {
	ranges := make([][]int, len(coords))
	for idx, val := range coords {
		for i := val - radius; i < val+radius+1; i++ {
			ranges[idx] = append(ranges[idx], i)
		}
	}
	return utils.CartProductInt(ranges)
}

func (e *CoordinateEncoder) Encode(value interface{}) ([]bool, error) {
	var input CoordinateInput
	switch v := value.(type) {
	case CoordinateInput:
		input = v
	case []string:
		var err error
		if input, err = parseCoordinateInput(v); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrValueType, value)
	}
	if len(input.Coordinate) == 0 || input.Radius < 0 {
		return nil, fmt.Errorf("%w: empty coordinate or negative radius", ErrValueType)
	}

	candidates := neighbors(input.Coordinate, input.Radius)
	orders := make([]float64, len(candidates))
	for i, neighbor := range candidates {
		orders[i] = order(neighbor)
	}
	//sort by order, the winners are the highest
	indices := make([]int, len(orders))
	floats.Argsort(orders, indices)
	if len(indices) > e.activeBits {
		indices = indices[len(indices)-e.activeBits:]
	}

	//project winner bit positions on to result
	output := make([]bool, e.width)
	for _, idx := range indices {
		output[e.coordBit(candidates[idx])] = true
	}
	return output, nil
}

func (e *CoordinateEncoder) BucketIndex(value interface{}) (int, error) {
	return 0, ErrNoBuckets
}
