package encoders

import (
	"fmt"
	"strings"
	"sync"

	"github.com/htm-community/streamhtm/utils"
)

type CategoryEncoderParams struct {
	//Bits per category, categories never overlap
	W int
	//Vocabulary size, the encoder reserves room for this many categories
	MaxCategories int
	//Categories known up front, in bucket order
	Categories []string
	Name       string
}

func NewCategoryEncoderParams(width int, maxCategories int) *CategoryEncoderParams {
	p := new(CategoryEncoderParams)
	p.W = width
	p.MaxCategories = maxCategories
	return p
}

/*
 Encodes string categories as non-overlapping blocks of W bits. Bucket 0
is reserved for unknown values; new categories join the vocabulary as they are
seen until MaxCategories is reached, after which they encode as unknown.
*/
type CategoryEncoder struct {
	Params CategoryEncoderParams

	mu         sync.Mutex
	vocabulary []string
	buckets    map[string]int
}

func NewCategoryEncoder(p *CategoryEncoderParams) (*CategoryEncoder, error) {
	if p.W <= 0 {
		return nil, fmt.Errorf("encoders: category %q: width must be positive, got %d", p.Name, p.W)
	}
	if p.MaxCategories <= 0 {
		p.MaxCategories = len(p.Categories)
	}
	if p.MaxCategories <= 0 || len(p.Categories) > p.MaxCategories {
		return nil, fmt.Errorf("encoders: category %q: max categories %d cannot hold %d categories",
			p.Name, p.MaxCategories, len(p.Categories))
	}

	ce := &CategoryEncoder{
		Params:  *p,
		buckets: make(map[string]int, p.MaxCategories),
	}
	for _, c := range p.Categories {
		if _, ok := ce.buckets[c]; ok {
			return nil, fmt.Errorf("encoders: category %q: duplicate category %q", p.Name, c)
		}
		ce.add(c)
	}
	return ce, nil
}

func (ce *CategoryEncoder) add(category string) int {
	ce.vocabulary = append(ce.vocabulary, category)
	idx := len(ce.vocabulary)
	ce.buckets[category] = idx
	return idx
}

func (ce *CategoryEncoder) Name() string {
	return ce.Params.Name
}

func (ce *CategoryEncoder) Width() int {
	return ce.Params.W * (ce.Params.MaxCategories + 1)
}

func (ce *CategoryEncoder) ActiveBits() int {
	return ce.Params.W
}

//Known categories in bucket order starting at bucket 1
func (ce *CategoryEncoder) Vocabulary() []string {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	return append([]string(nil), ce.vocabulary...)
}

func (ce *CategoryEncoder) BucketIndex(value interface{}) (int, error) {
	var category string
	switch v := value.(type) {
	case string:
		category = strings.TrimSpace(v)
	case fmt.Stringer:
		category = v.String()
	default:
		return 0, fmt.Errorf("%w: %T", ErrValueType, value)
	}

	ce.mu.Lock()
	defer ce.mu.Unlock()
	if idx, ok := ce.buckets[category]; ok {
		return idx, nil
	}
	if len(ce.vocabulary) >= ce.Params.MaxCategories {
		return 0, nil
	}
	return ce.add(category), nil
}

//Category of a bucket, empty for the unknown bucket
func (ce *CategoryEncoder) BucketValue(bucketIdx int) string {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	if bucketIdx <= 0 || bucketIdx > len(ce.vocabulary) {
		return ""
	}
	return ce.vocabulary[bucketIdx-1]
}

func (ce *CategoryEncoder) Encode(value interface{}) ([]bool, error) {
	idx, err := ce.BucketIndex(value)
	if err != nil {
		return nil, err
	}
	output := make([]bool, ce.Width())
	utils.FillSliceRangeBool(output, true, idx*ce.Params.W, ce.Params.W)
	return output, nil
}
