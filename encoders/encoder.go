package encoders

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// ErrValueType is returned when an encoder is handed a value of a type it
	// cannot encode.
	ErrValueType = errors.New("encoders: unsupported value type")
	// ErrOutOfRange is returned for values outside a non-clipping encoder's range.
	ErrOutOfRange = errors.New("encoders: value out of range")
	// ErrNoBuckets is returned by encoders whose output has no bucket index.
	ErrNoBuckets = errors.New("encoders: encoder has no buckets")
)

/*
 An encoder takes a value and encodes it with a partial sparse representation
of bits. Equal values always produce equal encodings.
*/
type Encoder interface {
	Name() string
	//Width in bits
	Width() int
	//Number of on bits in every encoding
	ActiveBits() int
	Encode(value interface{}) ([]bool, error)
	//Index of the bucket value falls in, used to label classifier inputs
	BucketIndex(value interface{}) (int, error)
}

/*
 Settings for any encoder type. Fields that do not apply to Type are ignored.
Decoded from the experiment files.
*/
type Config struct {
	Type       string  `toml:"type"`
	Name       string  `toml:"name"`
	ActiveBits int     `toml:"active_bits"`
	N          int     `toml:"n"`
	MinVal     float64 `toml:"min_val"`
	MaxVal     float64 `toml:"max_val"`
	Periodic   bool    `toml:"periodic"`
	ClipInput  bool    `toml:"clip_input"`
	Radius     float64 `toml:"radius"`
	Resolution float64 `toml:"resolution"`

	Categories    []string `toml:"categories"`
	MaxCategories int      `toml:"max_categories"`

	SeasonWidth     int     `toml:"season_width"`
	SeasonRadius    float64 `toml:"season_radius"`
	DayOfWeekWidth  int     `toml:"day_of_week_width"`
	DayOfWeekRadius float64 `toml:"day_of_week_radius"`
	WeekendWidth    int     `toml:"weekend_width"`
	WeekendRadius   float64 `toml:"weekend_radius"`
	HolidayWidth    int     `toml:"holiday_width"`
	HolidayRadius   float64 `toml:"holiday_radius"`
	TimeOfDayWidth  int     `toml:"time_of_day_width"`
	TimeOfDayRadius float64 `toml:"time_of_day_radius"`
	TimeLayout      string  `toml:"time_layout"`

	Verbosity int `toml:"verbosity"`
}

type Factory func(cfg Config) (Encoder, error)

var (
	factoriesOnce sync.Once
	factories     map[string]Factory
)

//Encoder constructors keyed by Config.Type
func Factories() map[string]Factory {
	factoriesOnce.Do(func() {
		factories = map[string]Factory{
			"scalar": func(cfg Config) (Encoder, error) {
				p := NewScalerEncoderParams(cfg.ActiveBits, cfg.MinVal, cfg.MaxVal)
				p.Name = cfg.Name
				p.N = cfg.N
				p.Periodic = cfg.Periodic
				p.ClipInput = cfg.ClipInput
				p.Radius = cfg.Radius
				p.Resolution = cfg.Resolution
				p.Verbosity = cfg.Verbosity
				return NewScalerEncoder(p)
			},
			"category": func(cfg Config) (Encoder, error) {
				p := NewCategoryEncoderParams(cfg.ActiveBits, cfg.MaxCategories)
				p.Name = cfg.Name
				p.Categories = cfg.Categories
				return NewCategoryEncoder(p)
			},
			"date": func(cfg Config) (Encoder, error) {
				p := NewDateEncoderParams()
				p.Name = cfg.Name
				p.SeasonWidth = cfg.SeasonWidth
				p.DayOfWeekWidth = cfg.DayOfWeekWidth
				p.WeekendWidth = cfg.WeekendWidth
				p.HolidayWidth = cfg.HolidayWidth
				p.TimeOfDayWidth = cfg.TimeOfDayWidth
				setIfNonZero(&p.SeasonRadius, cfg.SeasonRadius)
				setIfNonZero(&p.DayOfWeekRadius, cfg.DayOfWeekRadius)
				setIfNonZero(&p.WeekendRadius, cfg.WeekendRadius)
				setIfNonZero(&p.HolidayRadius, cfg.HolidayRadius)
				setIfNonZero(&p.TimeOfDayRadius, cfg.TimeOfDayRadius)
				if cfg.TimeLayout != "" {
					p.TimeLayout = cfg.TimeLayout
				}
				return NewDateEncoder(p)
			},
			"coordinate": func(cfg Config) (Encoder, error) {
				e, err := NewCoordinateEncoder(cfg.ActiveBits, cfg.N)
				if err != nil {
					return nil, err
				}
				e.name = cfg.Name
				return e, nil
			},
		}
	})
	return factories
}

//Builds an encoder from its config
func New(cfg Config) (Encoder, error) {
	f, ok := Factories()[strings.ToLower(cfg.Type)]
	if !ok {
		return nil, fmt.Errorf("encoders: unknown encoder type %q", cfg.Type)
	}
	return f(cfg)
}

func setIfNonZero(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

//Converts numeric values and numeric strings to float64
func ParseFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrValueType, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrValueType, value)
}

func toTime(value interface{}, layout string) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(layout, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrValueType, err)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %T", ErrValueType, value)
}
