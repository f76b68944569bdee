package encoders

import (
	"fmt"
	"time"
)

/*
	Params for the date encoder. A zero width disables the sub field.
*/
type DateEncoderParams struct {
	HolidayWidth    int
	HolidayRadius   float64
	SeasonWidth     int
	SeasonRadius    float64
	DayOfWeekWidth  int
	DayOfWeekRadius float64
	WeekendWidth    int
	WeekendRadius   float64
	TimeOfDayWidth  int
	TimeOfDayRadius float64
	//Layout for string input
	TimeLayout string
	Name       string
}

func NewDateEncoderParams() *DateEncoderParams {
	p := new(DateEncoderParams)

	//set defaults
	p.SeasonRadius = 91.5 //days
	p.DayOfWeekRadius = 1
	p.TimeOfDayRadius = 4
	p.WeekendRadius = 1
	p.HolidayRadius = 1
	p.TimeLayout = "2006-01-02 15:04:05"

	return p
}

type dateField struct {
	name    string
	offset  int
	encoder *ScalerEncoder
}

//Fixed date holidays as month, day
var holidays = [][2]int{{12, 25}}

/*
	Date encoder encodes a datetime to a SDR. Params allow for tuning
	for specific date attributes
*/
type DateEncoder struct {
	Params DateEncoderParams

	seasonEncoder    *ScalerEncoder
	dayOfWeekEncoder *ScalerEncoder
	weekendEncoder   *ScalerEncoder
	holidayEncoder   *ScalerEncoder
	timeOfDayEncoder *ScalerEncoder

	fields     []dateField
	width      int
	activeBits int
}

/*
	Intializes a new date encoder
*/
func NewDateEncoder(params *DateEncoderParams) (*DateEncoder, error) {
	de := &DateEncoder{Params: *params}

	add := func(name string, width int, maxVal float64, radius float64, periodic bool) (*ScalerEncoder, error) {
		sep := NewScalerEncoderParams(width, 0, maxVal)
		sep.Name = name
		sep.Radius = radius
		sep.Periodic = periodic
		e, err := NewScalerEncoder(sep)
		if err != nil {
			return nil, fmt.Errorf("date %q: %w", params.Name, err)
		}
		de.fields = append(de.fields, dateField{name: name, offset: de.width, encoder: e})
		de.width += e.Width()
		de.activeBits += e.ActiveBits()
		return e, nil
	}

	var err error
	if params.SeasonWidth != 0 {
		// Ignore leapyear differences -- assume 366 days in a year
		// Radius = 91.5 days = length of season
		// Value is number of days since beginning of year (0 - 365)
		if de.seasonEncoder, err = add("season", params.SeasonWidth, 366, params.SeasonRadius, true); err != nil {
			return nil, err
		}
	}

	if params.DayOfWeekWidth != 0 {
		// Value is day of week (floating point), Monday = 0
		// Radius is 1 day
		if de.dayOfWeekEncoder, err = add("day of week", params.DayOfWeekWidth, 7, params.DayOfWeekRadius, true); err != nil {
			return nil, err
		}
	}

	if params.WeekendWidth != 0 {
		// Binary value, somewhat redundant with dayOfWeek
		if de.weekendEncoder, err = add("weekend", params.WeekendWidth, 1, params.WeekendRadius, false); err != nil {
			return nil, err
		}
	}

	if params.HolidayWidth != 0 {
		// A "continuous" binary value. = 1 on the holiday itself and smooth ramp
		// 0->1 on the day before the holiday and 1->0 on the day after the holiday.
		if de.holidayEncoder, err = add("holiday", params.HolidayWidth, 1, params.HolidayRadius, false); err != nil {
			return nil, err
		}
	}

	if params.TimeOfDayWidth != 0 {
		// Value is time of day in hours
		// Radius = 4 hours, e.g. morning, afternoon, evening, early night,
		// late night, etc.
		if de.timeOfDayEncoder, err = add("time of day", params.TimeOfDayWidth, 24, params.TimeOfDayRadius, true); err != nil {
			return nil, err
		}
	}

	if len(de.fields) == 0 {
		return nil, fmt.Errorf("encoders: date %q: no sub field enabled", params.Name)
	}

	return de, nil
}

func (de *DateEncoder) Name() string {
	return de.Params.Name
}

func (de *DateEncoder) Width() int {
	return de.width
}

func (de *DateEncoder) ActiveBits() int {
	return de.activeBits
}

//Sub field names and bit offsets, formatted for display
func (de *DateEncoder) Description() string {
	desc := ""
	for i, f := range de.fields {
		if i > 0 {
			desc += " "
		}
		desc += fmt.Sprintf("%s: %d", f.name, f.offset)
	}
	return desc
}

/*
	Get the scalar values for each subfield of the date encoder
*/
func (de *DateEncoder) getEncodedValues(date time.Time) []float64 {
	values := make([]float64, 0, len(de.fields))

	timeOfDay := float64(date.Hour()) + float64(date.Minute())/60.0
	// Monday = 0
	dayOfWeek := (int(date.Weekday()) + 6) % 7

	if de.seasonEncoder != nil {
		//make year 0 based
		values = append(values, float64(date.YearDay()-1))
	}

	if de.dayOfWeekEncoder != nil {
		values = append(values, float64(dayOfWeek))
	}

	if de.weekendEncoder != nil {
		// saturday, sunday or friday evening
		weekend := 0.0
		if dayOfWeek == 5 || dayOfWeek == 6 || (dayOfWeek == 4 && timeOfDay > 18) {
			weekend = 1.0
		}
		values = append(values, weekend)
	}

	if de.holidayEncoder != nil {
		values = append(values, holidayValue(date))
	}

	if de.timeOfDayEncoder != nil {
		values = append(values, timeOfDay)
	}

	return values
}

//1 on a holiday, ramping linearly over the day before and the day after
func holidayValue(date time.Time) float64 {
	const day = 24 * time.Hour
	for _, h := range holidays {
		// hDate is midnight on the holiday
		hDate := time.Date(date.Year(), time.Month(h[0]), h[1], 0, 0, 0, 0, date.Location())
		if date.After(hDate) {
			diff := date.Sub(hDate)
			switch diff / day {
			case 0:
				return 1
			case 1:
				// ramp smoothly from 1 -> 0 on the next day
				return 1.0 - (diff%day).Seconds()/86400
			}
		} else {
			diff := hDate.Sub(date)
			if diff/day == 0 {
				// ramp smoothly from 0 -> 1 on the previous day
				return 1.0 - diff.Seconds()/86400
			}
		}
	}
	return 0
}

func (de *DateEncoder) Encode(value interface{}) ([]bool, error) {
	date, err := toTime(value, de.Params.TimeLayout)
	if err != nil {
		return nil, err
	}

	output := make([]bool, 0, de.width)
	for i, v := range de.getEncodedValues(date) {
		encoded, err := de.fields[i].encoder.EncodeFloat(v)
		if err != nil {
			return nil, fmt.Errorf("date %q %s: %w", de.Params.Name, de.fields[i].name, err)
		}
		output = append(output, encoded...)
	}
	return output, nil
}

/*
 Combines the sub field buckets into one index, the first enabled field
being the most significant digit.
*/
func (de *DateEncoder) BucketIndex(value interface{}) (int, error) {
	date, err := toTime(value, de.Params.TimeLayout)
	if err != nil {
		return 0, err
	}

	idx := 0
	for i, v := range de.getEncodedValues(date) {
		e := de.fields[i].encoder
		b, err := e.BucketIndex(v)
		if err != nil {
			return 0, fmt.Errorf("date %q %s: %w", de.Params.Name, de.fields[i].name, err)
		}
		idx = idx*e.NumBuckets() + b
	}
	return idx, nil
}
