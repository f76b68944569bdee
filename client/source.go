package client

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//Field values of one input record keyed by field name
type Record map[string]interface{}

/*
 Pull based source of input records. Next returns io.EOF once the records
are exhausted.
*/
type RecordSource interface {
	Next() (Record, error)
}

type SliceSource struct {
	records []Record
	pos     int
}

func NewSliceSource(records []Record) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next() (Record, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	r := s.records[s.pos]
	s.pos++
	return r, nil
}

/*
 Reads records from CSV with a header row. Values stay strings, the field
encoders parse them.
*/
type CSVSource struct {
	reader *csv.Reader
	header []string
	closer io.Closer
}

func NewCSVSource(r io.Reader) (*CSVSource, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("client: csv input has no header row")
		}
		return nil, fmt.Errorf("client: read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	reader.FieldsPerRecord = len(header)
	return &CSVSource{reader: reader, header: header}, nil
}

//Opens a CSV file, Close releases it
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	src, err := NewCSVSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closer = f
	return src, nil
}

func (s *CSVSource) Header() []string {
	return s.header
}

func (s *CSVSource) Next() (Record, error) {
	row, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("client: read csv: %w", err)
	}
	rec := make(Record, len(row))
	for i, v := range row {
		rec[s.header[i]] = v
	}
	return rec, nil
}

func (s *CSVSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

//Stops a source after n records
type limitSource struct {
	src RecordSource
	n   int
}

func (l *limitSource) Next() (Record, error) {
	if l.n <= 0 {
		return nil, io.EOF
	}
	l.n--
	return l.src.Next()
}
