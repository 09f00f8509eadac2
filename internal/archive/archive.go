// Package archive reads and writes the binary tick archive used by export/import.
//
// Layout (little endian): int64 record count, then per record an int64 unix
// timestamp followed by a float32 price.
package archive

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"pgchart/internal/model"
)

var ErrCorrupt = errors.New("corrupt tick archive")

// maxPrealloc bounds the capacity taken on trust from the header.
const maxPrealloc = 1 << 16

type record struct {
	Timestamp int64
	Price     float32
}

// Write encodes samples to w.
func Write(w io.Writer, samples []model.PriceSample) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int64(len(samples))); err != nil {
		return fmt.Errorf("write record num header: %w", err)
	}
	recs := make([]record, len(samples))
	for i, s := range samples {
		recs[i] = record{Timestamp: s.Timestamp, Price: float32(s.Price)}
	}
	if err := binary.Write(bw, binary.LittleEndian, recs); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return bw.Flush()
}

// Read decodes an archive from r. Prices are rounded back to cents.
func Read(r io.Reader) ([]model.PriceSample, error) {
	br := bufio.NewReader(r)
	var num int64
	if err := binary.Read(br, binary.LittleEndian, &num); err != nil {
		return nil, fmt.Errorf("read record num header: %w", err)
	}
	if num < 0 {
		return nil, fmt.Errorf("%w: negative record count %d", ErrCorrupt, num)
	}
	samples := make([]model.PriceSample, 0, min(num, maxPrealloc))
	for i := int64(0); i < num; i++ {
		var rec record
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}
		samples = append(samples, model.PriceSample{
			Timestamp: rec.Timestamp,
			Price:     math.Round(float64(rec.Price)*100) / 100,
		})
	}
	return samples, nil
}

// WriteFile writes samples to filename, replacing any existing file.
func WriteFile(filename string, samples []model.PriceSample) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create file '%s': %w", filename, err)
	}
	if err := Write(f, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads an archive from filename.
func ReadFile(filename string) ([]model.PriceSample, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file '%s': %w", filename, err)
	}
	defer f.Close()
	return Read(f)
}
