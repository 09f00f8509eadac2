package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"pgchart/internal/model"
)

func TestWriteRead(t *testing.T) {
	samples := []model.PriceSample{
		{Timestamp: 1508371200, Price: 281.35},
		{Timestamp: 1508371230, Price: 281.41},
		{Timestamp: 1508371260, Price: 280.97},
	}
	var buf bytes.Buffer
	if err := Write(&buf, samples); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() != 8+3*12 {
		t.Errorf("unexpected archive size %d", buf.Len())
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(got))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d: expected %v, got %v", i, samples[i], got[i])
		}
	}
}

func TestRead_Truncated(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, []model.PriceSample{{Timestamp: 1, Price: 2}, {Timestamp: 3, Price: 4}})
	data := buf.Bytes()[:buf.Len()-5]
	if _, err := Read(bytes.NewReader(data)); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestRead_HugeCount(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int64(math.MaxInt64))
	binary.Write(&buf, binary.LittleEndian, record{Timestamp: 1508371200, Price: 281.35})
	if _, err := Read(&buf); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestRead_ExportedLayout(t *testing.T) {
	// int64 count, then {int64 ts, float32 price} records, little endian
	raw := []byte{
		2, 0, 0, 0, 0, 0, 0, 0,
		0x00, 0x9c, 0xe7, 0x59, 0, 0, 0, 0, 0xcd, 0xac, 0x8c, 0x43,
		0x1e, 0x9c, 0xe7, 0x59, 0, 0, 0, 0, 0x7b, 0xb4, 0x8c, 0x43,
	}
	got, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []model.PriceSample{
		{Timestamp: 1508350976, Price: 281.35},
		{Timestamp: 1508351006, Price: 281.41},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgmkt.dat")
	if err := WriteFile(path, nil); err != nil {
		t.Fatalf("write empty: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read empty: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no samples, got %d", len(got))
	}
}
