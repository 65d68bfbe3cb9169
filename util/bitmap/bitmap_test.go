package bitmap

import (
	"testing"
)

func TestFromBytesLSBFirst(t *testing.T) {
	// 0x05 = bits 0 and 2 of the first byte
	bm := FromBytes([]byte{0x05, 0x80})
	tests := []struct {
		location int
		set      bool
	}{
		{0, true},
		{1, false},
		{2, true},
		{3, false},
		{7, false},
		{14, false},
		{15, true},
	}
	for _, tt := range tests {
		got, err := bm.IsSet(tt.location)
		if err != nil {
			t.Fatalf("IsSet(%d): %v", tt.location, err)
		}
		if got != tt.set {
			t.Errorf("IsSet(%d): expected %v, got %v", tt.location, tt.set, got)
		}
	}
}

func TestIsSetOutOfRange(t *testing.T) {
	bm := FromBytes([]byte{0xff})
	if _, err := bm.IsSet(8); err == nil {
		t.Error("expected error for location past end, got nil")
	}
	if _, err := bm.IsSet(-1); err == nil {
		t.Error("expected error for negative location, got nil")
	}
}

func TestSetAndClear(t *testing.T) {
	bm := NewBits(64)
	if err := bm.Set(13); err != nil {
		t.Fatal(err)
	}
	if set, _ := bm.IsSet(13); !set {
		t.Error("bit 13 should be set")
	}
	if got := bm.ToBytes()[1]; got != 0x20 {
		t.Errorf("expected byte 1 to be 0x20, got %#02x", got)
	}
	if err := bm.Clear(13); err != nil {
		t.Fatal(err)
	}
	if set, _ := bm.IsSet(13); set {
		t.Error("bit 13 should be clear")
	}
}

func TestNewBitsRounding(t *testing.T) {
	bm := NewBits(9)
	if got := len(bm.ToBytes()); got != 2 {
		t.Errorf("expected 2 bytes for 9 bits, got %d", got)
	}
	if got := len(NewBits(-1).ToBytes()); got != 0 {
		t.Errorf("expected 0 bytes for negative size, got %d", got)
	}
}

func TestCount(t *testing.T) {
	bm := NewBits(32)
	for _, loc := range []int{0, 5, 17, 31} {
		if err := bm.Set(loc); err != nil {
			t.Fatal(err)
		}
	}
	if got := bm.Count(); got != 4 {
		t.Errorf("expected count 4, got %d", got)
	}
}

func TestToBytesCopies(t *testing.T) {
	src := []byte{0x01}
	bm := FromBytes(src)
	src[0] = 0xff
	if set, _ := bm.IsSet(1); set {
		t.Error("bitmap should not alias caller bytes")
	}
	out := bm.ToBytes()
	out[0] = 0xff
	if set, _ := bm.IsSet(1); set {
		t.Error("ToBytes should not alias internal bytes")
	}
}
