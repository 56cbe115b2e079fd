package tui

import "testing"

func TestSetPixel(t *testing.T) {
	tests := []struct {
		name     string
		mx, my   int
		cx, cy   int
		wantMask uint8
	}{
		{"top left", 0, 0, 0, 0, 0x01},
		{"top right", 1, 0, 0, 0, 0x08},
		{"third row left", 0, 2, 0, 0, 0x04},
		{"bottom left", 0, 3, 0, 0, 0x40},
		{"bottom right", 1, 3, 0, 0, 0x80},
		{"second cell", 3, 5, 1, 1, 0x10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBrailleBuf(2, 2)
			b.setPixel(tt.mx, tt.my)
			if got := b.m[tt.cy][tt.cx]; got != tt.wantMask {
				t.Errorf("mask = %#x, want %#x", got, tt.wantMask)
			}
		})
	}
}

func TestSetPixelOutOfRange(t *testing.T) {
	b := newBrailleBuf(2, 2)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 8}} {
		b.setPixel(p[0], p[1])
	}
	for y := range b.m {
		for x, mask := range b.m[y] {
			if mask != 0 {
				t.Errorf("cell (%d,%d) = %#x, want empty", x, y, mask)
			}
		}
	}
}

func TestDrawLine(t *testing.T) {
	b := newBrailleBuf(4, 1)
	b.drawLine(0, 0, 7, 0)
	for x, mask := range b.m[0] {
		if mask != 0x09 {
			t.Errorf("cell %d = %#x, want top row 0x09", x, mask)
		}
	}

	b = newBrailleBuf(1, 2)
	b.drawLine(0, 7, 0, 0)
	if b.m[0][0] != 0x47 || b.m[1][0] != 0x47 {
		t.Errorf("vertical line masks = %#x %#x, want 0x47 0x47", b.m[0][0], b.m[1][0])
	}
}

func TestFillPolygon(t *testing.T) {
	b := newBrailleBuf(4, 2)
	b.fillPolygon([][2]int{{0, 0}, {7, 0}, {7, 7}, {0, 7}})

	// Scanlines are half-open, so the bottom micro row stays empty.
	for x := 0; x < 4; x++ {
		if b.m[0][x] != 0xFF {
			t.Errorf("row 0 cell %d = %#x, want full", x, b.m[0][x])
		}
		if b.m[1][x] != 0x3F {
			t.Errorf("row 1 cell %d = %#x, want 0x3f", x, b.m[1][x])
		}
	}
}

func TestFillPolygonTooFewPoints(t *testing.T) {
	b := newBrailleBuf(2, 2)
	b.fillPolygon([][2]int{{0, 0}, {3, 7}})
	for y := range b.m {
		for x, mask := range b.m[y] {
			if mask != 0 {
				t.Errorf("cell (%d,%d) = %#x, want empty", x, y, mask)
			}
		}
	}
}

func TestGlyph(t *testing.T) {
	if got := glyph(0); got != ' ' {
		t.Errorf("glyph(0) = %q, want space", got)
	}
	if got := glyph(0xFF); got != '⣿' {
		t.Errorf("glyph(0xff) = %q, want ⣿", got)
	}
}
