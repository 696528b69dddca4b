package region_test

import (
	"errors"
	"testing"

	"democap/internal/region"
)

func TestFromWindowAddsMargin(t *testing.T) {
	got, err := region.FromWindow(region.Window{X: 0, Y: 0, Width: 1600, Height: 1000}, region.DefaultMargin)
	if err != nil {
		t.Fatalf("FromWindow: %v", err)
	}
	want := region.Region{X: 0, Y: 0, Width: 1604, Height: 1004}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got.VideoSize() != "1604x1004" || got.Offset() != "0,0" {
		t.Fatalf("unexpected renderings %q %q", got.VideoSize(), got.Offset())
	}
}

func TestFromWindowShiftsOrigin(t *testing.T) {
	got, err := region.FromWindow(region.Window{X: 100, Y: 1, Width: 800, Height: 600}, 2)
	if err != nil {
		t.Fatalf("FromWindow: %v", err)
	}
	want := region.Region{X: 98, Y: 0, Width: 804, Height: 604}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestFromWindowRejectsBadGeometry(t *testing.T) {
	cases := []struct {
		name   string
		window region.Window
		margin int
	}{
		{"zero width", region.Window{Width: 0, Height: 100}, 2},
		{"negative height", region.Window{Width: 100, Height: -1}, 2},
		{"negative margin", region.Window{Width: 100, Height: 100}, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := region.FromWindow(tc.window, tc.margin)
			var geomErr *region.GeometryError
			if !errors.As(err, &geomErr) {
				t.Fatalf("expected GeometryError, got %v", err)
			}
		})
	}
}

func TestEvenAndCrop(t *testing.T) {
	r := region.Region{X: 3, Y: 5, Width: 1025, Height: 601}.Even()
	if r.Width != 1024 || r.Height != 600 {
		t.Fatalf("unexpected even region %+v", r)
	}
	if r.CropFilter() != "crop=1024:600:3:5" {
		t.Fatalf("unexpected crop filter %q", r.CropFilter())
	}
}

func TestParseWindow(t *testing.T) {
	w, err := region.ParseWindow("1600x1000+10+20")
	if err != nil {
		t.Fatalf("ParseWindow: %v", err)
	}
	if w != (region.Window{X: 10, Y: 20, Width: 1600, Height: 1000}) {
		t.Fatalf("unexpected window %+v", w)
	}
	w, err = region.ParseWindow("1024x600")
	if err != nil {
		t.Fatalf("ParseWindow without offset: %v", err)
	}
	if w.X != 0 || w.Y != 0 || w.Width != 1024 {
		t.Fatalf("unexpected window %+v", w)
	}
	for _, bad := range []string{"", "1024", "axb", "10x10+5", "10x10+a+1"} {
		if _, err := region.ParseWindow(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
