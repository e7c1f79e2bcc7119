package layers

import (
	"image/color"
	"testing"
)

func TestStandardLayers(t *testing.T) {
	ll := Standard()
	if len(ll) != MaxLayers {
		t.Fatalf("len(Standard()) = %d, want %d", len(ll), MaxLayers)
	}

	if got := ll[2].Color; got != (color.NRGBA{R: 255, A: 255}) {
		t.Fatalf("top copper colour = %+v", got)
	}
	if got := ll[5].Color; got != (color.NRGBA{R: 127, G: 255, A: 255}) {
		t.Fatalf("layer 5 colour = %+v", got)
	}
	if ll[12].Alpha != 0.95 || ll[13].Alpha != 0.9 || ll[0].Alpha != 1.0 {
		t.Fatalf("unexpected alpha values %v %v %v", ll[12].Alpha, ll[13].Alpha, ll[0].Alpha)
	}
	for i, l := range ll {
		if !l.Visible || l.Modified {
			t.Fatalf("layer %d should be visible and unmodified", i)
		}
		if l.Description != StandardName(i) {
			t.Fatalf("layer %d description %q != %q", i, l.Description, StandardName(i))
		}
	}

	// Every call returns independent layers
	ll[0].Visible = false
	if !Standard()[0].Visible {
		t.Fatalf("Standard() shares state between calls")
	}
}

func TestARGBConversion(t *testing.T) {
	for _, s := range standardLayers {
		if got := ARGB(FromARGB(s.argb)); got != s.argb {
			t.Errorf("ARGB round trip of %d = %d", s.argb, got)
		}
	}

	// The alpha byte of the packed value is ignored
	if got := FromARGB(0x00102030); got != (color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}) {
		t.Fatalf("FromARGB = %+v", got)
	}
}

func TestLayerSetters(t *testing.T) {
	l := Standard()[3]

	l.SetColorARGB(-65536, 0.5)
	if l.Color.R != 255 || l.Alpha != 0.5 || !l.Modified {
		t.Fatalf("SetColorARGB result %+v", l)
	}

	l = Standard()[3]
	l.SetDescription("Silk")
	if l.Description != "Silk" || !l.Modified {
		t.Fatalf("SetDescription result %+v", l)
	}

	if StandardName(16) != "" || StandardName(-1) != "" {
		t.Fatalf("StandardName should be empty out of range")
	}
}

func TestIsVisible(t *testing.T) {
	ll := Standard()
	ll[4].Visible = false

	if !IsVisible(ll, 0) || IsVisible(ll, 4) || IsVisible(ll, 16) || IsVisible(ll, -1) {
		t.Fatalf("IsVisible gave unexpected results")
	}
}

func TestClone(t *testing.T) {
	ll := Standard()
	ll[2].SetDescription("Copper")

	c := Clone(ll)
	if len(c) != len(ll) {
		t.Fatalf("Clone has %d layers, want %d", len(c), len(ll))
	}
	if c[2].Description != "Copper" || !c[2].Modified {
		t.Fatalf("Clone lost the layer state: %+v", c[2])
	}

	c[3].SetColorARGB(-65536, 0.5)
	if ll[3].Modified || ll[3].Alpha != 1.0 {
		t.Fatalf("changing the copy modified the original: %+v", ll[3])
	}
}
