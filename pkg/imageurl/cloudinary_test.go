package imageurl

import (
	"strings"
	"testing"
)

const raw = "https://res.cloudinary.com/maldonado/image/upload/v1700000000/products/bpw-1.jpg"

func TestOptimize(t *testing.T) {
	got := Optimize(raw, Options{Width: 600})
	want := "https://res.cloudinary.com/maldonado/image/upload/w_600,q_auto,f_auto/v1700000000/products/bpw-1.jpg"
	if got != want {
		t.Fatalf("Optimize() = %q, want %q", got, want)
	}
	if again := Optimize(got, Options{Width: 80}); again != got {
		t.Fatalf("expected already transformed url to be untouched, got %q", again)
	}
}

func TestOptimizeIgnoresForeignURLs(t *testing.T) {
	for _, u := range []string{"", "/static/img/placeholder.png", "https://cdn.example.com/upload/a.jpg"} {
		if got := Optimize(u, Options{}); got != u {
			t.Fatalf("expected %q unchanged, got %q", u, got)
		}
	}
}

func TestForPreset(t *testing.T) {
	cases := map[Preset]string{
		SearchThumb: "w_80,",
		HeroBanner:  "w_1200,",
		"unknown":   "w_300,",
	}
	for preset, fragment := range cases {
		got := ForPreset(raw, preset)
		if !strings.Contains(got, fragment) {
			t.Fatalf("preset %s: expected %q in %q", preset, fragment, got)
		}
	}
	if ForPresetPtr(nil, CartThumb) != nil {
		t.Fatal("nil url should stay nil")
	}
}
