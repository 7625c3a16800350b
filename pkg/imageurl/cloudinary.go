// Package imageurl rewrites Cloudinary delivery URLs to request resized,
// auto-format variants.
package imageurl

import (
	"fmt"
	"strings"
)

// Options are the Cloudinary transform parameters applied to an URL.
type Options struct {
	Width   int
	Quality string
	Format  string
}

// Preset names a sizing context used by the storefront.
type Preset string

const (
	CardGrid      Preset = "cardGrid"
	CardList      Preset = "cardList"
	ProductDetail Preset = "productDetail"
	SearchThumb   Preset = "searchThumb"
	CartThumb     Preset = "cartThumb"
	HeroBanner    Preset = "heroBanner"
	CategoryThumb Preset = "categoryThumb"
)

var presetWidths = map[Preset]int{
	CardGrid:      300,
	CardList:      150,
	ProductDetail: 600,
	SearchThumb:   80,
	CartThumb:     100,
	HeroBanner:    1200,
	CategoryThumb: 200,
}

const uploadSegment = "/upload/"

// Optimize inserts w_/q_/f_ transforms after /upload/. URLs that are not on
// Cloudinary, or already carry a transform, are returned unchanged.
func Optimize(url string, opts Options) string {
	if url == "" || !strings.Contains(url, "cloudinary.com") {
		return url
	}
	for _, t := range []string{"/upload/w_", "/upload/q_", "/upload/f_"} {
		if strings.Contains(url, t) {
			return url
		}
	}
	if opts.Width <= 0 {
		opts.Width = 400
	}
	if opts.Quality == "" {
		opts.Quality = "auto"
	}
	if opts.Format == "" {
		opts.Format = "auto"
	}
	transform := fmt.Sprintf("%sw_%d,q_%s,f_%s/", uploadSegment, opts.Width, opts.Quality, opts.Format)
	return strings.Replace(url, uploadSegment, transform, 1)
}

// ForPreset applies a named preset. Unknown presets fall back to CardGrid.
func ForPreset(url string, preset Preset) string {
	width, ok := presetWidths[preset]
	if !ok {
		width = presetWidths[CardGrid]
	}
	return Optimize(url, Options{Width: width})
}

// ForPresetPtr is ForPreset over an optional URL.
func ForPresetPtr(url *string, preset Preset) *string {
	if url == nil {
		return nil
	}
	out := ForPreset(*url, preset)
	return &out
}
