package imaging

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/net/html/charset"
)

// DefaultSVGBox is the side of the square box SVG documents are fitted into.
const DefaultSVGBox = 500

// CSS absolute units in pixels at 96 dpi.
var svgUnits = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72.0,
	"pc": 16,
	"mm": 96.0 / 25.4,
	"cm": 96.0 / 2.54,
	"in": 96,
	"em": 16,
	"ex": 8,
}

// SVGSize reads the intrinsic size of an SVG document from its root element.
//
// Explicit width and height win. A missing dimension is derived from the
// viewBox aspect ratio, and with neither attribute the viewBox size is used.
// Percentages are treated as absent.
func SVGSize(data []byte) (width, height float64, err error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return 0, 0, fmt.Errorf("no svg root element: %w", ErrDecode)
		}
		if err != nil {
			return 0, 0, fmt.Errorf("failed to parse svg: %w", errors.Join(ErrDecode, err))
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return 0, 0, fmt.Errorf("root element is <%s>, not <svg>: %w", start.Name.Local, ErrDecode)
		}
		return svgRootSize(start.Attr)
	}
}

func svgRootSize(attrs []xml.Attr) (float64, float64, error) {
	var (
		w, h       float64
		hasW, hasH bool
		vb         []float64
	)
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "width":
			w, hasW = parseSVGLength(attr.Value)
		case "height":
			h, hasH = parseSVGLength(attr.Value)
		case "viewBox":
			vb = parseViewBox(attr.Value)
		}
	}

	hasVB := len(vb) == 4 && vb[2] > 0 && vb[3] > 0
	switch {
	case hasW && hasH:
	case hasVB && hasW:
		h = w * vb[3] / vb[2]
	case hasVB && hasH:
		w = h * vb[2] / vb[3]
	case hasVB:
		w, h = vb[2], vb[3]
	}

	if w <= 0 || h <= 0 || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return 0, 0, fmt.Errorf("svg has no usable size (%gx%g): %w", w, h, ErrDecode)
	}
	return w, h, nil
}

func parseSVGLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	num := strings.TrimRightFunc(s, func(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' })
	unit, ok := svgUnits[strings.ToLower(s[len(num):])]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v * unit, true
}

func parseViewBox(s string) []float64 {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// FitDimensions scales width x height uniformly so it fits a box x box square,
// rounding to whole pixels. Smaller documents are scaled up: the box is a
// target, not only a ceiling.
//
// A 1000x500 document in a 500 box becomes 500x250.
func FitDimensions(width, height float64, box int) (int, int, error) {
	if width <= 0 || height <= 0 || box <= 0 {
		return 0, 0, fmt.Errorf("cannot fit %gx%g into %d box: %w", width, height, box, ErrDecode)
	}
	scale := math.Min(float64(box)/width, float64(box)/height)
	w := int(math.Round(width * scale))
	h := int(math.Round(height * scale))
	return max(w, 1), max(h, 1), nil
}

// RasterizeSVG renders an SVG document fitted into a box x box square and
// returns it re-decoded from an intermediate PNG encoding.
func RasterizeSVG(data []byte, box int) (img image.Image, err error) {
	width, height, err := SVGSize(data)
	if err != nil {
		return nil, err
	}
	dw, dh, err := FitDimensions(width, height, box)
	if err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", errors.Join(ErrDecode, err))
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.X, icon.ViewBox.Y = 0, 0
		icon.ViewBox.W, icon.ViewBox.H = width, height
	}

	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("svg rasterizer panicked: %v: %w", r, ErrDecode)
		}
	}()

	canvas := image.NewRGBA(image.Rect(0, 0, dw, dh))
	icon.SetTarget(0, 0, float64(dw), float64(dh))
	scanner := rasterx.NewScannerGV(dw, dh, canvas, canvas.Bounds())
	icon.Draw(rasterx.NewDasher(dw, dh, scanner), 1)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode rasterized svg: %w", err)
	}
	out, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rasterized svg: %w", errors.Join(ErrDecode, err))
	}
	return out, nil
}
