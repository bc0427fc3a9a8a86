// Package charts renders label/value data as inline SVG, HTML tables and a
// JSON structure for the client side charting library.
package charts

import (
	"fmt"
	"html"
	"html/template"
	"strings"
)

const (
	padding     = 32
	minWidth    = 360
	itemSpacing = 56

	barListHeight = 240
	lineHeight    = 220
	columnHeight  = 240
)

var palette = []string{
	"#2563eb", "#dc2626", "#16a34a", "#d97706", "#7c3aed",
	"#0891b2", "#db2777", "#65a30d", "#4b5563", "#ea580c",
}

// Point is one labelled value.
type Point struct {
	Label string
	Value int
}

// Series is a named sequence of values aligned with a label slice.
type Series struct {
	Key    string
	Label  string
	Values []int
}

// Width returns the chart width for n items: a fixed minimum, else n times
// the per-item spacing plus padding.
func Width(n int) int {
	w := n*itemSpacing + 2*padding
	if w < minWidth {
		return minWidth
	}
	return w
}

// AxisMax is the largest value of all inputs, at least 1.
func AxisMax(values ...[]int) int {
	top := 1
	for _, vs := range values {
		for _, v := range vs {
			if v > top {
				top = v
			}
		}
	}
	return top
}

// Color returns the palette colour for the i-th series.
func Color(i int) string {
	return palette[i%len(palette)]
}

func pointValues(items []Point) []int {
	values := make([]int, len(items))
	for i, it := range items {
		values[i] = it.Value
	}
	return values
}

func seriesValues(series []Series) [][]int {
	values := make([][]int, len(series))
	for i, s := range series {
		values[i] = s.Values
	}
	return values
}

func svgOpen(b *strings.Builder, class string, width, height int) {
	fmt.Fprintf(b, `<svg class="chart %s" xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img">`,
		class, width, height, width, height)
}

// yFor maps v onto the plot area of a chart with the given height.
func yFor(v, top, height int) float64 {
	plot := float64(height - 2*padding)
	return float64(padding) + plot - float64(v)*plot/float64(top)
}

// xFor spreads n points evenly over the plot width.
func xFor(i, n, width int) float64 {
	plot := float64(width - 2*padding)
	if n <= 1 {
		return float64(padding) + plot/2
	}
	return float64(padding) + float64(i)*plot/float64(n-1)
}

func axes(b *strings.Builder, width, height, top int) {
	base := height - padding
	fmt.Fprintf(b, `<line class="axis" x1="%d" y1="%d" x2="%d" y2="%d" stroke="#9ca3af"/>`, padding, base, width-padding, base)
	fmt.Fprintf(b, `<line class="axis" x1="%d" y1="%d" x2="%d" y2="%d" stroke="#9ca3af"/>`, padding, padding, padding, base)
	fmt.Fprintf(b, `<text class="axis-top" x="%d" y="%d" font-size="10" text-anchor="end">%d</text>`, padding-4, padding+4, top)
	fmt.Fprintf(b, `<text class="axis-min" x="%d" y="%d" font-size="10" text-anchor="end">0</text>`, padding-4, base)
}

func xLabels(b *strings.Builder, labels []string, width, height int) {
	for i, label := range labels {
		fmt.Fprintf(b, `<text x="%.1f" y="%d" font-size="10" text-anchor="middle">%s</text>`,
			xFor(i, len(labels), width), height-padding+14, html.EscapeString(label))
	}
}

// BarList draws one horizontal bar per item.
func BarList(items []Point) template.HTML {
	width := Width(len(items))
	height := barListHeight
	top := AxisMax(pointValues(items))

	var b strings.Builder
	svgOpen(&b, "chart-bars", width, height)
	if len(items) > 0 {
		labelW := 96
		plotW := float64(width - 2*padding - labelW)
		row := float64(height-2*padding) / float64(len(items))
		for i, it := range items {
			y := float64(padding) + float64(i)*row
			w := float64(it.Value) * plotW / float64(top)
			fmt.Fprintf(&b, `<text x="%d" y="%.1f" font-size="11" text-anchor="end" dominant-baseline="middle">%s</text>`,
				padding+labelW-6, y+row/2, html.EscapeString(it.Label))
			fmt.Fprintf(&b, `<rect x="%d" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s: %d</title></rect>`,
				padding+labelW, y+row*0.15, w, row*0.7, Color(0), html.EscapeString(it.Label), it.Value)
			fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="10" dominant-baseline="middle">%d</text>`,
				float64(padding+labelW)+w+4, y+row/2, it.Value)
		}
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

func polyline(values []int, top, width, height int) string {
	pts := make([]string, len(values))
	for i, v := range values {
		pts[i] = fmt.Sprintf("%.1f,%.1f", xFor(i, len(values), width), yFor(v, top, height))
	}
	return strings.Join(pts, " ")
}

func multiSeries(class string, labels []string, series []Series, filled bool) template.HTML {
	width := Width(len(labels))
	height := lineHeight
	top := AxisMax(seriesValues(series)...)

	var b strings.Builder
	svgOpen(&b, class, width, height)
	axes(&b, width, height, top)
	xLabels(&b, labels, width, height)

	for i, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		pts := polyline(s.Values, top, width, height)
		color := Color(i)
		if filled {
			base := height - padding
			first := xFor(0, len(s.Values), width)
			last := xFor(len(s.Values)-1, len(s.Values), width)
			fmt.Fprintf(&b, `<polygon data-series="%s" points="%.1f,%d %s %.1f,%d" fill="%s" fill-opacity="0.25" stroke="none"/>`,
				html.EscapeString(s.Key), first, base, pts, last, base, color)
		}
		fmt.Fprintf(&b, `<polyline data-series="%s" points="%s" fill="none" stroke="%s" stroke-width="2"><title>%s</title></polyline>`,
			html.EscapeString(s.Key), pts, color, html.EscapeString(s.Label))
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// Line draws every series as a polyline over the shared labels.
func Line(labels []string, series []Series) template.HTML {
	return multiSeries("chart-line", labels, series, false)
}

// Area is Line with the region below each series filled.
func Area(labels []string, series []Series) template.HTML {
	return multiSeries("chart-area", labels, series, true)
}

// Column draws one vertical bar per item.
func Column(items []Point) template.HTML {
	width := Width(len(items))
	height := columnHeight
	top := AxisMax(pointValues(items))

	var b strings.Builder
	svgOpen(&b, "chart-columns", width, height)
	axes(&b, width, height, top)

	if len(items) > 0 {
		slot := float64(width-2*padding) / float64(len(items))
		base := float64(height - padding)
		for i, it := range items {
			x := float64(padding) + float64(i)*slot
			y := yFor(it.Value, top, height)
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s: %d</title></rect>`,
				x+slot*0.15, y, slot*0.7, base-y, Color(0), html.EscapeString(it.Label), it.Value)
			fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-size="10" text-anchor="middle">%s</text>`,
				x+slot/2, height-padding+14, html.EscapeString(it.Label))
		}
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// Legend renders the series key/label pairs as coloured list items.
func Legend(series []Series) template.HTML {
	var b strings.Builder
	b.WriteString(`<ul class="chart-legend">`)
	for i, s := range series {
		fmt.Fprintf(&b, `<li data-series="%s"><span class="swatch" style="background:%s"></span>%s</li>`,
			html.EscapeString(s.Key), Color(i), html.EscapeString(s.Label))
	}
	b.WriteString(`</ul>`)
	return template.HTML(b.String())
}
