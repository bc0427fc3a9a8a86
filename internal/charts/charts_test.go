package charts

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisMaxIsAtLeastOne(t *testing.T) {
	assert.Equal(t, 1, AxisMax([]int{0, 0, 0}))
	assert.Equal(t, 1, AxisMax())
	assert.Equal(t, 7, AxisMax([]int{1, 7}, []int{3}))
}

func TestWidthScalesWithItems(t *testing.T) {
	assert.Equal(t, minWidth, Width(0))
	assert.Equal(t, minWidth, Width(3))
	assert.Equal(t, 12*itemSpacing+2*padding, Width(12))
	assert.Greater(t, Width(20), Width(12))
}

func TestAllZeroSeriesStaysOnBaseline(t *testing.T) {
	out := string(Line([]string{"a", "b"}, []Series{{Key: "gesamt", Label: "Gesamt", Values: []int{0, 0}}}))

	assert.Contains(t, out, `class="axis-top"`)
	assert.Contains(t, out, `>1</text>`)
	base := lineHeight - padding
	assert.Contains(t, out, ","+strconv.Itoa(base)+".0")
}

func TestLabelsAreEscaped(t *testing.T) {
	evil := `<script>alert("x")</script>`
	outputs := []string{
		string(BarList([]Point{{Label: evil, Value: 2}})),
		string(Column([]Point{{Label: evil, Value: 2}})),
		string(Line([]string{evil}, []Series{{Key: evil, Label: evil, Values: []int{1}}})),
		string(Area([]string{evil}, []Series{{Key: "k", Label: evil, Values: []int{1}}})),
		string(Table(evil, []string{evil}, []Series{{Key: "k", Label: evil, Values: []int{1}}})),
		string(Legend([]Series{{Key: evil, Label: evil}})),
	}
	for _, out := range outputs {
		assert.NotContains(t, out, "<script>")
		assert.Contains(t, out, "&lt;script&gt;")
	}
}

func TestLineDrawsOnePolylinePerSeries(t *testing.T) {
	series := []Series{
		{Key: "staerke_1", Label: "Stärke 1", Values: []int{1, 2, 3}},
		{Key: "staerke_2", Label: "Stärke 2", Values: []int{0, 0, 4}},
	}
	out := string(Line([]string{"a", "b", "c"}, series))
	assert.Equal(t, 2, strings.Count(out, "<polyline"))
	assert.Equal(t, 0, strings.Count(out, "<polygon"))

	area := string(Area([]string{"a", "b", "c"}, series))
	assert.Equal(t, 2, strings.Count(area, "<polygon"))
}

func TestColumnDrawsOneRectPerItem(t *testing.T) {
	out := string(Column([]Point{{"Mo", 1}, {"Di", 0}, {"Mi", 5}}))
	assert.Equal(t, 3, strings.Count(out, "<rect"))
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.True(t, strings.HasSuffix(out, "</svg>"))
}

func TestTableSumsRowsAndTotal(t *testing.T) {
	out := string(Table("Nach Sauna", []string{"a", "b"}, []Series{
		{Key: "sauna_1", Label: "Finnisch", Values: []int{1, 2}},
		{Key: "sauna_none", Label: "ohne Sauna", Values: []int{0, 4}},
	}))
	assert.Contains(t, out, `<span class="total">(7)</span>`)
	assert.Contains(t, out, `<td class="sum">3</td>`)
	assert.Contains(t, out, `<td class="sum">4</td>`)
	assert.Contains(t, out, "<details")

	empty := string(Table("Leer", []string{"a"}, nil))
	assert.Contains(t, empty, "Keine Daten")
}

func TestSeriesJSON(t *testing.T) {
	c := SeriesJSON("line", []string{"KW 01/2024"}, []Series{
		{Key: "duftmittel_3", Label: "Eukalyptus", Values: []int{4}},
		{Key: "duftmittel_none", Label: "ohne Duftmittel", Values: []int{0}},
	})

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "line", decoded["type"])
	assert.Equal(t, []interface{}{"KW 01/2024"}, decoded["labels"])
	assert.Len(t, decoded["datasets"], 2)
	assert.Equal(t, map[string]interface{}{
		"duftmittel_3":    "Eukalyptus",
		"duftmittel_none": "ohne Duftmittel",
	}, decoded["legend"])
	assert.Equal(t, float64(4), decoded["max"])
}

func TestPointsJSON(t *testing.T) {
	c := PointsJSON("bar", "gesamt", "Gesamt", []Point{{"a", 0}, {"b", 0}})
	assert.Equal(t, []string{"a", "b"}, c.Labels)
	assert.Equal(t, 1, c.Max)
	require.Len(t, c.Datasets, 1)
	assert.Equal(t, []int{0, 0}, c.Datasets[0].Data)
}
