package charts

type Dataset struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Data  []int  `json:"data"`
}

// ChartJSON is the structure the admin page hands to the charting library.
type ChartJSON struct {
	Type     string            `json:"type"`
	Labels   []string          `json:"labels"`
	Datasets []Dataset         `json:"datasets"`
	Legend   map[string]string `json:"legend"`
	Max      int               `json:"max"`
}

// SeriesJSON builds the chart structure for a multi-series chart.
func SeriesJSON(kind string, labels []string, series []Series) ChartJSON {
	c := ChartJSON{
		Type:     kind,
		Labels:   append([]string{}, labels...),
		Datasets: make([]Dataset, 0, len(series)),
		Legend:   make(map[string]string, len(series)),
		Max:      AxisMax(seriesValues(series)...),
	}
	for _, s := range series {
		c.Datasets = append(c.Datasets, Dataset{Key: s.Key, Label: s.Label, Data: s.Values})
		c.Legend[s.Key] = s.Label
	}
	return c
}

// PointsJSON builds the chart structure for a single labelled series.
func PointsJSON(kind, key, label string, items []Point) ChartJSON {
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Label
	}
	return SeriesJSON(kind, labels, []Series{{Key: key, Label: label, Values: pointValues(items)}})
}
