package charts

import (
	"fmt"
	"html"
	"html/template"
	"strings"
)

// Table renders an accordion: a summary line with the title and grand total,
// expanding to one row per series and one column per label.
func Table(title string, labels []string, series []Series) template.HTML {
	total := 0
	for _, s := range series {
		for _, v := range s.Values {
			total += v
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<details class="stat-table"><summary>%s <span class="total">(%d)</span></summary>`,
		html.EscapeString(title), total)
	b.WriteString(`<table><thead><tr><th></th>`)
	for _, l := range labels {
		fmt.Fprintf(&b, `<th>%s</th>`, html.EscapeString(l))
	}
	b.WriteString(`<th>Summe</th></tr></thead><tbody>`)

	if len(series) == 0 {
		fmt.Fprintf(&b, `<tr><td colspan="%d">Keine Daten</td></tr>`, len(labels)+2)
	}
	for _, s := range series {
		sum := 0
		fmt.Fprintf(&b, `<tr data-series="%s"><th>%s</th>`, html.EscapeString(s.Key), html.EscapeString(s.Label))
		for i := range labels {
			v := 0
			if i < len(s.Values) {
				v = s.Values[i]
			}
			sum += v
			fmt.Fprintf(&b, `<td>%d</td>`, v)
		}
		fmt.Fprintf(&b, `<td class="sum">%d</td></tr>`, sum)
	}
	b.WriteString(`</tbody></table></details>`)
	return template.HTML(b.String())
}
