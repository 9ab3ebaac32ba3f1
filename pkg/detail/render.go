package detail

import (
	"html/template"
	"strings"
)

// Catalogue values carry trusted markup, so values are emitted unescaped.
var funcs = template.FuncMap{
	"markup": func(s string) template.HTML { return template.HTML(s) },
	"icon": func(open bool) string {
		if open {
			return "minus-circle"
		}
		return "plus-circle"
	},
	"wrap": func(r Row, g GroupKey, hidden bool) rowData {
		return rowData{Row: r, Group: g, Hidden: hidden}
	},
}

var tmpl = template.Must(template.New("detail").Funcs(funcs).Parse(`
{{- define "row" -}}
<tr class="{{ .Class }}"{{ if .Group }} data-subgroup="{{ .Group }}"{{ end }}{{ if .Hidden }} style="display:none"{{ end }}>
<td class="details-placeholder"></td><td class="details-label">{{ .Row.Label }}</td><td class="details-value">{{ markup .Row.Value }}</td>
<td class="details-CD" colspan="7">
{{- if .Row.Panels }}<div class="cd-badges">
{{- range .Row.Panels }}<span class="cd-badge{{ if .Open }} active{{ end }}" data-target="{{ .ID }}"><i data-feather="{{ icon .Open }}"></i>{{ .Kind }}</span>{{ end -}}
</div>
{{- range .Row.Panels }}<div class="CD-content" id="{{ .ID }}"{{ if not .Open }} style="display: none;"{{ end }}><div class="CD-text">{{ markup .HTML }}</div></div>{{ end }}
{{- end -}}
</td></tr>
{{- end -}}
<table class="details-table" data-record="{{ .Record }}">
{{- range .Rows }}
{{ template "row" (wrap . "" false) }}
{{- end }}
<tr class="subgroup-spacer-small"><td colspan="10"></td></tr>
{{- range .Groups }}
{{- $g := . }}
<tr class="subgroup-heading-row{{ if .Expanded }} expanded{{ end }}" data-subgroup="{{ .Key }}"><td class="details-placeholder"></td><td colspan="9" class="details-heading"><span class="heading-toggle">{{ .Title }}</span></td></tr>
{{- range .Rows }}
{{ template "row" (wrap . $g.Key (not $g.Expanded)) }}
{{- end }}
<tr class="subgroup-spacer subgroup-content" data-subgroup="{{ .Key }}"{{ if not .Expanded }} style="display:none"{{ end }}><td colspan="10"></td></tr>
{{- end }}
</table>`))

type rowData struct {
	Row    Row
	Group  GroupKey
	Hidden bool
}

func (d rowData) Class() string {
	var classes []string
	if d.Group != "" {
		classes = append(classes, "subgroup-content")
	}
	if d.Row.Expanded() {
		classes = append(classes, "cd-expanded")
	}
	return strings.Join(classes, " ")
}

// Render returns the detail view as an HTML table.
func (d *Detail) Render() (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, d); err != nil {
		return "", err
	}
	return b.String(), nil
}
