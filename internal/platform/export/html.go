package export

import (
	"bytes"
	"fmt"
	"html/template"
)

var printTemplate = template.Must(template.New("print").Funcs(template.FuncMap{
	"inr":     FormatINR,
	"numeric": func(t Table, i int) bool { return t.Numeric[i] },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Doc.Title}}</title>
<style>
  body { font-family: Arial, Helvetica, sans-serif; margin: 24px; color: #222; }
  h1 { font-size: 20px; margin: 0 0 4px; }
  .hospital { font-size: 13px; color: #555; margin-bottom: 16px; }
  .fields { display: grid; grid-template-columns: repeat(2, 1fr); gap: 4px 24px; font-size: 13px; margin-bottom: 16px; }
  .fields .label { color: #555; }
  table { width: 100%; border-collapse: collapse; font-size: 13px; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
  th { background: #f2f5f9; }
  td.num, th.num { text-align: right; }
  .summary { width: 320px; margin: 16px 0 0 auto; font-size: 13px; }
  .summary div { display: flex; justify-content: space-between; padding: 3px 0; }
  .summary .strong { font-weight: bold; border-top: 1px solid #999; }
  .notes { margin-top: 16px; font-size: 13px; }
  @media print { body { margin: 0; } }
</style>
</head>
<body>
<div id="{{.Doc.RootID}}" data-kind="{{.Doc.Kind}}">
  <h1 data-field="title">{{.Doc.Title}}</h1>
  <div class="hospital">{{.Hospital}}</div>
  <div class="fields">
    <div><span class="label">Number:</span> <span data-field="number">{{.Doc.Number}}</span></div>
    <div><span class="label">Date:</span> <span data-field="generated_at">{{.Doc.GeneratedAt.Format "02 Jan 2006"}}</span></div>
    <div><span class="label">Patient:</span> <span data-field="patient_name">{{.Doc.PatientName}}</span></div>
    <div><span class="label">MR Number:</span> <span data-field="mr_number">{{.Doc.MRNumber}}</span></div>
    {{- range .Doc.Fields}}
    <div><span class="label">{{.Label}}:</span> <span data-field="{{.Key}}">{{.Value}}</span></div>
    {{- end}}
  </div>
  {{- with .Doc.Table}}
  {{- if .Title}}<h2 style="font-size:15px">{{.Title}}</h2>{{end}}
  <table data-field="items">
    <thead><tr>{{range $i, $c := .Columns}}<th{{if numeric $.Doc.Table $i}} class="num"{{end}}>{{$c}}</th>{{end}}</tr></thead>
    <tbody>
    {{- range .Rows}}
      <tr>{{range $i, $v := .}}<td{{if numeric $.Doc.Table $i}} class="num"{{end}}>{{$v}}</td>{{end}}</tr>
    {{- end}}
    </tbody>
  </table>
  {{- end}}
  {{- if .Doc.Summary}}
  <div class="summary">
    {{- range .Doc.Summary}}
    <div{{if .Strong}} class="strong"{{end}}><span>{{.Label}}</span><span data-field="{{.Key}}" data-kind="amount">{{inr .Amount}}</span></div>
    {{- end}}
  </div>
  {{- end}}
  {{- if .Doc.Notes}}
  <div class="notes">
    {{- range .Doc.Notes}}
    <p><strong>{{.Label}}:</strong> <span data-field="{{.Key}}">{{.Value}}</span></p>
    {{- end}}
  </div>
  {{- end}}
</div>
<script>window.onload = function () { window.print(); };</script>
</body>
</html>
`))

type printView struct {
	Doc      *Document
	Hospital string
}

// PrintHTML renders a self-contained page that opens the print dialog when
// loaded.
func (e *Exporter) PrintHTML(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, printView{Doc: doc, Hospital: e.hospital}); err != nil {
		return nil, fmt.Errorf("render print html %s: %w", doc.Number, err)
	}
	return buf.Bytes(), nil
}
