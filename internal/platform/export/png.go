package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	pngPadding    = 24
	pngLineHeight = 16
	pngMinWidth   = 480
)

// textLines lays the document out as monospaced lines for rasterizing.
func textLines(doc *Document, hospital string) []string {
	lines := []string{doc.Title(), hospital, ""}
	header := append([]Field{
		{Label: "Number", Value: doc.Number},
		{Label: "Date", Value: doc.GeneratedAt.Format("02 Jan 2006")},
		{Label: "Patient", Value: doc.PatientName},
		{Label: "MR Number", Value: doc.MRNumber},
	}, doc.Fields...)
	for _, f := range header {
		lines = append(lines, f.Label+": "+f.Value)
	}

	if t := doc.Table; len(t.Columns) > 0 {
		lines = append(lines, "")
		if t.Title != "" {
			lines = append(lines, t.Title)
		}
		widths := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			widths[i] = len(c)
		}
		for _, row := range t.Rows {
			for i := range t.Columns {
				if i < len(row) && len(asciiAmount(row[i])) > widths[i] {
					widths[i] = len(asciiAmount(row[i]))
				}
			}
		}
		format := func(cells []string) string {
			parts := make([]string, len(t.Columns))
			for i := range t.Columns {
				v := ""
				if i < len(cells) {
					v = asciiAmount(cells[i])
				}
				if t.Numeric[i] {
					parts[i] = fmt.Sprintf("%*s", widths[i], v)
				} else {
					parts[i] = fmt.Sprintf("%-*s", widths[i], v)
				}
			}
			return strings.Join(parts, "  ")
		}
		head := format(t.Columns)
		lines = append(lines, head, strings.Repeat("-", len(head)))
		for _, row := range t.Rows {
			lines = append(lines, format(row))
		}
	}

	if len(doc.Summary) > 0 {
		lines = append(lines, "")
		for _, s := range doc.Summary {
			lines = append(lines, fmt.Sprintf("%-24s %16s", s.Label, asciiAmount(FormatINR(s.Amount))))
		}
	}
	for _, n := range doc.Notes {
		lines = append(lines, "", n.Label+": "+n.Value)
	}
	for i := range lines {
		lines[i] = asciiAmount(lines[i])
	}
	return lines
}

// PNG rasterizes the document as plain text on a white background.
func (e *Exporter) PNG(doc *Document) ([]byte, error) {
	lines := textLines(doc, e.hospital)
	face := basicfont.Face7x13

	width := pngMinWidth
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil() + 2*pngPadding; w > width {
			width = w
		}
	}
	height := len(lines)*pngLineHeight + 2*pngPadding

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: face}
	for i, l := range lines {
		d.Dot = fixed.P(pngPadding, pngPadding+(i+1)*pngLineHeight-3)
		d.DrawString(l)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png %s: %w", doc.Number, err)
	}
	return buf.Bytes(), nil
}
