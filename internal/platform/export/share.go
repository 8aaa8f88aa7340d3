package export

import (
	"fmt"
	"strings"
)

// SharePayload is what the client hands to the platform share sheet. URL is
// also the clipboard fallback.
type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
	File  *File  `json:"file,omitempty"`
}

// Share builds the share payload with the PNG rendition attached.
func (e *Exporter) Share(doc *Document) (*SharePayload, error) {
	img, err := e.PNG(doc)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(doc.FileName(), ".pdf")
	return &SharePayload{
		Title: doc.Title(),
		Text:  fmt.Sprintf("%s for %s (%s)", doc.noun(), doc.PatientName, doc.MRNumber),
		URL:   "https://" + e.host + doc.sharePath() + doc.ID,
		File:  &File{Name: base + ".png", ContentType: "image/png", Data: img},
	}, nil
}
