package prescription

import (
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hms/hms/internal/platform/export"
)

const dateLayout = "02 Jan 2006"

// Document converts the checkup into its printable form.
func (c *Checkup) Document() *export.Document {
	fields := []export.Field{
		{Key: "doctor", Label: "Doctor", Value: c.Doctor},
		{Key: "age", Label: "Age", Value: strconv.Itoa(c.Age)},
	}
	if c.Gender != "" {
		fields = append(fields, export.Field{Key: "gender", Label: "Gender", Value: cases.Title(language.English).String(string(c.Gender))})
	}
	fields = append(fields, export.Field{Key: "diagnosis", Label: "Diagnosis", Value: c.Diagnosis})
	if c.Symptoms != "" {
		fields = append(fields, export.Field{Key: "symptoms", Label: "Symptoms", Value: c.Symptoms})
	}

	rows := make([][]string, 0, len(c.Medicines))
	for _, m := range c.Medicines {
		rows = append(rows, []string{m.Name, m.Dosage, m.Frequency, m.Duration, m.Instructions})
	}

	var notes []export.Field
	if c.Advice != "" {
		notes = append(notes, export.Field{Key: "advice", Label: "Advice", Value: c.Advice})
	}
	if c.FollowUpDate != nil {
		notes = append(notes, export.Field{Key: "follow_up_date", Label: "Follow-up", Value: c.FollowUpDate.Format(dateLayout)})
	}

	return &export.Document{
		Kind:        export.KindPrescription,
		ID:          c.ID.String(),
		Number:      c.Number,
		PatientName: c.PatientName,
		MRNumber:    c.MRNumber,
		GeneratedAt: c.Date,
		Fields:      fields,
		Table: export.Table{
			Title:   "Medicines",
			Columns: []string{"Medicine", "Dosage", "Frequency", "Duration", "Instructions"},
			Rows:    rows,
		},
		Notes: notes,
	}
}
