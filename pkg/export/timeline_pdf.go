package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// TimelineEvent is a single dated entry in a timeline document.
type TimelineEvent struct {
	When    string
	Title   string
	Detail  string
	Author  string
}

// TimelineDocument holds everything needed to render a history PDF:
// a title, a block of labeled header fields and the ordered events.
type TimelineDocument struct {
	Title    string
	Subtitle string
	Fields   []TimelineField
	Events   []TimelineEvent
}

// TimelineField is a labeled value shown in the document header.
type TimelineField struct {
	Label string
	Value string
}

// TimelineExporter renders timeline documents as PDF.
type TimelineExporter struct{}

// NewTimelineExporter constructs a timeline exporter.
func NewTimelineExporter() *TimelineExporter {
	return &TimelineExporter{}
}

// Render produces the PDF bytes for the document.
func (e *TimelineExporter) Render(doc TimelineDocument) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("timeline requires a title")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 15, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 15)
	pdf.CellFormat(0, 9, tr(doc.Title), "", 1, "C", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, tr(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	for _, field := range doc.Fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 6, tr(field.Label), "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, tr(field.Value), "", "", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, tr("Movimentações"), "B", 1, "", false, 0, "")
	pdf.Ln(2)

	for _, event := range doc.Events {
		pdf.SetFont("Arial", "B", 9)
		header := event.When
		if event.Title != "" {
			header = fmt.Sprintf("%s - %s", event.When, event.Title)
		}
		pdf.CellFormat(0, 6, tr(header), "", 1, "", false, 0, "")
		if event.Detail != "" {
			pdf.SetFont("Arial", "", 9)
			pdf.MultiCell(0, 5, tr(event.Detail), "", "", false)
		}
		if event.Author != "" {
			pdf.SetFont("Arial", "I", 8)
			pdf.CellFormat(0, 5, tr(event.Author), "", 1, "", false, 0, "")
		}
		pdf.Ln(2)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render timeline pdf: %w", err)
	}
	return buf.Bytes(), nil
}
