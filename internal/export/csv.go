// Package export flattens stored extraction records for download as CSV or
// XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"contractocr/internal/domain"
)

// BOM is the UTF-8 byte order mark, prepended for Excel compatibility on
// Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the export header row.
var columns = []string{
	"Extraction ID",
	"Status",
	"Customer Name",
	"Customer Phone",
	"Customer Address",
	"Order Number",
	"Activity",
	"Plan Name",
	"Plan Charge",
	"Minimum Monthly Plan",
	"Contract Start Date",
	"Contract End Date",
	"Device Model",
	"Device IMEI",
	"SIM Number",
	"Down Payment",
	"Created At",
}

// Writer wraps csv.Writer for exporting extraction records as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteExtractions converts a batch of extraction records to CSV rows and
// writes them.
func (w *Writer) WriteExtractions(extractions []domain.Extraction) error {
	for i := range extractions {
		if err := w.csv.Write(extractionToRow(&extractions[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from a previous write or flush.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// extractionToRow flattens one extraction record. Absent fields become empty
// cells; a row for a failed extraction carries only its identity and status.
func extractionToRow(e *domain.Extraction) []string {
	var fields domain.ContractFields
	if len(e.Fields) > 0 {
		// Undecodable stored fields leave the cells blank rather than
		// failing the whole export.
		_ = json.Unmarshal(e.Fields, &fields)
	}

	return []string{
		e.ID.String(),
		string(e.Status),
		strCell(fields.CustomerName),
		strCell(fields.CustomerPhone),
		strCell(fields.CustomerAddress),
		strCell(fields.OrderNumber),
		strCell(fields.Activity),
		strCell(fields.PlanName),
		moneyCell(fields.PlanCharge),
		moneyCell(fields.MinimumMonthlyPlan),
		dateCell(fields.ContractStartDate),
		dateCell(fields.ContractEndDate),
		strCell(fields.DeviceModel),
		strCell(fields.DeviceIMEI),
		strCell(fields.SIMNumber),
		moneyCell(fields.DownPayment),
		e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

func strCell(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func moneyCell(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

func dateCell(p *domain.Date) string {
	if p == nil {
		return ""
	}
	return p.String()
}
