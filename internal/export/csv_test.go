package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"contractocr/internal/domain"
	"contractocr/internal/export"
)

func sampleExtraction(t *testing.T) domain.Extraction {
	t.Helper()

	name := "Jane Doe"
	phone := "7806174431"
	plan := "SmartPay Tab 20GB"
	charge := 55.0
	start := domain.NewDate(2025, time.November, 19)
	fields, err := json.Marshal(domain.ContractFields{
		CustomerName:      &name,
		CustomerPhone:     &phone,
		PlanName:          &plan,
		PlanCharge:        &charge,
		ContractStartDate: &start,
	})
	require.NoError(t, err)

	return domain.Extraction{
		ID:        uuid.New(),
		Status:    domain.ExtractionStatusCompleted,
		Fields:    fields,
		CreatedAt: time.Date(2025, time.December, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestWriter_HeaderAndRows(t *testing.T) {
	e := sampleExtraction(t)

	var buf bytes.Buffer
	w := export.NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteExtractions([]domain.Extraction{e}))
	w.Flush()
	require.NoError(t, w.Error())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header := records[0]
	assert.Equal(t, "Extraction ID", header[0])
	assert.Equal(t, "Status", header[1])
	assert.Contains(t, header, "Customer Name")
	assert.Contains(t, header, "Plan Charge")
	assert.Contains(t, header, "Contract Start Date")

	row := records[1]
	require.Len(t, row, len(header))
	assert.Equal(t, e.ID.String(), row[0])
	assert.Equal(t, "completed", row[1])
	assert.Equal(t, "Jane Doe", row[2])
	assert.Equal(t, "7806174431", row[3])
	assert.Equal(t, "55.00", row[8])
	assert.Equal(t, "2025-11-19", row[10])
	assert.Equal(t, "2025-12-01 10:30:00", row[len(row)-1])
}

func TestWriter_AbsentFieldsLeaveBlankCells(t *testing.T) {
	e := domain.Extraction{
		ID:     uuid.New(),
		Status: domain.ExtractionStatusFailed,
		Fields: json.RawMessage("{}"),
	}

	var buf bytes.Buffer
	w := export.NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteExtractions([]domain.Extraction{e}))
	w.Flush()

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := records[1]
	assert.Equal(t, "failed", row[1])
	for i := 2; i < len(row)-1; i++ {
		assert.Empty(t, row[i], "column %d should be blank", i)
	}
}

func TestWriteXLSX(t *testing.T) {
	e := sampleExtraction(t)

	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, []domain.Extraction{e}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Extractions")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Extraction ID", rows[0][0])
	assert.Equal(t, "Jane Doe", rows[1][2])
}
