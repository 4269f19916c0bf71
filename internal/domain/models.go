package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Date is a calendar date without a time component. It marshals as
// "2006-01-02" so extracted contract dates round-trip cleanly through JSON.
type Date struct {
	time.Time
}

// NewDate creates a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// AddOn is a rate-plan add-on with its recurring charge.
type AddOn struct {
	Name          string  `json:"name"`
	MonthlyCharge float64 `json:"monthly_charge"`
}

// ContractFields holds every field resolved from one contract document.
// A nil pointer means the field is absent: no resolution rule produced a
// usable value. Absent is distinct from an empty string or zero amount.
type ContractFields struct {
	CustomerName    *string `json:"customer_name"`
	CustomerPhone   *string `json:"customer_phone"`
	CustomerAddress *string `json:"customer_address"`

	PlanName           *string  `json:"plan_name"`
	PlanCharge         *float64 `json:"plan_charge"`
	MinimumMonthlyPlan *float64 `json:"minimum_monthly_plan"`

	ContractStartDate *Date `json:"contract_start_date"`
	ContractEndDate   *Date `json:"contract_end_date"`

	OrderNumber *string `json:"order_number"`
	Activity    *string `json:"activity"`

	DownPayment *float64 `json:"down_payment"`

	DeviceModel  *string `json:"device_model"`
	DeviceIMEI   *string `json:"device_imei"`
	SerialNumber *string `json:"serial_number"`
	SIMNumber    *string `json:"sim_number"`

	AddOns []AddOn `json:"add_ons"`

	// RawText is the unmodified OCR transcript, retained for audit.
	RawText string `json:"raw_text"`
}

// Extraction is one stored extraction run. FileID is nil for extractions
// run directly against a pre-OCR'd transcript, with no uploaded file behind
// them.
type Extraction struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	FileID    *uuid.UUID       `db:"file_id" json:"file_id"`
	Status    ExtractionStatus `db:"status" json:"status"`
	Fields    json.RawMessage  `db:"fields" json:"fields"`
	RawText   string           `db:"raw_text" json:"-"`
	Error     string           `db:"error" json:"error,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// FileMeta stores metadata about an uploaded contract file.
type FileMeta struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	S3Bucket     string     `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string     `db:"s3_key" json:"s3_key"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
