package extract

import (
	"contractocr/internal/domain"
)

// Section markers observed across the contract template variants. End-marker
// sets include unpunctuated spellings because OCR drops the colon often
// enough to matter.
var (
	infoSectionEnds = []string{
		"YOUR DEVICE DETAILS:",
		"YOUR DEVICE DETAILS",
		"YOUR RATE PLAN DETAILS:",
		"CRITICAL INFORMATION SUMMARY",
	}
	deviceSectionEnds = []string{
		"YOUR RATE PLAN DETAILS:",
		"YOUR RATE PLAN DETAILS",
		"MINIMUM MONTHLY CHARGE",
		"TOTAL MONTHLY CHARGE",
	}
	rateSectionEnds = []string{
		"YOUR RATE PLAN ADD-ONS:",
		"YOUR PROMOTIONS:",
		"TOTAL MONTHLY CHARGE:",
		"ONE-TIME CHARGES:",
	}
)

// ParseContract runs the full extraction pass over one contract transcript:
// normalize, slice the named sections, resolve each field against its
// designated section with whole-document fallback, and assemble the record.
// Field resolvers are independent of one another; none consults another
// field's resolved value, so they could run in any order.
//
// ParseContract never fails: a field whose candidates all miss is absent.
func ParseContract(rawText string) *domain.ContractFields {
	text := Normalize(rawText)

	info := Section(text, "YOUR INFORMATION:", infoSectionEnds)
	device := Section(text, "YOUR DEVICE DETAILS:", deviceSectionEnds)
	rate := Section(text, "YOUR RATE PLAN DETAILS:", rateSectionEnds)

	// Empty section means the marker was absent; fall back to whole text.
	or := func(section string) string {
		if section == "" {
			return text
		}
		return section
	}

	f := &domain.ContractFields{
		AddOns:  []domain.AddOn{},
		RawText: rawText,
	}

	if v, ok := resolveCustomerName(or(info)); ok {
		f.CustomerName = &v
	}
	if v, ok := resolveCustomerPhone(or(info)); ok {
		f.CustomerPhone = &v
	}
	if v, ok := resolveCustomerAddress(or(info)); ok {
		f.CustomerAddress = &v
	}

	// Order number and activity labels are unique enough for whole-text
	// extraction.
	if v, ok := resolveTrimmedLine(text, "Order Number", orderNumberTrailRE); ok {
		f.OrderNumber = &v
	}
	if v, ok := resolveTrimmedLine(text, "Activity", activityTrailRE); ok {
		f.Activity = &v
	}

	// Commitment dates usually sit in the device-details block.
	if t, ok := LabeledDate(or(device), "Start Date"); ok {
		d := domain.DateOf(t)
		f.ContractStartDate = &d
	} else if t, ok := LabeledDate(text, "Start Date"); ok {
		d := domain.DateOf(t)
		f.ContractStartDate = &d
	}
	if t, ok := LabeledDate(or(device), "End Date"); ok {
		d := domain.DateOf(t)
		f.ContractEndDate = &d
	} else if t, ok := LabeledDate(text, "End Date"); ok {
		d := domain.DateOf(t)
		f.ContractEndDate = &d
	}

	name, nameOK, charge, chargeOK := resolvePlanNameAndCharge(or(rate), text)
	if nameOK {
		f.PlanName = &name
	}
	if !chargeOK {
		charge, chargeOK = resolvePlanChargeFallback(text)
	}
	if chargeOK {
		f.PlanCharge = &charge
	}

	if v, ok := resolveMinimumMonthlyPlan(text); ok {
		f.MinimumMonthlyPlan = &v
	}

	if v, ok := resolveDeviceModel(or(device)); ok {
		f.DeviceModel = &v
	}
	if v, ok := resolveDeviceIMEI(or(device)); ok {
		f.DeviceIMEI = &v
	}
	if v, ok := resolveSIMNumber(or(device)); ok {
		f.SIMNumber = &v
	}

	// DownPayment and SerialNumber have no resolution rule yet; both stay
	// absent until a template that carries them reliably shows up.

	return f
}
