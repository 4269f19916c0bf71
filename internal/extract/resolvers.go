package extract

import (
	"regexp"
	"strings"
)

// Field resolvers. Each implements a fixed priority list of candidate
// sources and patterns and accepts the first usable result. Strict
// first-match priority, no scoring: resolution is deterministic per input.

// customerIdentityLabels are tried in order for the customer identity field.
var customerIdentityLabels = []string{
	"Customer Name",
	"Company Name",
	"Customer ID",
	"Account Number",
}

// infoSiblingLabelsRE matches the labels of fields that typically neighbor
// the identity field in the customer-information block. OCR frequently
// merges the next field onto the same line; the value is cut at the first
// such label.
var infoSiblingLabelsRE = regexp.MustCompile(
	`(?i)(Monthly Payment Method|First Bill Date|User Name|Account Number|Phone Number|Default Voicemail Password|Address)\s*:`,
)

// addressStopLabels are the fields that follow Address in the
// customer-information block; any of them terminates the address block.
var addressStopLabels = []string{
	"Monthly Payment Method",
	"First Bill Date",
	"User Name",
	"Account Number",
	"Phone Number",
	"Default Voicemail Password",
	"Customer ID",
}

var (
	orderNumberTrailRE = regexp.MustCompile(`(?i)\b(Store|Date|Activity)\s*:`)
	activityTrailRE    = regexp.MustCompile(`(?i)\b(Store Phone Number|Store|Date)\s*:`)
	modelTrailRE       = regexp.MustCompile(
		`(?i)\b(Early Cancellation Fee|IMEI/ESN/MEID|SIM Number|Commitment Period|Start Date|End Date)\b`,
	)

	monthlyRateChargeRE  = regexp.MustCompile(`(?i)Monthly Rate Plan Charge\s*:\s*\$?\s*([0-9.,]+)`)
	minimumMonthlyRE     = regexp.MustCompile(`(?i)Minimum Monthly Charge\s*:\s*\$?\s*([0-9.,]+)`)
	planChargeLabelsRE   = regexp.MustCompile(`(?i)Monthly Rate Plan Charge\s*:|Minimum Monthly Charge\s*:`)
	rateSectionHeaderRE  = regexp.MustCompile(`(?i)^(YOUR RATE PLAN DETAILS|YOUR RATE PLAN ADD-ONS|MINIMUM MONTHLY CHARGE|TOTAL MONTHLY CHARGE)`)
	planLineRE           = regexp.MustCompile(`(?i)^Plan\s*:`)
	minimumMonthlyPlanRE = regexp.MustCompile(`(?i)MINIMUM MONTHLY CHARGE\s*\(FOR DEVICE AND RATE PLAN\)\s*:\s*\$?\s*([0-9.,]+)`)
)

// cutAt truncates s at the first match of re.
func cutAt(s string, re *regexp.Regexp) string {
	if loc := re.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}

// resolveCustomerName tries the identity labels in priority order within the
// customer-information section, truncating merged sibling labels.
func resolveCustomerName(info string) (string, bool) {
	for _, label := range customerIdentityLabels {
		v, ok := LabelValue(info, label, DefaultMaxLabelValueLen)
		if !ok {
			continue
		}
		v = cutAt(collapseSpaces(v), infoSiblingLabelsRE)
		if v != "" {
			return v, true
		}
	}
	return "", false
}

// resolveCustomerPhone extracts a phone number scoped to the
// customer-information section only.
func resolveCustomerPhone(info string) (string, bool) {
	line, ok := LabelValue(info, "Phone Number", DefaultMaxLabelValueLen)
	if !ok {
		line, ok = LabelValue(info, "Phone", DefaultMaxLabelValueLen)
	}
	if !ok {
		return "", false
	}
	return Phone(line)
}

// resolveCustomerAddress extracts the multi-line address block from the
// customer-information section.
func resolveCustomerAddress(info string) (string, bool) {
	return BlockAfterLabel(info, "Address", addressStopLabels)
}

// resolveTrimmedLine extracts a label value from the whole document and
// strips any trailing merged-label fragment.
func resolveTrimmedLine(text, label string, trailRE *regexp.Regexp) (string, bool) {
	v, ok := LabelValue(text, label, DefaultMaxLabelValueLen)
	if !ok {
		return "", false
	}
	v = collapseSpaces(cutAt(v, trailRE))
	if v == "" {
		return "", false
	}
	return v, true
}

// resolvePlanNameAndCharge resolves the rate-plan name and its monthly
// charge. Both template families are supported:
//
//	Plan: SmartPay Tab 20GB Monthly Rate Plan Charge: $20.00
//	Plan: EPP BYOD 60GB Lite  Minimum Monthly Charge: $85.00
//
// The plan name is whatever precedes the charge label found inside the Plan
// value. If no Plan label yields a name, the first descriptive line of the
// rate section stands in for it.
func resolvePlanNameAndCharge(rateSection, fullText string) (name string, nameOK bool, charge float64, chargeOK bool) {
	planLine, lineOK := LabelValue(rateSection, "Plan", 250)
	if !lineOK {
		planLine, lineOK = LabelValue(fullText, "Plan", 250)
	}

	if lineOK {
		if m := monthlyRateChargeRE.FindStringSubmatch(planLine); m != nil {
			charge, chargeOK = Money(m[1])
		}
		if !chargeOK {
			if m := minimumMonthlyRE.FindStringSubmatch(planLine); m != nil {
				charge, chargeOK = Money(m[1])
			}
		}
		name = collapseSpaces(cutAt(planLine, planChargeLabelsRE))
		nameOK = name != ""
	}

	if !nameOK {
		for _, ln := range strings.Split(rateSection, "\n") {
			ln = strings.Trim(ln, "•* \t")
			if ln == "" {
				continue
			}
			if rateSectionHeaderRE.MatchString(ln) || planLineRE.MatchString(ln) {
				continue
			}
			name = collapseSpaces(ln)
			nameOK = name != ""
			break
		}
	}

	return name, nameOK, charge, chargeOK
}

// resolvePlanChargeFallback retries the charge labels against the whole
// document when the Plan line carried no charge. The standalone
// "Minimum Monthly Charge" header common to BYOD templates is preferred.
func resolvePlanChargeFallback(fullText string) (float64, bool) {
	if m := minimumMonthlyRE.FindStringSubmatch(fullText); m != nil {
		if v, ok := Money(m[1]); ok {
			return v, true
		}
	}
	if m := monthlyRateChargeRE.FindStringSubmatch(fullText); m != nil {
		if v, ok := Money(m[1]); ok {
			return v, true
		}
	}
	return 0, false
}

// resolveMinimumMonthlyPlan matches the fixed compound header used by
// SmartPay templates. Distinct from the plan charge.
func resolveMinimumMonthlyPlan(fullText string) (float64, bool) {
	m := minimumMonthlyPlanRE.FindStringSubmatch(fullText)
	if m == nil {
		return 0, false
	}
	return Money(m[1])
}

// resolveDeviceModel extracts the device model, cut at the first neighboring
// device-details label merged onto the same line.
func resolveDeviceModel(device string) (string, bool) {
	v, ok := LabelValue(device, "Model", DefaultMaxLabelValueLen)
	if !ok {
		return "", false
	}
	v = collapseSpaces(cutAt(v, modelTrailRE))
	if v == "" {
		return "", false
	}
	return v, true
}

// resolveDeviceIMEI extracts the device identifier as a 10-20 digit run.
func resolveDeviceIMEI(device string) (string, bool) {
	chunk, ok := LabelValue(device, "IMEI/ESN/MEID", DefaultMaxLabelValueLen)
	if !ok {
		chunk, ok = LabelValue(device, "IMEI", DefaultMaxLabelValueLen)
	}
	if !ok {
		return "", false
	}
	return DigitRun(chunk, 10, 20)
}

// resolveSIMNumber extracts the SIM number as an 18-22 digit run.
func resolveSIMNumber(device string) (string, bool) {
	chunk, ok := LabelValue(device, "SIM Number", 250)
	if !ok {
		chunk, ok = LabelValue(device, "SIM", 250)
	}
	if !ok {
		return "", false
	}
	return DigitRun(chunk, 18, 22)
}
