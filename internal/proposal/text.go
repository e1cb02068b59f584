package proposal

import (
	"fmt"
	"io"
	"strings"

	"github.com/divan/num2words"
	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/tuition-quoter/internal/calculator"
)

// Letterhead is printed at the top of every proposal.
const Letterhead = "ELIMUHUB EDUCATION CONSULTANTS"

// PaymentTerms are the standing terms attached to every proposal.
var PaymentTerms = []string{
	"Weekly payments every Friday",
	"First payment due upon tutor deployment",
	"Service fee is charged once, with the first payment",
	"Payment: Airtel Money (0731 838387)",
}

// WriteText renders p as a plain-text proposal.
func WriteText(w io.Writer, p Proposal) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(Letterhead)
	line("TUITION PROPOSAL")
	line(strings.Repeat("=", 50))
	line("Reference: %s", p.ID)
	line("Generated on: %s", p.GeneratedDate())
	line("")

	req := p.Request
	line("STUDENT INFORMATION:")
	line("Name: %s", req.StudentName)
	line("Grade: %s", req.GradeLevel)
	line("Location: %s", req.Location)
	line("Curriculum: %s", req.Curriculum)
	line("Start Date: %s", req.StartDate.Format("2006-01-02"))
	line("Preferred Days: %s", p.PreferredDaysLabel())
	if s := strings.TrimSpace(req.SpecialRequirements); s != "" {
		line("Special Requirements: %s", s)
	}
	line("")

	line("PACKAGE DETAILS:")
	line("Package: %s", p.Package.Name)
	line("Days per Week: %d", p.Package.Days)
	line("Rate: %s/hour per subject", calculator.FormatCurrency(p.Package.Rate))
	line("Session Duration: %s hours", p.Cost.SessionHours.String())
	line("")

	line("SUBJECTS:")
	for _, s := range p.Cost.PerSubjectCost {
		line("- %s (%d days/week): %s", s.Name, s.DaysPerWeek, calculator.FormatCurrency(s.Cost))
	}
	line("")

	line("COST SUMMARY:")
	line("Weekly Cost: %s", calculator.FormatCurrency(p.Cost.WeeklyCost))
	line("Service Fee: %s", calculator.FormatCurrency(p.Cost.ServiceFee))
	line("First Week Total: %s", calculator.FormatCurrency(p.Cost.FirstWeekCost))
	line("First Week Total (in words): %s", AmountInWords(p.Cost.FirstWeekCost))
	line("")

	line("PAYMENT TERMS:")
	for _, term := range PaymentTerms {
		line("- %s", term)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// num2words spells at most four three-digit groups.
var maxWordsAmount = decimal.NewFromInt(999_999_999_999)

// AmountInWords spells out a whole-shilling amount, e.g. "one thousand shillings".
// Amounts too large to spell are written as grouped digits instead.
func AmountInWords(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	prefix := ""
	if rounded.IsNegative() {
		prefix = "minus "
		rounded = rounded.Neg()
	}
	if rounded.GreaterThan(maxWordsAmount) {
		return prefix + calculator.GroupDigits(rounded.StringFixed(0)) + " shillings"
	}
	return prefix + num2words.Convert(int(rounded.IntPart())) + " shillings"
}
