package proposal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/tuition-quoter/internal/calculator"
)

// MaxSubjects is the largest number of subjects a single proposal may carry.
const MaxSubjects = 6

// MaxSessionHours caps a single session. A session cannot outlast a day.
var MaxSessionHours = decimal.NewFromInt(24)

const generatedDateLayout = "02/01/2006"

// ErrInvalidProposal is returned when a proposal request fails form or package validation.
var ErrInvalidProposal = errors.New("invalid proposal request")

// ValidationError carries every message collected while validating a request.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid proposal request: %s", strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidProposal
}

// Request is the form data a proposal is generated from.
type Request struct {
	StudentName         string
	GradeLevel          string
	Location            string
	Curriculum          string
	PackageType         calculator.PackageType
	SessionHours        decimal.Decimal
	Subjects            []calculator.Subject
	StartDate           time.Time
	PreferredDays       []string
	SpecialRequirements string
}

// Proposal is a priced, validated tuition proposal ready for rendering.
type Proposal struct {
	ID          string
	Request     Request
	Package     calculator.PackageInfo
	Cost        calculator.CostBreakdown
	GeneratedAt time.Time
}

// GeneratedDate renders the generation date as dd/mm/yyyy.
func (p Proposal) GeneratedDate() string {
	return p.GeneratedAt.Format(generatedDateLayout)
}

// PreferredDaysLabel joins the preferred days or reports "Flexible" when none were chosen.
func (p Proposal) PreferredDaysLabel() string {
	if len(p.Request.PreferredDays) == 0 {
		return "Flexible"
	}
	return strings.Join(p.Request.PreferredDays, ", ")
}

// Builder validates requests and prices them into proposals.
type Builder struct {
	calc  calculator.Calculator
	clock func() time.Time
	newID func() string
}

// Option configures Builder behaviour.
type Option func(*Builder)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(b *Builder) {
		b.clock = clock
	}
}

// WithIDGenerator overrides how proposal references are generated.
func WithIDGenerator(gen func() string) Option {
	return func(b *Builder) {
		b.newID = gen
	}
}

// NewBuilder constructs a Builder around calc.
func NewBuilder(calc calculator.Calculator, opts ...Option) *Builder {
	b := &Builder{
		calc:  calc,
		clock: time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Validate returns every form and package violation of req, in display order.
func (b *Builder) Validate(req Request) []string {
	var errs []string

	required := []struct {
		label string
		value string
	}{
		{"Student Name", req.StudentName},
		{"Grade Level", req.GradeLevel},
		{"Location", req.Location},
		{"Curriculum", req.Curriculum},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, "Please fill in "+field.label)
		}
	}

	if !req.SessionHours.IsPositive() {
		errs = append(errs, "Please select a session duration")
	} else if req.SessionHours.GreaterThan(MaxSessionHours) {
		errs = append(errs, fmt.Sprintf("Session duration cannot exceed %s hours", MaxSessionHours))
	}
	if len(req.Subjects) > MaxSubjects {
		errs = append(errs, fmt.Sprintf("Maximum of %d subjects allowed per package", MaxSubjects))
	}

	result := b.calc.ValidatePackage(req.Subjects, req.PackageType)
	return append(errs, result.Errors...)
}

// Build validates req and prices it. Validation failures are reported as a
// *ValidationError; calculator failures are returned wrapped.
func (b *Builder) Build(req Request) (Proposal, error) {
	if errs := b.Validate(req); len(errs) > 0 {
		return Proposal{}, &ValidationError{Errors: errs}
	}

	info, ok := b.calc.PackageDetails(req.PackageType)
	if !ok {
		return Proposal{}, &calculator.UnknownPackageError{Type: req.PackageType}
	}

	cost, err := b.calc.CalculatePackageCost(req.PackageType, req.Subjects, req.SessionHours)
	if err != nil {
		return Proposal{}, fmt.Errorf("calculate package cost: %w", err)
	}

	now := b.clock()
	req.Subjects = append([]calculator.Subject(nil), req.Subjects...)
	req.PreferredDays = append([]string(nil), req.PreferredDays...)
	if req.StartDate.IsZero() {
		req.StartDate = NextMonday(now)
	}

	return Proposal{
		ID:          b.newID(),
		Request:     req,
		Package:     info,
		Cost:        cost,
		GeneratedAt: now,
	}, nil
}

// NextMonday returns the date of the coming Monday, or today when today is Monday.
func NextMonday(now time.Time) time.Time {
	offset := (int(time.Monday) + 7 - int(now.Weekday())) % 7
	y, m, d := now.Date()
	return time.Date(y, m, d+offset, 0, 0, 0, 0, now.Location())
}
