package api

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/tuition-quoter/internal/calculator"
	"github.com/eugenenazirov/tuition-quoter/internal/proposal"
)

const dateLayout = "2006-01-02"

type subjectPayload struct {
	Name        string `json:"name"`
	DaysPerWeek int    `json:"daysPerWeek"`
}

type validateRequest struct {
	PackageType string           `json:"packageType"`
	Subjects    []subjectPayload `json:"subjects"`
}

type quoteRequest struct {
	PackageType  string           `json:"packageType"`
	SessionHours decimal.Decimal  `json:"sessionHours"`
	Subjects     []subjectPayload `json:"subjects"`
}

type proposalRequest struct {
	StudentName         string           `json:"studentName"`
	GradeLevel          string           `json:"gradeLevel"`
	Location            string           `json:"location"`
	Curriculum          string           `json:"curriculum"`
	PackageType         string           `json:"packageType"`
	SessionHours        decimal.Decimal  `json:"sessionHours"`
	Subjects            []subjectPayload `json:"subjects"`
	StartDate           string           `json:"startDate,omitempty"`
	PreferredDays       []string         `json:"preferredDays,omitempty"`
	SpecialRequirements string           `json:"specialRequirements,omitempty"`
}

func (r proposalRequest) toDomain() (proposal.Request, error) {
	req := proposal.Request{
		StudentName:         strings.TrimSpace(r.StudentName),
		GradeLevel:          strings.TrimSpace(r.GradeLevel),
		Location:            strings.TrimSpace(r.Location),
		Curriculum:          strings.TrimSpace(r.Curriculum),
		PackageType:         calculator.PackageType(r.PackageType),
		SessionHours:        r.SessionHours,
		Subjects:            toSubjects(r.Subjects),
		PreferredDays:       r.PreferredDays,
		SpecialRequirements: strings.TrimSpace(r.SpecialRequirements),
	}
	if start := strings.TrimSpace(r.StartDate); start != "" {
		date, err := time.Parse(dateLayout, start)
		if err != nil {
			return proposal.Request{}, errors.New("startDate must be formatted as YYYY-MM-DD")
		}
		req.StartDate = date
	}
	return req, nil
}

func toSubjects(payload []subjectPayload) []calculator.Subject {
	subjects := make([]calculator.Subject, 0, len(payload))
	for _, s := range payload {
		subjects = append(subjects, calculator.Subject{
			Name:        strings.TrimSpace(s.Name),
			DaysPerWeek: s.DaysPerWeek,
		})
	}
	return subjects
}

// money pairs an exact amount with its display form.
type money struct {
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

func newMoney(amount decimal.Decimal) money {
	return money{Amount: amount, Formatted: calculator.FormatCurrency(amount)}
}

type packageResponse struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Days        int    `json:"days"`
	Rate        money  `json:"rate"`
	Description string `json:"description"`
}

func newPackageResponse(p calculator.PackageInfo) packageResponse {
	return packageResponse{
		Type:        string(p.Type),
		Name:        p.Name,
		Days:        p.Days,
		Rate:        newMoney(p.Rate),
		Description: p.Description,
	}
}

type packagesResponse struct {
	Packages   []packageResponse `json:"packages"`
	ServiceFee money             `json:"serviceFee"`
}

type knownSubjectResponse struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type subjectsResponse struct {
	Subjects []knownSubjectResponse `json:"subjects"`
}

type validationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func newValidationResponse(result calculator.ValidationResult) validationResponse {
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	return validationResponse{Valid: result.Valid, Errors: errs}
}

type subjectCostResponse struct {
	Name        string `json:"name"`
	DaysPerWeek int    `json:"daysPerWeek"`
	Cost        money  `json:"cost"`
}

type breakdownResponse struct {
	PackageType    string                `json:"packageType"`
	SessionHours   decimal.Decimal       `json:"sessionHours"`
	HourlyRate     money                 `json:"hourlyRate"`
	PackageDays    int                   `json:"packageDays"`
	PerSubjectCost []subjectCostResponse `json:"perSubjectCost"`
	DailyCost      money                 `json:"dailyCost"`
	WeeklyCost     money                 `json:"weeklyCost"`
	ServiceFee     money                 `json:"serviceFee"`
	FirstWeekCost  money                 `json:"firstWeekCost"`
}

func newBreakdownResponse(b calculator.CostBreakdown) breakdownResponse {
	subjects := make([]subjectCostResponse, 0, len(b.PerSubjectCost))
	for _, s := range b.PerSubjectCost {
		subjects = append(subjects, subjectCostResponse{
			Name:        s.Name,
			DaysPerWeek: s.DaysPerWeek,
			Cost:        newMoney(s.Cost),
		})
	}
	return breakdownResponse{
		PackageType:    string(b.PackageType),
		SessionHours:   b.SessionHours,
		HourlyRate:     newMoney(b.HourlyRate),
		PackageDays:    b.PackageDays,
		PerSubjectCost: subjects,
		DailyCost:      newMoney(b.DailyCost),
		WeeklyCost:     newMoney(b.WeeklyCost),
		ServiceFee:     newMoney(b.ServiceFee),
		FirstWeekCost:  newMoney(b.FirstWeekCost),
	}
}

type quoteResponse struct {
	Validation validationResponse `json:"validation"`
	Breakdown  breakdownResponse  `json:"breakdown"`
}

type studentResponse struct {
	Name       string `json:"name"`
	GradeLevel string `json:"gradeLevel"`
	Location   string `json:"location"`
	Curriculum string `json:"curriculum"`
}

type proposalResponse struct {
	ID                  string            `json:"id"`
	GeneratedAt         time.Time         `json:"generatedAt"`
	GeneratedDate       string            `json:"generatedDate"`
	Student             studentResponse   `json:"student"`
	Package             packageResponse   `json:"package"`
	StartDate           string            `json:"startDate"`
	PreferredDays       string            `json:"preferredDays"`
	SpecialRequirements string            `json:"specialRequirements,omitempty"`
	Cost                breakdownResponse `json:"cost"`
	TotalInWords        string            `json:"totalInWords"`
}

func newProposalResponse(p proposal.Proposal) proposalResponse {
	return proposalResponse{
		ID:            p.ID,
		GeneratedAt:   p.GeneratedAt,
		GeneratedDate: p.GeneratedDate(),
		Student: studentResponse{
			Name:       p.Request.StudentName,
			GradeLevel: p.Request.GradeLevel,
			Location:   p.Request.Location,
			Curriculum: p.Request.Curriculum,
		},
		Package:             newPackageResponse(p.Package),
		StartDate:           p.Request.StartDate.Format(dateLayout),
		PreferredDays:       p.PreferredDaysLabel(),
		SpecialRequirements: p.Request.SpecialRequirements,
		Cost:                newBreakdownResponse(p.Cost),
		TotalInWords:        proposal.AmountInWords(p.Cost.FirstWeekCost),
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string   `json:"error"`
	Details    string   `json:"details,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}
