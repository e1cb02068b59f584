package calculator

import "github.com/shopspring/decimal"

// PackageType identifies a pricing tier.
type PackageType string

const (
	Comprehensive PackageType = "comprehensive"
	Standard      PackageType = "standard"
	Compact       PackageType = "compact"
)

// PackageInfo is the static description of a package.
type PackageInfo struct {
	Type        PackageType
	Name        string
	Days        int
	Rate        decimal.Decimal
	Description string
}

// Subject is one academic subject with its weekly session frequency.
type Subject struct {
	Name        string
	DaysPerWeek int
}

// SubjectCost is the weekly cost of a single subject.
type SubjectCost struct {
	Name        string
	DaysPerWeek int
	Cost        decimal.Decimal
}

// CostBreakdown represents the itemised cost of a package.
// WeeklyCost is always the sum of PerSubjectCost and FirstWeekCost is always
// WeeklyCost plus ServiceFee.
type CostBreakdown struct {
	PackageType    PackageType
	SessionHours   decimal.Decimal
	HourlyRate     decimal.Decimal
	PackageDays    int
	PerSubjectCost []SubjectCost
	DailyCost      decimal.Decimal
	WeeklyCost     decimal.Decimal
	ServiceFee     decimal.Decimal
	FirstWeekCost  decimal.Decimal
}

// ValidationResult holds every policy violation found for a package selection.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Calculator describes the behaviour required from a package calculator.
type Calculator interface {
	CalculateSubjectCost(pkg PackageType, sessionHours decimal.Decimal, daysPerWeek int) (decimal.Decimal, error)
	CalculatePackageCost(pkg PackageType, subjects []Subject, sessionHours decimal.Decimal) (CostBreakdown, error)
	ValidatePackage(subjects []Subject, pkg PackageType) ValidationResult
	PackageDetails(pkg PackageType) (PackageInfo, bool)
	Packages() []PackageInfo
	ServiceFee() decimal.Decimal
}
