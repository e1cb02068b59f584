package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	msgSubjectsRequired    = "At least one subject is required."
	msgPackageTypeRequired = "Package type is required."
)

type packageCalculator struct {
	catalog Catalog
}

// New creates a Calculator backed by the given catalog.
func New(catalog Catalog) Calculator {
	return &packageCalculator{catalog: catalog}
}

// NewDefault creates a Calculator over DefaultCatalog.
func NewDefault() Calculator {
	return New(DefaultCatalog())
}

func (c *packageCalculator) CalculateSubjectCost(pkg PackageType, sessionHours decimal.Decimal, daysPerWeek int) (decimal.Decimal, error) {
	info, err := c.lookup(pkg)
	if err != nil {
		return decimal.Zero, err
	}
	if sessionHours.IsNegative() {
		return decimal.Zero, ErrInvalidSessionHours
	}
	if daysPerWeek < 0 {
		return decimal.Zero, ErrInvalidDaysPerWeek
	}
	return subjectCost(info.Rate, sessionHours, daysPerWeek), nil
}

func (c *packageCalculator) CalculatePackageCost(pkg PackageType, subjects []Subject, sessionHours decimal.Decimal) (CostBreakdown, error) {
	info, err := c.lookup(pkg)
	if err != nil {
		return CostBreakdown{}, err
	}
	if sessionHours.IsNegative() {
		return CostBreakdown{}, ErrInvalidSessionHours
	}

	dailyRate := info.Rate.Mul(sessionHours)
	perSubject := make([]SubjectCost, 0, len(subjects))
	daily := decimal.Zero
	weekly := decimal.Zero

	for _, s := range subjects {
		if s.DaysPerWeek < 0 {
			return CostBreakdown{}, fmt.Errorf("%s: %w", s.Name, ErrInvalidDaysPerWeek)
		}
		cost := subjectCost(info.Rate, sessionHours, s.DaysPerWeek)
		perSubject = append(perSubject, SubjectCost{
			Name:        s.Name,
			DaysPerWeek: s.DaysPerWeek,
			Cost:        cost,
		})
		daily = daily.Add(dailyRate)
		weekly = weekly.Add(cost)
	}

	fee := c.catalog.ServiceFee()
	return CostBreakdown{
		PackageType:    pkg,
		SessionHours:   sessionHours,
		HourlyRate:     info.Rate,
		PackageDays:    info.Days,
		PerSubjectCost: perSubject,
		DailyCost:      daily,
		WeeklyCost:     weekly,
		ServiceFee:     fee,
		FirstWeekCost:  weekly.Add(fee),
	}, nil
}

// ValidatePackage collects every policy violation instead of stopping at the
// first one. Max-day checks only run when the package type resolves.
func (c *packageCalculator) ValidatePackage(subjects []Subject, pkg PackageType) ValidationResult {
	var errs []string

	if len(subjects) == 0 {
		errs = append(errs, msgSubjectsRequired)
	}

	var (
		info  PackageInfo
		known bool
	)
	switch {
	case strings.TrimSpace(string(pkg)) == "":
		errs = append(errs, msgPackageTypeRequired)
	default:
		info, known = c.catalog.Lookup(pkg)
		if !known {
			errs = append(errs, fmt.Sprintf("Package type %q is not recognized.", string(pkg)))
		}
	}

	for i, s := range subjects {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Sprintf("Subject %d: name is required.", i+1))
		}
		if s.DaysPerWeek < 1 {
			errs = append(errs, fmt.Sprintf("%s: Days per week (%d) must be at least 1", s.Name, s.DaysPerWeek))
			continue
		}
		if known && s.DaysPerWeek > info.Days {
			errs = append(errs, fmt.Sprintf("%s: Days per week (%d) exceeds package maximum (%d)", s.Name, s.DaysPerWeek, info.Days))
		}
	}

	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func (c *packageCalculator) PackageDetails(pkg PackageType) (PackageInfo, bool) {
	return c.catalog.Lookup(pkg)
}

func (c *packageCalculator) Packages() []PackageInfo {
	return c.catalog.Packages()
}

func (c *packageCalculator) ServiceFee() decimal.Decimal {
	return c.catalog.ServiceFee()
}

func (c *packageCalculator) lookup(pkg PackageType) (PackageInfo, error) {
	info, ok := c.catalog.Lookup(pkg)
	if !ok {
		return PackageInfo{}, &UnknownPackageError{Type: pkg}
	}
	return info, nil
}

func subjectCost(rate, sessionHours decimal.Decimal, daysPerWeek int) decimal.Decimal {
	return rate.Mul(sessionHours).Mul(decimal.NewFromInt(int64(daysPerWeek)))
}
