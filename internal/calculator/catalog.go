package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultServiceFee is the flat fee added once to the first week of every proposal.
var DefaultServiceFee = decimal.NewFromInt(1000)

var defaultPackages = []PackageInfo{
	{
		Type:        Comprehensive,
		Name:        "Comprehensive",
		Days:        5,
		Rate:        decimal.NewFromInt(600),
		Description: "Ideal for intensive curriculum coverage & exam preparation",
	},
	{
		Type:        Standard,
		Name:        "Standard",
		Days:        4,
		Rate:        decimal.NewFromInt(700),
		Description: "Ideal for balanced learning with flexibility",
	},
	{
		Type:        Compact,
		Name:        "Compact",
		Days:        3,
		Rate:        decimal.NewFromInt(800),
		Description: "Ideal for focused subject support",
	},
}

// Catalog is an immutable lookup of package definitions and the service fee.
// The zero value is an empty catalog in which every lookup fails.
type Catalog struct {
	packages   map[PackageType]PackageInfo
	order      []PackageType
	serviceFee decimal.Decimal
}

// NewCatalog validates the definitions and builds a catalog. Packages keep the
// order in which they are passed.
func NewCatalog(serviceFee decimal.Decimal, packages ...PackageInfo) (Catalog, error) {
	if serviceFee.IsNegative() {
		return Catalog{}, fmt.Errorf("%w: service fee must be non-negative, got %s", ErrInvalidCatalog, serviceFee)
	}
	if len(packages) == 0 {
		return Catalog{}, fmt.Errorf("%w: at least one package is required", ErrInvalidCatalog)
	}

	c := Catalog{
		packages:   make(map[PackageType]PackageInfo, len(packages)),
		order:      make([]PackageType, 0, len(packages)),
		serviceFee: serviceFee,
	}
	for _, p := range packages {
		switch {
		case p.Type == "":
			return Catalog{}, fmt.Errorf("%w: package type must not be empty", ErrInvalidCatalog)
		case p.Days < 1:
			return Catalog{}, fmt.Errorf("%w: package %q must allow at least one day per week", ErrInvalidCatalog, p.Type)
		case p.Rate.IsNegative():
			return Catalog{}, fmt.Errorf("%w: package %q has a negative rate", ErrInvalidCatalog, p.Type)
		}
		if _, dup := c.packages[p.Type]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate package %q", ErrInvalidCatalog, p.Type)
		}
		c.packages[p.Type] = p
		c.order = append(c.order, p.Type)
	}
	return c, nil
}

// DefaultCatalog returns the comprehensive, standard and compact packages with
// the default service fee.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(DefaultServiceFee, defaultPackages...)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultPackages returns a copy of the built-in package definitions.
func DefaultPackages() []PackageInfo {
	out := make([]PackageInfo, len(defaultPackages))
	copy(out, defaultPackages)
	return out
}

// Lookup returns the definition of pkg.
func (c Catalog) Lookup(pkg PackageType) (PackageInfo, bool) {
	p, ok := c.packages[pkg]
	return p, ok
}

// Packages lists the definitions in catalog order.
func (c Catalog) Packages() []PackageInfo {
	out := make([]PackageInfo, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.packages[t])
	}
	return out
}

// ServiceFee returns the flat first-week fee.
func (c Catalog) ServiceFee() decimal.Decimal {
	return c.serviceFee
}

// Len reports the number of packages.
func (c Catalog) Len() int {
	return len(c.order)
}
