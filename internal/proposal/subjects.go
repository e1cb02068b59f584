package proposal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/eugenenazirov/tuition-quoter/internal/calculator"
)

// ErrInvalidSubjectFormat is returned when a "name:days" subject cannot be parsed.
var ErrInvalidSubjectFormat = errors.New("subject must be formatted as name:days")

// KnownSubject is a subject offered on the proposal form.
type KnownSubject struct {
	Key  string
	Name string
}

var knownSubjects = []KnownSubject{
	{Key: "mathematics", Name: "Mathematics"},
	{Key: "english", Name: "English"},
	{Key: "kiswahili", Name: "Kiswahili"},
	{Key: "science", Name: "Science"},
	{Key: "chemistry", Name: "Chemistry"},
	{Key: "biology", Name: "Biology"},
	{Key: "physics", Name: "Physics"},
	{Key: "history", Name: "History"},
	{Key: "geography", Name: "Geography"},
	{Key: "social_studies", Name: "Social Studies"},
	{Key: "french", Name: "French"},
	{Key: "ire", Name: "IRE"},
	{Key: "home_science", Name: "Home Science"},
	{Key: "agriculture", Name: "Agriculture"},
}

// KnownSubjects returns a copy of the subjects offered on the form.
func KnownSubjects() []KnownSubject {
	out := make([]KnownSubject, len(knownSubjects))
	copy(out, knownSubjects)
	return out
}

// SubjectName resolves a form key such as "social_studies" to its display name.
// Keys match under Unicode case folding.
func SubjectName(key string) (string, bool) {
	normalized := strings.ReplaceAll(cases.Fold().String(strings.TrimSpace(key)), " ", "_")
	for _, s := range knownSubjects {
		if s.Key == normalized {
			return s.Name, true
		}
	}
	return "", false
}

// ParseSubjects parses "name:days" entries. Known subject keys are replaced by
// their display names; other names are kept verbatim. Days are not range
// checked here, that is the calculator's job.
func ParseSubjects(raw []string) ([]calculator.Subject, error) {
	subjects := make([]calculator.Subject, 0, len(raw))
	for _, entry := range raw {
		idx := strings.LastIndex(entry, ":")
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSubjectFormat, entry)
		}
		name := strings.TrimSpace(entry[:idx])
		if name == "" {
			return nil, fmt.Errorf("%w: %q has no name", ErrInvalidSubjectFormat, entry)
		}
		days, err := strconv.Atoi(strings.TrimSpace(entry[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("%w: %q has invalid days", ErrInvalidSubjectFormat, entry)
		}
		if display, ok := SubjectName(name); ok {
			name = display
		}
		subjects = append(subjects, calculator.Subject{Name: name, DaysPerWeek: days})
	}
	return subjects, nil
}
