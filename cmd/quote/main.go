package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eugenenazirov/tuition-quoter/internal/application"
	"github.com/eugenenazirov/tuition-quoter/internal/calculator"
	"github.com/eugenenazirov/tuition-quoter/internal/config"
	"github.com/eugenenazirov/tuition-quoter/internal/logging"
	"github.com/eugenenazirov/tuition-quoter/internal/proposal"
)

const dateLayout = "2006-01-02"

func main() {
	if err := run(os.Args[1:], os.Stdout, time.Now); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configFile string
	catalogDB  string
	verbose    bool

	packageType   string
	hours         string
	subjects      []string
	student       string
	grade         string
	location      string
	curriculum    string
	start         string
	preferredDays []string
	notes         string
	format        string
	out           string
}

func run(args []string, stdout io.Writer, now func() time.Time) error {
	var opts options

	app := kingpin.New("tuition-quote", "Prices a tuition package and renders the proposal")
	app.UsageWriter(stdout)
	app.Flag("config", "Path to YAML configuration file").StringVar(&opts.configFile)
	app.Flag("catalog-db", "Path to the SQLite package catalog").StringVar(&opts.catalogDB)
	app.Flag("verbose", "Log informational messages").Short('v').BoolVar(&opts.verbose)

	packagesCmd := app.Command("packages", "List available packages")

	proposalCmd := app.Command("proposal", "Generate a proposal").Default()
	proposalCmd.Flag("package", "Package type").Default(string(calculator.Standard)).StringVar(&opts.packageType)
	proposalCmd.Flag("hours", "Session duration in hours").Default("1").StringVar(&opts.hours)
	proposalCmd.Flag("subject", "Subject as name:days (repeatable)").StringsVar(&opts.subjects)
	proposalCmd.Flag("student", "Student name").StringVar(&opts.student)
	proposalCmd.Flag("grade", "Grade level").StringVar(&opts.grade)
	proposalCmd.Flag("location", "Location").StringVar(&opts.location)
	proposalCmd.Flag("curriculum", "Curriculum").StringVar(&opts.curriculum)
	proposalCmd.Flag("start", "Start date (YYYY-MM-DD), defaults to the coming Monday").StringVar(&opts.start)
	proposalCmd.Flag("preferred-day", "Preferred day (repeatable)").StringsVar(&opts.preferredDays)
	proposalCmd.Flag("notes", "Special requirements").StringVar(&opts.notes)
	proposalCmd.Flag("format", "Output format").Default("text").EnumVar(&opts.format, "text", "xlsx", "json")
	proposalCmd.Flag("out", "Output file (defaults to stdout)").StringVar(&opts.out)

	command, err := app.Parse(args)
	if err != nil {
		return err
	}

	level := zapcore.WarnLevel
	if opts.verbose {
		level = zapcore.InfoLevel
	}
	logger, err := logging.New(logging.WithLevel(level), logging.WithConsoleEncoding())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	calc, err := loadCalculator(opts, logger)
	if err != nil {
		return err
	}

	switch command {
	case packagesCmd.FullCommand():
		return listPackages(stdout, calc)
	default:
		return writeProposal(stdout, opts, calc, now, logger)
	}
}

func loadCalculator(opts options, logger *zap.Logger) (calculator.Calculator, error) {
	overrides := &config.CLIOverrides{ConfigFile: opts.configFile}
	if opts.catalogDB != "" {
		overrides.CatalogDB = &opts.catalogDB
	}
	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	seed, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	store, err := application.OpenStorage(ctx, cfg.CatalogDB, seed)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	if cfg.CatalogOverride {
		if err := application.ApplyConfiguredCatalog(ctx, store, seed, logger); err != nil {
			return nil, err
		}
	}

	catalog, err := store.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load package catalog: %w", err)
	}
	logger.Info("package catalog loaded", zap.Int("packages", catalog.Len()))

	return calculator.New(catalog), nil
}

func listPackages(w io.Writer, calc calculator.Calculator) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tNAME\tDAYS\tRATE/HOUR\tDESCRIPTION")
	for _, p := range calc.Packages() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", p.Type, p.Name, p.Days, calculator.FormatCurrency(p.Rate), p.Description)
	}
	fmt.Fprintf(tw, "\nService fee: %s\n", calculator.FormatCurrency(calc.ServiceFee()))
	return tw.Flush()
}

var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func writeProposal(stdout io.Writer, opts options, calc calculator.Calculator, now func() time.Time, logger *zap.Logger) (err error) {
	req, err := buildRequest(opts)
	if err != nil {
		return err
	}

	builder := proposal.NewBuilder(calc, proposal.WithClock(now))
	p, err := builder.Build(req)
	if err != nil {
		var verr *proposal.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("proposal is invalid:\n  - %s", strings.Join(verr.Errors, "\n  - "))
		}
		return err
	}

	w := stdout
	if opts.out != "" && opts.out != "-" {
		f, createErr := createOutput(opts.out)
		if createErr != nil {
			return fmt.Errorf("create output file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output file: %w", cerr)
			}
		}()
		w = f
	}

	switch opts.format {
	case "xlsx":
		err = proposal.WriteXLSX(w, p)
	case "json":
		err = writeJSON(w, p)
	default:
		err = proposal.WriteText(w, p)
	}
	if err != nil {
		return fmt.Errorf("write proposal: %w", err)
	}

	logger.Info("proposal generated",
		zap.String("id", p.ID),
		zap.String("format", opts.format),
		zap.String("first_week_cost", p.Cost.FirstWeekCost.String()),
	)
	return nil
}

func buildRequest(opts options) (proposal.Request, error) {
	hours, err := decimal.NewFromString(strings.TrimSpace(opts.hours))
	if err != nil {
		return proposal.Request{}, fmt.Errorf("invalid --hours %q: %w", opts.hours, err)
	}

	subjects, err := proposal.ParseSubjects(opts.subjects)
	if err != nil {
		return proposal.Request{}, err
	}

	req := proposal.Request{
		StudentName:         opts.student,
		GradeLevel:          opts.grade,
		Location:            opts.location,
		Curriculum:          opts.curriculum,
		PackageType:         calculator.PackageType(strings.ToLower(strings.TrimSpace(opts.packageType))),
		SessionHours:        hours,
		Subjects:            subjects,
		PreferredDays:       opts.preferredDays,
		SpecialRequirements: opts.notes,
	}
	if opts.start != "" {
		start, err := time.Parse(dateLayout, opts.start)
		if err != nil {
			return proposal.Request{}, fmt.Errorf("invalid --start %q: expected YYYY-MM-DD", opts.start)
		}
		req.StartDate = start
	}
	return req, nil
}

type jsonSubject struct {
	Name        string          `json:"name"`
	DaysPerWeek int             `json:"daysPerWeek"`
	Cost        decimal.Decimal `json:"cost"`
}

type jsonProposal struct {
	ID            string          `json:"id"`
	GeneratedDate string          `json:"generatedDate"`
	Student       string          `json:"student"`
	GradeLevel    string          `json:"gradeLevel"`
	Location      string          `json:"location"`
	Curriculum    string          `json:"curriculum"`
	Package       string          `json:"package"`
	SessionHours  decimal.Decimal `json:"sessionHours"`
	StartDate     string          `json:"startDate"`
	PreferredDays string          `json:"preferredDays"`
	Subjects      []jsonSubject   `json:"subjects"`
	WeeklyCost    decimal.Decimal `json:"weeklyCost"`
	ServiceFee    decimal.Decimal `json:"serviceFee"`
	FirstWeekCost decimal.Decimal `json:"firstWeekCost"`
	TotalInWords  string          `json:"totalInWords"`
}

func writeJSON(w io.Writer, p proposal.Proposal) error {
	subjects := make([]jsonSubject, 0, len(p.Cost.PerSubjectCost))
	for _, s := range p.Cost.PerSubjectCost {
		subjects = append(subjects, jsonSubject{Name: s.Name, DaysPerWeek: s.DaysPerWeek, Cost: s.Cost})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonProposal{
		ID:            p.ID,
		GeneratedDate: p.GeneratedDate(),
		Student:       p.Request.StudentName,
		GradeLevel:    p.Request.GradeLevel,
		Location:      p.Request.Location,
		Curriculum:    p.Request.Curriculum,
		Package:       p.Package.Name,
		SessionHours:  p.Cost.SessionHours,
		StartDate:     p.Request.StartDate.Format(dateLayout),
		PreferredDays: p.PreferredDaysLabel(),
		Subjects:      subjects,
		WeeklyCost:    p.Cost.WeeklyCost,
		ServiceFee:    p.Cost.ServiceFee,
		FirstWeekCost: p.Cost.FirstWeekCost,
		TotalInWords:  proposal.AmountInWords(p.Cost.FirstWeekCost),
	})
}
