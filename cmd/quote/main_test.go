package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eugenenazirov/tuition-quoter/internal/proposal"
)

// Thursday
func fixedNow() time.Time { return time.Date(2024, 11, 7, 9, 0, 0, 0, time.UTC) }

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "CATALOG_DB", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}
}

func proposalArgs(extra ...string) []string {
	args := []string{
		"proposal",
		"--package", "standard",
		"--hours", "1.5",
		"--subject", "mathematics:4",
		"--subject", "english:3",
		"--student", "Amani Otieno",
		"--grade", "Grade 7",
		"--location", "Nairobi",
		"--curriculum", "CBC",
	}
	return append(args, extra...)
}

func TestRunWritesTextProposal(t *testing.T) {
	clearEnv(t)

	var out bytes.Buffer
	if err := run(proposalArgs(), &out, fixedNow); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		proposal.Letterhead,
		"Name: Amani Otieno",
		"Start Date: 2024-11-11",
		"Weekly Cost: Ksh\u00a07,350",
		"First Week Total: Ksh\u00a08,350",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected output to contain %q:\n%s", want, text)
		}
	}
}

func TestRunWritesJSON(t *testing.T) {
	clearEnv(t)

	var out bytes.Buffer
	if err := run(proposalArgs("--format", "json", "--start", "2025-01-06", "--preferred-day", "Monday"), &out, fixedNow); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	var body struct {
		StartDate     string `json:"startDate"`
		PreferredDays string `json:"preferredDays"`
		FirstWeekCost string `json:"firstWeekCost"`
		Subjects      []struct {
			Name string `json:"name"`
			Cost string `json:"cost"`
		} `json:"subjects"`
	}
	if err := json.Unmarshal(out.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if body.StartDate != "2025-01-06" || body.PreferredDays != "Monday" {
		t.Fatalf("unexpected schedule: %+v", body)
	}
	if body.FirstWeekCost != "8350" || len(body.Subjects) != 2 || body.Subjects[0].Cost != "4200" {
		t.Fatalf("unexpected costs: %+v", body)
	}
}

func TestRunWritesXLSXFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "proposal.xlsx")
	var out bytes.Buffer
	if err := run(proposalArgs("--format", "xlsx", "--out", path), &out, fixedNow); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected nothing on stdout when --out is set")
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	if got := f.GetSheetList(); len(got) != 1 || got[0] != proposal.SheetName {
		t.Fatalf("unexpected sheets: %v", got)
	}
}

type failingCloser struct {
	bytes.Buffer
	err error
}

func (f *failingCloser) Close() error { return f.err }

func TestRunReportsOutputCloseError(t *testing.T) {
	clearEnv(t)

	errDiskFull := errors.New("disk full")
	sink := &failingCloser{err: errDiskFull}
	t.Cleanup(func() {
		createOutput = func(path string) (io.WriteCloser, error) { return os.Create(path) }
	})
	createOutput = func(string) (io.WriteCloser, error) { return sink, nil }

	var out bytes.Buffer
	err := run(proposalArgs("--out", "proposal.txt"), &out, fixedNow)
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected close error to be returned, got %v", err)
	}
	if !strings.Contains(sink.String(), "Amani Otieno") {
		t.Fatalf("expected proposal to be written before close:\n%s", sink.String())
	}
}

func TestRunReportsValidationErrors(t *testing.T) {
	clearEnv(t)

	var out bytes.Buffer
	err := run([]string{"proposal", "--package", "compact", "--subject", "physics:5"}, &out, fixedNow)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"Please fill in Student Name", "Physics: Days per week (5) exceeds package maximum (3)"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error, got %v", want, err)
		}
	}
}

func TestRunRejectsBadArguments(t *testing.T) {
	clearEnv(t)

	tests := map[string][]string{
		"bad hours":   proposalArgs("--hours", "soon"),
		"bad subject": proposalArgs("--subject", "physics"),
		"bad start":   proposalArgs("--start", "11/11/2024"),
		"bad format":  proposalArgs("--format", "pdf"),
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if err := run(args, &bytes.Buffer{}, fixedNow); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestRunListsPackagesFromConfig(t *testing.T) {
	clearEnv(t)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	body := "service_fee: 500\npackages:\n  - type: weekend\n    name: Weekend\n    days: 2\n    rate: \"950\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	if err := run([]string{"--config", cfgPath, "packages"}, &out, fixedNow); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "weekend") || !strings.Contains(text, "Ksh\u00a0950") {
		t.Fatalf("expected configured package in listing:\n%s", text)
	}
	if !strings.Contains(text, "Service fee: Ksh\u00a0500") {
		t.Fatalf("expected configured service fee:\n%s", text)
	}
}

func TestRunUsesCatalogDatabase(t *testing.T) {
	clearEnv(t)

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	var out bytes.Buffer
	if err := run([]string{"--catalog-db", dbPath, "packages"}, &out, fixedNow); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected catalog database to be created: %v", err)
	}
	if !strings.Contains(out.String(), "comprehensive") {
		t.Fatalf("expected seeded default packages:\n%s", out.String())
	}
}
