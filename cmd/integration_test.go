package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const moviesCSV = `name,rating,genre,year,released,score,votes,budget,gross,company
The Shining,R,Drama,1980,"June 13, 1980 (United States)",8.4,927000,19000000.0,46998772.0,Warner Bros.
The Blue Lagoon,R,Adventure,1980,"July 2, 1980 (United States)",5.8,65000,4500000.0,58853106.0,Columbia Pictures
Star Wars: Episode V,PG,Action,1980,"June 20, 1980 (United States)",8.7,1200000,18000000.0,538375067.0,Lucasfilm
Airplane!,PG,Comedy,1980,"July 2, 1980 (United States)",7.7,221000,3500000.0,83453539.0,Paramount Pictures
Caddyshack,R,Comedy,1981,"July 25, 1981 (United States)",7.3,108000,6000000.0,39846344.0,Orion Pictures
Friday the 13th,R,Horror,1980,"May 9, 1980 (United States)",6.4,123000,550000.0,39754601.0,Paramount Pictures
The Final Countdown,PG,Action,1980,,6.7,32000,,,The Bryna Company
`

// resetFlags clears values and Changed state that persist across invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(fl *pflag.Flag) {
			_ = fl.Value.Set(fl.DefValue)
			fl.Changed = false
		})
	}
	reset(c.Flags())
	reset(c.PersistentFlags())
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args and capture stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := tryCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func tryCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeMovies(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "movies.csv")
	if err := os.WriteFile(p, []byte(moviesCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func TestCLI_AnalyzeWritesRunAndReport(t *testing.T) {
	home := isolateHome(t)
	csv := writeMovies(t, home)
	runsDir := filepath.Join(home, "runs")

	out := runCmd(t, "analyze", csv, "--output-dir", runsDir, "--plot-format", "svg", "--format", "markdown")
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"[MISSING DATA]",
		"budget - ",
		"[DTYPES]",
		"[COMPANIES]",
		"[CORRELATION MATRIX (ENCODED)]",
		"[HIGH CORRELATION PAIRS (r > 0.5)]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}

	entries, err := os.ReadDir(runsDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one run dir, got %v (%v)", entries, err)
	}
	runDir := filepath.Join(runsDir, entries[0].Name())
	b, err := os.ReadFile(filepath.Join(runDir, "run.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m struct {
		ID        string   `json:"id"`
		RowsKept  int      `json:"rows_kept"`
		Artifacts []string `json:"artifacts"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if m.RowsKept != 6 || len(m.Artifacts) != 4 {
		t.Fatalf("manifest = %+v", m)
	}
	for _, a := range m.Artifacts {
		if filepath.Ext(a) != ".svg" {
			t.Fatalf("artifact %s is not svg", a)
		}
		if _, err := os.Stat(a); err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
	}

	list := runCmd(t, "runs", "list", "--dir", runsDir)
	if !strings.Contains(list, m.ID[:8]) {
		t.Fatalf("runs list missing %s:\n%s", m.ID[:8], list)
	}
	show := runCmd(t, "runs", "show", m.ID[:8], "--dir", runsDir)
	if !strings.Contains(show, m.ID) {
		t.Fatalf("runs show output:\n%s", show)
	}
}

func TestCLI_AnalyzeNoPlotsToFile(t *testing.T) {
	home := isolateHome(t)
	csv := writeMovies(t, home)
	dest := filepath.Join(home, "report.md")

	runCmd(t, "analyze", csv, "--plots=false", "-o", dest, "--threshold", "0.9", "--dedupe")
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "[HIGH CORRELATION PAIRS (r > 0.9)]") {
		t.Fatalf("report:\n%s", b)
	}
	if _, err := os.Stat(filepath.Join(home, ".filmcorr", "runs")); !os.IsNotExist(err) {
		t.Fatalf("no run dir expected when plots are off")
	}
}

func TestCLI_RunsListShortID(t *testing.T) {
	home := isolateHome(t)
	runsDir := filepath.Join(home, "runs")
	dir := filepath.Join(runsDir, "abc")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run.json"), []byte(`{"id":"abc","command":"analyze"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	out := runCmd(t, "runs", "list", "--dir", runsDir)
	if !strings.Contains(out, "abc") {
		t.Fatalf("runs list:\n%s", out)
	}
}

func TestCLI_CorrEncode(t *testing.T) {
	home := isolateHome(t)
	csv := writeMovies(t, home)

	out := runCmd(t, "corr", csv, "--plots=false", "--encode", "--format", "markdown")
	if !strings.Contains(out, "[CORRELATION MATRIX (ENCODED)]") {
		t.Fatalf("corr output:\n%s", out)
	}
	if strings.Contains(out, "[COMPANIES]") {
		t.Fatalf("corr should not run the cleaning steps")
	}
}

func TestCLI_AnalyzeErrors(t *testing.T) {
	home := isolateHome(t)

	if _, err := tryCmd("analyze", filepath.Join(home, "missing.csv"), "--plots=false"); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(bad, []byte("name,budget\nA,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := tryCmd("analyze", bad, "--plots=false")
	if err == nil || !strings.Contains(err.Error(), `column "gross" not found`) {
		t.Fatalf("err = %v", err)
	}
	csv := writeMovies(t, home)
	if _, err := tryCmd("analyze", csv, "--plots=false", "--row-policy", "impute"); err == nil {
		t.Fatalf("expected invalid row policy error")
	}
	if _, err := tryCmd("analyze", csv, "--threshold", "NaN"); err == nil || !strings.Contains(err.Error(), "--threshold") {
		t.Fatalf("expected NaN threshold error, got %v", err)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolateHome(t)
	cfgPath := filepath.Join(home, "filmcorr.yaml")

	runCmd(t, "--config", cfgPath, "config", "set", "threshold", "0.65")
	runCmd(t, "--config", cfgPath, "config", "set", "row_policy", "skip")
	out := runCmd(t, "--config", cfgPath, "config", "show")
	if !strings.Contains(out, "threshold: 0.650") || !strings.Contains(out, "row_policy: skip") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, err := tryCmd("--config", cfgPath, "config", "set", "plot_format", "gif"); err == nil {
		t.Fatalf("expected invalid plot_format error")
	}
}
