// Package report renders the post-run QA report as markdown. The report
// mirrors the checks a reviewer would otherwise run by hand against the
// output files: row accounting, conflict counts, and the optional
// per-identifier trace.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	md "github.com/nao1215/markdown"

	"github.com/faxhealth/carebook/pkg/errors"
	"github.com/faxhealth/carebook/pkg/reconciler"
)

// Files lists the output paths the report links to.
type Files struct {
	Clean         string
	Rejects       string
	Quarantine    string
	Audit         string
	DroppedNoGeo  int
	LoadedRows    int
	AccentsFolded bool
}

// Write renders the QA report for one reconciliation pass.
func Write(w io.Writer, result *reconciler.Result, files Files) error {
	stats := result.Metadata.Stats

	doc := md.NewMarkdown(w).
		H1("Establishment Cleaning QA Report").
		LF().
		PlainTextf("Run `%s`, completed %s in %s.",
			result.RunID,
			result.Metadata.EndTime.Format("2006-01-02 15:04:05 MST"),
			result.Metadata.Duration.String()).
		LF()

	doc.H2("Row Accounting").
		LF().
		Table(md.TableSet{
			Header: []string{"Measure", "Count"},
			Rows: [][]string{
				{"Rows loaded", strconv.Itoa(files.LoadedRows)},
				{"Dropped (no coordinates)", strconv.Itoa(files.DroppedNoGeo)},
				{"Rows into reconciliation", strconv.Itoa(stats.InputRows)},
				{"Missing identifier (rejected)", strconv.Itoa(stats.MissingIdentifier)},
				{"Identifier groups", strconv.Itoa(stats.IdentifierGroups)},
				{"Singleton groups", strconv.Itoa(stats.Singletons)},
				{"Merged groups", strconv.Itoa(stats.MergedGroups)},
				{"Quarantined groups", strconv.Itoa(stats.QuarantinedGroups)},
				{"Clean records", strconv.Itoa(len(result.Clean))},
				{"Quarantined rows", strconv.Itoa(len(result.Quarantine))},
			},
		}).
		LF()

	doc.H2("Quality Checks").
		LF().
		BulletList(qualityChecks(result, files)...).
		LF()

	if result.Trace != nil {
		writeTrace(doc, result.Trace)
	}

	doc.H2("Output Files").
		LF().
		BulletList(
			fmt.Sprintf("Clean dataset: `%s`", files.Clean),
			fmt.Sprintf("Rejects (missing identifier): `%s`", files.Rejects),
			fmt.Sprintf("Quarantine (conflicting addresses): `%s`", files.Quarantine),
			fmt.Sprintf("Merge audit trail: `%s`", files.Audit),
		).
		LF()

	return doc.Build()
}

// WriteFile renders the QA report to a file.
func WriteFile(path string, result *reconciler.Result, files Files) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer file.Close()

	if err := Write(file, result, files); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func qualityChecks(result *reconciler.Result, files Files) []string {
	stats := result.Metadata.Stats

	checks := []string{
		checkLine(len(result.Clean) == stats.IdentifierGroups,
			fmt.Sprintf("one clean record per identifier group (%d records, %d groups)",
				len(result.Clean), stats.IdentifierGroups)),
		checkLine(stats.MissingIdentifier == len(result.Rejects),
			fmt.Sprintf("every row without an identifier was rejected (%d)", len(result.Rejects))),
	}

	conflicting := 0
	for _, entry := range result.Audit {
		if entry.Status == reconciler.StatusKeptFirstQuarantinedOthers {
			conflicting++
		}
	}
	checks = append(checks, checkLine(conflicting == stats.QuarantinedGroups,
		fmt.Sprintf("audit trail agrees with quarantine count (%d conflicting groups)", conflicting)))

	if files.AccentsFolded {
		checks = append(checks, "address comparison keys were accent-folded before grouping")
	}
	return checks
}

func checkLine(ok bool, text string) string {
	if ok {
		return "PASS: " + text
	}
	return "FAIL: " + text
}

func writeTrace(doc *md.Markdown, trace *reconciler.GroupTrace) {
	doc.H2(fmt.Sprintf("Trace for identifier %s", trace.ID)).
		LF().
		PlainTextf("%d source rows, %d distinct normalized addresses, resolved as `%s`.",
			trace.RowCount, len(trace.AddressKeys), trace.Status).
		LF()

	rows := make([][]string, 0, len(trace.Rows))
	for _, row := range trace.Rows {
		rows = append(rows, []string{row.BillingCode, row.Address, row.AddressKey})
	}
	doc.Table(md.TableSet{
		Header: []string{"Billing Code", "Address", "Normalized Key"},
		Rows:   rows,
	}).
		LF().
		PlainTextf("Kept billing code `%s` at address `%s`.", trace.KeptBillingCode, trace.KeptAddress).
		LF()
}
