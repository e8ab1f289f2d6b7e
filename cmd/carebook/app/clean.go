package app

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/faxhealth/carebook/internal/auditdb"
	"github.com/faxhealth/carebook/internal/report"
	"github.com/faxhealth/carebook/internal/tabular"
	"github.com/faxhealth/carebook/pkg/logging"
	"github.com/faxhealth/carebook/pkg/normalize"
	"github.com/faxhealth/carebook/pkg/reconciler"
)

// cleanOptions carries the clean command's flag values.
type cleanOptions struct {
	Input       string
	OutputDir   string
	Mapping     string
	AuditDB     string
	TraceID     string
	FoldAccents bool
	KeywordEN   string
	KeywordFR   string
	NoReport    bool
}

// outputPaths are the files one clean pass produces, all derived from
// the input base name.
type outputPaths struct {
	Clean      string
	Rejects    string
	Quarantine string
	Audit      string
	Report     string
}

// CreateCleanCommand creates the clean command.
func (a *App) CreateCleanCommand() *cobra.Command {
	opts := cleanOptions{
		KeywordEN: reconciler.DefaultKeywordEN,
		KeywordFR: reconciler.DefaultKeywordFR,
	}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Reconcile an establishment extract into clean output datasets",
		Long: `Clean loads an establishment extract, groups rows by their place
identifier, merges groups that agree on address, quarantines groups
that do not, and writes the clean dataset alongside rejects, the
quarantine file, the merge audit trail, and a QA report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runClean(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "input CSV file (required)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "d", ".", "directory for output files")
	cmd.Flags().StringVar(&opts.Mapping, "mapping", "", "YAML file overriding the source-to-target column mapping")
	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "SQLite database to additionally record the audit trail in")
	cmd.Flags().StringVar(&opts.TraceID, "trace-id", "", "place identifier to trace in detail in the QA report")
	cmd.Flags().BoolVar(&opts.FoldAccents, "fold-accents", false, "strip accents when comparing addresses")
	cmd.Flags().StringVar(&opts.KeywordEN, "default-keyword-en", opts.KeywordEN, "English fax keyword assigned when a record has none")
	cmd.Flags().StringVar(&opts.KeywordFR, "default-keyword-fr", opts.KeywordFR, "French fax keyword assigned when a record has none")
	cmd.Flags().BoolVar(&opts.NoReport, "no-report", false, "skip the QA report")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// runClean executes the full pass: load, reconcile, write, report.
func (a *App) runClean(cmd *cobra.Command, opts cleanOptions) error {
	ctx := logging.WithLogger(cmd.Context(), a.logger)
	log := a.logger

	loadOpts := tabular.LoadOptions{}
	if opts.Mapping != "" {
		mapping, err := tabular.LoadMapping(opts.Mapping)
		if err != nil {
			return err
		}
		loadOpts.Mapping = mapping
	}
	if opts.FoldAccents {
		loadOpts.Keyer = normalize.NewKeyer(normalize.WithAccentFolding())
	}

	rows, loadStats, err := tabular.Load(opts.Input, loadOpts)
	if err != nil {
		return err
	}
	log.Info().
		Str("input", opts.Input).
		Int("rows", loadStats.TotalRows).
		Int("dropped_no_geo", loadStats.DroppedNoGeo).
		Msg("Loaded input")

	engineOpts := []reconciler.Option{
		reconciler.WithDefaultKeywords(opts.KeywordEN, opts.KeywordFR),
	}
	if opts.TraceID != "" {
		engineOpts = append(engineOpts, reconciler.WithTraceIdentifier(opts.TraceID))
	}

	engine, err := reconciler.New(engineOpts...)
	if err != nil {
		return err
	}

	result, err := engine.Reconcile(ctx, rows)
	if err != nil {
		return err
	}
	log.Info().Str("run_id", result.RunID).Msg(result.Summary())

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return err
	}
	paths := buildOutputPaths(opts.Input, opts.OutputDir)

	if err := tabular.WriteRecords(paths.Clean, result.Clean); err != nil {
		return err
	}
	if err := tabular.WriteRows(paths.Rejects, result.Rejects, false); err != nil {
		return err
	}
	if err := tabular.WriteRows(paths.Quarantine, result.Quarantine, true); err != nil {
		return err
	}
	if err := tabular.WriteAudit(paths.Audit, result.Audit, result.RunID); err != nil {
		return err
	}

	if opts.AuditDB != "" {
		if err := persistAudit(cmd, opts.AuditDB, result); err != nil {
			return err
		}
		log.Info().Str("audit_db", opts.AuditDB).Int("entries", len(result.Audit)).Msg("Audit trail persisted")
	}

	if !opts.NoReport {
		files := report.Files{
			Clean:         paths.Clean,
			Rejects:       paths.Rejects,
			Quarantine:    paths.Quarantine,
			Audit:         paths.Audit,
			DroppedNoGeo:  loadStats.DroppedNoGeo,
			LoadedRows:    loadStats.TotalRows,
			AccentsFolded: opts.FoldAccents,
		}
		if err := report.WriteFile(paths.Report, result, files); err != nil {
			return err
		}
		log.Info().Str("report", paths.Report).Msg("QA report written")
	}

	return printSummary(cmd.OutOrStdout(), result, loadStats)
}

func persistAudit(cmd *cobra.Command, path string, result *reconciler.Result) error {
	store, err := auditdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.InsertAudit(cmd.Context(), result.RunID, result.Audit)
}

// buildOutputPaths derives the output file names from the input base
// name, matching the naming the downstream pipeline expects.
func buildOutputPaths(input, dir string) outputPaths {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return outputPaths{
		Clean:      filepath.Join(dir, base+"_clean.csv"),
		Rejects:    filepath.Join(dir, base+"_rejects_missing_id.csv"),
		Quarantine: filepath.Join(dir, base+"_rejects_conflicting_address_for_same_id.csv"),
		Audit:      filepath.Join(dir, base+"_merge_audit.csv"),
		Report:     filepath.Join(dir, base+"_qa_report.md"),
	}
}

// printSummary renders the end-of-run statistics table.
func printSummary(w io.Writer, result *reconciler.Result, loadStats tabular.LoadStats) error {
	stats := result.Metadata.Stats

	table := tablewriter.NewTable(w)
	table.Header("Measure", "Count")

	summaryRows := [][2]string{
		{"Rows loaded", strconv.Itoa(loadStats.TotalRows)},
		{"Dropped (no coordinates)", strconv.Itoa(loadStats.DroppedNoGeo)},
		{"Rejected (missing identifier)", strconv.Itoa(len(result.Rejects))},
		{"Identifier groups", strconv.Itoa(stats.IdentifierGroups)},
		{"Merged groups", strconv.Itoa(stats.MergedGroups)},
		{"Quarantined groups", strconv.Itoa(stats.QuarantinedGroups)},
		{"Quarantined rows", strconv.Itoa(len(result.Quarantine))},
		{"Clean records", strconv.Itoa(len(result.Clean))},
	}
	for _, row := range summaryRows {
		if err := table.Append(row[0], row[1]); err != nil {
			return err
		}
	}

	return table.Render()
}
