package tabular

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/faxhealth/carebook/pkg/errors"
	"github.com/faxhealth/carebook/pkg/establishments"
	"github.com/faxhealth/carebook/pkg/reconciler"
)

// auditColumns is the audit trail CSV layout.
var auditColumns = []string{
	"id", "normalized_address", "source_row_count",
	"merged_billing_codes", "merged_fax_numbers",
	"field_conflicts", "status", "run_id",
}

// WriteRecords writes canonical records in the exact target column order.
func WriteRecords(path string, records []establishments.Record) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, establishments.TargetColumns)
	for _, record := range records {
		rows = append(rows, record.Values())
	}
	return writeAll(path, rows)
}

// WriteRows writes raw rows (rejects or quarantine) in target column
// order. When withKey is set a trailing normalized_address column is
// included so reviewers can see the comparison key that grouped the row.
func WriteRows(path string, rows []establishments.Row, withKey bool) error {
	header := establishments.TargetColumns
	if withKey {
		header = append(append([]string{}, header...), "normalized_address")
	}

	out := make([][]string, 0, len(rows)+1)
	out = append(out, header)
	for _, row := range rows {
		values := row.Values()
		if withKey {
			values = append(values, row.AddressKey)
		}
		out = append(out, values)
	}
	return writeAll(path, out)
}

// WriteAudit writes the audit trail, stamping every row with the run ID.
func WriteAudit(path string, entries []reconciler.AuditEntry, runID string) error {
	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, auditColumns)
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.ID,
			entry.NormalizedAddress,
			strconv.Itoa(entry.SourceRowCount),
			entry.MergedBillingCodes,
			entry.MergedFaxNumbers,
			entry.FieldConflicts,
			entry.Status,
			runID,
		})
	}
	return writeAll(path, rows)
}

// writeAll writes CSV rows to path, failing with a typed IO error.
func writeAll(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("write", path, writer.Error())
}
