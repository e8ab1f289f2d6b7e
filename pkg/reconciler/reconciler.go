// Package reconciler deduplicates establishment rows by place identifier.
// Rows sharing an identifier are grouped and reconciled: groups with one
// normalized address merge into a single canonical record, groups with
// conflicting addresses keep a deterministic representative and route
// every row to quarantine. Rows without an identifier are rejected
// untouched. The pass is single-threaded and always completes; no row is
// lost and no error path exists inside the engine.
package reconciler

import (
	"context"

	"github.com/faxhealth/carebook/pkg/establishments"
	"github.com/faxhealth/carebook/pkg/logging"
)

// Reconciler runs reconciliation passes over establishment rows.
type Reconciler struct {
	opts *options
}

// New creates a Reconciler with options.
func New(opts ...Option) (*Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Reconciler{opts: options}, nil
}

// Reconcile partitions rows by identifier presence, groups the rest by
// identifier, reconciles each group, and accumulates the three output
// streams plus the audit trail. Groups are processed in first-appearance
// order of their identifier so re-runs produce identical output.
func (r *Reconciler) Reconcile(ctx context.Context, rows []establishments.Row) (*Result, error) {
	logger := logging.FromContext(ctx)
	result := NewResult()
	result.Metadata.Stats.InputRows = len(rows)

	// Partition by identifier presence; group the remainder preserving
	// first-appearance order.
	groupIndex := make(map[string]int)
	var groupIDs []string
	groups := make(map[string][]establishments.Row)

	for _, row := range rows {
		if !row.HasIdentifier() {
			result.Rejects = append(result.Rejects, row)
			continue
		}
		if _, ok := groupIndex[row.ID]; !ok {
			groupIndex[row.ID] = len(groupIDs)
			groupIDs = append(groupIDs, row.ID)
		}
		groups[row.ID] = append(groups[row.ID], row)
	}

	stats := &result.Metadata.Stats
	stats.MissingIdentifier = len(result.Rejects)
	stats.WithIdentifier = stats.InputRows - stats.MissingIdentifier
	stats.IdentifierGroups = len(groupIDs)

	logger.Info().
		Int("input_rows", stats.InputRows).
		Int("missing_identifier", stats.MissingIdentifier).
		Int("identifier_groups", stats.IdentifierGroups).
		Msg("Reconciling identifier groups")

	for _, id := range groupIDs {
		group := groups[id]
		outcome := r.reconcileGroup(id, group)

		result.Clean = append(result.Clean, outcome.record)
		result.Quarantine = append(result.Quarantine, outcome.quarantine...)
		if outcome.audit != nil {
			result.Audit = append(result.Audit, *outcome.audit)
		}

		switch outcome.status {
		case shapeSingleton:
			stats.Singletons++
		case shapeHomogeneous:
			stats.MergedGroups++
		case shapeConflicting:
			stats.QuarantinedGroups++
			logger.Debug().
				Str("identifier", id).
				Int("rows", len(group)).
				Msg("Address conflict, group quarantined")
		}

		if r.opts.traceID != "" && id == r.opts.traceID {
			result.Trace = buildTrace(id, group, outcome)
		}
	}

	result.Finalize()

	logger.Info().
		Int("clean_records", len(result.Clean)).
		Int("singletons", stats.Singletons).
		Int("merged_groups", stats.MergedGroups).
		Int("quarantined_groups", stats.QuarantinedGroups).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciliation complete")

	return result, nil
}

// buildTrace captures the detail trace for the configured identifier.
func buildTrace(id string, rows []establishments.Row, outcome groupOutcome) *GroupTrace {
	trace := &GroupTrace{
		ID:              id,
		RowCount:        len(rows),
		AddressKeys:     distinctAddressKeys(rows),
		KeptBillingCode: outcome.record.BillingCode,
		KeptAddress:     outcome.record.Address,
	}
	if outcome.audit != nil {
		trace.Status = outcome.audit.Status
	} else {
		trace.Status = shapeSingleton
	}
	for _, row := range rows {
		trace.Rows = append(trace.Rows, TraceRow{
			BillingCode: row.BillingCode,
			Address:     row.Address,
			AddressKey:  row.AddressKey,
		})
	}
	return trace
}
