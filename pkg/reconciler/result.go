package reconciler

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/faxhealth/carebook/pkg/establishments"
)

// Audit status tags.
const (
	// StatusMerged marks a group whose rows shared one normalized
	// address and were merged into a single record.
	StatusMerged = "MERGED"

	// StatusKeptFirstQuarantinedOthers marks a group with conflicting
	// normalized addresses: one representative was kept in the clean
	// output and every row was routed to quarantine for review.
	StatusKeptFirstQuarantinedOthers = "KEPT_FIRST_QUARANTINED_OTHERS"
)

// multipleAddresses is recorded in place of a normalized address on
// audit entries for conflicting groups.
const multipleAddresses = "MULTIPLE_ADDRESSES"

// AuditEntry records how one identifier group was resolved.
type AuditEntry struct {
	ID                 string
	NormalizedAddress  string
	SourceRowCount     int
	MergedBillingCodes string
	MergedFaxNumbers   string
	FieldConflicts     string // JSON object, "{}" when no conflicts
	Status             string
}

// Statistics carries the running counts the report consumes.
type Statistics struct {
	InputRows         int
	MissingIdentifier int
	WithIdentifier    int
	IdentifierGroups  int
	Singletons        int
	MergedGroups      int
	QuarantinedGroups int
}

// ResultMetadata describes one reconciliation pass.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Stats     Statistics
}

// TraceRow is one source row captured by the identifier trace.
type TraceRow struct {
	BillingCode string
	Address     string
	AddressKey  string
}

// GroupTrace is the optional per-identifier detail trace. It exists for
// report narration only and never feeds back into merge decisions.
type GroupTrace struct {
	ID              string
	RowCount        int
	AddressKeys     []string
	Status          string
	Rows            []TraceRow
	KeptBillingCode string
	KeptAddress     string
}

// Result is the outcome of one reconciliation pass. Every input row
// lands in exactly one of Clean (via its group's record), Rejects, or
// Quarantine; Audit holds one entry per multi-row group.
type Result struct {
	RunID      string
	Clean      []establishments.Record
	Rejects    []establishments.Row
	Quarantine []establishments.Row
	Audit      []AuditEntry
	Trace      *GroupTrace
	Metadata   ResultMetadata
}

// NewResult creates a result with a fresh run ID.
func NewResult() *Result {
	return &Result{
		RunID: uuid.NewString(),
		Metadata: ResultMetadata{
			StartTime: time.Now(),
		},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// Summary returns a human-readable one-line summary of the pass.
func (r *Result) Summary() string {
	stats := r.Metadata.Stats
	return fmt.Sprintf("%d rows in: %d clean, %d rejected (no identifier), %d quarantined across %d conflicting groups",
		stats.InputRows, len(r.Clean), len(r.Rejects), len(r.Quarantine), stats.QuarantinedGroups)
}
