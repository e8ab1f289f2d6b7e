package reconciler

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faxhealth/carebook/pkg/establishments"
	"github.com/faxhealth/carebook/pkg/normalize"
)

func TestReconcileRoutesEveryRow(t *testing.T) {
	engine := newTestReconciler(t)

	rows := []establishments.Row{
		// No identifier: rejected untouched.
		{Name: "Anonyme", Address: "3 Elm St"},
		// Singleton.
		{ID: "ChIJsolo", Name: "CLSC Solo", AddressKey: "5 PINE ST"},
		// Homogeneous pair.
		{ID: "ChIJpair", Name: "Clinique", AddressKey: "7 FIR AVE", BillingCode: "100"},
		{ID: "ChIJpair", Name: "Clinique", AddressKey: "7 FIR AVE", BillingCode: "200"},
		// Conflicting pair.
		{ID: "ChIJconf", Name: "Site 1", AddressKey: "1 A ST"},
		{ID: "ChIJconf", Name: "Site 2", AddressKey: "2 B ST"},
	}

	result, err := engine.Reconcile(context.Background(), rows)
	require.NoError(t, err)

	stats := result.Metadata.Stats
	assert.Equal(t, 6, stats.InputRows)
	assert.Equal(t, 1, stats.MissingIdentifier)
	assert.Equal(t, 5, stats.WithIdentifier)
	assert.Equal(t, 3, stats.IdentifierGroups)
	assert.Equal(t, 1, stats.Singletons)
	assert.Equal(t, 1, stats.MergedGroups)
	assert.Equal(t, 1, stats.QuarantinedGroups)

	require.Len(t, result.Rejects, 1)
	assert.Equal(t, "Anonyme", result.Rejects[0].Name)

	// One clean record per group, in first-appearance order.
	require.Len(t, result.Clean, 3)
	assert.Equal(t, "ChIJsolo", result.Clean[0].ID)
	assert.Equal(t, "ChIJpair", result.Clean[1].ID)
	assert.Equal(t, "ChIJconf", result.Clean[2].ID)
	assert.Equal(t, "100;200", result.Clean[1].BillingCode)

	require.Len(t, result.Quarantine, 2)

	// Audit entries only for multi-row groups.
	require.Len(t, result.Audit, 2)
	assert.Equal(t, StatusMerged, result.Audit[0].Status)
	assert.Equal(t, StatusKeptFirstQuarantinedOthers, result.Audit[1].Status)

	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.Metadata.EndTime.IsZero())
}

func TestReconcileDeterministicOrdering(t *testing.T) {
	engine := newTestReconciler(t)

	rows := []establishments.Row{
		{ID: "zeta", AddressKey: "Z"},
		{ID: "alpha", AddressKey: "A"},
		{ID: "zeta", AddressKey: "Z"},
		{ID: "mid", AddressKey: "M"},
	}

	first, err := engine.Reconcile(context.Background(), rows)
	require.NoError(t, err)
	second, err := engine.Reconcile(context.Background(), rows)
	require.NoError(t, err)

	ids := func(records []establishments.Record) []string {
		out := make([]string, len(records))
		for i, r := range records {
			out[i] = r.ID
		}
		return out
	}

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, ids(first.Clean))
	assert.Equal(t, ids(first.Clean), ids(second.Clean))
}

func TestReconcileTraceCapture(t *testing.T) {
	engine := newTestReconciler(t, WithTraceIdentifier("ChIJtraced"))

	rows := []establishments.Row{
		{ID: "ChIJtraced", Address: "1 A St", AddressKey: "1 A ST", BillingCode: "100"},
		{ID: "ChIJtraced", Address: "2 B St", AddressKey: "2 B ST", BillingCode: "200"},
		{ID: "ChIJother", AddressKey: "X"},
	}

	result, err := engine.Reconcile(context.Background(), rows)
	require.NoError(t, err)

	trace := result.Trace
	require.NotNil(t, trace)
	assert.Equal(t, "ChIJtraced", trace.ID)
	assert.Equal(t, 2, trace.RowCount)
	assert.Equal(t, []string{"1 A ST", "2 B ST"}, trace.AddressKeys)
	assert.Equal(t, StatusKeptFirstQuarantinedOthers, trace.Status)
	require.Len(t, trace.Rows, 2)
	assert.Equal(t, "100", trace.Rows[0].BillingCode)
	assert.Equal(t, "1 A St", trace.KeptAddress)
}

func TestReconcileTraceAbsentWhenNotConfigured(t *testing.T) {
	engine := newTestReconciler(t)

	result, err := engine.Reconcile(context.Background(), []establishments.Row{{ID: "x"}})
	require.NoError(t, err)
	assert.Nil(t, result.Trace)
}

func TestReconcileEmptyInput(t *testing.T) {
	engine := newTestReconciler(t)

	result, err := engine.Reconcile(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Clean)
	assert.Empty(t, result.Rejects)
	assert.Empty(t, result.Quarantine)
	assert.Empty(t, result.Audit)
	assert.Equal(t, 0, result.Metadata.Stats.InputRows)
}

func TestReconcileBulk(t *testing.T) {
	engine := newTestReconciler(t)
	faker := gofakeit.New(42)

	const groups = 200
	var rows []establishments.Row
	for i := 0; i < groups; i++ {
		id := fmt.Sprintf("ChIJ%08d", i)
		address := faker.Street()
		key := normalize.AddressKey(address)

		// Every third group gets a duplicate row with the same address.
		rows = append(rows, establishments.Row{
			ID:         id,
			Name:       faker.Company(),
			Address:    address,
			AddressKey: key,
		})
		if i%3 == 0 {
			rows = append(rows, establishments.Row{
				ID:         id,
				Name:       faker.Company(),
				Address:    address,
				AddressKey: key,
			})
		}
	}

	result, err := engine.Reconcile(context.Background(), rows)
	require.NoError(t, err)

	stats := result.Metadata.Stats
	assert.Equal(t, len(rows), stats.InputRows)
	assert.Equal(t, groups, stats.IdentifierGroups)
	assert.Len(t, result.Clean, groups)
	assert.Empty(t, result.Quarantine)

	// Identifier uniqueness in the clean output.
	seen := make(map[string]struct{}, len(result.Clean))
	for _, record := range result.Clean {
		_, dup := seen[record.ID]
		require.False(t, dup, "duplicate identifier %s in clean output", record.ID)
		seen[record.ID] = struct{}{}
	}

	// Every row accounted for: merged rows collapse, nothing is lost.
	assert.Equal(t, stats.Singletons+stats.MergedGroups, groups)
}
