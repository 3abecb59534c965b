package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/isaiahriv1234/Freight-Project/internal/orchestrator"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
)

type fakePublisher struct {
	data  []byte
	attrs map[string]string
	err   error
}

func (f *fakePublisher) PublishReport(_ context.Context, data []byte, attrs map[string]string) (string, error) {
	f.data = data
	f.attrs = attrs
	return "msg-1", f.err
}

type fakeInserter struct {
	tables []string
	rows   map[string][]any
	err    error
}

func (f *fakeInserter) InsertRows(_ context.Context, table string, rows []any) error {
	f.tables = append(f.tables, table)
	if f.rows == nil {
		f.rows = map[string][]any{}
	}
	f.rows[table] = rows
	return f.err
}

func (f *fakeInserter) AlertsTable() string { return "shipping_alerts" }
func (f *fakeInserter) RunsTable() string { return "analysis_runs" }

func sampleReport() *orchestrator.Report {
	generated := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &orchestrator.Report{
		RunID:         "run-1",
		GeneratedAt:   generated,
		LedgerVersion: 7,
		OrderCount:    2,
		TotalSpend:    5400,
		Alerts: []orchestrator.Alert{
			{Type: enums.AlertTypeOverchargeDetected, Priority: enums.AlertPriorityHigh, Title: "Possible overcharge", PotentialSavings: 120, OrderIDs: []string{"PO-1"}, Carrier: "UPS"},
			{Type: enums.AlertTypeComplianceGap, Priority: enums.AlertPriorityWarning, Scope: "overall_diversity"},
		},
	}
}

func TestPubSubSink_PublishesReportJSON(t *testing.T) {
	pub := &fakePublisher{}
	sink, err := NewPubSubSink(pub)
	require.NoError(t, err)

	require.NoError(t, sink.Publish(context.Background(), sampleReport()))

	assert.Equal(t, "run-1", pub.attrs[attrRunID])
	assert.Equal(t, "7", pub.attrs[attrLedgerVersion])
	assert.Equal(t, reportSchema, pub.attrs[attrSchema])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.data, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Len(t, decoded["alerts"], 2)
}

func TestBigQuerySink_InsertsAlertRows(t *testing.T) {
	ins := &fakeInserter{}
	sink, err := NewBigQuerySink(ins)
	require.NoError(t, err)

	report := sampleReport()
	report.Compliance.Performance.OverallDiversityPct = 12.5
	report.Consolidation.Summary.TotalPotentialSavings = 80
	require.NoError(t, sink.Publish(context.Background(), report))
	assert.Equal(t, []string{"shipping_alerts", "analysis_runs"}, ins.tables)
	require.Len(t, ins.rows["shipping_alerts"], 2)

	row, ok := ins.rows["shipping_alerts"][0].(AlertRow)
	require.True(t, ok)
	values, insertID, err := row.Save()
	require.NoError(t, err)
	assert.Equal(t, "run-1-1", insertID)
	assert.Equal(t, "overcharge_detected", values["type"])
	assert.Equal(t, 120.0, values["potential_savings"])
	assert.Len(t, values["order_ids"], 1)

	run, ok := ins.rows["analysis_runs"][0].(RunRow)
	require.True(t, ok)
	values, insertID, err = run.Save()
	require.NoError(t, err)
	assert.Equal(t, "run-1", insertID)
	assert.Equal(t, int64(7), values["ledger_version"])
	assert.Equal(t, 2, values["alert_count"])
	assert.Equal(t, 12.5, values["overall_diversity_pct"])
	assert.Equal(t, 80.0, values["consolidation_savings"])
}

func TestBigQuerySink_EmptyAlertSetStillRecordsRun(t *testing.T) {
	ins := &fakeInserter{}
	sink, err := NewBigQuerySink(ins)
	require.NoError(t, err)

	report := sampleReport()
	report.Alerts = nil
	require.NoError(t, sink.Publish(context.Background(), report))
	assert.Equal(t, []string{"analysis_runs"}, ins.tables)
}

func TestBigQuerySink_StopsWhenAlertInsertFails(t *testing.T) {
	ins := &fakeInserter{err: errors.New("quota")}
	sink, err := NewBigQuerySink(ins)
	require.NoError(t, err)

	err = sink.Publish(context.Background(), sampleReport())
	require.ErrorContains(t, err, "alert rows")
	assert.Equal(t, []string{"shipping_alerts"}, ins.tables)
}

func TestPublisher_AttemptsEverySink(t *testing.T) {
	pub := &fakePublisher{err: errors.New("topic gone")}
	ins := &fakeInserter{err: errors.New("quota")}
	ps, _ := NewPubSubSink(pub)
	bq, _ := NewBigQuerySink(ins)

	p, err := NewPublisher(logger.Nop(), ps, bq)
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	err = p.Publish(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "pubsub")
	assert.Contains(t, err.Error(), "bigquery")
	assert.Len(t, ins.rows["shipping_alerts"], 2)
}

func TestPublisher_RejectsNilReport(t *testing.T) {
	ins := &fakeInserter{}
	bq, _ := NewBigQuerySink(ins)
	p, err := NewPublisher(logger.Nop(), bq)
	require.NoError(t, err)

	require.Error(t, p.Publish(context.Background(), nil))
	assert.Empty(t, ins.tables)
}
