package bigquery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/bigquery"

	"github.com/isaiahriv1234/Freight-Project/pkg/config"
)

func TestConfiguredTables(t *testing.T) {
	tables := configuredTables(config.BigQueryConfig{AlertsTable: " shipping_alerts ", RunsTable: "analysis_runs"})
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if tables[0] != "shipping_alerts" || tables[1] != "analysis_runs" {
		t.Fatalf("unexpected tables %v", tables)
	}

	if got := configuredTables(config.BigQueryConfig{RunsTable: "  "}); len(got) != 0 {
		t.Fatalf("expected no tables, got %v", got)
	}
}

func TestClientOptions(t *testing.T) {
	cases := []struct {
		name string
		gcp  config.GCPConfig
		want int
	}{
		{"json wins over file", config.GCPConfig{CredentialsJSON: `{"dummy": "value"}`, ApplicationCredentials: "/tmp/creds"}, 1},
		{"file only", config.GCPConfig{ApplicationCredentials: "/tmp/creds"}, 1},
		{"ambient credentials", config.GCPConfig{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(clientOptions(tc.gcp)); got != tc.want {
				t.Fatalf("expected %d options, got %d", tc.want, got)
			}
		})
	}
}

func TestChunkRows(t *testing.T) {
	rows := make([]any, 1203)
	chunks := chunkRows(rows, insertChunkSize)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 500 || len(chunks[2]) != 203 {
		t.Fatalf("unexpected chunk sizes %d/%d", len(chunks[0]), len(chunks[2]))
	}
	if got := chunkRows(nil, insertChunkSize); len(got) != 0 {
		t.Fatalf("expected no chunks for empty input, got %d", len(got))
	}
}

func TestSummarizePutError(t *testing.T) {
	multi := bigquery.PutMultiError{
		{RowIndex: 4, Errors: bigquery.MultiError{errors.New("no such field: carrier")}},
		{RowIndex: 9, Errors: bigquery.MultiError{errors.New("no such field: carrier")}},
	}
	err := summarizePutError(multi)
	if !strings.Contains(err.Error(), "2 rows rejected, first at index 4") {
		t.Fatalf("unexpected summary %q", err)
	}

	plain := errors.New("quota exceeded")
	if summarizePutError(plain) != plain {
		t.Fatal("expected non put errors to pass through")
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	if err := c.InsertRows(context.Background(), "shipping_alerts", []any{1}); err == nil {
		t.Fatal("expected error from nil client")
	}
	if c.AlertsTable() != "" || c.RunsTable() != "" {
		t.Fatal("expected empty table names from nil client")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
}
