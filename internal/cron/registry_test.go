package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsRunOrder(t *testing.T) {
	analysis := &stubJob{name: "analysis"}
	refresh := &stubJob{name: "ledger-refresh"}
	registry := NewRegistry(analysis, nil, refresh)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != analysis || jobs[1] != refresh {
		t.Fatalf("jobs returned out of order")
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
	if got := registry.Names(); len(got) != 2 || got[0] != "analysis" || got[1] != "ledger-refresh" {
		t.Fatalf("unexpected names %v", got)
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "analysis"})

	if err := registry.Register(&stubJob{name: " analysis "}); err == nil {
		t.Fatal("expected duplicate name to be refused")
	}
	if err := registry.Register(&stubJob{name: ""}); err == nil {
		t.Fatal("expected empty name to be refused")
	}
	if len(registry.Jobs()) != 1 {
		t.Fatalf("expected 1 job, got %d", len(registry.Jobs()))
	}
	if _, ok := registry.Lookup("analysis"); !ok {
		t.Fatal("expected lookup to find analysis job")
	}
	if _, ok := registry.Lookup("missing"); ok {
		t.Fatal("expected lookup miss")
	}
}
