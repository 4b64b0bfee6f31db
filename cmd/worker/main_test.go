package main

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/cfo-copilot/internal/jobs"
	"github.com/dvloznov/cfo-copilot/internal/jobs/inmemory"
	"github.com/google/go-cmp/cmp"
)

func TestMonthsInRange(t *testing.T) {
	months := []string{"2025-01", "2025-02", "2025-03", "2025-04"}
	tests := []struct {
		start, end string
		want       []string
	}{
		{"", "", months},
		{"2025-02", "", []string{"2025-02", "2025-03", "2025-04"}},
		{"", "2025-02", []string{"2025-01", "2025-02"}},
		{"2025-02", "2025-03", []string{"2025-02", "2025-03"}},
		{"2026-01", "", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, monthsInRange(months, tt.start, tt.end)); diff != "" {
			t.Errorf("monthsInRange(%q, %q) mismatch (-want +got):\n%s", tt.start, tt.end, diff)
		}
	}
}

func TestWaitForJobs(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	for _, job := range []*jobs.GenerateReportJob{
		{JobID: "a", Month: "2025-05", Status: jobs.JobStatusCompleted},
		{JobID: "b", Month: "2025-06", Status: jobs.JobStatusRunning},
	} {
		if err := store.SaveJob(ctx, job); err != nil {
			t.Fatal(err)
		}
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = store.UpdateJobStatus(ctx, "b", jobs.JobStatusFailed, "boom")
	}()

	done, err := waitForJobs(ctx, store, []string{"a", "b"}, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("waitForJobs() error = %v", err)
	}
	if len(done) != 2 || done[0].JobID != "a" || done[1].Status != jobs.JobStatusFailed {
		t.Errorf("waitForJobs() = %+v", done)
	}
}

func TestWaitForJobs_Cancelled(t *testing.T) {
	store := inmemory.NewStore()
	if err := store.SaveJob(context.Background(), &jobs.GenerateReportJob{JobID: "a", Status: jobs.JobStatusPending}); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := waitForJobs(ctx, store, []string{"a"}, 5*time.Millisecond); err == nil {
		t.Error("expected context error")
	}
}

func TestWaitForJobs_UnknownJob(t *testing.T) {
	if _, err := waitForJobs(context.Background(), inmemory.NewStore(), []string{"missing"}, time.Millisecond); err == nil {
		t.Error("expected not found error")
	}
}
