package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

func sampleSnapshot() Snapshot {
	exp := domain.Experiment{
		UUID: "exp-1",
		Name: "baseline",
		Config: domain.ExperimentConfig{
			TotalEpisodes: 2,
			Weights:       domain.RewardWeights{Short: 0.5, Long: 0.5, Violation: 1.0},
		},
		Stats: domain.Statistics{
			SuccessCount:         1,
			ViolationCount:       0,
			TotalReward:          12.5,
			StrategyDistribution: map[domain.StrategyTag]int{domain.StrategyPolite: 2},
		},
	}
	experiences := []domain.Experience{
		{
			Episode:  0,
			Issue:    domain.Issue{ID: "i0", Type: domain.IssueProductInquiry},
			Response: domain.Response{ID: "r0", Content: "Here's how that works."},
			Outcome:  &domain.Outcome{CustomerRating: 5, IssueResolved: true},
			Strategy: domain.StrategyPolite, TotalReward: 8.0,
		},
		{
			Episode:  1,
			Issue:    domain.Issue{ID: "i1", Type: domain.IssueRefundRequest},
			Response: domain.Response{ID: "r1", Content: "ok."},
			Strategy: domain.StrategyEfficient, TotalReward: 4.5, Blocked: true,
		},
	}
	return NewSnapshot(exp, experiences, time.Unix(0, 0).UTC())
}

func TestWriteJSONThenImportJSONRoundTripsStatistics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	snap := sampleSnapshot()

	if err := WriteJSON(path, snap); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), byteOrderMark) {
		t.Error("expected file to start with a byte-order mark")
	}

	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if !reflect.DeepEqual(got.Statistics, snap.Statistics) {
		t.Errorf("re-imported statistics = %+v, want %+v", got.Statistics, snap.Statistics)
	}
	if got.UUID != snap.UUID {
		t.Errorf("re-imported UUID = %q, want %q", got.UUID, snap.UUID)
	}
}

func TestWriteCSVProducesOneRowPerExperience(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.csv")
	snap := sampleSnapshot()

	if err := WriteCSV(path, snap); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), byteOrderMark) {
		t.Error("expected file to start with a byte-order mark")
	}

	trimmed := strings.TrimPrefix(string(data), byteOrderMark)
	r := csv.NewReader(strings.NewReader(trimmed))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != len(snap.Experiences)+1 {
		t.Fatalf("got %d rows (incl. header), want %d", len(records), len(snap.Experiences)+1)
	}
	if records[0][0] != "episode" {
		t.Errorf("header[0] = %q, want episode", records[0][0])
	}
	if records[2][6] != "true" {
		t.Errorf("expected the blocked row's blocked column to be true, got %q", records[2][6])
	}
}

func TestWriteCSVWithNoExperiencesWritesOnlyHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	snap := sampleSnapshot()
	snap.Experiences = nil

	if err := WriteCSV(path, snap); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	trimmed := strings.TrimPrefix(mustRead(t, path), byteOrderMark)
	r := csv.NewReader(strings.NewReader(trimmed))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d rows, want 1 (header only)", len(records))
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}
