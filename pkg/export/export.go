// Package export snapshots an experiment's config, statistics, and
// (optionally) its full experience log to a structured JSON document, a flat
// CSV file, or a SQLite database, following this module's scan-result writers —
// generalized from attempt/probe records to episode Experiences.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

// byteOrderMark precedes every exported file so spreadsheet tools that rely
// on it to detect UTF-8 open the file correctly.
const byteOrderMark = "\ufeff"

// Snapshot is the complete exportable state of one experiment at the
// moment of export.
type Snapshot struct {
	UUID        string                  `json:"uuid"`
	Name        string                  `json:"name"`
	ExportedAt  time.Time               `json:"exported_at"`
	Config      domain.ExperimentConfig `json:"config"`
	Statistics  domain.Statistics       `json:"statistics"`
	Experiences []domain.Experience     `json:"experiences,omitempty"`
}

// NewSnapshot builds a Snapshot from an Experiment. Experiences is nil
// unless the caller has been separately tracking full per-episode logs,
// since the Runner itself keeps only the running Statistics.
func NewSnapshot(exp domain.Experiment, experiences []domain.Experience, exportedAt time.Time) Snapshot {
	return Snapshot{
		UUID:        exp.UUID,
		Name:        exp.Name,
		ExportedAt:  exportedAt,
		Config:      exp.Config,
		Statistics:  exp.Stats,
		Experiences: experiences,
	}
}

// WriteJSON writes the snapshot as a single BOM-prefixed JSON document.
func WriteJSON(outputPath string, snap Snapshot) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(byteOrderMark); err != nil {
		return fmt.Errorf("write byte-order mark: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ImportJSON reads back a snapshot previously written by WriteJSON,
// tolerating the leading byte-order mark.
func ImportJSON(inputPath string) (Snapshot, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read input file: %w", err)
	}
	data = trimBOM(data)

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func trimBOM(b []byte) []byte {
	bom := []byte(byteOrderMark)
	if len(b) >= len(bom) && string(b[:len(bom)]) == byteOrderMark {
		return b[len(bom):]
	}
	return b
}
