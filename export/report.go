package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/hupe1980/pathgo/pace"
	"github.com/hupe1980/pathgo/progress"
)

// PaceSettings records the effective pacing parameters of a run in
// report-friendly units.
type PaceSettings struct {
	// TargetRuntimeMS is negative when pacing was disabled.
	TargetRuntimeMS int64 `json:"target_runtime_ms"`
	BatchSize       int   `json:"batch_size"`
	MinDelayMS      int64 `json:"min_delay_ms"`
	MaxDelayMS      int64 `json:"max_delay_ms"`
}

// PaceSettingsFrom resolves cfg the way a run would and converts it for
// the report.
func PaceSettingsFrom(cfg pace.Config) PaceSettings {
	cfg = cfg.Normalized()

	return PaceSettings{
		TargetRuntimeMS: cfg.TargetRuntime.Milliseconds(),
		BatchSize:       cfg.BatchSize,
		MinDelayMS:      cfg.MinDelay.Milliseconds(),
		MaxDelayMS:      cfg.MaxDelay.Milliseconds(),
	}
}

// RunReport is the JSON summary artifact of one finished run.
type RunReport struct {
	RunID     string         `json:"run_id"`
	Place     string         `json:"place,omitempty"`
	Start     int64          `json:"start"`
	Goal      int64          `json:"goal"`
	Weight    string         `json:"weight"`
	Found     bool           `json:"found"`
	Path      []int64        `json:"path,omitempty"`
	Stats     progress.Stats `json:"stats"`
	Pace      PaceSettings   `json:"pace"`
	CreatedAt time.Time      `json:"created_at"`
}

// WriteReport writes the report as indented JSON.
func WriteReport(w io.Writer, rep RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(rep)
}

// ReadReport parses a report written by WriteReport.
func ReadReport(r io.Reader) (RunReport, error) {
	var rep RunReport
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return RunReport{}, err
	}

	return rep, nil
}
