package driver

import (
	"encoding/json"
	"fmt"
	"io"

	"oxide/internal/observ"
)

// TimingPayload is the machine-readable form of --timings.
type TimingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func NewTimingPayload(kind, path string, t *observ.Timer) TimingPayload {
	if kind == "" {
		kind = "pipeline"
	}
	report := t.Report()
	return TimingPayload{
		Kind:    kind,
		Path:    path,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	}
}

// WriteTimings печатает сводку таймера: таблицей или одной JSON-строкой.
func WriteTimings(w io.Writer, payload TimingPayload, asJSON bool) error {
	if asJSON {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode timings: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
	header := fmt.Sprintf("timings (%s)", payload.Kind)
	if payload.Path != "" {
		header += ": " + payload.Path
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, p := range payload.Phases {
		line := fmt.Sprintf("  %-20s %9.2f ms", p.Name, p.DurationMS)
		if p.Count > 1 {
			line += fmt.Sprintf("  x%d", p.Count)
		}
		if p.Note != "" {
			line += "  // " + p.Note
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %-20s %9.2f ms\n", "total", payload.TotalMS)
	return err
}
