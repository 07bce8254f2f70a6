package sweep

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"stopsim/internal/collector"
)

type jsonResult struct {
	Seed           uint64  `json:"seed"`
	Elapsed        string  `json:"elapsed"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Rows           []Row   `json:"rows"`
	Best           []Best  `json:"best"`
}

// MarshalJSON includes the per-threshold winners alongside the rows.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonResult{
		Seed:           r.Seed,
		Elapsed:        r.Elapsed.Round(time.Millisecond).String(),
		ElapsedSeconds: r.Elapsed.Seconds(),
		Rows:           r.Rows,
		Best:           r.Best(),
	})
}

// FormatJSON writes the result as indented JSON.
func FormatJSON(w io.Writer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// FormatText writes one line per grid point followed by the best look
// ratio for each threshold.
func FormatText(w io.Writer, r *Result) {
	if len(r.Rows) == 0 {
		fmt.Fprintln(w, "No grid points simulated")
		return
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Optimal Stopping - Parameter Sweep")
	fmt.Fprintln(w, "==================================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Points:         %d\n", len(r.Rows))
	fmt.Fprintf(w, "Simulations:    %s per point\n", collector.FormatNumber(r.Rows[0].Params.Simulations))
	fmt.Fprintf(w, "Seed:           %d\n", r.Seed)
	fmt.Fprintf(w, "Duration:       %v\n", r.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "  %6s  %9s  %6s  %9s  %9s  %9s\n",
		"Items", "Threshold", "Look", "Best Pick", "Failed", "Value")
	for _, row := range r.Rows {
		fmt.Fprintf(w, "  %6d  %9.2f  %6.2f  %9s  %9s  %9s\n",
			row.Params.Items, row.Params.ThresholdRatio, row.Params.LookRatio,
			collector.FormatPercent(row.Summary.SuccessRate),
			collector.FormatPercent(row.Summary.FailureRate),
			collector.FormatPercent(row.Summary.BestValueRate))
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Best Look Ratio per Threshold:")
	for _, b := range r.Best() {
		fmt.Fprintf(w, "  items %d, threshold %.2f: look %.2f (%s best picks)\n",
			b.Items, b.ThresholdRatio, b.LookRatio, collector.FormatPercent(b.SuccessRate))
	}
}
