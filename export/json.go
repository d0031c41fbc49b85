package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spektr-org/livepulse/engine"
)

// JSON writes the report as a JSON document.
func JSON(w io.Writer, r *engine.Report, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
