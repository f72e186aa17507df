package metrics

import (
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes all metrics gathered from reg to path in the text
// exposition format, for pickup by a node_exporter textfile collector.
// The file is written atomically.
func WriteTextfile(path string, reg *prom.Registry) error {
	if path == "" {
		return nil
	}
	if reg == nil {
		return fmt.Errorf("metrics registry is required")
	}
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
