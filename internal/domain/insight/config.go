package insight

import "time"

// Config holds runtime knobs for the insight service. A zero StatsTTL keeps snapshots until
// they are rebuilt.
type Config struct {
	StatsTTL time.Duration
}
