package forecast

// Config holds runtime knobs for the forecast service.
type Config struct {
	DefaultHorizonDays int
	MaxHorizonDays     int
	MaxLag             int
}

func (c Config) withDefaults() Config {
	if c.DefaultHorizonDays <= 0 {
		c.DefaultHorizonDays = 30
	}
	if c.MaxHorizonDays <= 0 {
		c.MaxHorizonDays = 365
	}
	if c.MaxLag <= 0 {
		c.MaxLag = DefaultMaxLag
	}
	return c
}
