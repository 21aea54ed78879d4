package metrics

import "fmt"

// Config defines settings for metrics sinks. Sinks lists the enabled
// backends; an empty list yields a NopSink.
type Config struct {
	Sinks        []string `json:"sinks"` // "prometheus", "influx"
	InfluxURL    string   `json:"influx_url"`
	InfluxToken  string   `json:"influx_token"`
	InfluxOrg    string   `json:"influx_org"`
	InfluxBucket string   `json:"influx_bucket"`
}

// Validate checks that the configured sink names are known.
func (c Config) Validate() error {
	for _, s := range c.Sinks {
		switch s {
		case "prometheus", "influx":
		default:
			return fmt.Errorf("unknown metrics sink %q", s)
		}
	}
	return nil
}
