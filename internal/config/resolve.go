package config

import "fmt"

// Overrides are the invocation-level settings layered over the stored
// configuration for a single query. They are never persisted.
type Overrides struct {
	// Model is an explicit model name. Takes precedence over everything else.
	Model string

	// Profile is a named profile to resolve model and temperature from.
	Profile string

	// Temperature, when set, overrides the resolved temperature.
	Temperature *float64
}

// Resolved is the effective model selection for one invocation.
type Resolved struct {
	Model       string
	Temperature float64
}

// Resolve merges overrides over the stored configuration. Precedence for the
// model: explicit model > explicit profile > stored active model > compiled
// default. An explicit temperature wins over the profile's or the stored one.
func (c *Config) Resolve(o Overrides) (Resolved, error) {
	r := Resolved{
		Model:       c.Model,
		Temperature: c.Temperature,
	}

	if c.UseDefaultModel {
		r.Model = DefaultModel
	}

	if o.Profile != "" {
		p, ok := c.Profiles[o.Profile]
		if !ok {
			return Resolved{}, fmt.Errorf("unknown profile %q (available: %v)", o.Profile, c.ProfileNames())
		}
		r.Model = p.Model
		r.Temperature = p.Temperature
	}

	if o.Model != "" {
		r.Model = o.Model
	}

	if o.Temperature != nil {
		r.Temperature = *o.Temperature
	}

	if r.Model == "" {
		r.Model = DefaultModel
	}
	r.Temperature = ClampTemperature(r.Temperature)

	return r, nil
}
