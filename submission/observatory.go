// Package submission implements the client side of a CRIMSON calibration
// delivery: a schema-validated record, the set of files to deliver, and the
// authentication/lock session required to submit them.
package submission

import "fmt"

// Observatory selects which CRIMSON deployment a submission targets.
type Observatory string

const (
	HST  Observatory = "hst"
	JWST Observatory = "jwst"
)

// Environment selects the server environment. Only Dev is live; Test and
// Production are reserved.
type Environment string

const (
	Dev        Environment = "dev"
	Test       Environment = "test"
	Production Environment = "production"
)

var instruments = map[Observatory][]string{
	HST:  {"acs", "cos", "nicmos", "stis", "wfc3", "wfpc2"},
	JWST: {"fgs", "miri", "nircam", "niriss", "nirspec"},
}

// Instruments returns the fixed instrument set for an observatory.
func Instruments(obs Observatory) []string {
	src := instruments[obs]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ValidInstrument reports whether instrument belongs to the observatory's
// instrument set.
func ValidInstrument(obs Observatory, instrument string) bool {
	for _, ins := range instruments[obs] {
		if ins == instrument {
			return true
		}
	}
	return false
}

// Endpoints maps environment and observatory to a server base URL. It is
// passed to the client explicitly; there is no process-wide table.
type Endpoints map[Environment]map[Observatory]string

// DefaultEndpoints returns the known server base URLs. Only the dev
// environment is wired up.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Dev: {
			HST:  "https://hst-crimson-dev.example.edu/",
			JWST: "https://jwst-crimson-dev.example.edu/",
		},
	}
}

// BaseURL resolves the server base URL for an environment/observatory pair.
func (e Endpoints) BaseURL(env Environment, obs Observatory) (string, error) {
	if u := e[env][obs]; u != "" {
		return u, nil
	}
	return "", fmt.Errorf("crimson: no endpoint configured for environment %q, observatory %q", env, obs)
}
