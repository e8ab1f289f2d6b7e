package reconciler

import "github.com/faxhealth/carebook/pkg/errors"

// Default keyword phrases attached to fax numbers that arrive without
// stored keyword annotations.
const (
	DefaultKeywordEN = "general inquiries"
	DefaultKeywordFR = "renseignements généraux"
)

// options holds reconciler configuration.
type options struct {
	defaultKeywordEN string
	defaultKeywordFR string
	traceID          string
}

// Option configures a Reconciler.
type Option func(*options) error

// newOptions creates options with defaults and applies overrides.
func newOptions(opts ...Option) (*options, error) {
	o := &options{
		defaultKeywordEN: DefaultKeywordEN,
		defaultKeywordFR: DefaultKeywordFR,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithDefaultKeywords overrides the default keyword phrases synthesized
// for fax numbers without stored annotations.
func WithDefaultKeywords(en, fr string) Option {
	return func(o *options) error {
		if en == "" || fr == "" {
			return errors.NewValidationError("default_keywords", en+"/"+fr, "phrases must be non-empty")
		}
		o.defaultKeywordEN = en
		o.defaultKeywordFR = fr
		return nil
	}
}

// WithTraceIdentifier captures a detailed trace for one identifier group.
// The trace is reporting-only; it never influences merge decisions.
func WithTraceIdentifier(id string) Option {
	return func(o *options) error {
		o.traceID = id
		return nil
	}
}
