package cleandoc

import (
	"github.com/OmarSalvatierra99/cleandoc/clean"
	"github.com/charmbracelet/log"
)

// CleanOptions holds configuration for a cleaning job.
type CleanOptions struct {
	// Marker phrases; empty means the built-in phrase
	orgPhrase      string
	dirPhrase      string
	sentinelPhrase string

	// Precompiled patterns take precedence over the phrases
	patterns *clean.Patterns

	logger *log.Logger
}

// defaultOptions returns the default cleaning options.
func defaultOptions() CleanOptions {
	return CleanOptions{}
}

// clone creates a copy of CleanOptions. Patterns and loggers are safe to
// share.
func (o CleanOptions) clone() CleanOptions {
	return o
}

// customPhrases reports whether any marker phrase was overridden.
func (o CleanOptions) customPhrases() bool {
	return o.orgPhrase != "" || o.dirPhrase != "" || o.sentinelPhrase != ""
}

// cleaner builds the Cleaner these options describe.
func (o CleanOptions) cleaner() (*clean.Cleaner, error) {
	patterns := o.patterns
	if patterns == nil && o.customPhrases() {
		org, dir, sentinel := o.orgPhrase, o.dirPhrase, o.sentinelPhrase
		if org == "" {
			org = clean.DefaultOrgPhrase
		}
		if dir == "" {
			dir = clean.DefaultDirPhrase
		}
		if sentinel == "" {
			sentinel = clean.DefaultSentinelPhrase
		}
		p, err := clean.CompilePatterns(org, dir, sentinel)
		if err != nil {
			return nil, err
		}
		patterns = p
	}
	if patterns == nil && o.logger == nil {
		return clean.Default(), nil
	}
	return clean.New(clean.WithPatterns(patterns), clean.WithLogger(o.logger)), nil
}
