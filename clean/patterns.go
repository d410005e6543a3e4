package clean

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Default marker phrases. Phrases are regular expressions in which every
// run of literal whitespace matches any run of whitespace in the text.
const (
	DefaultOrgPhrase      = `ÓRGANO DE FISCALIZACI[ÓO]N SUPERIOR`
	DefaultDirPhrase      = `DIRECCI[ÓO]N DE AUDITOR[IÍ]A A ENTES ESTATALES`
	DefaultSentinelPhrase = `Elabor[oó]`
)

// flexibleSpace matches whitespace as Word documents carry it, including
// non-breaking spaces.
const flexibleSpace = `[\s\p{Zs}\x{85}]+`

// Patterns is the compiled set of marker matchers.
type Patterns struct {
	// Org matches the institution's name.
	Org *regexp.Regexp
	// Dir matches the directorate's name.
	Dir *regexp.Regexp
	// Sentinel marks the start of the trailing signature section.
	Sentinel *regexp.Regexp
}

var defaultPatterns = MustCompilePatterns(DefaultOrgPhrase, DefaultDirPhrase, DefaultSentinelPhrase)

// DefaultPatterns returns the built-in marker set.
func DefaultPatterns() *Patterns {
	return defaultPatterns
}

// CompilePatterns compiles the three marker phrases. Matching is
// case-insensitive.
func CompilePatterns(org, dir, sentinel string) (*Patterns, error) {
	var p Patterns
	var err error
	if p.Org, err = compilePhrase(org); err != nil {
		return nil, fmt.Errorf("org phrase: %w", err)
	}
	if p.Dir, err = compilePhrase(dir); err != nil {
		return nil, fmt.Errorf("dir phrase: %w", err)
	}
	if p.Sentinel, err = compilePhrase(sentinel); err != nil {
		return nil, fmt.Errorf("sentinel phrase: %w", err)
	}
	return &p, nil
}

// MustCompilePatterns is like CompilePatterns but panics on error.
func MustCompilePatterns(org, dir, sentinel string) *Patterns {
	p, err := CompilePatterns(org, dir, sentinel)
	if err != nil {
		panic(err)
	}
	return p
}

func compilePhrase(phrase string) (*regexp.Regexp, error) {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return nil, fmt.Errorf("empty phrase")
	}
	return regexp.Compile("(?i)" + strings.Join(words, flexibleSpace))
}

// Matches reports whether text contains the Org or Dir marker.
func (p *Patterns) Matches(text string) bool {
	return p.Org.MatchString(text) || p.Dir.MatchString(text)
}

// Redact removes every Org marker, then every Dir marker, from text and
// trims the result. Whitespace around each removed marker collapses to a
// single space.
func (p *Patterns) Redact(text string) string {
	text = removeMatches(p.Org, text)
	text = removeMatches(p.Dir, text)
	return strings.TrimSpace(text)
}

// IsSentinel reports whether text, with all whitespace removed, contains
// the Sentinel marker.
func (p *Patterns) IsSentinel(text string) bool {
	return p.Sentinel.MatchString(stripWhitespace(text))
}

// removeMatches deletes every match of re from s. Whitespace touching a
// removed match collapses to one space, and text that touched the match
// directly is joined with nothing in between. Text without matches is
// returned unchanged.
func removeMatches(re *regexp.Regexp, s string) string {
	locs := re.FindAllStringIndex(s, -1)
	if locs == nil {
		return s
	}

	segs := make([]string, 0, len(locs)+1)
	prev := 0
	for _, loc := range locs {
		segs = append(segs, s[prev:loc[0]])
		prev = loc[1]
	}
	segs = append(segs, s[prev:])

	var sb strings.Builder
	gap := false
	for i, seg := range segs {
		if i > 0 {
			rest := strings.TrimLeftFunc(seg, unicode.IsSpace)
			gap = gap || rest != seg
			seg = rest
		}
		if seg == "" {
			continue
		}
		body := seg
		if i < len(segs)-1 {
			body = strings.TrimRightFunc(seg, unicode.IsSpace)
		}
		if gap && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(body)
		gap = body != seg
	}
	return sb.String()
}

// normalizeWhitespace collapses every run of whitespace to a single space.
// Leading and trailing runs are collapsed, not removed.
func normalizeWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// stripWhitespace removes all whitespace from s.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
