package filters

import (
	"regexp"
	"strings"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
	"github.com/birdlab-tech/building-analytics/services/collector/config"
)

// rule is one compiled wildcard pattern. Matching is case-insensitive substring search,
// the way the historical Excel filter sheets behaved.
type rule struct {
	pattern string
	invert  bool
	enabled bool
	regex   *regexp.Regexp
}

func newRule(cfg config.FilterRuleConfig) rule {
	return rule{
		pattern: cfg.Pattern,
		invert:  cfg.Invert,
		enabled: cfg.Enabled,
		regex:   wildcardToRegexp(cfg.Pattern),
	}
}

// wildcardToRegexp converts Excel-style wildcards: * matches any run of characters,
// ? matches a single character. Everything else is taken literally.
func wildcardToRegexp(pattern string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, `.*`)
	escaped = strings.ReplaceAll(escaped, `\?`, `.`)
	return regexp.MustCompile(`(?i)` + escaped)
}

func (r rule) matches(label string) bool {
	matched := r.regex.MatchString(label)
	if r.invert {
		return !matched
	}
	return matched
}

// stage is a named group of rules applied together
type stage struct {
	name  string
	rules []rule
}

func newStage(cfg config.FilterStageConfig) stage {
	s := stage{name: cfg.Name}
	for _, rc := range cfg.Rules {
		s.rules = append(s.rules, newRule(rc))
	}
	return s
}

// blocks tells whether any enabled rule in a blocker stage removes the label
func (s stage) blocks(label string) bool {
	for _, r := range s.rules {
		if !r.enabled {
			continue
		}
		if r.matches(label) {
			return true
		}
	}
	return false
}

// targets tells whether any enabled rule in a target stage keeps the label. A stage
// without enabled rules keeps everything.
func (s stage) targets(label string) bool {
	hasEnabled := false
	for _, r := range s.rules {
		if !r.enabled {
			continue
		}
		hasEnabled = true
		if r.matches(label) {
			return true
		}
	}
	return !hasEnabled
}

// labelFilter applies cascading blocker stages followed by a target stage: blockers remove
// matching labels (AND across stages), targets then keep only matching labels (OR across rules)
type labelFilter struct {
	blockers []stage
	target   stage
}

// NewLabelFilter builds a filter engine from configuration. An empty configuration keeps every label.
func NewLabelFilter(cfg config.FiltersConfig) *labelFilter {
	f := &labelFilter{
		target: newStage(cfg.TargetStage),
	}
	for _, sc := range cfg.BlockerStages {
		f.blockers = append(f.blockers, newStage(sc))
	}
	return f
}

// Keep decides whether a label survives all stages
func (f *labelFilter) Keep(label string) bool {
	for _, blocker := range f.blockers {
		if blocker.blocks(label) {
			return false
		}
	}
	return f.target.targets(label)
}

// Apply returns only the records whose labels survive all stages
func (f *labelFilter) Apply(records []common.PointRecord) []common.PointRecord {
	out := make([]common.PointRecord, 0, len(records))
	for _, record := range records {
		if f.Keep(record.Label) {
			out = append(out, record)
		}
	}
	return out
}

// IsInterfaceNil returns true if the value under the interface is nil
func (f *labelFilter) IsInterfaceNil() bool {
	return f == nil
}
