// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rollover rewrites engagement letters for the next cycle: it
// increments year references, refreshes the hourly-rate sentences from the
// configured rate options, and derives the name of the rolled-over file.
package rollover

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/engagement-letters/pkg/types"
)

// Rule names, in evaluation order.
const (
	RuleDate            = "date"
	RuleComplianceRates = "compliance_rates"
	RuleConsultingRates = "consulting_rates"
)

// groupRates is the exclusive group shared by the two rate sentences. The
// compliance sentence contains the consulting sentence as a prefix, so only
// the first rule of the group that matches may apply to a paragraph.
const groupRates = "rates"

// partnerSlots is the number of partner name/rate pairs in a rate sentence.
const partnerSlots = 2

// space matches the whitespace Word emits inside a paragraph: ASCII
// whitespace plus Unicode separators such as NBSP and NEL.
const space = `[\s\p{Z}\x{85}]`

var (
	datePattern = regexp.MustCompile(`(` + space + `)(20[0-9]{2})`)

	compliancePattern = regexp.MustCompile(
		`Partner hourly rates are:` + space + `*(.*?)` + space + `*Our Associate hourly rates range from` + space + `+(.+?)\.` +
			space + `+Our bookkeeping rate is` + space + `+(.+?)` + space + `+per hour\.`)

	// The trailing group keeps whatever followed the closing period so that
	// a decimal point inside the range is not taken for the sentence end.
	consultingPattern = regexp.MustCompile(
		`Partner hourly rates are:` + space + `*(.*?)` + space + `*Our Associate hourly rates range from` + space + `+(.+?)\.(` + space + `|$)`)
)

// Replacer produces the replacement text for one match. groups holds the
// full match at index 0 followed by the capture groups; unmatched optional
// groups are empty.
type Replacer func(groups []string, opts types.RateOptions) (string, error)

// Rule is one compiled match rule and its replacement generator.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace Replacer

	// Group, when set, makes the rule exclusive with the other rules of the
	// same group: once one of them matched a paragraph the rest are skipped.
	Group string
}

// apply replaces every match of the rule in text. matched reports whether
// the pattern was found at all.
func (r Rule) apply(text string, opts types.RateOptions) (out string, matched bool, err error) {
	locs := r.Pattern.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		return text, false, nil
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = text[loc[2*g]:loc[2*g+1]]
			}
		}
		repl, err := r.Replace(groups, opts)
		if err != nil {
			return text, true, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(repl)
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String(), true, nil
}

// Registry is the ordered set of rules applied to every paragraph.
type Registry struct {
	rules []Rule
}

// NewRegistry returns the standard rule set: date, then compliance rates,
// then consulting rates.
func NewRegistry() *Registry {
	return &Registry{rules: []Rule{
		{Name: RuleDate, Pattern: datePattern, Replace: incrementYear},
		{Name: RuleComplianceRates, Pattern: compliancePattern, Replace: complianceSentence, Group: groupRates},
		{Name: RuleConsultingRates, Pattern: consultingPattern, Replace: consultingSentence, Group: groupRates},
	}}
}

// Rules returns the rules in evaluation order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Rule looks up a rule by name.
func (r *Registry) Rule(name string) (Rule, bool) {
	for _, rule := range r.rules {
		if rule.Name == name {
			return rule, true
		}
	}
	return Rule{}, false
}

// incrementYear advances the captured year by one, keeping the whitespace
// that preceded it.
func incrementYear(groups []string, _ types.RateOptions) (string, error) {
	year, err := strconv.Atoi(groups[2])
	if err != nil {
		return "", fmt.Errorf("parsing year %q: %w", groups[2], err)
	}
	return groups[1] + strconv.Itoa(year+1), nil
}

func complianceSentence(_ []string, opts types.RateOptions) (string, error) {
	partners, err := partnerClause(opts, types.CompliancePartnerRates)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Partner hourly rates are: %s. Our Associate hourly rates range from %s. Our bookkeeping rate is %s per hour.",
		partners,
		opts.Range(types.ComplianceAssociateRates),
		opts.Range(types.ComplianceBookkeepingRates),
	), nil
}

func consultingSentence(groups []string, opts types.RateOptions) (string, error) {
	partners, err := partnerClause(opts, types.ConsultingPartnerRates)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Partner hourly rates are: %s. Our Associate hourly rates range from %s.%s",
		partners,
		opts.Range(types.ConsultingAssociateRates),
		groups[3],
	), nil
}

// partnerClause renders "A–$100, B–$200" from the first two partner entries.
func partnerClause(opts types.RateOptions, key types.RateKey) (string, error) {
	partners := opts.Partners(key)
	if len(partners) < partnerSlots {
		return "", &ConfigError{Key: string(key), Have: len(partners), Want: partnerSlots}
	}
	pairs := make([]string, partnerSlots)
	for i := range pairs {
		pairs[i] = partners[i].Name + "–" + partners[i].Rate
	}
	return strings.Join(pairs, ", "), nil
}
