// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rollover

import "github.com/pdiddy/engagement-letters/pkg/types"

// Paragraph is the unit of matching: a block of plain text that can be
// read and replaced as a whole.
type Paragraph interface {
	Text() string
	SetText(text string)
}

// RewriteParagraph applies the registry's rules to p in order. Independent
// rules all get a chance; within an exclusive group only the first rule that
// matches applies. p is written once, and only when some rule matched.
//
// The only error comes from a replacement that cannot be built from opts
// (a *ConfigError); p is left untouched in that case.
func RewriteParagraph(p Paragraph, reg *Registry, opts types.RateOptions) (changed bool, err error) {
	text := p.Text()
	matchedGroups := make(map[string]bool)

	for _, rule := range reg.Rules() {
		if rule.Group != "" && matchedGroups[rule.Group] {
			continue
		}
		out, matched, err := rule.apply(text, opts)
		if err != nil {
			return false, err
		}
		if !matched {
			continue
		}
		if rule.Group != "" {
			matchedGroups[rule.Group] = true
		}
		text = out
		changed = true
	}

	if changed {
		p.SetText(text)
	}
	return changed, nil
}
