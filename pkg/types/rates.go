// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RateKey names one entry of the fixed rate-option key set. The values match
// the config_name fields stored in user-config.json.
type RateKey string

const (
	CompliancePartnerRates     RateKey = "COMPLIANCE_PARTNER_RATES"
	ComplianceAssociateRates   RateKey = "COMPLIANCE_ASSOCIATE_RATES"
	ComplianceBookkeepingRates RateKey = "COMPLIANCE_BOOKKEEPING_RATES"
	ConsultingPartnerRates     RateKey = "CONSULTING_PARTNER_RATES"
	ConsultingAssociateRates   RateKey = "CONSULTING_ASSOCIATE_RATES"
)

// RateKeys lists every recognised rate key in display order.
var RateKeys = []RateKey{
	CompliancePartnerRates,
	ComplianceAssociateRates,
	ComplianceBookkeepingRates,
	ConsultingPartnerRates,
	ConsultingAssociateRates,
}

// Placeholders substituted when a rate option is not configured.
const (
	DefaultPartnerName = "No name set"
	DefaultRate        = "No rate set"
)

// PartnerRate pairs a partner's name with the hourly rate quoted for them.
type PartnerRate struct {
	// Name is the partner's display name (e.g. "Jane Smith").
	Name string `json:"name" yaml:"name"`

	// Rate is the hourly rate text including the currency sign (e.g. "$275").
	Rate string `json:"rate" yaml:"rate"`
}

// RateOptions holds the current fee schedule used to rewrite rate-disclosure
// sentences. A nil partner list or empty string falls back to the
// placeholders above; a non-nil partner list with fewer than two entries is a
// configuration error once a rate sentence is found.
type RateOptions struct {
	CompliancePartners    []PartnerRate `json:"COMPLIANCE_PARTNER_RATES,omitempty" yaml:"compliance_partner_rates,omitempty"`
	ComplianceAssociate   string        `json:"COMPLIANCE_ASSOCIATE_RATES,omitempty" yaml:"compliance_associate_rates,omitempty"`
	ComplianceBookkeeping string        `json:"COMPLIANCE_BOOKKEEPING_RATES,omitempty" yaml:"compliance_bookkeeping_rates,omitempty"`
	ConsultingPartners    []PartnerRate `json:"CONSULTING_PARTNER_RATES,omitempty" yaml:"consulting_partner_rates,omitempty"`
	ConsultingAssociate   string        `json:"CONSULTING_ASSOCIATE_RATES,omitempty" yaml:"consulting_associate_rates,omitempty"`
}

// PlaceholderPartners returns the two-entry partner list used when no
// partner rates are configured.
func PlaceholderPartners() []PartnerRate {
	return []PartnerRate{
		{Name: DefaultPartnerName, Rate: DefaultRate},
		{Name: DefaultPartnerName, Rate: DefaultRate},
	}
}

// Partners returns the partner list for key, substituting placeholders when
// the list is absent and filling blank fields of present entries.
func (o RateOptions) Partners(key RateKey) []PartnerRate {
	var src []PartnerRate
	switch key {
	case CompliancePartnerRates:
		src = o.CompliancePartners
	case ConsultingPartnerRates:
		src = o.ConsultingPartners
	}
	if src == nil {
		return PlaceholderPartners()
	}
	out := make([]PartnerRate, len(src))
	for i, p := range src {
		if p.Name == "" {
			p.Name = DefaultPartnerName
		}
		if p.Rate == "" {
			p.Rate = DefaultRate
		}
		out[i] = p
	}
	return out
}

// Range returns the string rate for key, or DefaultRate when unset.
func (o RateOptions) Range(key RateKey) string {
	var v string
	switch key {
	case ComplianceAssociateRates:
		v = o.ComplianceAssociate
	case ComplianceBookkeepingRates:
		v = o.ComplianceBookkeeping
	case ConsultingAssociateRates:
		v = o.ConsultingAssociate
	}
	if v == "" {
		return DefaultRate
	}
	return v
}
