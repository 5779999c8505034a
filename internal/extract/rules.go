package extract

import (
	"fmt"
	"regexp"
)

// Rule is one named extraction rule: an ordered list of pattern
// alternatives, an optional value transform, and a base confidence.
// Rules are read-only configuration; a Catalog compiles them once and is
// then safely shared across concurrent pipeline runs.
type Rule struct {
	Name           string
	Patterns       []string
	Transform      Transform
	BaseConfidence float64

	compiled []*regexp.Regexp
}

// Catalog is an immutable, ordered collection of extraction rules.
type Catalog struct {
	rules []Rule
}

// NewCatalog compiles the given rules into a catalog. Rule order is
// preserved; alternative order within a rule is significant (first
// alternative with a match wins).
func NewCatalog(rules []Rule) (*Catalog, error) {
	compiled := make([]Rule, len(rules))
	for i, r := range rules {
		r.compiled = make([]*regexp.Regexp, len(r.Patterns))
		for j, p := range r.Patterns {
			// Every alternative runs in multiline+dotall mode so anchors
			// bind per line and '.' crosses line boundaries.
			re, err := regexp.Compile("(?ms)" + p)
			if err != nil {
				return nil, fmt.Errorf("rule %q pattern %d: %w", r.Name, j, err)
			}
			r.compiled[j] = re
		}
		compiled[i] = r
	}
	return &Catalog{rules: compiled}, nil
}

// MustCatalog is NewCatalog that panics on compile failure. Intended for
// static rule tables.
func MustCatalog(rules []Rule) *Catalog {
	c, err := NewCatalog(rules)
	if err != nil {
		panic(err)
	}
	return c
}

// Rules returns the rules in declaration order.
func (c *Catalog) Rules() []Rule { return c.rules }

// Len returns the number of rules in the catalog.
func (c *Catalog) Len() int { return len(c.rules) }

const (
	datePattern = `([A-Za-z]+\s+\d{1,2},?\s+\d{4}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`
	moneyGroup  = `\$?([\d,]+(?:\.\d{2})?)`
)

// DefaultCatalog returns the standard contract extraction rule set.
func DefaultCatalog() *Catalog {
	return MustCatalog(defaultRules())
}

func defaultRules() []Rule {
	return []Rule{
		// Party identification
		{
			Name: "party_1_name",
			Patterns: []string{
				`(?i)(?:between|by\s+and\s+between)\s+([A-Z][A-Za-z\s&,.\-]+?)(?:\s+\(|,|\s+a\s+|\s+and\b)`,
				`(?i)^This\s+(?:Agreement|Contract).*?by\s+and\s+between\s+([A-Z][A-Za-z\s&,.\-]+?)(?:\s+\(|,)`,
				`(?i)(?:Client|Customer|Buyer|Purchaser):\s*([A-Z][A-Za-z\s&,.\-]+?)(?:\n|,|\()`,
				`(?i)"Party A"[:\s]+means\s+([A-Z][A-Za-z\s&,.\-]+?)(?:\s+\(|,|\s+and\b)`,
			},
			BaseConfidence: 0.6,
		},
		{
			Name: "party_2_name",
			Patterns: []string{
				`(?i)(?:between.*?and|,\s+and)\s+([A-Z][A-Za-z\s&,.\-]+?)(?:\s+\(|,|\s+\)|$)`,
				`(?i)(?:Vendor|Supplier|Seller|Provider|Contractor):\s*([A-Z][A-Za-z\s&,.\-]+?)(?:\n|,|\()`,
				`(?i)"Party B"[:\s]+means\s+([A-Z][A-Za-z\s&,.\-]+?)(?:\s+\(|,|\s+and\b)`,
			},
			BaseConfidence: 0.6,
		},

		// Dates
		{
			Name: "effective_date",
			Patterns: []string{
				`(?i)\b(?:effective|commencement|start)\s+date[:\s]+` + datePattern,
				`(?i)effective\s+as\s+of\s+` + datePattern,
				`(?i)shall\s+commence\s+on\s+` + datePattern,
				`(?i)(?:agreement\s+)?(?:effective|executed|signed|dated)\s+(?:on\s+)?` + datePattern,
				`(?i)this\s+(?:agreement|contract).*?(?:dated|executed|signed)\s+` + datePattern,
				`(?i)(?:contract|agreement)\s+date[:\s]+` + datePattern,
				`(?i)dated\s+this\s+\d{1,2}(?:st|nd|rd|th)?\s+day\s+of\s+([A-Za-z]+,?\s+\d{4})`,
				`(?i)executed\s+on\s+` + datePattern,
			},
			Transform:      TransformDate,
			BaseConfidence: 0.7,
		},
		{
			Name: "execution_date",
			Patterns: []string{
				`(?i)(?:executed|signed|dated)\s+(?:this|on)\s+` + datePattern,
				`(?i)date\s+of\s+execution[:\s]+` + datePattern,
			},
			Transform:      TransformDate,
			BaseConfidence: 0.65,
		},
		{
			Name: "termination_date",
			Patterns: []string{
				`(?i)(?:terminat|expir|end)(?:es|ing|ation)?\s+(?:on|date)[:\s]+` + datePattern,
				`(?i)through\s+` + datePattern,
				`(?i)until\s+` + datePattern,
				`(?i)(?:contract|agreement)\s+(?:terminates|expires|ends)\s+(?:on\s+)?` + datePattern,
				`(?i)(?:expiry|expiration)\s+date[:\s]+` + datePattern,
				`(?i)end\s+date[:\s]+` + datePattern,
				`(?i)valid\s+(?:until|through)\s+` + datePattern,
				`(?i)contract\s+period[:\s]+.*?(?:to|until|through)\s+` + datePattern,
			},
			Transform:      TransformDate,
			BaseConfidence: 0.65,
		},
		{
			Name: "contract_term",
			Patterns: []string{
				`(?i)contract\s+term[:\s]+(\d+\s+(?:months?|years?))`,
				`(?i)(?:term|period)\s+of\s+(\d+\s+(?:months?|years?))`,
				`(?i)for\s+a\s+(?:term|period)\s+of\s+(\d+\s+(?:months?|years?))`,
				`(?i)(\d+[-\s](?:month|year)s?)\s+(?:term|period|contract)`,
			},
			BaseConfidence: 0.7,
		},

		// Financial details
		{
			Name: "contract_value",
			Patterns: []string{
				`(?i)total\s+(?:contract\s+)?(?:value|amount|price)[:\s]+` + moneyGroup,
				`(?i)(?:contract|total)\s+(?:sum|consideration)[:\s]+` + moneyGroup,
				`(?i)(?:annual\s+contract\s+value|total\s+annual\s+value|acv)[:\s]+` + moneyGroup,
				`(?i)annual\s+contract\s+value[:\s]+` + moneyGroup + `(?:\s+\+[^=]*)?(?:\s*=\s*` + moneyGroup + `)?`,
				`(?i)total\s+annual\s+value[:\s]+` + moneyGroup,
				`(?i)total\s+monthly\s+amount[:\s]+` + moneyGroup,
				`(?i)monthly\s+(?:fee|payment|amount)[:\s]+` + moneyGroup,
			},
			Transform:      TransformMoney,
			BaseConfidence: 0.7,
		},
		{
			Name: "currency",
			Patterns: []string{
				`(?i)\b(USD|EUR|GBP|INR|CAD|AUD|CNY|JPY)\b`,
				`(?i)\b(dollars|euros|pounds|rupees)\b`,
				`([$€£₹¥])`,
			},
			Transform:      TransformCurrency,
			BaseConfidence: 0.8,
		},
		{
			Name: "payment_terms",
			Patterns: []string{
				`(?i)payment\s+terms[:\s]+([^\n]+)`,
				`(?i)\bnet\s+(\d+)\s*(?:days)?\b`,
				`(?i)payment\s+(?:is\s+)?due\s+(?:within\s+)?(\d+)\s+days`,
				`(?i)(\d+)\s+days\s+(?:from|after)\s+(?:invoice|receipt)`,
			},
			BaseConfidence: 0.65,
		},
		{
			Name: "billing_frequency",
			Patterns: []string{
				// Explicit billing context only; generic "per month" phrasing
				// must never set this field (late-fee cadence guard).
				`(?i)\b(monthly|quarterly|annually|yearly|weekly|bi-weekly|semi-annually)\s+(?:billing|payment|invoice)\s+(?:schedule|cycle|frequency)`,
				`(?i)(?:billed|invoiced|paid)\s+(monthly|quarterly|annually|yearly|weekly)\s+(?:in\s+advance|recurring)`,
				`(?i)(?:recurring|subscription)\s+(?:billing|payment)\s*:\s*(monthly|quarterly|annually|yearly|weekly)`,
				`(?i)billing\s+cycle\s*:\s*(monthly|quarterly|annually|yearly|weekly)`,
				`(?i)subscription\s+(?:billing|payment)\s*:\s*(monthly|quarterly|annually|yearly|weekly)`,
			},
			BaseConfidence: 0.8,
		},

		// Legal terms
		{
			Name: "governing_law",
			Patterns: []string{
				`(?i)governed\s+by\s+(?:the\s+)?laws?\s+of\s+(?:the\s+)?(?:state\s+of\s+)?([A-Za-z\s]+?)(?:\.|,|\n)`,
				`(?i)(?:applicable|governing)\s+law[:\s]+([A-Za-z\s]+?)(?:\.|,|\n)`,
				`(?i)subject\s+to\s+(?:the\s+)?(?:exclusive\s+)?jurisdiction\s+of\s+([A-Za-z\s]+?)(?:\.|,|\n)`,
				`(?i)governing\s+law[:\s]+(?:this\s+(?:agreement|contract)\s+(?:shall\s+be\s+)?)?(?:governed\s+by\s+)?(?:the\s+)?(?:laws?\s+of\s+)?(?:the\s+)?(?:state\s+of\s+)?([A-Za-z\s]+?)(?:\.|,|\n|dispute)`,
				`(?i)this\s+(?:agreement|contract).*?(?:governed|subject)\s+to.*?(?:laws?\s+of\s+)?(?:the\s+)?(?:state\s+of\s+)?([A-Za-z\s]+?)(?:\.|,|\n)`,
				`(?i)laws?\s+of\s+(?:the\s+)?(?:state\s+of\s+)?([A-Za-z\s]+?)\s+(?:shall\s+)?(?:apply|govern)`,
				`(?i)jurisdiction[:\s]+([A-Za-z\s]+?)(?:\.|,|\n|court)`,
				`(?i)disputes.*?(?:governed|resolved).*?(?:in\s+)?(?:the\s+)?(?:state\s+of\s+)?([A-Za-z\s]+?)(?:\.|,|\n)`,
			},
			BaseConfidence: 0.75,
		},
		{
			Name: "liability_cap",
			Patterns: []string{
				`(?i)liability.*?(?:shall\s+not\s+exceed|limited\s+to|cap(?:ped)?\s+at)\s+` + moneyGroup,
				`(?i)maximum\s+liability.*?` + moneyGroup,
				`(?i)aggregate\s+liability.*?` + moneyGroup,
				`(?i)liability.*?(?:capped|limited|restricted|maximum).*?` + moneyGroup,
				`(?i)(?:total|aggregate|maximum)\s+(?:damages|liability).*?` + moneyGroup,
				`(?i)liability\s+(?:is\s+)?limited\s+to\s+(?:a\s+maximum\s+of\s+)?` + moneyGroup,
				`(?i)damages.*?(?:shall\s+not\s+exceed|limited\s+to|maximum\s+of)\s+` + moneyGroup,
				`(?i)(?:cap\s+on\s+)?(?:damages|liability)[:\s]+` + moneyGroup,
				`(?i)liability.*?(?:up\s+to|not\s+to\s+exceed)\s+` + moneyGroup,
				`(?i)liability.*?limited\s+to\s+(\d+)\s+months?\s+of\s+(?:fees|payments?)`,
			},
			Transform:      TransformMoney,
			BaseConfidence: 0.65,
		},
		{
			Name: "confidentiality",
			Patterns: []string{
				`(?i)(confidential(?:ity)?|non-disclosure|NDA)(?:\s+(?:clause|provision|agreement))?`,
				`(?i)shall\s+(?:keep|maintain|treat\s+as)\s+confidential`,
				`(?i)proprietary\s+and\s+confidential\s+information`,
			},
			Transform:      TransformBool,
			BaseConfidence: 0.8,
		},

		// Renewal terms
		{
			Name: "auto_renewal",
			Patterns: []string{
				`(?i)\bauto(?:matic(?:ally)?)?\s*renew(?:al|s|ed)?\b`,
				`(?i)\bauto[-\s]renews?\b`,
				`(?i)auto-renewal`,
				`(?i)shall\s+automatically\s+renew`,
				`(?i)contract\s+auto[-\s]renews?`,
				`(?i)unless.*?(?:terminated|cancelled).*?automatically\s+renew`,
				`(?i)contract\s+auto-renews\s+for\s+additional`,
				`(?i)auto-renewal[:\s]+yes`,
				`(?i)auto-renewal[:\s]+true`,
				`(?i)(?:contract|agreement)\s+(?:shall\s+)?(?:automatically\s+)?renew(?:s)?(?:\s+(?:for|automatically))?`,
				`(?i)(?:renew|extend)(?:al|s)?\s+(?:automatic(?:ally)?|auto)`,
				`(?i)(?:automatically\s+)?(?:renew|extend)(?:s|ed|ing)?\s+(?:for\s+)?(?:additional|successive|further)\s+(?:term|period)`,
				`(?i)(?:term|contract)\s+(?:shall\s+)?(?:be\s+)?(?:automatically\s+)?(?:renewed|extended)`,
				`(?i)unless\s+(?:either\s+party\s+)?(?:provides?\s+)?(?:written\s+)?notice.*?(?:renew|extend)`,
				`(?i)renewal[:\s]+(?:automatic|yes|true)`,
			},
			Transform:      TransformBool,
			BaseConfidence: 0.75,
		},
		{
			Name: "renewal_term",
			Patterns: []string{
				`(?i)renew.*?for\s+(?:an?\s+)?(?:additional\s+)?(\d+)\s+(?:year|month|day)s?`,
				`(?i)renewal\s+(?:term|period)[:\s]+(\d+)\s+(?:year|month|day)s?`,
				`(?i)(?:successive|additional)\s+(?:term|period)s?\s+of\s+(\d+)\s+(?:year|month|day)s?`,
			},
			BaseConfidence: 0.65,
		},
		{
			Name: "notice_period",
			Patterns: []string{
				`(?i)(\d+)\s+days?\s+(?:written\s+)?notice`,
				`(?i)notice\s+(?:period|of)[:\s]+(\d+)\s+days?`,
				`(?i)at\s+least\s+(\d+)\s+days?\s+(?:prior\s+)?(?:written\s+)?notice`,
				`(?i)(?:with\s+)?(\d+)\s+days?\s+(?:prior\s+)?(?:written\s+)?notice\s+(?:of\s+termination|to\s+terminate)`,
				`(?i)terminate.*?(?:with\s+)?(\d+)\s+days?\s+(?:advance\s+)?(?:written\s+)?notice`,
				`(?i)(?:written\s+)?notice\s+of\s+(?:at\s+least\s+)?(\d+)\s+days?`,
				`(?i)(\d+)\s+days?\s+(?:advance\s+)?(?:written\s+)?notice\s+(?:prior\s+to|before)`,
				`(?i)(?:minimum|required)\s+notice[:\s]+(\d+)\s+days?`,
				`(?i)notice\s+requirement[:\s]+(\d+)\s+days?`,
				`(?i)(\d+)\s+days?\s+notice\s+(?:shall\s+be\s+)?(?:given|provided|required)`,
			},
			BaseConfidence: 0.7,
		},

		// Service levels
		{
			Name: "sla_uptime",
			Patterns: []string{
				`(?i)uptime.*?(\d+(?:\.\d+)?)\s*%`,
				`(?i)availability.*?(\d+(?:\.\d+)?)\s*%`,
				`(?i)(\d+(?:\.\d+)?)\s*%\s+(?:uptime|availability)`,
			},
			Transform:      TransformFloat,
			BaseConfidence: 0.75,
		},
		{
			Name: "support_hours",
			Patterns: []string{
				`(?i)support.*?(\d+)\s*[x×]\s*(\d+)`,
				`(?i)(?:24[/x×]7|24\s+hours)`,
				`(?i)business\s+hours.*?(\d+:\d+.*?\d+:\d+)`,
			},
			BaseConfidence: 0.65,
		},

		// Termination clauses
		{
			Name: "termination_for_convenience",
			Patterns: []string{
				`(?i)terminat\w+\s+(?:for\s+)?convenience`,
				`(?i)either\s+party\s+may\s+terminate`,
				`(?i)without\s+cause.*?terminat`,
			},
			Transform:      TransformBool,
			BaseConfidence: 0.7,
		},
		{
			Name: "termination_for_cause",
			Patterns: []string{
				`(?i)terminat\w+\s+for\s+cause`,
				`(?i)material\s+breach.*?terminat`,
				`(?i)default.*?terminat`,
			},
			Transform:      TransformBool,
			BaseConfidence: 0.7,
		},

		// Signatures
		{
			Name: "signatory_1_name",
			Patterns: []string{
				`(?i)(?:for\s+.*?\n)?name\s*:\s*([A-Za-z\s.]+?)(?:\n|title|signature)`,
				`(?i)authorized\s+representative\s*:\s*([A-Za-z\s.]+?)(?:\n|$)`,
				`(?i)signed\s+by\s*:\s*([A-Za-z\s.]+?)(?:\n|$)`,
			},
			BaseConfidence: 0.7,
		},
		{
			Name: "signatory_1_title",
			Patterns: []string{
				`(?i)title\s*:\s*([A-Za-z\s.]+?)(?:\n|signature)`,
				`(?i)([A-Za-z\s]+(?:director|manager|head|lead|officer))\s*(?:\n|$)`,
			},
			BaseConfidence: 0.65,
		},
		{
			Name: "signatory_2_name",
			Patterns: []string{
				`(?i)(?:for\s+.*?\n.*?name\s*:\s*[^\n]+\n.*?){1}name\s*:\s*([A-Za-z\s.]+?)(?:\n|title|signature)`,
			},
			BaseConfidence: 0.7,
		},
		{
			Name: "signatory_2_title",
			Patterns: []string{
				`(?i)(?:for\s+.*?\n.*?title\s*:\s*[^\n]+\n.*?){1}title\s*:\s*([A-Za-z\s.]+?)(?:\n|signature)`,
			},
			BaseConfidence: 0.65,
		},

		// Contact information
		{
			Name: "primary_contact_name",
			Patterns: []string{
				`(?i)primary\s+contact\s*:\s*([A-Za-z\s.]+?)(?:\s+\([^)]+\)|—|$)`,
				`(?i)contact\s*:\s*([A-Za-z\s.]+?)(?:\s+\([^)]+\)|—|$)`,
			},
			BaseConfidence: 0.8,
		},
		{
			Name: "primary_contact_email",
			Patterns: []string{
				`(?i)([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`,
			},
			BaseConfidence: 0.9,
		},
		{
			Name: "customer_address",
			Patterns: []string{
				`(?i)(?:customer\s+)?address\s*:\s*([^,\n]+,\s*[^,\n]+,\s*[^,\n]+)`,
				`(?i)(\d+\s+[A-Za-z\s]+,\s*[A-Za-z\s]+,\s*[A-Z]{2}\s+\d{5}(?:-\d{4})?,\s*[A-Z]{2,3})`,
			},
			BaseConfidence: 0.8,
		},
	}
}
