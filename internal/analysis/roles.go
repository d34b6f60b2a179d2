package analysis

import "strings"

// Role is the semantic meaning assigned to a source column.
type Role int

const (
	RoleName Role = iota
	RoleMarketShare
	RoleMarketGrowth
	RoleQuantity
)

var numericRoles = []Role{RoleMarketShare, RoleMarketGrowth, RoleQuantity}

func (r Role) String() string {
	switch r {
	case RoleName:
		return "Name"
	case RoleMarketShare:
		return "MarketShare"
	case RoleMarketGrowth:
		return "MarketGrowth"
	case RoleQuantity:
		return "Quantity"
	default:
		return "Unknown"
	}
}

// Category is a BCG quadrant.
type Category int

const (
	Unclassified Category = iota
	Star
	CashCow
	QuestionMark
	Dog
)

// Categories lists the quadrants in display order.
var Categories = []Category{Star, CashCow, QuestionMark, Dog}

func (c Category) String() string {
	switch c {
	case Star:
		return "Star"
	case CashCow:
		return "Cash Cow"
	case QuestionMark:
		return "Question Mark"
	case Dog:
		return "Dog"
	default:
		return "Unknown"
	}
}

// roleRule binds a numeric role to the header fragments that identify it.
type roleRule struct {
	Role     Role
	Synonyms []string
}

// roleRules is evaluated top to bottom for every header.
var roleRules = []roleRule{
	{RoleMarketShare, []string{"share", "marketshare", "sharerate", "market_share", "marketvalue"}},
	{RoleMarketGrowth, []string{"growth", "marketgrowth", "growthrate", "growth_rate", "marketgrowthrate"}},
	{RoleQuantity, []string{"quantity", "count", "units", "sold", "qty", "volume", "amount"}},
}

// namePatterns are checked in priority order against the lowercased header.
var namePatterns = []string{"name", "product", "item", "description", "title", "sku", "model"}

// indexHeaders never serve as a label column.
var indexHeaders = map[string]bool{"index": true, "id": true, "unnamed": true, "#": true}

func normalizeHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "_", "")
}

// matchRole returns the first rule whose synonyms occur in the header and
// whose role is still free.
func matchRole(header string, taken map[Role]string) (Role, bool) {
	norm := normalizeHeader(header)
	for _, rule := range roleRules {
		if _, ok := taken[rule.Role]; ok {
			continue
		}
		for _, syn := range rule.Synonyms {
			if strings.Contains(norm, syn) {
				return rule.Role, true
			}
		}
	}
	return 0, false
}

func isPlaceholderHeader(h string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(h)), "unnamed")
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}
