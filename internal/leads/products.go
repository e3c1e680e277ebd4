package leads

import "strings"

// Catalog lists the honey products offered in the lead form.
var Catalog = []string{
	"Acacia Honey", "Mustard Honey", "Multifloral Honey", "Sidr Honey",
	"Smoked Honey", "Gondhoraj Honey", "Jeera Masala Honey", "Chilly Honey",
	"Forest Honey", "Sundarban Honey", "Tribal Honey", "Ajwain Honey",
	"Niger Honey", "Dark - phondaghat Honey", "Natural (MFH) Kejriwal Honey",
	"Network Honey",
}

// NormalizeProducts trims names, drops blanks and keeps the first occurrence of each.
func NormalizeProducts(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ToggleProduct adds name to the lead's products when absent and removes it
// when present. The input lead is not modified.
func ToggleProduct(lead *Lead, name string) *Lead {
	out := lead.Clone()
	name = strings.TrimSpace(name)
	if name == "" {
		return out
	}
	current := NormalizeProducts(out.HoneyTypes)
	for i, existing := range current {
		if existing == name {
			out.HoneyTypes = append(current[:i:i], current[i+1:]...)
			return out
		}
	}
	out.HoneyTypes = append(current, name)
	return out
}

// Products returns the lead's product set, folding in the legacy single-value field.
func (l *Lead) Products() []string {
	if len(l.HoneyTypes) > 0 {
		return NormalizeProducts(l.HoneyTypes)
	}
	if strings.TrimSpace(l.HoneyType) != "" {
		return []string{strings.TrimSpace(l.HoneyType)}
	}
	return nil
}
