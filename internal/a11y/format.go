package a11y

import "strings"

// SpokenPhrase joins the announced fields of a node.
func SpokenPhrase(n AccessibilityNode) string {
	parts := []string{n.SpokenRole, n.AccessibleName}
	if n.AccessibleValue != n.AccessibleName {
		parts = append(parts, n.AccessibleValue)
	}
	if n.AccessibleDescription != n.AccessibleName {
		parts = append(parts, n.AccessibleDescription)
	}
	parts = append(parts, n.AccessibleAttributeLabels...)
	return joinNonEmpty(parts)
}

// ItemText is the textual content of a node: its name and, when different,
// its value.
func ItemText(n AccessibilityNode) string {
	parts := []string{n.AccessibleName}
	if n.AccessibleValue != n.AccessibleName {
		parts = append(parts, n.AccessibleValue)
	}
	return joinNonEmpty(parts)
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
