package browser

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"vsr/internal/a11y"
	"vsr/internal/accname"
	"vsr/internal/dom"
	"vsr/internal/logging"
)

// Hazard reasons reported by the detector.
const (
	ReasonAriaHiddenFocusable = "Focusable but hidden via aria-hidden"
	ReasonPresentationalFocus = "Focusable with a presentational role"
	ReasonUnnamedControl      = "Interactive element without an accessible name"
	ReasonNoKeyboard          = "Not keyboard accessible (negative tabindex)"
	ReasonClickOnly           = "Click handler on a non-focusable element"
	ReasonPositiveTabindex    = "Positive tabindex overrides reading order"
	ReasonEmptyLink           = "Link without a destination"
)

// DetectionResult is one element the screen reader user would trip over.
type DetectionResult struct {
	ElementID  string   `json:"element_id"`
	Selector   string   `json:"selector"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence"`
	TagName    string   `json:"tag_name"`
	Role       string   `json:"role,omitempty"`
	Href       string   `json:"href,omitempty"`
}

// Link represents a link on the page as the reader announces it.
type Link struct {
	Selector      string   `json:"selector"`
	Href          string   `json:"href"`
	Text          string   `json:"text"`
	IsHazard      bool     `json:"is_hazard"`
	HazardReasons []string `json:"hazard_reasons,omitempty"`
}

var interactiveRoles = map[string]bool{
	"button": true, "checkbox": true, "combobox": true, "link": true, "listbox": true,
	"menuitem": true, "menuitemcheckbox": true, "menuitemradio": true, "option": true,
	"radio": true, "searchbox": true, "slider": true, "spinbutton": true, "switch": true,
	"tab": true, "textbox": true, "treeitem": true,
}

// HazardDetector finds elements that are reachable by one kind of user but
// not announced correctly to a screen reader user.
type HazardDetector struct {
	host  a11y.Host
	names *accname.Resolver
}

// NewHazardDetector creates a detector reading host.
func NewHazardDetector(host a11y.Host) *HazardDetector {
	role := func(n *html.Node) string { return a11y.GetRole(a11y.RoleInput{Node: n}).Role }
	return &HazardDetector{
		host: host,
		names: accname.New(
			accname.WithHidden(func(n *html.Node) bool { return a11y.IsHiddenFromAccessibilityTree(host, n) }),
			accname.WithRole(role),
		),
	}
}

// AnalyzeDocument scans every element below root.
func (d *HazardDetector) AnalyzeDocument(root *html.Node) []DetectionResult {
	timer := logging.StartTimer(logging.CategoryBrowser, "AnalyzeDocument")
	defer timer.Stop()

	var results []DetectionResult
	dom.Walk(root, func(n *html.Node) bool {
		if !dom.IsElement(n) {
			return true
		}
		if r, ok := d.analyze(n); ok {
			results = append(results, r)
		}
		return true
	})
	logging.BrowserDebug("hazard scan found %d elements", len(results))
	return results
}

// IsHazard checks one element.
func (d *HazardDetector) IsHazard(n *html.Node) (bool, []string) {
	reasons := d.reasons(n)
	return len(reasons) > 0, reasons
}

func (d *HazardDetector) analyze(n *html.Node) (DetectionResult, bool) {
	reasons := d.reasons(n)
	if len(reasons) == 0 {
		return DetectionResult{}, false
	}
	return DetectionResult{
		ElementID:  dom.AttrValue(n, "id"),
		Selector:   Selector(n),
		Reasons:    reasons,
		Confidence: calculateConfidence(reasons),
		TagName:    dom.Tag(n),
		Role:       a11y.GetRole(a11y.RoleInput{Node: n}).Role,
		Href:       dom.AttrValue(n, "href"),
	}, true
}

func (d *HazardDetector) reasons(n *html.Node) []string {
	if !dom.IsElement(n) {
		return nil
	}
	var reasons []string
	focusable := dom.IsFocusable(n)
	tabindex := strings.TrimSpace(dom.AttrValue(n, "tabindex"))
	ariaHidden := dom.Closest(n, func(c *html.Node) bool {
		return strings.EqualFold(dom.AttrValue(c, "aria-hidden"), "true")
	}) != nil
	styleHidden := hiddenByStyle(d.host, n)
	hiddenFromReader := ariaHidden || styleHidden || a11y.IsHiddenFromAccessibilityTree(d.host, n)

	if focusable && tabindex != "-1" && ariaHidden && !styleHidden {
		reasons = append(reasons, ReasonAriaHiddenFocusable)
	}
	for _, tok := range dom.Tokens(n, "role") {
		if (tok == "presentation" || tok == "none") && focusable {
			reasons = append(reasons, ReasonPresentationalFocus)
			break
		}
	}

	role := a11y.GetRole(a11y.RoleInput{Node: n}).Role
	if interactiveRoles[role] && !hiddenFromReader {
		if d.names.Name(n) == "" {
			reasons = append(reasons, ReasonUnnamedControl)
		}
		if tabindex == "-1" {
			reasons = append(reasons, ReasonNoKeyboard)
		}
	}
	if dom.HasAttr(n, "onclick") && !focusable && !nativelyClickable(n) {
		reasons = append(reasons, ReasonClickOnly)
	}
	if tabindex != "" && tabindex != "0" && !strings.HasPrefix(tabindex, "-") {
		reasons = append(reasons, ReasonPositiveTabindex)
	}
	if dom.Tag(n) == "a" && dom.HasAttr(n, "href") {
		if h := strings.TrimSpace(dom.AttrValue(n, "href")); h == "" || h == "#" || strings.HasPrefix(strings.ToLower(h), "javascript:") {
			reasons = append(reasons, ReasonEmptyLink)
		}
	}
	return reasons
}

func hiddenByStyle(host a11y.Host, n *html.Node) bool {
	for c := n; dom.IsElement(c); c = c.Parent {
		s, err := host.ComputedStyle(c)
		if err != nil || s.Display == "none" {
			return true
		}
	}
	s, err := host.ComputedStyle(n)
	return err != nil || s.Visibility == "hidden"
}

func nativelyClickable(n *html.Node) bool {
	switch dom.Tag(n) {
	case "label", "summary", "option":
		return true
	}
	return false
}

// calculateConfidence grows with the number of independent reasons.
func calculateConfidence(reasons []string) float64 {
	if len(reasons) == 0 {
		return 0.0
	}
	confidence := 0.5 + float64(len(reasons))*0.15
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// Links returns every link below root with its announced text and analysis.
func (d *HazardDetector) Links(root *html.Node) []Link {
	var links []Link
	dom.Walk(root, func(n *html.Node) bool {
		if dom.Tag(n) != "a" || !dom.HasAttr(n, "href") {
			return true
		}
		reasons := d.reasons(n)
		links = append(links, Link{
			Selector:      Selector(n),
			Href:          dom.AttrValue(n, "href"),
			Text:          d.names.Name(n),
			IsHazard:      len(reasons) > 0,
			HazardReasons: reasons,
		})
		return true
	})
	return links
}

// SafeLinks returns the links without hazards.
func (d *HazardDetector) SafeLinks(root *html.Node) []Link {
	var safe []Link
	for _, l := range d.Links(root) {
		if l.IsHazard {
			logging.BrowserDebug("hazardous link %s: %v", l.Href, l.HazardReasons)
			continue
		}
		safe = append(safe, l)
	}
	return safe
}

// Selector returns a CSS selector that identifies n within its document.
func Selector(n *html.Node) string {
	if !dom.IsElement(n) {
		return ""
	}
	if id := dom.AttrValue(n, "id"); id != "" && !strings.ContainsAny(id, " \"'") {
		return "#" + id
	}
	var parts []string
	for c := n; dom.IsElement(c); c = c.Parent {
		if id := dom.AttrValue(c, "id"); id != "" && c != n && !strings.ContainsAny(id, " \"'") {
			parts = append(parts, "#"+id)
			break
		}
		parts = append(parts, fmt.Sprintf("%s:nth-of-type(%d)", dom.Tag(c), nthOfType(c)))
		if dom.Tag(c) == "html" {
			break
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

func nthOfType(n *html.Node) int {
	i := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if dom.Tag(s) == dom.Tag(n) {
			i++
		}
	}
	return i
}

// SortByConfidence orders results most confident first, then by selector.
func SortByConfidence(results []DetectionResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].Selector < results[j].Selector
	})
}
