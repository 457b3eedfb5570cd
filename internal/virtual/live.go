package virtual

import (
	"strings"

	"golang.org/x/net/html"

	"vsr/internal/a11y"
	"vsr/internal/accname"
	"vsr/internal/dom"
	"vsr/internal/logging"
)

// Live region politeness settings.
const (
	LiveOff       = "off"
	LivePolite    = "polite"
	LiveAssertive = "assertive"
)

var defaultRelevant = []string{"additions", "text"}

// liveRegion is the effective live region configuration of a mutated node.
type liveRegion struct {
	live       string
	atomic     bool
	relevant   []string
	node       *html.Node
	atomicNode *html.Node
}

func (r liveRegion) relevantTo(kind string) bool {
	return contains(r.relevant, kind)
}

// implicitLive holds the live settings carried by live region roles.
var implicitLive = map[string]struct {
	live   string
	atomic bool
}{
	"alert":   {LiveAssertive, true},
	"status":  {LivePolite, true},
	"log":     {LivePolite, false},
	"marquee": {LiveOff, false},
	"timer":   {LiveOff, false},
}

// resolveLiveRegion walks from target up to container. Each of aria-live,
// aria-atomic and aria-relevant is taken from the closest element that
// defines it.
func resolveLiveRegion(container, target *html.Node) (liveRegion, bool) {
	var (
		r                           liveRegion
		haveLive, haveAtomic, haveR bool
	)
	start := target
	if !dom.IsElement(start) {
		start = dom.ParentElement(start)
	}
	for n := start; n != nil; n = n.Parent {
		if dom.IsElement(n) {
			role := a11y.GetRole(a11y.RoleInput{Node: n}).Role
			implicit, hasImplicit := implicitLive[role]

			if !haveLive {
				if v, ok := dom.Attr(n, "aria-live"); ok {
					r.live, r.node, haveLive = strings.ToLower(strings.TrimSpace(v)), n, true
				} else if hasImplicit {
					r.live, r.node, haveLive = implicit.live, n, true
				}
			}
			if !haveAtomic {
				if v, ok := dom.Attr(n, "aria-atomic"); ok {
					r.atomic, r.atomicNode, haveAtomic = strings.EqualFold(strings.TrimSpace(v), "true"), n, true
				} else if hasImplicit && implicit.atomic {
					r.atomic, r.atomicNode, haveAtomic = true, n, true
				}
			}
			if !haveR {
				if toks := dom.Tokens(n, "aria-relevant"); len(toks) > 0 {
					r.relevant, haveR = expandRelevant(toks), true
				}
			}
		}
		if n == container {
			break
		}
	}
	if !haveLive || r.live == LiveOff || r.live == "" {
		return liveRegion{}, false
	}
	if !haveR {
		r.relevant = defaultRelevant
	}
	if r.atomicNode == nil {
		r.atomicNode = r.node
	}
	return r, true
}

func expandRelevant(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		t = strings.ToLower(t)
		if t == "all" {
			return []string{"additions", "removals", "text"}
		}
		out = append(out, t)
	}
	return out
}

// handleMutations announces live region changes. The tree cache is
// invalidated for every delivery.
func (e *Engine) handleMutations(records []dom.MutationRecord) {
	if !e.started {
		return
	}
	e.invalidate()
	logging.LiveDebug("delivered %d mutation records", len(records))
	for _, rec := range records {
		if text := e.liveAnnouncement(rec); text != "" {
			e.spokenPhraseLog = append(e.spokenPhraseLog, text)
		}
	}
}

func (e *Engine) liveAnnouncement(rec dom.MutationRecord) string {
	if rec.Type == dom.Attributes {
		return ""
	}
	region, ok := resolveLiveRegion(e.container, rec.Target)
	if !ok {
		return ""
	}

	var text string
	switch {
	case region.atomic:
		if a11y.IsHiddenFromAccessibilityTree(e.host, region.atomicNode) {
			return ""
		}
		text = accname.Normalize(dom.TextContent(region.atomicNode))
	case rec.Type == dom.CharacterData:
		if region.relevantTo("text") {
			text = accname.Normalize(rec.Target.Data)
		}
	default:
		var parts []string
		if region.relevantTo("additions") {
			parts = append(parts, e.nodesText(rec.AddedNodes, true)...)
		}
		if region.relevantTo("removals") {
			parts = append(parts, e.nodesText(rec.RemovedNodes, false)...)
		}
		text = strings.Join(parts, " ")
	}
	if text == "" {
		return ""
	}
	logging.Live("%s: %s", region.live, text)
	return region.live + ": " + text
}

// nodesText returns the text of nodes. Detached nodes have no style, so
// hidden nodes are skipped only for attached ones.
func (e *Engine) nodesText(nodes []*html.Node, attached bool) []string {
	var out []string
	for _, n := range nodes {
		if attached && dom.IsElement(n) && a11y.IsHiddenFromAccessibilityTree(e.host, n) {
			continue
		}
		if t := accname.Normalize(dom.TextContent(n)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
