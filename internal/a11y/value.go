package a11y

import (
	"math/big"
	"strings"

	"golang.org/x/net/html"

	"vsr/internal/dom"
)

// AccessibleValue returns the current value of a form control. Checkboxes
// and radios never expose a value; their state is spoken as a label.
func AccessibleValue(n *html.Node) string {
	switch dom.Tag(n) {
	case "select":
		var values []string
		dom.Walk(n, func(c *html.Node) bool {
			if dom.Tag(c) == "option" && dom.HasAttr(c, "selected") {
				values = append(values, optionValue(c))
			}
			return true
		})
		if len(values) == 0 {
			return ""
		}
		if dom.HasAttr(n, "multiple") {
			return strings.Join(values, ";")
		}
		return values[0]
	case "input":
		switch dom.InputType(n) {
		case "checkbox", "radio", "button", "submit", "reset", "image", "hidden", "file":
			return ""
		}
		return dom.AttrValue(n, "value")
	case "textarea":
		return dom.TextContent(n)
	case "progress", "meter":
		return strings.TrimSpace(dom.AttrValue(n, "value"))
	}
	return ""
}

func optionValue(opt *html.Node) string {
	if v, ok := dom.Attr(opt, "value"); ok {
		return v
	}
	return strings.Join(strings.Fields(dom.TextContent(opt)), " ")
}

// Percentage renders now as a percentage of the [min, max] range, rounded to
// two decimals with halves away from zero. Arithmetic is exact on the decimal
// inputs. When a bound is not numeric or the bounds are equal the raw value
// is suffixed with "%"; a non-numeric value is returned unchanged.
func Percentage(now, min, max string) string {
	v, ok := parseDecimal(now)
	if !ok {
		return now
	}
	lo, okLo := parseDecimal(min)
	hi, okHi := parseDecimal(max)
	if !okLo || !okHi || hi.Cmp(lo) == 0 {
		return now + "%"
	}

	// Hundredths of a percent.
	scaled := new(big.Rat).Sub(v, lo)
	scaled.Mul(scaled, big.NewRat(10000, 1))
	scaled.Quo(scaled, new(big.Rat).Sub(hi, lo))

	num := new(big.Int).Abs(scaled.Num())
	q, r := new(big.Int).QuoRem(num, scaled.Denom(), new(big.Int))
	if r.Lsh(r, 1).Cmp(scaled.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	if scaled.Sign() < 0 {
		q.Neg(q)
	}
	out := new(big.Rat).SetFrac(q, big.NewInt(100)).FloatString(2)
	out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	return out + "%"
}

// parseDecimal reads a decimal number. Fractions like "1/3" are rejected.
func parseDecimal(s string) (*big.Rat, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "/") {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(s)
	return r, ok
}
