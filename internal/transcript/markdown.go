package transcript

import (
	"fmt"
	"strings"
)

// Markdown renders run as a markdown document: a heading, a metadata line
// and one numbered entry per spoken phrase.
func Markdown(run *Run) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", run.Name)
	if run.Source != "" {
		fmt.Fprintf(&sb, "Source: `%s`", run.Source)
		if !run.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, " recorded %s", run.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		sb.WriteString("\n\n")
	}
	if len(run.Phrases) == 0 {
		sb.WriteString("_No phrases spoken._\n")
		return sb.String()
	}
	for i, p := range run.Phrases {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, escape(p))
	}
	return sb.String()
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", `\<`, "#", `\#`,
)

func escape(s string) string {
	if s == "" {
		return "(empty)"
	}
	return mdEscaper.Replace(s)
}
