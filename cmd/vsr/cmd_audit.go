package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vsr/internal/browser"
)

var (
	auditJSON     bool
	auditMinScore float64
)

var auditCmd = &cobra.Command{
	Use:   "audit [file-or-url]",
	Short: "List elements that trip up screen reader users",
	Long: `Scans the document for focusable elements hidden from the reader, unnamed
controls, click-only widgets, positive tabindex and empty links.`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "Print results as JSON")
	auditCmd.Flags().Float64Var(&auditMinScore, "min-confidence", 0, "Hide results below this confidence")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	d, err := loadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	defer d.close()

	all := browser.NewHazardDetector(d.doc).AnalyzeDocument(d.doc.Root())
	var results []browser.DetectionResult
	for _, r := range all {
		if r.Confidence >= auditMinScore {
			results = append(results, r)
		}
	}
	browser.SortByConfidence(results)

	out := cmd.OutOrStdout()
	if auditJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if results == nil {
			results = []browser.DetectionResult{}
		}
		return enc.Encode(results)
	}
	if len(results) == 0 {
		fmt.Fprintf(out, "%s: no hazards found\n", d.name)
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%.2f  %s\n", r.Confidence, r.Selector)
		fmt.Fprintf(out, "      %s\n", strings.Join(r.Reasons, "; "))
	}
	return nil
}
