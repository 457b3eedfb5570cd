package main

import (
	"github.com/spf13/cobra"

	"vsr/cmd/vsr/ui"
)

var stepCmd = &cobra.Command{
	Use:   "step [file-or-url]",
	Short: "Move the virtual cursor interactively",
	Long: `Opens the document in an interactive view. Arrow keys move the cursor,
h/d/l jump between headings, landmarks and links, enter activates the
current element and ":" runs any named command (see vsr commands).`,
	Args: cobra.ExactArgs(1),
	RunE: runStep,
}

func runStep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := loadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	defer d.close()

	e, err := startReader(ctx, d.doc)
	if err != nil {
		return err
	}
	defer e.Stop(ctx)

	return ui.Run(ctx, e, d.name)
}
