package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	deckpdf "github.com/porticus-lab/go-deck-pdf"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.pdf>",
		Short: "Validate a PDF and display its page dimensions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := deckpdf.Inspect(f)
			if err != nil {
				return fmt.Errorf("inspecting %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:    %s\n", args[0])
			fmt.Fprintf(out, "Pages:   %d\n", info.Pages)
			if len(info.Dims) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Page dimensions:")
				for i, d := range info.Dims {
					fmt.Fprintf(out, "  Page %d: %.0f x %.0f pt\n", i+1, d.Width, d.Height)
				}
			}
			return nil
		},
	}
}
