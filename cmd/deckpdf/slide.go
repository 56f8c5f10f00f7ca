package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	deckpdf "github.com/porticus-lab/go-deck-pdf"
)

func newSlideCmd() *cobra.Command {
	var (
		bf     browserFlags
		next   bool
		prev   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "slide <url>",
		Short: "Show the current slide, optionally stepping forward or back",
		Long: `slide reads the viewer's slide indicator. With --next or --prev it
clicks the corresponding control first and waits for the indicator to
follow. Combined with --remote it drives a tab already open in your
browser.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if next && prev {
				return errors.New("--next and --prev are mutually exclusive")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			bf.apply(cmd, &cfg.Browser)

			logger := newLogger(cmd.ErrOrStderr(), cfg.Log)
			exp, err := deckpdf.NewExporter(append(exporterOptions(cfg), deckpdf.WithLogger(logger))...)
			if err != nil {
				return err
			}
			defer exp.Close()

			ctx := cmd.Context()
			s, err := exp.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			info, err := s.Info(ctx)
			if err != nil {
				return err
			}
			switch {
			case next && info.Current < info.Total:
				if err := s.Next(ctx); err != nil {
					return err
				}
				if err := s.WaitForSlide(ctx, info.Current+1); err != nil {
					return err
				}
			case prev && info.Current > 1:
				if err := s.Prev(ctx); err != nil {
					return err
				}
				if err := s.WaitForSlide(ctx, info.Current-1); err != nil {
					return err
				}
			}
			if next || prev {
				if info, err = s.Info(ctx); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				return enc.Encode(struct {
					Platform string `json:"platform"`
					deckpdf.SlideInfo
				}{s.Profile().Name, info})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: slide %d / %d\n", s.Profile().Name, info.Current, info.Total)
			return nil
		},
	}

	bf.register(cmd)
	cmd.Flags().BoolVar(&next, "next", false, "go to the next slide")
	cmd.Flags().BoolVar(&prev, "prev", false, "go to the previous slide")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newSitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List the supported presentation viewers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tHOST\tSETTLE")
			for _, p := range deckpdf.Profiles() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Host, p.SettleDelay)
			}
			return tw.Flush()
		},
	}
}
