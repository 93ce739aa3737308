package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dna-dev/dna/internal/config"
	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/component"
	"github.com/dna-dev/dna/pkg/registry"
)

func renderCmd(load func() (*config.Config, error)) *cobra.Command {
	var hids bool

	cmd := &cobra.Command{
		Use:   "render <tag> [attribute=value...]",
		Short: "Render an element to HTML",
		Long: `Create, connect and render an element, then print its HTML.

Each attribute=value argument is set as a host attribute after
connecting, so it goes through the element's attribute conversion.

Examples:
  dna render x-counter
  dna render x-counter count=5 label=Total
  dna render x-badge text=new --hids`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			html, err := renderElement(cfg, args[0], args[1:], hids, cfg.Logger(io.Discard))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}

	cmd.Flags().BoolVar(&hids, "hids", false, "Include hydration IDs")

	return cmd
}

func renderElement(cfg *config.Config, tag string, attrs []string, hids bool, logger *slog.Logger) (string, error) {
	reg, err := newRegistry(registry.WithLogger(logger))
	if err != nil {
		return "", err
	}
	el, err := reg.Create(tag,
		component.WithLogger(logger),
		component.WithMaxPasses(cfg.Scheduler.MaxPasses))
	if err != nil {
		return "", err
	}
	if err := el.ConnectedCallback(); err != nil {
		return "", err
	}
	defer el.DisconnectedCallback()

	for _, a := range attrs {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return "", errors.Newf(errors.CategoryUsage, "expected attribute=value, got %q", a)
		}
		if err := el.SetAttribute(name, value); err != nil {
			return "", err
		}
	}
	return el.HTML(hids), nil
}
