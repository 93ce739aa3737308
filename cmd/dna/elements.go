package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/dna-dev/dna/pkg/server"
)

func elementsCmd() *cobra.Command {
	var (
		asJSON   bool
		builtins bool
	)

	cmd := &cobra.Command{
		Use:   "elements",
		Short: "List the registered elements",
		Long: `List the bundled element definitions with their properties.

Examples:
  dna elements
  dna elements --builtins
  dna elements --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := newRegistry()
			if err != nil {
				return err
			}

			resp := server.ElementsResponse{}
			for _, e := range reg.Entries() {
				resp.Elements = append(resp.Elements, server.Describe(e))
			}
			if builtins {
				resp.Builtins = reg.Builtins()
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TAG\tEXTENDS\tPROPERTIES\tATTRIBUTES")
			for _, e := range resp.Elements {
				props := make([]string, len(e.Properties))
				for i, p := range e.Properties {
					props[i] = p.Name + ":" + p.Type
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Tag, dash(e.Extends),
					dash(strings.Join(props, ",")), dash(strings.Join(e.ObservedAttributes, ",")))
			}
			if builtins {
				fmt.Fprintln(w)
				fmt.Fprintln(w, "BUILTIN\tINTERFACE\tVOID\tFORM")
				for _, b := range resp.Builtins {
					fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", b.Tag, b.Interface, b.Void, b.FormAssociated)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().BoolVar(&builtins, "builtins", false, "Include the builtin element catalogue")

	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
