package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dna-dev/dna/internal/config"
	"github.com/dna-dev/dna/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔╦╗╔╗╔╔═╗
   ║║║║║╠═╣
  ═╩╝╝╚╝╩ ╩
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "dna",
		Short: "Server-hosted custom elements",
		Long: `dna hosts custom elements on the server.

Elements declare properties, observed attributes and delegated
listeners. Each WebSocket session hosts one element instance and
streams its render patches to the client.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: dna.json or dna.yaml in the working directory)")

	load := func() (*config.Config, error) {
		if configPath != "" {
			return config.LoadFile(configPath)
		}
		return config.Load(".")
	}

	root.AddCommand(
		serveCmd(load),
		elementsCmd(),
		renderCmd(load),
		versionCmd(),
	)
	return root
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
