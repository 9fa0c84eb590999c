// Command epkg inspects a package.yml manifest from the command line. It
// is a secondary, subcommand-shaped tool (unlike emojicodec's
// single-purpose flag interface), reaching for spf13/cobra the way a
// multi-verb admin tool would.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/emojicode/ecc/internal/manifest"
)

var (
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

func main() {
	root := &cobra.Command{
		Use:   "epkg",
		Short: "Inspect a package.yml manifest",
	}
	root.AddCommand(validateCmd())
	root.AddCommand(binariesCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <package.yml>",
		Short: "Parse a manifest and report whether it is well formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", red("invalid"), err)
				return err
			}
			fmt.Printf("%s %s (namespace %s, %d search path(s))\n",
				green("valid:"), m.Name, m.Namespace, len(m.SearchPaths))
			return nil
		},
	}
}

func binariesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "binaries <package.yml>",
		Short: "List the native binaries a manifest requires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
				return err
			}
			if len(m.RequiredBinaries) == 0 {
				fmt.Println("(none declared)")
				return nil
			}
			for _, rb := range m.RequiredBinaries {
				fmt.Printf("%s %s\n", rb.Name, rb.Version)
			}
			return nil
		},
	}
}
