package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	genOpts = struct {
		output  string
		types   []string
		final   []string
		prefix  string
		stdout  bool
		verbose bool
	}{}

	rootCmd = &cobra.Command{
		Use:   "reflect-gen [package]",
		Short: "Generate reflection registrations for a Go package",
		Long: "Load a Go package, reflect its exported struct types with their fields, " +
			"methods and New* constructors, and write a RegisterReflection function " +
			"into the package.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "."
			if len(args) == 1 {
				pattern = args[0]
			}
			logger := zap.NewNop()
			if genOpts.verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = l
			}
			defer func() { _ = logger.Sync() }()
			return generate(cmd.Context(), pattern, logger)
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&genOpts.output, "output", "o", "zz_reflect.go", "Output file name inside the package directory")
	rootCmd.Flags().StringSliceVarP(&genOpts.types, "types", "t", nil, "Reflect only these types (comma-separated)")
	rootCmd.Flags().StringSliceVar(&genOpts.final, "final", nil, "Types registered as final")
	rootCmd.Flags().StringVar(&genOpts.prefix, "prefix", "", "Prefix for registered type names")
	rootCmd.Flags().BoolVar(&genOpts.stdout, "stdout", false, "Write to stdout instead of the package directory")
	rootCmd.Flags().BoolVarP(&genOpts.verbose, "verbose", "v", false, "Log skipped members")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
