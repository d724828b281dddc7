package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/reflect-runtime/describe"
	"github.com/wippyai/reflect-runtime/internal/sample"
	"github.com/wippyai/reflect-runtime/meta"
	"github.com/wippyai/reflect-runtime/script"
)

func main() {
	var (
		describeOut = flag.Bool("describe", false, "Print the registry as YAML and exit")
		only        = flag.String("only", "", "Describe only these types (comma-separated)")
		noVariants  = flag.Bool("no-variants", false, "Leave pointer and reference variants out of -describe")
		scriptFile  = flag.String("script", "", "Run an HCL scenario file")
		trace       = flag.Bool("trace", false, "Print each scenario step")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	meta.SetLogger(logger)

	reg, err := sample.NewRegistry(meta.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *interactive:
		err = runInteractive(reg)
	case *scriptFile != "":
		err = runScript(reg, logger, *scriptFile, *trace)
	case *describeOut:
		err = runDescribe(reg, *only, *noVariants)
	default:
		fmt.Fprintln(os.Stderr, "Usage: reflect-inspect -describe [-only A,B] [-no-variants]")
		fmt.Fprintln(os.Stderr, "       reflect-inspect -script <file.hcl> [-trace]")
		fmt.Fprintln(os.Stderr, "       reflect-inspect -i  (interactive mode)")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

func runDescribe(reg *meta.Registry, only string, noVariants bool) error {
	var opts []describe.Option
	if only != "" {
		opts = append(opts, describe.Only(strings.Split(only, ",")...))
	}
	if noVariants {
		opts = append(opts, describe.SkipVariants())
	}
	doc, err := describe.Registry(reg, opts...)
	if err != nil {
		return err
	}
	return describe.WriteYAML(os.Stdout, doc)
}

func runScript(reg *meta.Registry, logger *zap.Logger, path string, trace bool) error {
	opts := []script.Option{script.WithLogger(logger)}
	if trace {
		opts = append(opts, script.WithOutput(os.Stdout))
	}
	res, err := script.NewRunner(reg, opts...).RunFile(context.Background(), path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d steps ok\n", path, res.Steps)
	return nil
}
