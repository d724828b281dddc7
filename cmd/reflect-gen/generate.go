package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/wippyai/reflect-runtime/internal/gen"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedTypes | packages.NeedDeps | packages.NeedImports

func generate(ctx context.Context, pattern string, logger *zap.Logger) error {
	pkgs, err := packages.Load(&packages.Config{Mode: loadMode, Context: ctx}, pattern)
	if err != nil {
		return fmt.Errorf("load %s: %w", pattern, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return fmt.Errorf("load %s: package has errors", pattern)
	}
	if len(pkgs) != 1 {
		return fmt.Errorf("pattern %s matches %d packages, want 1", pattern, len(pkgs))
	}
	pkg := pkgs[0]

	model, err := gen.Inspect(pkg.Types, gen.Options{
		Types:  genOpts.types,
		Final:  genOpts.final,
		Prefix: genOpts.prefix,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	if len(model.Types) == 0 {
		return fmt.Errorf("package %s has no exported struct types", pkg.PkgPath)
	}

	var buf bytes.Buffer
	if err := gen.Render(model, &buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if genOpts.stdout {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if len(pkg.GoFiles) == 0 {
		return fmt.Errorf("package %s has no Go files", pkg.PkgPath)
	}
	out := filepath.Join(filepath.Dir(pkg.GoFiles[0]), genOpts.output)
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	logger.Info("generated", zap.String("file", out), zap.Int("types", len(model.Types)))
	return nil
}
