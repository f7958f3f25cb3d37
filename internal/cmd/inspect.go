package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eljojo/occtview/internal/html"
	"github.com/eljojo/occtview/internal/inspect"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [module.wasm]",
	Short: "Check a WebAssembly module before publishing it",
	Long: `Compile a WebAssembly binary without running it and report its imports,
exports and memory.

Without arguments, inspects the project's module binary and expects an
Emscripten build. With --page, inspects the bootstrap embedded in a
generated viewer page and expects a Go build.

Examples:
  occtview inspect
  occtview inspect build/occt-viewer.wasm --require _malloc
  occtview inspect --page output/viewer.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

var (
	inspectPage    string
	inspectRequire []string
	inspectJSON    bool
	inspectExports bool
)

func init() {
	inspectCmd.Flags().StringVar(&inspectPage, "page", "", "Inspect the bootstrap embedded in a generated page")
	inspectCmd.Flags().StringSliceVar(&inspectRequire, "require", nil, "Function exports the module must have")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print the report as JSON")
	inspectCmd.Flags().BoolVar(&inspectExports, "exports", false, "List every export")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	wasm, label, expect, err := inspectTarget(args)
	if err != nil {
		return err
	}

	report, err := inspect.Inspect(cmd.Context(), wasm, inspect.Options{
		RequiredExports: inspectRequire,
		Expect:          expect,
	})
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", label, err)
	}

	if inspectJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(label, report)
	}

	if !report.OK() {
		return fmt.Errorf("%s: %d problem%s found", label, len(report.Problems), plural(len(report.Problems)))
	}
	return nil
}

// inspectTarget resolves what to inspect and which flavor to expect.
func inspectTarget(args []string) ([]byte, string, inspect.Flavor, error) {
	if inspectPage != "" {
		page, err := os.ReadFile(inspectPage)
		if err != nil {
			return nil, "", "", fmt.Errorf("reading page: %w", err)
		}
		wasm, err := html.ExtractBootstrapWASM(string(page))
		if err != nil {
			return nil, "", "", fmt.Errorf("%s: %w", inspectPage, err)
		}
		return wasm, filepath.Base(inspectPage) + " (bootstrap)", inspect.FlavorGo, nil
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		p, err := loadProject()
		if err != nil {
			return nil, "", "", err
		}
		path = p.ModuleWASMPath()
		if path == "" {
			return nil, "", "", fmt.Errorf("project has no local module wasm; pass a path")
		}
	}

	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, "", "", fmt.Errorf("reading module: %w", err)
	}
	return wasm, relPath(path), inspect.FlavorEmscripten, nil
}

func printReport(label string, r *inspect.Report) {
	fmt.Printf("Module: %s (%s)\n", label, formatSize(int64(r.Size)))
	fmt.Printf("Flavor: %s\n", r.Flavor)

	if r.Memory != nil {
		m := r.Memory
		where := "internal"
		switch {
		case m.Imported != "":
			where = "imported from " + m.Imported
		case m.Exported != "":
			where = "exported as " + m.Exported
		}
		max := "unbounded"
		if m.HasMax {
			max = fmt.Sprintf("%d pages", m.MaxPages)
		}
		fmt.Printf("Memory: %d pages (%s) initial, max %s, %s\n", m.MinPages, formatSize(int64(m.MinBytes())), max, where)
	}

	fmt.Printf("\nImports: %d from %s\n", len(r.Imports), strings.Join(r.ImportModules(), ", "))
	fmt.Printf("Exports: %d functions\n", len(r.Exports))
	if inspectExports {
		for _, f := range r.Exports {
			fmt.Printf("  %s %s\n", f.Name, f.Signature())
		}
	}

	fmt.Println()
	if r.OK() {
		fmt.Printf("Result: %s\n", green("OK"))
		return
	}
	fmt.Printf("Result: %s\n", yellow("Problems found"))
	for _, p := range r.Problems {
		fmt.Printf("  %s %s\n", yellow("○"), p)
	}
}
