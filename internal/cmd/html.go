package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eljojo/occtview/internal/bundle"
	"github.com/eljojo/occtview/internal/html"
	"github.com/eljojo/occtview/internal/project"
)

var htmlCmd = &cobra.Command{
	Use:   "html",
	Short: "Generate the standalone viewer page",
	Long: `Generate viewer.html for the project, ready for static hosting.

The page embeds the Go bootstrap (compressed), wasm_exec.js, the boot
configuration, styles and translations. The module glue script and
binary are copied next to the page, together with any startup model or
background referenced by a relative URL.

The bootstrap is the js/wasm build of this repository:
  GOOS=js GOARCH=wasm go build -o occtview.wasm ./internal/wasm

Examples:
  occtview html --bootstrap-wasm occtview.wasm
  occtview html --bootstrap-wasm occtview.wasm -o site/index.html
  occtview html --bootstrap-wasm occtview.wasm -o - > viewer.html`,
	Args: cobra.NoArgs,
	RunE: runHTML,
}

var (
	htmlOutputFile    string
	htmlBootstrapWASM string
	htmlWASMExec      string
	htmlNoCopy        bool
)

func init() {
	htmlCmd.Flags().StringVarP(&htmlOutputFile, "output", "o", "", "Output file path, or - for stdout (default: output/viewer.html)")
	htmlCmd.Flags().StringVar(&htmlBootstrapWASM, "bootstrap-wasm", "", "js/wasm build of the bootstrap (default: $"+envBootstrapWASM+")")
	htmlCmd.Flags().StringVar(&htmlWASMExec, "wasm-exec", "", "wasm_exec.js matching the bootstrap's Go version (default: from GOROOT)")
	htmlCmd.Flags().BoolVar(&htmlNoCopy, "no-copy", false, "Do not copy module files and assets next to the page")
	rootCmd.AddCommand(htmlCmd)
}

func runHTML(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	assets, err := loadPageAssets(htmlBootstrapWASM, htmlWASMExec)
	if err != nil {
		return err
	}

	content, err := buildPage(p, assets)
	if err != nil {
		return err
	}

	if htmlOutputFile == "-" {
		fmt.Print(content)
		return nil
	}

	outPath := htmlOutputFile
	if outPath == "" {
		outPath = p.ViewerHTMLPath()
	}
	outDir := filepath.Dir(outPath)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Generated %s (%s)\n", relPath(outPath), formatSize(int64(len(content))))
	fmt.Fprintf(os.Stderr, "  Bootstrap: %s embedded as %s\n", formatSize(int64(len(assets.bootstrapWASM))), formatSize(int64(html.EmbeddedSize(assets.bootstrapWASM))))
	fmt.Fprintf(os.Stderr, "  Checksum: %s\n", truncateHash(bundle.HashString(content)))

	if htmlNoCopy {
		return nil
	}
	copied, err := copyProjectAssets(p, outDir)
	if err != nil {
		return err
	}
	for _, rel := range copied {
		fmt.Fprintf(os.Stderr, "  %s %s\n", green("✓"), rel)
	}
	return nil
}

// buildPage renders the project's viewer page.
func buildPage(p *project.Project, assets *pageAssets) (string, error) {
	boot, err := p.BootConfig()
	if err != nil {
		return "", fmt.Errorf("invalid project: %w", err)
	}
	content, err := html.GenerateViewerHTML(html.ViewerPage{
		Boot:            boot,
		BootstrapWASM:   assets.bootstrapWASM,
		WASMExecJS:      assets.wasmExecJS,
		ModuleScriptURL: p.Module.Script,
		UnsafeEval:      p.Module.UnsafeEval,
		Version:         version,
	})
	if err != nil {
		return "", fmt.Errorf("generating page: %w", err)
	}
	return content, nil
}

// pageAssetPaths lists the project-relative files the page loads: module
// files and startup resources that live inside the project. Remote URLs and
// paths leaving the project are not page assets.
func pageAssetPaths(p *project.Project) []string {
	var paths []string
	for _, ref := range []string{p.Module.Script, p.Module.WASM, p.Background} {
		if project.IsProjectRelative(ref) {
			paths = append(paths, ref)
		}
	}
	for _, m := range p.Models {
		if project.IsProjectRelative(m.URL) {
			paths = append(paths, m.URL)
		}
	}
	return paths
}

// copyProjectAssets copies the page's relative assets from the project into
// outDir, preserving their relative layout. Missing startup resources are
// reported on stderr; a missing local module script is an error.
func copyProjectAssets(p *project.Project, outDir string) ([]string, error) {
	projectDir, err := filepath.Abs(p.Path)
	if err != nil {
		return nil, err
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, err
	}

	var copied []string
	for _, rel := range pageAssetPaths(p) {
		src := filepath.Join(projectDir, filepath.FromSlash(rel))
		dst := filepath.Join(absOut, filepath.FromSlash(rel))
		if src == dst {
			continue
		}
		if err := copyFile(src, dst); err != nil {
			if rel == p.Module.Script {
				return copied, fmt.Errorf("copying module script: %w", err)
			}
			fmt.Fprintf(os.Stderr, "  %s %s (%v)\n", yellow("○"), rel, err)
			continue
		}
		copied = append(copied, rel)
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
