package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/eljojo/occtview/internal/bundle"
	"github.com/eljojo/occtview/internal/project"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Pack the viewer page and its files for publishing",
	Long: `Generates the viewer page and packs it into a ZIP archive together with
the module files and every startup resource referenced by a relative URL.

The bundle contains:
  - viewer.html (self-contained bootstrap)
  - the module glue script and binary
  - startup models and background found in the project
  - README.txt (publishing notes and checksums of every file)

The archive is verified after writing. Use --verify to check an existing
bundle.`,
	Args: cobra.NoArgs,
	RunE: runBundle,
}

var (
	bundleOutput        string
	bundleBootstrapWASM string
	bundleWASMExec      string
	bundleVerify        string
)

func init() {
	bundleCmd.Flags().StringVarP(&bundleOutput, "output", "o", "", "Output ZIP (default: output/<project>-viewer.zip)")
	bundleCmd.Flags().StringVar(&bundleBootstrapWASM, "bootstrap-wasm", "", "js/wasm build of the bootstrap (default: $"+envBootstrapWASM+")")
	bundleCmd.Flags().StringVar(&bundleWASMExec, "wasm-exec", "", "wasm_exec.js matching the bootstrap's Go version (default: from GOROOT)")
	bundleCmd.Flags().StringVar(&bundleVerify, "verify", "", "Verify an existing bundle instead of creating one")
	rootCmd.AddCommand(bundleCmd)
}

func runBundle(cmd *cobra.Command, args []string) error {
	if bundleVerify != "" {
		fmt.Printf("Checking %s... ", bundleVerify)
		if err := bundle.Verify(bundleVerify); err != nil {
			fmt.Println("FAILED")
			return err
		}
		fmt.Println(green("OK"))
		return nil
	}

	p, err := loadProject()
	if err != nil {
		return err
	}

	assets, err := loadPageAssets(bundleBootstrapWASM, bundleWASMExec)
	if err != nil {
		return err
	}
	page, err := buildPage(p, assets)
	if err != nil {
		return err
	}

	files, err := readProjectAssets(p)
	if err != nil {
		return err
	}

	outPath := bundleOutput
	if outPath == "" {
		outPath = filepath.Join(p.OutputPath(), bundle.Filename(p.Name))
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	err = bundle.Generate(bundle.Params{
		OutputPath:  outPath,
		ProjectName: p.Name,
		PageName:    project.ViewerHTMLName,
		Page:        page,
		Assets:      files,
		ViewerURL:   p.ViewerURL,
		Version:     version,
		Created:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("generating bundle: %w", err)
	}
	if err := bundle.Verify(outPath); err != nil {
		return fmt.Errorf("verifying bundle: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return err
	}
	fmt.Printf("Bundle ready: %s (%s)\n", relPath(outPath), formatSize(info.Size()))
	fmt.Printf("  %s %s\n", green("✓"), project.ViewerHTMLName)
	for _, f := range files {
		fmt.Printf("  %s %s (%s)\n", green("✓"), f.Name, formatSize(int64(len(f.Content))))
	}
	return nil
}

// readProjectAssets loads the page's relative assets from the project.
// Missing startup resources are reported and skipped; a missing local
// module script is an error.
func readProjectAssets(p *project.Project) ([]bundle.File, error) {
	var files []bundle.File
	for _, rel := range pageAssetPaths(p) {
		data, err := os.ReadFile(filepath.Join(p.Path, filepath.FromSlash(rel)))
		if err != nil {
			if rel == p.Module.Script {
				return nil, fmt.Errorf("reading module script: %w", err)
			}
			fmt.Fprintf(os.Stderr, "  %s %s (%v)\n", yellow("○"), rel, err)
			continue
		}
		files = append(files, bundle.File{Name: rel, Content: data})
	}
	return files, nil
}
