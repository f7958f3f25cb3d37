package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eljojo/occtview/internal/project"
	"github.com/eljojo/occtview/internal/translations"
	"github.com/eljojo/occtview/internal/viewer"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a new viewer project",
	Long: `Create a new viewer project with a viewer.yml configuration.

The project will contain:
  - viewer.yml: canvas, module and startup configuration
  - README.md: where to put the module files and what to run next

Copy the Emscripten build of the viewer (occt-viewer.js and
occt-viewer.wasm) into the project directory afterwards.

Example:
  occtview init my-viewer
  occtview init my-viewer --model ball=samples/Ball.brep --background cubemap.jpg
  occtview init my-viewer --from ../other-viewer`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initFrom        string
	initName        string
	initCanvas      string
	initFactory     string
	initScript      string
	initWASM        string
	initModels      []string
	initBackground  string
	initLanguage    string
	initDiagnostics string
	initTimeout     string
	initViewerURL   string
	initUnsafeEval  bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initFrom, "from", "", "Base new project on an existing project (copies module and models)")
	initCmd.Flags().StringVar(&initName, "name", "", "Project name (defaults to directory name)")
	initCmd.Flags().StringVar(&initCanvas, "canvas", viewer.DefaultCanvasID, "Id of the canvas element the viewer draws into")
	initCmd.Flags().StringVar(&initFactory, "factory", project.DefaultFactory, "Global factory function of the Emscripten module")
	initCmd.Flags().StringVar(&initScript, "script", project.DefaultScript, "Emscripten glue script, relative to the project or an http(s) URL")
	initCmd.Flags().StringVar(&initWASM, "wasm", project.DefaultWASM, "Module binary, relative to the project or an http(s) URL (empty to skip)")
	initCmd.Flags().StringArrayVar(&initModels, "model", nil, "Model opened at startup, as 'name=url' (repeatable)")
	initCmd.Flags().StringVar(&initBackground, "background", "", "Cubemap background image set at startup")
	initCmd.Flags().StringVar(&initLanguage, "language", "", "Page language (en, es, de, fr)")
	initCmd.Flags().StringVar(&initDiagnostics, "diagnostics", "", "Module output handling: none or collector")
	initCmd.Flags().StringVar(&initTimeout, "timeout", "", "How long to wait for the module, e.g. 45s (0 waits forever)")
	initCmd.Flags().BoolVar(&initUnsafeEval, "unsafe-eval", false, "Allow 'unsafe-eval' for modules built with embind dynamic execution")
	initCmd.Flags().StringVar(&initViewerURL, "viewer-url", "", "Where the page will be published (encoded on snapshot sheets)")
}

func runInit(cmd *cobra.Command, args []string) error {
	if initLanguage != "" && !validLanguage(initLanguage) {
		return fmt.Errorf("unsupported language %q (supported: %s)", initLanguage, strings.Join(translations.Languages, ", "))
	}

	// Determine project directory from args
	dirName := "viewer"
	if len(args) > 0 {
		dirName = args[0]
	}

	dir, err := filepath.Abs(dirName)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	name := initName
	if name == "" {
		name = filepath.Base(dir)
	}

	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory already exists: %s", dir)
	}

	fmt.Printf("Creating new viewer project: %s/\n\n", dirName)

	opts := project.Options{
		CanvasID: initCanvas,
		Language: initLanguage,
		Module: project.Module{
			Factory:    initFactory,
			Script:     initScript,
			WASM:       initWASM,
			UnsafeEval: initUnsafeEval,
		},
		Diagnostics: initDiagnostics,
		Timeout:     initTimeout,
		Background:  initBackground,
		ViewerURL:   initViewerURL,
	}

	if initFrom != "" {
		fromDir, err := filepath.Abs(initFrom)
		if err != nil {
			return fmt.Errorf("resolving --from path: %w", err)
		}
		existing, err := project.Load(fromDir)
		if err != nil {
			return fmt.Errorf("loading existing project: %w", err)
		}
		opts = optionsFrom(existing, cmd, opts)
		fmt.Printf("Copying configuration from: %s\n", initFrom)
	}

	if len(initModels) > 0 {
		models, err := parseModelFlags(initModels)
		if err != nil {
			return err
		}
		opts.Models = models
	}

	p, err := project.NewWithOptions(dir, name, opts)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	if err := project.WriteReadme(p.Path, project.TemplateDataFor(p)); err != nil {
		return fmt.Errorf("creating README: %w", err)
	}

	fmt.Printf("Canvas: #%s\n", p.CanvasID)
	fmt.Printf("Module: %s(...) from %s\n", p.Module.Factory, p.Module.Script)
	if len(p.Models) > 0 {
		fmt.Printf("Startup models: %s\n", project.ModelNames(p.Models))
	}
	fmt.Println()
	fmt.Printf("Created %s/\n", dirName)
	fmt.Printf("  - %s (edit to change the viewer setup)\n", project.ProjectFileName)
	fmt.Printf("  - README.md\n")
	fmt.Println()
	fmt.Printf("Next: copy %s", p.Module.Script)
	if p.Module.WASM != "" {
		fmt.Printf(" and %s", p.Module.WASM)
	}
	fmt.Println(" into the project, then run `occtview inspect`")

	return nil
}

// optionsFrom copies an existing project's setup, letting explicitly set
// flags win.
func optionsFrom(existing *project.Project, cmd *cobra.Command, flags project.Options) project.Options {
	opts := project.Options{
		CanvasID:    existing.CanvasID,
		Language:    existing.Language,
		Module:      existing.Module,
		Diagnostics: existing.Diagnostics,
		Timeout:     existing.Timeout,
		Background:  existing.Background,
		Models:      append([]viewer.ModelSource(nil), existing.Models...),
		ViewerURL:   existing.ViewerURL,
	}
	changed := cmd.Flags().Changed
	if changed("canvas") {
		opts.CanvasID = flags.CanvasID
	}
	if changed("language") {
		opts.Language = flags.Language
	}
	if changed("factory") {
		opts.Module.Factory = flags.Module.Factory
	}
	if changed("script") {
		opts.Module.Script = flags.Module.Script
	}
	if changed("wasm") {
		opts.Module.WASM = flags.Module.WASM
	}
	if changed("diagnostics") {
		opts.Diagnostics = flags.Diagnostics
	}
	if changed("timeout") {
		opts.Timeout = flags.Timeout
	}
	if changed("background") {
		opts.Background = flags.Background
	}
	if changed("unsafe-eval") {
		opts.Module.UnsafeEval = flags.Module.UnsafeEval
	}
	if changed("viewer-url") {
		opts.ViewerURL = flags.ViewerURL
	}
	return opts
}

// parseModelFlags parses --model flags in format "name=url".
func parseModelFlags(flags []string) ([]viewer.ModelSource, error) {
	models := make([]viewer.ModelSource, len(flags))
	for i, f := range flags {
		name, url, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("model %q: expected name=url", f)
		}
		models[i] = viewer.ModelSource{
			Name: project.NormalizeModelName(name),
			URL:  strings.TrimSpace(url),
		}
		if models[i].Name == "" {
			return nil, fmt.Errorf("model %q: name cannot be empty", f)
		}
		if models[i].URL == "" {
			return nil, fmt.Errorf("model %q: url cannot be empty", f)
		}
		if len(models[i].Name) > project.MaxModelNameLength {
			return nil, fmt.Errorf("model name too long (max %d characters)", project.MaxModelNameLength)
		}
	}
	return models, nil
}

// validLanguage returns true if the given language code is supported.
func validLanguage(lang string) bool {
	for _, l := range translations.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
