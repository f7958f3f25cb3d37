package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/eljojo/occtview/internal/bundle"
	"github.com/eljojo/occtview/internal/translations"
	"github.com/eljojo/occtview/internal/viewer"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show project status and summary",
	Long:  `Displays the current state of the viewer project: module files, startup commands, and the generated page.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	fmt.Printf("Project: %s\n", p.Name)
	fmt.Printf("Path: %s\n\n", p.Path)

	if err := p.Validate(); err != nil {
		fmt.Printf("Config: %s (%v)\n\n", yellow("Invalid"), err)
	}

	fmt.Printf("Canvas: #%s\n", p.CanvasID)
	fmt.Printf("Language: %s\n", p.Language)
	sink, _ := viewer.ParseSinkKind(p.Diagnostics)
	fmt.Printf("Diagnostics: %s\n", sink)
	if timeout, err := p.TimeoutDuration(); err == nil {
		if timeout == 0 {
			fmt.Println("Timeout: none")
		} else {
			fmt.Printf("Timeout: %s\n", timeout)
		}
	}

	// Module files
	fmt.Printf("\nModule: %s(...)\n", p.Module.Factory)
	fmt.Printf("  %s\n", fileStatus(p.Module.Script, p.ModuleScriptPath()))
	if p.Module.WASM != "" {
		fmt.Printf("  %s\n", fileStatus(p.Module.WASM, p.ModuleWASMPath()))
	}
	if p.Module.UnsafeEval {
		fmt.Println("  script-src allows 'unsafe-eval'")
	}

	// Startup commands
	startup := viewer.Startup{Background: p.Background, Models: p.Models}
	fmt.Println()
	if startup.Empty() {
		fmt.Println("Startup: nothing (the page opens an empty viewer)")
	} else {
		fmt.Println("Startup:")
		if p.Background != "" {
			fmt.Printf("  background %s\n", p.Background)
		}
		for i, m := range p.Models {
			fmt.Printf("  %d. %s ← %s\n", i+1, m.Name, m.URL)
		}
	}

	if p.ViewerURL != "" {
		fmt.Printf("\nPublished at: %s\n", p.ViewerURL)
	}

	// Generated output
	fmt.Println()
	pagePath := p.ViewerHTMLPath()
	if data, err := os.ReadFile(pagePath); err == nil {
		info, _ := os.Stat(pagePath)
		fmt.Printf("Page: %s (%s, %s)\n", green("Generated"), formatSize(int64(len(data))), truncateHash(bundle.HashBytes(data)))
		if info != nil {
			fmt.Printf("  Last built %s ago\n", formatDuration(time.Since(info.ModTime())))
		}
	} else {
		fmt.Printf("Page: %s\n", yellow("Not yet generated"))
		fmt.Println("  Run 'occtview html' to create it")
	}

	bundlePath := filepath.Join(p.OutputPath(), bundle.Filename(p.Name))
	if info, err := os.Stat(bundlePath); err == nil {
		fmt.Printf("Bundle: %s (%s)\n", green(filepath.Base(bundlePath)), formatSize(info.Size()))
	}

	sheets := countSheets(p.OutputPath())
	if sheets > 0 {
		fmt.Printf("Snapshot sheets: %d in %s\n", sheets, p.OutputPath())
	}

	return nil
}

func fileStatus(rel, path string) string {
	if path == "" {
		return fmt.Sprintf("%s %s (remote)", green("↗"), rel)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("%s %s (missing)", yellow("○"), rel)
	}
	return fmt.Sprintf("%s %s (%s)", green("✓"), rel, formatSize(info.Size()))
}

func countSheets(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && translations.IsSheetFile(e.Name()) {
			count++
		}
	}
	return count
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 365 {
		years := days / 365
		return fmt.Sprintf("%d year%s", years, plural(years))
	}
	if days > 30 {
		months := days / 30
		return fmt.Sprintf("%d month%s", months, plural(months))
	}
	if days > 0 {
		return fmt.Sprintf("%d day%s", days, plural(days))
	}
	hours := int(d.Hours())
	if hours > 0 {
		return fmt.Sprintf("%d hour%s", hours, plural(hours))
	}
	minutes := int(d.Minutes())
	if minutes > 0 {
		return fmt.Sprintf("%d minute%s", minutes, plural(minutes))
	}
	return "moments"
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
