package cmd

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/eljojo/occtview/internal/pdf"
	"github.com/eljojo/occtview/internal/translations"
	"github.com/eljojo/occtview/internal/viewer"
)

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Create a printable snapshot sheet",
	Long: `Render a PDF sheet from a viewer snapshot: the image, the project's
startup models, and a QR code linking to the published viewer.

Snapshots can be saved from the page with occtviewSnapshot(), or the
page can produce the sheet itself with occtviewSnapshotSheet().

Example:
  occtview sheet --image snapshot.png
  occtview sheet --image snapshot.png -o gear.pdf --title "Gear assembly"`,
	Args: cobra.NoArgs,
	RunE: runSheet,
}

var (
	sheetImage   string
	sheetOutput  string
	sheetTitle   string
	sheetURL     string
	sheetContext string
)

func init() {
	sheetCmd.Flags().StringVar(&sheetImage, "image", "", "PNG snapshot of the viewer (required)")
	sheetCmd.Flags().StringVarP(&sheetOutput, "output", "o", "", "Output PDF (default: output/<localized sheet name>)")
	sheetCmd.Flags().StringVar(&sheetTitle, "title", "", "Sheet title (default: project name)")
	sheetCmd.Flags().StringVar(&sheetURL, "url", "", "Viewer URL for the QR code (default: project viewer_url)")
	sheetCmd.Flags().StringVar(&sheetContext, "context", string(viewer.KindWebGL2), "Graphics context the snapshot was rendered with")
	_ = sheetCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(sheetCmd)
}

func runSheet(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	snapshot, err := os.ReadFile(sheetImage)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(snapshot))
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	data := pdf.SheetData{
		Title:     p.Name,
		Snapshot:  snapshot,
		Models:    p.Models,
		ViewerURL: p.ViewerURL,
		Context:   viewer.ContextKind(sheetContext),
		Width:     cfg.Width,
		Height:    cfg.Height,
		Version:   version,
		Created:   time.Now(),
		Language:  p.Language,
	}
	if sheetTitle != "" {
		data.Title = sheetTitle
	}
	if sheetURL != "" {
		data.ViewerURL = sheetURL
	}

	out, err := pdf.GenerateSheet(data)
	if err != nil {
		return fmt.Errorf("generating sheet: %w", err)
	}

	outPath := sheetOutput
	if outPath == "" {
		outPath = filepath.Join(p.OutputPath(), translations.SheetFilename(p.Language))
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	fmt.Printf("Generated %s (%s)\n", relPath(outPath), formatSize(int64(len(out))))
	return nil
}
