package project

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed templates/project-readme.md
var projectReadmeTemplate string

// TemplateData contains data for rendering templates.
type TemplateData struct {
	ProjectName string
	CanvasID    string
	Module      Module
	Models      string
}

// TemplateDataFor builds template data from a project.
func TemplateDataFor(p *Project) TemplateData {
	return TemplateData{
		ProjectName: p.Name,
		CanvasID:    p.CanvasID,
		Module:      p.Module,
		Models:      ModelNames(p.Models),
	}
}

// WriteReadme creates README.md in the project directory.
func WriteReadme(dir string, data TemplateData) error {
	tmpl, err := template.New("readme").Parse(projectReadmeTemplate)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	path := filepath.Join(dir, "README.md")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating README.md: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}

	return nil
}
