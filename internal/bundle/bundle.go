// Package bundle packs a generated viewer page and the files it loads into
// a ZIP archive that can be unpacked onto any static web server.
package bundle

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/eljojo/occtview/internal/html"
)

// ReadmeName is the README inside every bundle.
const ReadmeName = "README.txt"

// File is one file placed in the bundle.
type File struct {
	Name    string // slash-separated path inside the bundle
	Content []byte
}

// Params contains all parameters for generating a bundle.
type Params struct {
	OutputPath  string
	ProjectName string
	PageName    string // defaults to viewer.html
	Page        string // generated viewer page
	Assets      []File // module files and startup resources, relative to the page
	ViewerURL   string
	Version     string
	Created     time.Time
}

// Filename returns the bundle file name for a project.
func Filename(projectName string) string {
	return SanitizeFilename(projectName) + "-viewer.zip"
}

// Generate writes the bundle ZIP: the page, its assets and a README whose
// footer lists every file's checksum.
func Generate(params Params) error {
	if params.Page == "" {
		return errors.New("page is empty")
	}
	pageName := params.PageName
	if pageName == "" {
		pageName = "viewer.html"
	}
	created := params.Created
	if created.IsZero() {
		created = time.Now()
	}

	files := append([]File{{Name: pageName, Content: []byte(params.Page)}}, params.Assets...)
	seen := make(map[string]bool, len(files))
	entries := make([]FileEntry, 0, len(files))
	for _, f := range files {
		name, err := cleanName(f.Name)
		if err != nil {
			return err
		}
		if name == ReadmeName || seen[name] {
			return fmt.Errorf("duplicate file in bundle: %s", name)
		}
		seen[name] = true
		entries = append(entries, FileEntry{Name: name, Size: len(f.Content), Checksum: HashBytes(f.Content)})
	}

	readme := GenerateReadme(ReadmeData{
		ProjectName: params.ProjectName,
		PageName:    pageName,
		Files:       entries,
		ViewerURL:   params.ViewerURL,
		Version:     params.Version,
		Created:     created,
	})

	zipFiles := make([]ZipFile, 0, len(files)+1)
	zipFiles = append(zipFiles, ZipFile{Name: ReadmeName, Content: []byte(readme), ModTime: created})
	for i, f := range files {
		zipFiles = append(zipFiles, ZipFile{Name: entries[i].Name, Content: f.Content, ModTime: created})
	}
	return CreateZip(params.OutputPath, zipFiles)
}

// cleanName rejects names that would escape the unpack directory.
func cleanName(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid file name in bundle: %q", name)
	}
	return clean, nil
}

// ZipFile is one entry written by CreateZip.
type ZipFile struct {
	Name    string
	Content []byte
	ModTime time.Time
}

// CreateZip writes files into a new ZIP archive at path.
func CreateZip(outPath string, files []ZipFile) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating zip: %w", err)
	}

	zw := zip.NewWriter(f)
	for _, file := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: file.ModTime,
		})
		if err != nil {
			f.Close()
			return fmt.Errorf("adding %s: %w", file.Name, err)
		}
		if _, err := w.Write(file.Content); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", file.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finishing zip: %w", err)
	}
	return f.Close()
}

// Verify verifies the integrity of a bundle ZIP file.
// Returns nil if valid, or an error describing the problem.
func Verify(bundlePath string) error {
	r, err := zip.OpenReader(bundlePath)
	if err != nil {
		return fmt.Errorf("opening bundle: %w", err)
	}
	defer r.Close()

	contents := make(map[string][]byte, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.Name, err)
		}
		contents[f.Name] = data
	}

	readme, ok := contents[ReadmeName]
	if !ok {
		return fmt.Errorf("%s not found in bundle", ReadmeName)
	}
	metadata := parseMetadataFooter(string(readme))

	listed := make(map[string]bool)
	for _, v := range metadata["file"] {
		checksum, name, ok := strings.Cut(v, " ")
		if !ok {
			return fmt.Errorf("malformed file entry %q", v)
		}
		data, ok := contents[name]
		if !ok {
			return fmt.Errorf("%s listed but not found in bundle", name)
		}
		if HashBytes(data) != checksum {
			return fmt.Errorf("%s checksum mismatch", name)
		}
		listed[name] = true
	}
	for name := range contents {
		if name != ReadmeName && !listed[name] {
			return fmt.Errorf("%s not listed in %s", name, ReadmeName)
		}
	}

	pages := metadata["page"]
	if len(pages) == 0 {
		return errors.New("page not found in README metadata")
	}
	page, ok := contents[pages[0]]
	if !ok {
		return fmt.Errorf("%s not found in bundle", pages[0])
	}
	if _, err := html.ExtractBootstrapWASM(string(page)); err != nil {
		return fmt.Errorf("%s: %w", pages[0], err)
	}

	return nil
}
