package bundle

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ReadmeData contains all data needed to generate README.txt
type ReadmeData struct {
	ProjectName string
	PageName    string
	Files       []FileEntry // every file in the bundle except README.txt
	ViewerURL   string
	Version     string
	Created     time.Time
}

// FileEntry is one checksummed file listed in the README footer.
type FileEntry struct {
	Name     string
	Size     int
	Checksum string
}

const rule = "--------------------------------------------------------------------------------\n"
const doubleRule = "================================================================================\n"

// GenerateReadme creates the README.txt content with the file checksums in
// a machine-parseable footer.
func GenerateReadme(data ReadmeData) string {
	var sb strings.Builder

	// Header
	sb.WriteString(doubleRule)
	sb.WriteString("                          OCCTVIEW VIEWER BUNDLE\n")
	sb.WriteString(fmt.Sprintf("                          %s\n", data.ProjectName))
	sb.WriteString(doubleRule + "\n")

	sb.WriteString(rule)
	sb.WriteString("WHAT IS THIS?\n")
	sb.WriteString(rule)
	sb.WriteString(fmt.Sprintf("A ready-to-publish 3D viewer page for: %s\n", data.ProjectName))
	sb.WriteString(fmt.Sprintf("%s starts the OCCT viewer module in the browser and opens\n", data.PageName))
	sb.WriteString("the configured models. It needs WebGL.\n\n")

	sb.WriteString(rule)
	sb.WriteString("HOW TO PUBLISH\n")
	sb.WriteString(rule)
	sb.WriteString("1. Unpack this archive into a directory of any static web server\n")
	sb.WriteString("   Keep the layout: the page loads the other files by relative path.\n\n")
	sb.WriteString("2. Make sure .wasm files are served as application/wasm\n\n")
	sb.WriteString(fmt.Sprintf("3. Open %s through the server (not from disk)\n", data.PageName))
	if data.ViewerURL != "" {
		sb.WriteString(fmt.Sprintf("   Expected address: %s\n", data.ViewerURL))
	}
	sb.WriteString("\n")

	sb.WriteString(rule)
	sb.WriteString("FILES\n")
	sb.WriteString(rule)
	for _, f := range data.Files {
		sb.WriteString(fmt.Sprintf("%-50s %10d bytes\n", f.Name, f.Size))
	}
	sb.WriteString("\n")

	// Metadata footer
	sb.WriteString(doubleRule)
	sb.WriteString("METADATA FOOTER (machine-parseable)\n")
	sb.WriteString(doubleRule)
	sb.WriteString(fmt.Sprintf("occtview-version: %s\n", data.Version))
	sb.WriteString(fmt.Sprintf("created: %s\n", data.Created.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("project: %s\n", data.ProjectName))
	sb.WriteString(fmt.Sprintf("page: %s\n", data.PageName))
	if data.ViewerURL != "" {
		sb.WriteString(fmt.Sprintf("viewer-url: %s\n", data.ViewerURL))
	}
	for _, f := range data.Files {
		sb.WriteString(fmt.Sprintf("file: %s %s\n", f.Checksum, f.Name))
	}
	sb.WriteString(doubleRule)

	return sb.String()
}

var keyValueRegex = regexp.MustCompile(`^([a-z0-9-]+):\s*(.+)$`)

// parseMetadataFooter extracts key-value pairs from the README.txt footer
// section. Repeated keys (file) keep every value in order.
func parseMetadataFooter(content string) map[string][]string {
	metadata := make(map[string][]string)

	footerStart := strings.Index(content, "METADATA FOOTER")
	if footerStart == -1 {
		return metadata
	}

	for _, line := range strings.Split(content[footerStart:], "\n") {
		line = strings.TrimSpace(line)
		matches := keyValueRegex.FindStringSubmatch(line)
		if len(matches) == 3 {
			metadata[matches[1]] = append(metadata[matches[1]], matches[2])
		}
	}

	return metadata
}
