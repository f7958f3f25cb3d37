package pdf

import (
	"github.com/go-pdf/fpdf"
	"golang.org/x/text/unicode/norm"
)

// Core PDF fonts. They need no embedding and cover the Latin-1 range used
// by the supported languages once text is converted to cp1252.
const (
	fontSans = "Helvetica"
	fontMono = "Courier"
)

// textEncoder returns a function converting UTF-8 text to the encoding of
// the core fonts. Input is NFC-normalized first so decomposed accents map to
// single code points.
func textEncoder(p *fpdf.Fpdf) func(string) string {
	tr := p.UnicodeTranslatorFromDescriptor("")
	return func(s string) string {
		return tr(norm.NFC.String(s))
	}
}
