package html

import (
	_ "embed"
)

// Embedded assets for the viewer page.
// wasm_exec.js and the bootstrap binary come from the Go toolchain and the
// js/wasm build respectively, and are supplied by the caller.

//go:embed assets/viewer.html
var viewerHTMLTemplate string

//go:embed assets/loader.js
var loaderJS string

//go:embed assets/styles.css
var stylesCSS string
