package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eljojo/occtview/internal/viewer"
)

var rootCmd = &cobra.Command{
	Use:   "occtview",
	Short: "Build and serve browser pages for the OCCT WebAssembly viewer",
	Long: `occtview prepares pages that start the OCCT 3D viewer module in a
browser: it negotiates a WebGL context for the page canvas, starts the
Emscripten module and runs configured startup commands.

Create a project:   occtview init my-viewer --model ball=samples/Ball.brep
Check the module:   occtview inspect
Generate the page:  occtview html --bootstrap-wasm occtview.wasm
Try it locally:     occtview serve --bootstrap-wasm occtview.wasm`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			viewer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	},
}

var (
	verbose bool
	version = "dev"
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log viewer and server activity to stderr")
}

func Execute(v string) error {
	version = v
	rootCmd.Version = v
	return rootCmd.Execute()
}
