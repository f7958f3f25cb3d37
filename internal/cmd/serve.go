package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eljojo/occtview/internal/devserver"
	"github.com/eljojo/occtview/internal/viewer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the project locally for testing",
	Long: `Serve the viewer page and project files over HTTP.

The page is generated on every request with module diagnostics enabled;
the module's print/printErr output streams back over a websocket and is
shown on stderr (with --verbose) and at /diagnostics.json.

Example:
  occtview serve --bootstrap-wasm occtview.wasm
  occtview serve --bootstrap-wasm occtview.wasm --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr          string
	serveBootstrapWASM string
	serveWASMExec      string
	serveKeepLines     int
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Address to listen on")
	serveCmd.Flags().StringVar(&serveBootstrapWASM, "bootstrap-wasm", "", "js/wasm build of the bootstrap (default: $"+envBootstrapWASM+")")
	serveCmd.Flags().StringVar(&serveWASMExec, "wasm-exec", "", "wasm_exec.js matching the bootstrap's Go version (default: from GOROOT)")
	serveCmd.Flags().IntVar(&serveKeepLines, "keep-lines", viewer.DefaultCollectorLimit, "Diagnostic lines kept for /diagnostics.json")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	assets, err := loadPageAssets(serveBootstrapWASM, serveWASMExec)
	if err != nil {
		return err
	}

	srv, err := devserver.New(devserver.Config{
		Project:       p,
		BootstrapWASM: assets.bootstrapWASM,
		WASMExecJS:    assets.wasmExecJS,
		Version:       version,
		Collector:     viewer.NewCollector(serveKeepLines),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving %s at http://%s/\n", p.Name, serveAddr)
	fmt.Println("Press Ctrl+C to stop")
	if err := srv.ListenAndServe(ctx, serveAddr); err != nil {
		return err
	}

	fmt.Printf("\nStopped. %d diagnostic line%s collected.\n", srv.Collector().Len(), plural(srv.Collector().Len()))
	return nil
}
