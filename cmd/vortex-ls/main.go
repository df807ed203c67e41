// vortex-ls - Vortex language server
//
// Speaks the Language Server Protocol over stdio, publishing syntax and
// compile diagnostics and offering keyword and variable completion.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/tliron/commonlog"

	vortex "github.com/aabanakhtar-github/vortex-lang"
	"github.com/aabanakhtar-github/vortex-lang/internal/lsp"
	"github.com/aabanakhtar-github/vortex-lang/internal/manifest"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	// Logs go to stderr; stdout carries the protocol.
	verbosity := 1
	if v, ok := os.LookupEnv(manifest.EnvLogVerbosity); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vortex-ls: %s: invalid verbosity %q\n", manifest.EnvLogVerbosity, v)
			os.Exit(2)
		}
		verbosity = n
	}
	commonlog.Configure(verbosity, nil)

	if err := lsp.NewServer(vortex.Version).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "vortex-ls: %v\n", err)
		os.Exit(1)
	}
}
