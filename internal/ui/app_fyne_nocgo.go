//go:build fyne && !cgo

package ui

import "fmt"

// Run informs the user that Fyne UI requires cgo (OpenGL) and a C toolchain.
// This stub is compiled when the build uses -tags fyne but CGO is disabled.
func Run(_, _ string) error {
	return fmt.Errorf("the Prism editor needs cgo for OpenGL: install a C toolchain and rebuild with CGO_ENABLED=1 go run -tags fyne ./cmd/prism ui")
}
