package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// GenerateManPages writes one roff page per command into outDir. Pages are
// stamped with the build version and, when it parses, the build date, so two
// runs from the same build produce identical files.
func GenerateManPages(outDir string, build BuildInfo) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create man output directory: %w", err)
	}

	root := NewRootCommand(io.Discard, build)
	disableAutoGenTag(root)

	if err := doc.GenManTree(root, manHeader(build), outDir); err != nil {
		return fmt.Errorf("generate man pages: %w", err)
	}
	return nil
}

func manHeader(build BuildInfo) *doc.GenManHeader {
	header := &doc.GenManHeader{
		Title:   "BAMBOO",
		Section: "1",
		Source:  "Bamboo",
		Manual:  "Bamboo Ledger Manual",
	}
	if v := strings.TrimSpace(build.Version); v != "" && v != "dev" {
		header.Source = "Bamboo " + v
	}
	if built, err := time.Parse(time.RFC3339, build.BuildTime); err == nil {
		built = built.UTC()
		header.Date = &built
	}
	return header
}

// The cobra footer carries the generation date; drop it everywhere so pages
// only change when the build does.
func disableAutoGenTag(cmd *cobra.Command) {
	cmd.DisableAutoGenTag = true
	for _, child := range cmd.Commands() {
		disableAutoGenTag(child)
	}
}
