// Command bamboo-man renders the bamboo man pages for packaging.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bamboobank/bamboo/internal/cli"
	"github.com/bamboobank/bamboo/internal/version"
)

func main() {
	var (
		outDir string
		quiet  bool
	)
	flag.StringVar(&outDir, "out", filepath.Join("dist", "man", "man1"), "directory receiving the section 1 pages")
	flag.BoolVar(&quiet, "quiet", false, "do not list the generated pages")
	flag.Parse()
	if flag.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "usage: bamboo-man [-out dir] [-quiet]")
		os.Exit(2)
	}

	build := cli.BuildInfo{
		Version:   version.Version,
		Commit:    version.Commit,
		BuildTime: version.BuildTime,
	}
	if err := cli.GenerateManPages(outDir, build); err != nil {
		fmt.Fprintf(os.Stderr, "bamboo-man: %v\n", err)
		os.Exit(1)
	}
	if quiet {
		return
	}

	pages, err := filepath.Glob(filepath.Join(outDir, "*.1"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "bamboo-man: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d man pages for bamboo %s to %s\n", len(pages), build.Version, outDir)
}
