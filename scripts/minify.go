// Command minify writes a .min.css next to every stylesheet under static/css.
//
//	go run ./scripts [-dir static/css]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	cssComments   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	cssWhitespace = regexp.MustCompile(`\s+`)
	cssPunctSpace = regexp.MustCompile(`\s*([{}:;,>])\s*`)
)

func minifyCSS(content string) string {
	content = cssComments.ReplaceAllString(content, "")
	content = cssWhitespace.ReplaceAllString(content, " ")
	content = cssPunctSpace.ReplaceAllString(content, "$1")
	content = strings.ReplaceAll(content, ";}", "}")
	return strings.TrimSpace(content)
}

func minifyFile(inputPath string) error {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}

	minified := minifyCSS(string(content))
	outputPath := strings.TrimSuffix(inputPath, ".css") + ".min.css"
	if err := os.WriteFile(outputPath, []byte(minified), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	if len(content) > 0 {
		reduction := float64(len(content)-len(minified)) / float64(len(content)) * 100
		fmt.Printf("%s: %d -> %d bytes (%.1f%% smaller)\n", filepath.Base(inputPath), len(content), len(minified), reduction)
	}
	return nil
}

func main() {
	dir := flag.String("dir", "static/css", "stylesheet directory")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*dir, "*.css"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	failed := false
	for _, f := range files {
		if strings.HasSuffix(f, ".min.css") {
			continue
		}
		if err := minifyFile(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
