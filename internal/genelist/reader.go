// Package genelist reads newline-delimited gene symbol lists.
package genelist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/inodb/vibe-ora/internal/ora"
)

// Read loads gene symbols from the file at path.
func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ora.ConfigError{Field: "input", Msg: "gene list not found: " + path}
		}
		return nil, &ora.ConfigError{Field: "input", Msg: "open gene list", Err: err}
	}
	defer f.Close()

	genes, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return genes, nil
}

// Parse reads one symbol per line. Surrounding and embedded whitespace is
// removed, blank lines and lines starting with '#' are skipped, and
// duplicates (compared case-insensitively) are dropped keeping the first
// spelling seen. It fails if no symbol remains.
func Parse(r io.Reader) ([]string, error) {
	fold := cases.Fold()
	seen := make(map[string]bool)
	var genes []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "\ufeff")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		symbol := norm.NFC.String(stripSpace(line))
		if symbol == "" {
			continue
		}

		key := fold.String(symbol)
		if seen[key] {
			continue
		}
		seen[key] = true
		genes = append(genes, symbol)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ora.ConfigError{Field: "input", Msg: "read gene list", Err: err}
	}

	if len(genes) == 0 {
		return nil, &ora.ConfigError{Field: "input", Msg: "gene list is empty"}
	}
	return genes, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
