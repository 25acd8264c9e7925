package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout formats the run time in output file names.
const TimestampLayout = "20060102-150405"

// Paths holds the output file names of one run.
type Paths struct {
	Stem string
	TSV  string
	JSON string
	PNG  string
}

// NewPaths returns output paths named enrichment_<timestamp> in dir. When
// any file with that stem already exists a -N suffix is added so that
// earlier runs are never overwritten. dir need not exist yet.
func NewPaths(dir string, now time.Time) Paths {
	base := "enrichment_" + now.Format(TimestampLayout)
	for i := 0; ; i++ {
		stem := base
		if i > 0 {
			stem = fmt.Sprintf("%s-%d", base, i)
		}
		p := Paths{
			Stem: stem,
			TSV:  filepath.Join(dir, stem+".tsv"),
			JSON: filepath.Join(dir, stem+".json"),
			PNG:  filepath.Join(dir, stem+".png"),
		}
		if !exists(p.TSV) && !exists(p.JSON) && !exists(p.PNG) {
			return p
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFile writes to path through a temporary file that is renamed into
// place once fn succeeds.
func WriteFile(path string, fn func(io.Writer) error) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if err := fn(f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}
