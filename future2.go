/*
Package future2 is a library for converting the BigFile, S10Str and ImageFile
formats to and from the BMP, MP3 and PNG files they hold.
*/
package future2

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/yanorei32/future2-utils/warn"
)

// Toolkit runs the conversions against files on disk.
type Toolkit struct {
	logger   *log.Logger
	warnings *log.Logger
}

// New returns a Toolkit that logs progress to logger and decoder warnings to
// warnings.
func New(logger, warnings *log.Logger) *Toolkit {
	return &Toolkit{
		logger:   logger,
		warnings: warnings,
	}
}

func (t *Toolkit) warn(file string, warnings warn.List) {
	for _, w := range warnings {
		t.warnings.Printf("%s: %s\n", file, w)
	}
}

// Outputs are named after the whole input filename, extension included, and
// default to the directory of the input
func outputPath(input, dir, suffix string) string {
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, filepath.Base(input)+suffix)
}

func numberedPath(input, dir string, i int, ext string) string {
	return outputPath(input, dir, fmt.Sprintf(".%d.%s", i, ext))
}

func writeFile(file string, b []byte) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err = f.Write(b); err != nil {
		return err
	}

	return f.Close()
}
