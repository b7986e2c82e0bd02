package future2

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yanorei32/future2-utils/s10str"
)

// PackS10Str writes the files in inputs to output as an S10Str, each titled
// with its filename minus the extension.
func (t *Toolkit) PackS10Str(output string, inputs []string) error {
	data, err := readFiles(inputs)
	if err != nil {
		return err
	}

	entries := make([]s10str.Entry, len(inputs))
	for i, input := range inputs {
		entries[i] = s10str.Entry{
			Title: strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)),
			Data:  data[i],
		}
	}

	b, err := s10str.Encode(entries)
	if err != nil {
		return err
	}

	for i, e := range entries {
		t.logger.Printf("%s: \"%s\" Size: %d CRC: %s\n", inputs[i], e.Title, len(e.Data), crc(e.Data))
	}

	return writeFile(output, b)
}

// UnpackS10Str extracts every entry of the S10Str input to <input>.<i>.mp3 in
// outputDir, or the directory holding input if outputDir is empty.
func (t *Toolkit) UnpackS10Str(input, outputDir string) error {
	b, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	a, warnings, err := s10str.Decode(b)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	t.warn(input, warnings)

	t.logger.Printf("%s: %d entries\n", input, len(a.Entries))

	descriptors := a.Layout()

	files := make([]file, len(a.Entries))
	for i, e := range a.Entries {
		t.logger.Printf(" - \"%s\" Size: %d at Addr: %#x CRC: %s\n", e.Title, descriptors[i].Size, descriptors[i].StartAt, crc(e.Data))
		files[i] = file{index: i, path: numberedPath(input, outputDir, i, "mp3"), data: e.Data}
	}

	return writeFiles(files)
}
