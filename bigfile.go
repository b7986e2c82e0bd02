package future2

import (
	"fmt"
	"os"

	"github.com/yanorei32/future2-utils/bigfile"
	"github.com/yanorei32/future2-utils/bmp"
)

// PackBigFile writes the BMP files in inputs to output as a BigFile scrambled
// with key. With raw set the inputs are stored as they are rather than having
// their BMP file header stripped.
func (t *Toolkit) PackBigFile(output string, inputs []string, key byte, raw bool) error {
	members, err := readFiles(inputs)
	if err != nil {
		return err
	}

	if !raw {
		for i, b := range members {
			if members[i], err = bmp.StripToDIB(b); err != nil {
				return fmt.Errorf("%s: %w", inputs[i], err)
			}
		}
	}

	b, err := bigfile.Encode(members, key)
	if err != nil {
		return err
	}

	a := bigfile.Archive{Key: key, Members: members}
	descriptors, err := a.Descriptors()
	if err != nil {
		return err
	}
	for i, d := range descriptors {
		t.logger.Printf("%s: Size: %d at Addr: %#x CRC: %s\n", inputs[i], d.Size, d.StartAt, crc(members[i]))
	}

	return writeFile(output, b)
}

// UnpackBigFile extracts every member of the BigFile input to
// <input>.<i>.bmp in outputDir, or the directory holding input if outputDir is
// empty. With raw set the members are written as they are to <input>.<i>.bin
// instead of being wrapped in a BMP file header.
func (t *Toolkit) UnpackBigFile(input, outputDir string, raw bool) error {
	b, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	a, warnings, err := bigfile.Decode(b)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	t.warn(input, warnings)

	descriptors := a.Layout()

	t.logger.Printf("%s: %d members, key %#02x\n", input, len(a.Members), a.Key)

	files := make([]file, len(a.Members))
	for i, m := range a.Members {
		t.logger.Printf(" - Size: %d at Addr: %#x CRC: %s\n", descriptors[i].Size, descriptors[i].StartAt, crc(m))

		ext := "bmp"
		if raw {
			ext = "bin"
		} else if m, err = bmp.WrapDIB(m); err != nil {
			return fmt.Errorf("%s: member %d: %w", input, i, err)
		}

		files[i] = file{index: i, path: numberedPath(input, outputDir, i, ext), data: m}
	}

	return writeFiles(files)
}
