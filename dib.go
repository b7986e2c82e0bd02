package future2

import (
	"fmt"
	"os"

	"github.com/yanorei32/future2-utils/bmp"
)

// BMPToDIB writes the BMP file input to output without its file header.
func (t *Toolkit) BMPToDIB(input, output string) error {
	b, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	dib, err := bmp.StripToDIB(b)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	t.logger.Printf("%s: %d bytes\n", output, len(dib))

	return writeFile(output, dib)
}

// DIBToBMP writes the DIB input to output with a BMP file header in front.
func (t *Toolkit) DIBToBMP(input, output string) error {
	dib, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	b, err := bmp.WrapDIB(dib)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	t.logger.Printf("%s: %d bytes\n", output, len(b))

	return writeFile(output, b)
}
