package future2

import (
	"bytes"
	"fmt"
	"image/color"
	"os"

	"github.com/yanorei32/future2-utils/bmp"
	"github.com/yanorei32/future2-utils/imagefile"
	"github.com/yanorei32/future2-utils/palette"
	"github.com/yanorei32/future2-utils/raster"
)

// The color count only means something for the paletted modes
func describe(width, height uint32, mode imagefile.Mode, colors int) string {
	if mode.Paletted() {
		return fmt.Sprintf("%dx%d %s (%d Colors)", width, height, mode, colors)
	}
	return fmt.Sprintf("%dx%d %s", width, height, mode)
}

// DecodeImage converts the ImageFile input to a PNG written to output, or to
// <input>.png if output is empty.
func (t *Toolkit) DecodeImage(input, output string) error {
	b, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	d, err := imagefile.Decode(b)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	t.warn(input, d.Warnings)

	mode, _ := d.Header.Mode()
	t.logger.Printf("%s: %s\n", input, describe(d.Header.Width, d.Header.Height, mode, len(d.Header.Palette)))

	if output == "" {
		output = outputPath(input, "", ".png")
	}

	buf := new(bytes.Buffer)
	if err := raster.EncodePNG(buf, d.Image); err != nil {
		return err
	}

	return writeFile(output, buf.Bytes())
}

// EncodeImage converts the PNG or BMP input to an ImageFile with the given bit
// depth written to output, or to <input>.data if output is empty. The 4 and 8
// bpp modes reuse the colors of the input when there are few enough of them
// and quantize it otherwise.
func (t *Toolkit) EncodeImage(input, output string, bitDepth uint16) error {
	mode, err := imagefile.ModeFromBitDepth(bitDepth)
	if err != nil {
		return err
	}

	format, err := raster.FormatFromPath(input)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := raster.Decode(f, format)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	bounds := m.Bounds()
	w, h := uint32(bounds.Dx()), uint32(bounds.Dy())

	var colors []bmp.Color
	if mode.Paletted() {
		pm, lossless, err := palette.Reduce(m, mode.MaxColors())
		if err != nil {
			return err
		}
		if !lossless {
			t.warnings.Printf("%s: quantized to %d colors\n", input, len(pm.Palette))
		}

		colors = make([]bmp.Color, len(pm.Palette))
		for i, c := range pm.Palette {
			colors[i] = bmp.ColorFromNRGBA(color.NRGBAModel.Convert(c).(color.NRGBA))
		}
		m = pm
	}

	header := imagefile.NewHeader(w, h, mode, colors)

	b, warnings, err := imagefile.Encode(header, m)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	t.warn(input, warnings)

	t.logger.Printf("%s: %s\n", input, describe(w, h, mode, len(colors)))

	if output == "" {
		output = outputPath(input, "", ".data")
	}

	return writeFile(output, b)
}
