package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"
	future2 "github.com/yanorei32/future2-utils"
	"github.com/yanorei32/future2-utils/bigfile"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newToolkit(c *cli.Context) *future2.Toolkit {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	return future2.New(logger, log.New(os.Stderr, "warning: ", 0))
}

func parseKey(s string) (byte, error) {
	key, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid encrypt key %q: %w", s, err)
	}
	return byte(key), nil
}

func requireFlags(c *cli.Context, names ...string) {
	for _, name := range names {
		if !c.IsSet(name) {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "future2"
	app.Usage = "BigFile, S10Str and ImageFile conversion utility"
	app.Version = "1.0.0"
	// Paths may contain commas
	app.DisableSliceFlagSeparator = true

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	inputFlag := &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "input file",
	}
	inputsFlag := &cli.StringSliceFlag{
		Name:    "inputs",
		Aliases: []string{"i"},
		Usage:   "input files, in archive order",
	}
	outputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output file",
	}
	outputDirFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output directory, defaults to the directory of the input",
	}
	optionalOutputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output file, defaults to the input with a new extension appended",
	}

	app.Commands = []*cli.Command{
		{
			Name:  "bigfile-pack",
			Usage: "Pack BMP files into a BigFile",
			Flags: []cli.Flag{
				inputsFlag,
				outputFlag,
				&cli.StringFlag{
					Name:    "encrypt-key",
					Aliases: []string{"k"},
					Value:   fmt.Sprintf("%#02x", bigfile.DefaultKey),
					Usage:   "XOR key applied to every member byte",
				},
				&cli.BoolFlag{
					Name:  "raw",
					Usage: "store the inputs as they are without stripping the BMP file header",
				},
			},
			Action: func(c *cli.Context) error {
				requireFlags(c, "inputs", "output")

				key, err := parseKey(c.String("encrypt-key"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := newToolkit(c).PackBigFile(c.String("output"), c.StringSlice("inputs"), key, c.Bool("raw")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "bigfile-unpack",
			Usage: "Extract the members of a BigFile as BMP files",
			Flags: []cli.Flag{
				inputFlag,
				outputDirFlag,
				&cli.BoolFlag{
					Name:  "raw",
					Usage: "write the members as they are without adding a BMP file header",
				},
			},
			Action: func(c *cli.Context) error {
				requireFlags(c, "input")

				if err := newToolkit(c).UnpackBigFile(c.String("input"), c.String("output"), c.Bool("raw")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "s10-pack",
			Usage: "Pack MP3 files into an S10Str, titled by filename",
			Flags: []cli.Flag{
				inputsFlag,
				outputFlag,
			},
			Action: func(c *cli.Context) error {
				requireFlags(c, "inputs", "output")

				if err := newToolkit(c).PackS10Str(c.String("output"), c.StringSlice("inputs")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "s10-unpack",
			Usage: "Extract the entries of an S10Str as MP3 files",
			Flags: []cli.Flag{
				inputFlag,
				outputDirFlag,
			},
			Action: func(c *cli.Context) error {
				requireFlags(c, "input")

				if err := newToolkit(c).UnpackS10Str(c.String("input"), c.String("output")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "image-decode",
			Usage: "Convert an ImageFile to PNG",
			Flags: []cli.Flag{
				inputFlag,
				optionalOutputFlag,
			},
			Action: func(c *cli.Context) error {
				requireFlags(c, "input")

				if err := newToolkit(c).DecodeImage(c.String("input"), c.String("output")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "image-encode",
			Usage: "Convert a PNG or BMP to an ImageFile",
			Flags: []cli.Flag{
				inputFlag,
				optionalOutputFlag,
				&cli.UintFlag{
					Name:    "bit-depth",
					Aliases: []string{"b"},
					Value:   32,
					Usage:   "one of 4, 8, 16, 24 or 32",
				},
			},
			Action: func(c *cli.Context) error {
				requireFlags(c, "input")

				depth := c.Uint("bit-depth")
				if depth > math.MaxUint16 {
					return cli.Exit(fmt.Errorf("unsupported bit depth %d", depth), 1)
				}

				if err := newToolkit(c).EncodeImage(c.String("input"), c.String("output"), uint16(depth)); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "bmp2dib",
			Usage: "Strip the file header from a BMP",
			Flags: []cli.Flag{
				inputFlag,
				outputFlag,
			},
			Action: func(c *cli.Context) error {
				requireFlags(c, "input", "output")

				if err := newToolkit(c).BMPToDIB(c.String("input"), c.String("output")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "dib2bmp",
			Usage: "Add a file header to a DIB",
			Flags: []cli.Flag{
				inputFlag,
				outputFlag,
			},
			Action: func(c *cli.Context) error {
				requireFlags(c, "input", "output")

				if err := newToolkit(c).DIBToBMP(c.String("input"), c.String("output")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
