package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/model"
)

var (
	unitPerPixel float64
	fitSize      string
	noExtensions bool
	outputFile   string
	splitAll     bool
	hitZoom      float64
)

var infoCmd = &cobra.Command{
	Use:   "info <drawing.fcd>",
	Short: "Show drawing information",
	Long: `Parse a drawing and print its primitive counts per kind and layer,
the macros it uses, its logical bounds and the lines that could not be read.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

var sizeCmd = &cobra.Command{
	Use:   "size <drawing.fcd>",
	Short: "Show the image size of a drawing",
	Long: `Print the size in pixels and the origin of a drawing at a given zoom.
With --fit WxH the zoom that fits the drawing in W by H pixels is printed too.`,
	Args: cobra.ExactArgs(1),
	RunE: runSize,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt <drawing.fcd>",
	Short: "Rewrite a drawing",
	Long: `Parse a drawing and write it back in FidoCadJ format, sorted by layer.
Lines that could not be read are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

var splitCmd = &cobra.Command{
	Use:   "split <drawing.fcd>",
	Short: "Expand the macros of a drawing",
	Long: `Replace every macro which is not part of the standard libraries by the
primitives it is made of. With --standard all macros are expanded.`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

var hitCmd = &cobra.Command{
	Use:   "hit <drawing.fcd> <x> <y>",
	Short: "Find the primitive nearest to a point",
	Long: `Find the primitive nearest to a point given in logical units. With
--zoom the point is a pixel position at that zoom, converted back to logical
units and snapped to the configured grid when snap is on.`,
	Args: cobra.ExactArgs(3),
	RunE:  runHit,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(sizeCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(hitCmd)

	sizeCmd.Flags().Float64VarP(&unitPerPixel, "unit-per-pixel", "u", 1.0, "zoom, in pixels per logical unit")
	sizeCmd.Flags().StringVar(&fitSize, "fit", "", "window size WxH to fit the drawing in")

	fmtCmd.Flags().BoolVar(&noExtensions, "no-extensions", false, "omit FCJ and FJC lines")
	fmtCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	splitCmd.Flags().BoolVar(&splitAll, "standard", false, "expand the standard library macros too")
	splitCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	hitCmd.Flags().Float64VarP(&hitZoom, "zoom", "z", 0, "read x and y as pixels at this zoom")
}

func runInfo(cmd *cobra.Command, args []string) error {
	p, res, err := openDrawing(args[0])
	if err != nil {
		return err
	}
	s := model.Summarize(p.Drawing())

	fmt.Printf("Drawing: %s\n", args[0])
	fmt.Printf("  Primitives: %d\n", s.Primitives)
	if s.Empty {
		fmt.Printf("  Bounds: empty\n")
	} else {
		fmt.Printf("  Bounds: (%d, %d) - (%d, %d)\n", s.Bounds.Min.X, s.Bounds.Min.Y, s.Bounds.Max.X, s.Bounds.Max.Y)
	}
	d := res.Defaults
	fmt.Printf("  Connection diameter: %g\n", d.ConnectionDiameter)
	fmt.Printf("  Line width: %g (circles %g)\n", d.LineWidth, d.LineWidthCircles)
	fmt.Println()

	if len(s.Kinds) > 0 {
		fmt.Println("Kinds:")
		kinds := make([]string, 0, len(s.Kinds))
		for k := range s.Kinds {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("  %-14s %d\n", k, s.Kinds[k])
		}
		fmt.Println()
	}

	if len(s.Layers) > 0 {
		fmt.Println("Layers:")
		ll := p.Drawing().Layers
		for i := range ll {
			if n, ok := s.Layers[i]; ok {
				fmt.Printf("  %2d %-14s %d\n", i, ll[i].Description, n)
			}
		}
		fmt.Println()
	}

	if len(s.Macros) > 0 {
		fmt.Println("Macros:")
		keys := make([]string, 0, len(s.Macros))
		for k := range s.Macros {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s x%d\n", k, s.Macros[k])
		}
		fmt.Println()
	}

	if len(res.Diagnostics) > 0 {
		fmt.Printf("Diagnostics (%d):\n", len(res.Diagnostics))
		for _, e := range res.Diagnostics {
			fmt.Printf("  %v\n", e)
		}
	}
	return nil
}

// parseSize reads a "WxH" window size
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return w, h, nil
}

func runSize(cmd *cobra.Command, args []string) error {
	if unitPerPixel <= 0 {
		return fmt.Errorf("unit-per-pixel must be positive")
	}
	p, _, err := openDrawing(args[0])
	if err != nil {
		return err
	}
	d := p.Drawing()

	w, h, org := model.ImageSize(d, unitPerPixel, true)
	fmt.Printf("Size: %d x %d pixels at %g\n", w, h, unitPerPixel)
	fmt.Printf("Origin: (%d, %d)\n", org.X, org.Y)

	if fitSize != "" {
		sx, sy, err := parseSize(fitSize)
		if err != nil {
			return err
		}
		m := model.ZoomToFit(d, sx, sy, true)
		fmt.Printf("Zoom to fit %dx%d: %g, center (%g, %g)\n", sx, sy, m.XMagnitude(), m.XCenter(), m.YCenter())
	}
	return nil
}

// writeOutput writes text to --output or to stdout
func writeOutput(text string) error {
	if outputFile == "" {
		_, err := fmt.Print(text)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(text), 0o644); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	if verbose {
		fmt.Printf("Wrote %s\n", outputFile)
	}
	return nil
}

func ext() bool {
	return cfg.Extensions && !noExtensions
}

func runFmt(cmd *cobra.Command, args []string) error {
	p, res, err := openDrawing(args[0])
	if err != nil {
		return err
	}
	if len(res.Diagnostics) > 0 {
		fmt.Fprintf(os.Stderr, "%d lines could not be read\n", len(res.Diagnostics))
	}
	return writeOutput("[FIDOCAD]\n" + p.Text(ext()))
}

func runSplit(cmd *cobra.Command, args []string) error {
	p, _, err := openDrawing(args[0])
	if err != nil {
		return err
	}
	text, err := p.SplitMacros(p.Text(true), splitAll || cfg.SplitStandardMacros)
	if err != nil {
		return err
	}
	return writeOutput(text)
}

func runHit(cmd *cobra.Command, args []string) error {
	x, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid y: %w", err)
	}
	if hitZoom < 0 {
		return fmt.Errorf("zoom must be positive")
	}
	if hitZoom > 0 {
		m := cfg.NewMapper()
		m.SetMagnitudes(hitZoom, hitZoom)
		x, y = m.UnmapXSnap(x), m.UnmapYSnap(y)
		fmt.Printf("Point: (%d, %d)\n", x, y)
	}
	p, _, err := openDrawing(args[0])
	if err != nil {
		return err
	}

	prim, dist := p.Drawing().Nearest(x, y)
	if prim == nil {
		fmt.Println("No visible primitive")
		return nil
	}
	fmt.Printf("Nearest: %s on layer %d, distance %d\n", prim.Kind(), prim.Layer(), dist)
	fmt.Print(prim.String(true))
	return nil
}
