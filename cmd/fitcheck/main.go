// Command fitcheck loads an image, fits it to a viewport and replays wheel
// steps, printing the resulting transform.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"photo-viewer/internal/app"
	"photo-viewer/internal/imageload"
	"photo-viewer/internal/viewer"
	"photo-viewer/pkg/geometry"
)

type fixedLayout struct {
	container geometry.Size
	natural   geometry.Size
}

func (f *fixedLayout) ContainerSize() geometry.Size { return f.container }
func (f *fixedLayout) NaturalSize() geometry.Size   { return f.natural }

func main() {
	configPath := flag.String("config", "", "Path to a config file")
	width := flag.Float64("w", 1280, "Viewport width")
	height := flag.Float64("h", 800, "Viewport height")
	steps := flag.Int("zoom", 0, "Wheel steps (positive zooms in, negative out)")
	x := flag.Float64("x", -1, "Wheel X position (default: viewport center)")
	y := flag.Float64("y", -1, "Wheel Y position (default: viewport center)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: fitcheck [-w 1280 -h 800] [-zoom N -x X -y Y] <image path or URL>")
		os.Exit(1)
	}

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config: %v\n", err)
		os.Exit(1)
	}

	loader := imageload.New(cfg.LoaderOptions()...)
	res, err := loader.Load(context.Background(), flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load: %v\n", err)
		os.Exit(1)
	}

	layout := &fixedLayout{
		container: geometry.NewSize(*width, *height),
		natural:   res.Natural,
	}
	v := viewer.New(layout, cfg.ViewerOptions())
	if !v.ImageLoaded(v.Show(flag.Arg(0))) {
		fmt.Fprintf(os.Stderr, "Cannot fit: %v\n", v.Err())
		os.Exit(1)
	}

	fmt.Printf("=== %s ===\n", res.URI.Name())
	fmt.Printf("Format:     %s\n", res.Format)
	fmt.Printf("Natural:    %.0f x %.0f\n", res.Natural.Width, res.Natural.Height)
	if res.Downsampled() {
		b := res.Image.Bounds()
		fmt.Printf("Raster:     %d x %d (downsampled)\n", b.Dx(), b.Dy())
	}
	fmt.Printf("Viewport:   %.0f x %.0f\n", *width, *height)
	fmt.Printf("Fit scale:  %.4f\n", v.FitScale())
	fmt.Printf("Scale range: %.4f .. %.4f\n", v.MinScale(), v.MaxScale())

	if *steps == 0 {
		return
	}
	at := layout.container.Center()
	if *x >= 0 && *y >= 0 {
		at = geometry.NewPoint2D(*x, *y)
	}
	up := *steps > 0
	n := *steps
	if n < 0 {
		n = -n
	}
	fmt.Printf("\n=== %d wheel steps at (%.0f, %.0f) ===\n", *steps, at.X, at.Y)
	for i := 1; i <= n; i++ {
		changed := v.Wheel(at, up)
		t := v.Transform()
		fmt.Printf("%3d  scale=%.4f  translate=(%.1f, %.1f)", i, t.Scale, t.TranslateX, t.TranslateY)
		if !changed {
			fmt.Print("  (clamped)")
		}
		fmt.Println()
	}

	r := v.ImageRect()
	fmt.Printf("\nImage rect: x=%.1f y=%.1f w=%.1f h=%.1f\n", r.X, r.Y, r.Width, r.Height)
	px := viewer.ContainerToImage(v.Geometry(), v.Transform(), at)
	fmt.Printf("Pixel under (%.0f, %.0f): (%.1f, %.1f)", at.X, at.Y, px.X, px.Y)
	if !r.Contains(at) {
		fmt.Print("  (outside image)")
	}
	fmt.Println()
}
