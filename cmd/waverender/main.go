// Command waverender renders a PWL text file to a PNG without
// opening the editor. Useful for documentation and CI artifacts.
package main

import (
	"flag"
	"log"
	"os"

	"pwl-editor/internal/export"
	"pwl-editor/internal/pwl"
	"pwl-editor/internal/view"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	in := flag.String("in", "", "input PWL text file")
	out := flag.String("out", "waveform.png", "output PNG file")
	width := flag.Int("w", 1200, "image width in pixels")
	height := flag.Int("h", 800, "image height in pixels")
	title := flag.String("title", "", "optional plot title")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("open %s: %v", *in, err)
	}
	wave, err := pwl.Parse(f)
	f.Close()
	if err != nil {
		log.Fatalf("parse %s: %v", *in, err)
	}

	v := view.Default()
	pts := wave.Points()
	times := make([]float64, len(pts))
	volts := make([]float64, len(pts))
	for i, p := range pts {
		times[i] = p.Time
		volts[i] = p.Voltage
	}
	v.FitToPoints(times, volts)

	opts := export.Options{Width: *width, Height: *height, Title: *title}
	if err := export.WritePNG(*out, wave, v, opts); err != nil {
		log.Fatalf("render: %v", err)
	}
	log.Printf("Wrote %s (%d points)", *out, wave.Len())
}
