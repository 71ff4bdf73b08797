// Command gen-cube writes synthetic radar cube recordings for replay
// and testing: a breathing tone, a heart tone, or both, centered on a
// chosen range bin window.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/baxter-barlow/chirp/internal/synth"
	"github.com/baxter-barlow/chirp/internal/units"
	"github.com/baxter-barlow/chirp/internal/vitals"
)

func main() {
	output := flag.String("o", "sample.cube", "output path")
	frames := flag.Int("n", 1280, "number of frames")
	bins := flag.Int("bins", 32, "cube range bins")
	hint := flag.Int("hint", 12, "center bin of the tone window")
	breathBPM := flag.Float64("breath", 15, "breathing rate in BPM (0 disables)")
	heartBPM := flag.Float64("heart", 72, "heart rate in BPM (0 disables)")
	noise := flag.Int("noise", 0, "Q15 dither amplitude")
	flag.Parse()

	lo := *hint - vitals.NumRangeSelBins/2
	if lo < 0 {
		lo = 0
	}
	hi := lo + vitals.NumRangeSelBins
	if hi > *bins {
		hi = *bins
	}

	var tones []synth.Tone
	if *breathBPM > 0 {
		tones = append(tones, synth.BreathingTone(units.BPMToIndex(*breathBPM), lo, hi))
	}
	if *heartBPM > 0 {
		tones = append(tones, synth.HeartTone(units.BPMToIndex(*heartBPM), lo, hi))
	}
	if len(tones) == 0 {
		log.Fatal("nothing to synthesize: both rates disabled")
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("creating %s: %v", *output, err)
	}
	defer f.Close()

	w, err := synth.NewWriter(f, *bins)
	if err != nil {
		log.Fatalf("writing header: %v", err)
	}

	gen := synth.NewGenerator(*bins, tones...)
	gen.NoiseQ15 = int16(*noise)

	for i := 0; i < *frames; i++ {
		if err := w.WriteFrame(gen.NextFrame()); err != nil {
			log.Fatalf("frame %d: %v", i, err)
		}
		if (i+1)%256 == 0 {
			log.Printf("%d/%d frames", i+1, *frames)
		}
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("flushing: %v", err)
	}
	log.Printf("wrote %s: %d frames, %d bins, tones at bins [%d,%d)", *output, *frames, *bins, lo, hi)
}
