package vitals

// The breathing-deviation estimate is taken from one hard-coded
// reference cell and a fixed 40-sample slice of its time series. The
// choice assumes NumAngleSelBins=9 and NumRangeSelBins=5; changing
// either constant invalidates these.
const (
	refAngleCell  = 5
	refRangeCell  = 3
	refSliceStart = 59
	refSliceLen   = 40
)

// deviation returns the variance E[x^2] - E[x]^2 of a, or -1 for an
// empty slice.
func deviation(a []float32) float32 {
	n := len(a)
	if n < 1 {
		return -1
	}
	var sumX, sumX2 float32
	for _, v := range a {
		sumX += v
		sumX2 += v * v
	}
	nf := float32(n)
	return sumX2/nf - (sumX/nf)*(sumX/nf)
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// decide fuses the per-cell candidates into one published result:
// histogram voting for both rates, correlation of the strongest
// accumulated heart peaks against history, jump limiting, and
// validity gating.
func (p *Pipeline) decide() {
	// Breathing: vote over every cell's peak index.
	for i := range p.hist {
		p.hist[i] = 0
	}
	for _, idx := range p.breathIdxArr {
		p.hist[idx]++
	}
	p.breathHistIndex = argmax3(p.hist, breathIndexStart, breathIndexEnd)

	// Heart: the edge range cells of each angle row are unreliable;
	// only the center three vote.
	for a := 0; a < NumAngleSelBins; a++ {
		first := a * NumRangeSelBins
		last := first + NumRangeSelBins - 1
		p.heartIdx1Arr[first] = 0
		p.heartIdx1Arr[last] = 0
		p.heartIdx2Arr[first] = 0
		p.heartIdx2Arr[last] = 0
		p.heartIdx3Arr[first] = 0
		p.heartIdx3Arr[last] = 0
	}

	for i := range p.hist {
		p.hist[i] = 0
	}
	for c := range p.heartIdx1Arr {
		p.hist[p.heartIdx1Arr[c]]++
		p.hist[p.heartIdx2Arr[c]]++
	}

	var best float32
	p.heartHistIndex = 0
	for k := heartIndexStart; k < heartIndexEnd; k++ {
		v := p.hist[k-2] + p.hist[k-1] + p.hist[k] + p.hist[k+1] + p.hist[k+2]
		if v > best || (v == best && v > 0 && p.hist[k] > p.hist[p.heartHistIndex]) {
			best = v
			p.heartHistIndex = k
		}
	}

	// Correlation: the five strongest peaks of the accumulated
	// harmonic-product spectrum, matched against the oldest history
	// slot.
	copy(p.heartScratch, p.heartStorage)
	var present [5]int
	for i := range present {
		present[i] = argmax3(p.heartScratch, heartIndexStart, heartIndexEnd)
		zeroPeak(p.heartScratch, present[i])
	}

	prevPeak := p.previousHeartPeak[3]
	minDiff := 100
	minIdx := 0
	for i, pk := range present {
		if d := absDiff(pk, prevPeak); d < minDiff {
			minDiff = d
			minIdx = i
		}
	}

	heartPeak := p.heartHistIndex
	if minDiff < heartDecisionThresh {
		heartPeak = present[minIdx]
	}

	// Jump limiter: past warm-up the published index may not move
	// more than heartJumpLimit per refresh.
	if p.loop > warmupLoops && absDiff(heartPeak, p.previousHeartPeak[0]) > heartJumpLimit {
		if heartPeak > p.previousHeartPeak[0] {
			heartPeak = p.previousHeartPeak[0] + heartJumpLimit
		} else {
			heartPeak = p.previousHeartPeak[0] - heartJumpLimit
		}
	}

	if p.loop > 4 {
		p.previousHeartPeak[3] = p.previousHeartPeak[2]
		p.previousHeartPeak[2] = p.previousHeartPeak[1]
		p.previousHeartPeak[1] = p.previousHeartPeak[0]
		p.previousHeartPeak[0] = heartPeak
	} else if p.loop == 0 {
		p.previousHeartPeak = [4]int{}
	}

	dev := deviation(p.refSeries[refSliceStart : refSliceStart+refSliceLen])

	out := Result{
		ID:                 0,
		RangeBin:           p.rangeBin,
		HeartRate:          float32(heartPeak) * BPMPerIndex,
		BreathingRate:      float32(p.breathHistIndex) * BPMPerIndex,
		BreathingDeviation: dev,
	}

	switch {
	case p.noTarget:
		out = Result{}
	case p.loop < warmupLoops:
		out.HeartRate = 0
		out.BreathingRate = 0
	default:
		out.Valid = true
	}

	p.out = out
}
