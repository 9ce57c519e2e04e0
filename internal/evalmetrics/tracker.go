package evalmetrics

import (
	"math"
	"sort"

	"github.com/PH-19/sonarscan-sim/internal/vecmath"
	"github.com/samber/lo"
)

// swimmerState is the per-swimmer bookkeeping (updateTimes/lastSeen/
// firstDetectionTime): the dedup'd history of accepted distance-matches for
// one swimmer.
type swimmerState struct {
	enteredAt  float64
	lastSeen   float64
	seenOnce   bool
	firstSeen  float64
	hasFirst   bool
	buckets    map[int64]bool
	updateTimes []float64
}

type frameEvent struct {
	t          float64
	sonarID    int
	tp, fp, fn int
	iouSum     float64
}

type scanRateSample struct {
	t       float64
	sonarID int
	rateHz  float64
}

type frameCompletionEvent struct {
	t       float64
	sonarID int
}

type errorSample struct {
	t   float64
	val float64
}

// Tracker accumulates match events across ticks and answers windowed
// EvalMetrics queries. It owns no sonar or swimmer state beyond what it
// needs to compute metrics; the engine remains the source of truth for
// "currently active swimmers".
type Tracker struct {
	swimmers map[uint64]*swimmerState

	frameEvents      []frameEvent
	scanRateSamples  []scanRateSample
	frameCompletions []frameCompletionEvent
	localizationErrs []errorSample
	trackingErrs     []errorSample
}

// NewTracker constructs an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{swimmers: make(map[uint64]*swimmerState)}
}

// AddSwimmer registers a newly entered swimmer.
func (tr *Tracker) AddSwimmer(id uint64, enteredAt float64) {
	tr.swimmers[id] = &swimmerState{enteredAt: enteredAt, buckets: make(map[int64]bool)}
}

// RemoveSwimmer forgets a swimmer entirely; past events it contributed to
// frame-level rollups remain, since those are keyed by sonar, not swimmer.
func (tr *Tracker) RemoveSwimmer(id uint64) {
	delete(tr.swimmers, id)
}

// RecordFrame rolls one sonar's IoU-matching result for one finalized frame
// into the precision/recall/f1/mdr/meanIoU event history.
func (tr *Tracker) RecordFrame(sonarID int, t float64, res IoUResult) {
	tr.frameEvents = append(tr.frameEvents, frameEvent{t: t, sonarID: sonarID, tp: res.TP, fp: res.FP, fn: res.FN, iouSum: res.IoUSum})
}

// RecordScanRate samples the sonar's instantaneous ping-emission rate while
// SCANNING, feeding avgScanRateHz. Rate samples are averaged over the
// window rather than counting discrete pings, since the ping-emission loop
// lives entirely inside the sonar package and emits far more often than the
// tracker is sampled.
func (tr *Tracker) RecordScanRate(sonarID int, t, rateHz float64) {
	tr.scanRateSamples = append(tr.scanRateSamples, scanRateSample{t: t, sonarID: sonarID, rateHz: rateHz})
}

// RecordFrameCompletion marks one finalized frame, feeding fps.
func (tr *Tracker) RecordFrameCompletion(sonarID int, t float64) {
	tr.frameCompletions = append(tr.frameCompletions, frameCompletionEvent{t: t, sonarID: sonarID})
}

// RecordMatch applies one accepted distance-match's bookkeeping: lastSeen,
// the 1ms-bucket-deduplicated updateTimes list, firstDetectionTime, and the
// two error-sample histories (raw localization error and post-Kalman
// tracking error).
func (tr *Tracker) RecordMatch(swimmerID uint64, t, localizationErr, trackingErr float64) {
	st, ok := tr.swimmers[swimmerID]
	if !ok {
		return
	}
	st.lastSeen = t
	st.seenOnce = true
	if !st.hasFirst {
		st.hasFirst = true
		st.firstSeen = t
	}

	bucket := int64(math.Round(t * 1000))
	if st.buckets[bucket] {
		return
	}
	st.buckets[bucket] = true
	st.updateTimes = append(st.updateTimes, t)

	tr.localizationErrs = append(tr.localizationErrs, errorSample{t: t, val: localizationErr})
	tr.trackingErrs = append(tr.trackingErrs, errorSample{t: t, val: trackingErr})
}

// Prune discards events older than now-maxWindowSec, bounding memory growth
// over a long-running session. Callers should prune with the largest window
// they ever intend to query.
func (tr *Tracker) Prune(now, maxWindowSec float64) {
	cutoff := now - maxWindowSec
	tr.frameEvents = dropOlder(tr.frameEvents, cutoff, func(e frameEvent) float64 { return e.t })
	tr.scanRateSamples = dropOlder(tr.scanRateSamples, cutoff, func(e scanRateSample) float64 { return e.t })
	tr.frameCompletions = dropOlder(tr.frameCompletions, cutoff, func(e frameCompletionEvent) float64 { return e.t })
	tr.localizationErrs = dropOlder(tr.localizationErrs, cutoff, func(e errorSample) float64 { return e.t })
	tr.trackingErrs = dropOlder(tr.trackingErrs, cutoff, func(e errorSample) float64 { return e.t })
}

func dropOlder[T any](xs []T, cutoff float64, tOf func(T) float64) []T {
	i := 0
	for i < len(xs) && tOf(xs[i]) < cutoff {
		i++
	}
	if i == 0 {
		return xs
	}
	return append([]T(nil), xs[i:]...)
}

// EvalMetrics is the full windowed metric report the harness queries.
type EvalMetrics struct {
	ActiveSwimmers int

	AvgAoISec float64
	P90AoISec float64

	AvgScanRateHz         float64
	AvgRevisitIntervalSec float64

	TrackingRMSEm     float64
	P90TrackingErrorM float64

	FalseAlarmsPerSec float64
	DetectionHitRate  float64

	AvgLocalizationErrorM float64
	P90LocalizationErrorM float64

	AvgTimeToFirstDetectionSec float64
	P90TimeToFirstDetectionSec float64

	Precision float64
	Recall    float64
	F1        float64
	MDR       float64
	MeanIoU   float64

	FPS          float64
	TrackingRate float64
}

// Metrics computes the full windowed report as of sim time now, over the
// trailing windowSec seconds.
func (tr *Tracker) Metrics(now, windowSec float64) EvalMetrics {
	if windowSec <= 0 {
		windowSec = 10
	}
	start := math.Max(0, now-windowSec)

	var m EvalMetrics
	m.ActiveSwimmers = len(tr.swimmers)

	m.AvgAoISec, m.P90AoISec = tr.aoiStats(now)
	m.AvgScanRateHz = tr.scanRate(start, now, windowSec)
	m.AvgRevisitIntervalSec = tr.avgRevisitInterval(start)
	m.TrackingRMSEm, m.P90TrackingErrorM = windowedRMSAndP90(tr.trackingErrs, start)
	m.AvgLocalizationErrorM, m.P90LocalizationErrorM = windowedMeanAndP90(tr.localizationErrs, start)
	m.FalseAlarmsPerSec, m.DetectionHitRate, m.Precision, m.Recall, m.F1, m.MDR, m.MeanIoU = tr.frameStats(start, windowSec)
	m.AvgTimeToFirstDetectionSec, m.P90TimeToFirstDetectionSec = tr.ttfdStats(start, now)
	m.FPS = tr.fps(start, windowSec)
	m.TrackingRate = tr.trackingRate(start)

	return m
}

// orderedSwimmerIDs returns the tracked swimmer ids in ascending order, so
// every float accumulation below sums in the same order on every query and
// two engines sharing a seed report byte-identical metrics.
func (tr *Tracker) orderedSwimmerIDs() []uint64 {
	ids := lo.Keys(tr.swimmers)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (tr *Tracker) aoiStats(now float64) (avg, p90 float64) {
	if len(tr.swimmers) == 0 {
		return 0, 0
	}
	var aois []float64
	for _, id := range tr.orderedSwimmerIDs() {
		st := tr.swimmers[id]
		ref := st.enteredAt
		if st.seenOnce {
			ref = st.lastSeen
		}
		aois = append(aois, math.Max(0, now-ref))
	}
	return vecmath.Mean(aois), vecmath.Percentile(aois, 0.9)
}

func (tr *Tracker) scanRate(start, now, windowSec float64) float64 {
	bySonar := make(map[int][]float64)
	for _, e := range tr.scanRateSamples {
		if e.t >= start {
			bySonar[e.sonarID] = append(bySonar[e.sonarID], e.rateHz)
		}
	}
	if len(bySonar) == 0 {
		return 0
	}
	sonarIDs := lo.Keys(bySonar)
	sort.Ints(sonarIDs)
	rates := lo.Map(sonarIDs, func(id int, _ int) float64 { return vecmath.Mean(bySonar[id]) })
	return vecmath.Mean(rates)
}

func (tr *Tracker) avgRevisitInterval(start float64) float64 {
	var diffs []float64
	for _, id := range tr.orderedSwimmerIDs() {
		st := tr.swimmers[id]
		var times []float64
		for _, t := range st.updateTimes {
			if t >= start {
				times = append(times, t)
			}
		}
		for i := 1; i < len(times); i++ {
			diffs = append(diffs, times[i]-times[i-1])
		}
	}
	return vecmath.Mean(diffs)
}

func windowedMeanAndP90(samples []errorSample, start float64) (mean, p90 float64) {
	var vals []float64
	for _, s := range samples {
		if s.t >= start {
			vals = append(vals, s.val)
		}
	}
	return vecmath.Mean(vals), vecmath.Percentile(vals, 0.9)
}

func windowedRMSAndP90(samples []errorSample, start float64) (rms, p90 float64) {
	var vals []float64
	for _, s := range samples {
		if s.t >= start {
			vals = append(vals, s.val)
		}
	}
	return vecmath.RMS(vals), vecmath.Percentile(vals, 0.9)
}

func (tr *Tracker) frameStats(start, windowSec float64) (falseAlarmsPerSec, detectionHitRate, precision, recall, f1, mdr, meanIoU float64) {
	var tpTotal, fpTotal, fnTotal, framesWithHit, frameCount int
	var iouSum float64
	for _, e := range tr.frameEvents {
		if e.t < start {
			continue
		}
		tpTotal += e.tp
		fpTotal += e.fp
		fnTotal += e.fn
		iouSum += e.iouSum
		frameCount++
		if e.tp > 0 {
			framesWithHit++
		}
	}

	falseAlarmsPerSec = float64(fpTotal) / windowSec
	if frameCount > 0 {
		detectionHitRate = float64(framesWithHit) / float64(frameCount)
	}
	if tpTotal+fpTotal > 0 {
		precision = float64(tpTotal) / float64(tpTotal+fpTotal)
	}
	if tpTotal+fnTotal > 0 {
		recall = float64(tpTotal) / float64(tpTotal+fnTotal)
		mdr = float64(fnTotal) / float64(tpTotal+fnTotal)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	if tpTotal > 0 {
		meanIoU = iouSum / float64(tpTotal)
	}
	return
}

func (tr *Tracker) ttfdStats(start, now float64) (avg, p90 float64) {
	var samples []float64
	for _, id := range tr.orderedSwimmerIDs() {
		st := tr.swimmers[id]
		if st.enteredAt < start {
			continue
		}
		if st.hasFirst {
			samples = append(samples, st.firstSeen-st.enteredAt)
		} else {
			samples = append(samples, now-st.enteredAt)
		}
	}
	return vecmath.Mean(samples), vecmath.Percentile(samples, 0.9)
}

func (tr *Tracker) fps(start, windowSec float64) float64 {
	bySonar := make(map[int]int)
	for _, e := range tr.frameCompletions {
		if e.t >= start {
			bySonar[e.sonarID]++
		}
	}
	if len(bySonar) == 0 {
		return 0
	}
	sonarIDs := lo.Keys(bySonar)
	sort.Ints(sonarIDs)
	rates := lo.Map(sonarIDs, func(id int, _ int) float64 { return float64(bySonar[id]) / windowSec })
	return vecmath.Mean(rates)
}

func (tr *Tracker) trackingRate(start float64) float64 {
	if len(tr.swimmers) == 0 {
		return 0
	}
	tracked := 0
	for _, st := range tr.swimmers {
		for _, t := range st.updateTimes {
			if t >= start {
				tracked++
				break
			}
		}
	}
	return float64(tracked) / float64(len(tr.swimmers))
}
