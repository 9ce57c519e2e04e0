package evalmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveSwimmersCountsRegisteredSwimmers(t *testing.T) {
	tr := NewTracker()
	tr.AddSwimmer(1, 0)
	tr.AddSwimmer(2, 0)

	m := tr.Metrics(5, 10)
	assert.Equal(t, 2, m.ActiveSwimmers)

	tr.RemoveSwimmer(1)
	m = tr.Metrics(5, 10)
	assert.Equal(t, 1, m.ActiveSwimmers)
}

func TestAoIFallsBackToEnteredAtBeforeFirstMatch(t *testing.T) {
	tr := NewTracker()
	tr.AddSwimmer(1, 2)

	m := tr.Metrics(5, 10)
	assert.InDelta(t, 3, m.AvgAoISec, 1e-9)
}

func TestAoIUsesLastSeenAfterAMatch(t *testing.T) {
	tr := NewTracker()
	tr.AddSwimmer(1, 0)
	tr.RecordMatch(1, 2, 0.1, 0.1)

	m := tr.Metrics(5, 10)
	assert.InDelta(t, 3, m.AvgAoISec, 1e-9)
}

func TestRecordMatchDedupsWithinOneMillisecondBucket(t *testing.T) {
	tr := NewTracker()
	tr.AddSwimmer(1, 0)

	tr.RecordMatch(1, 1.0000, 0.1, 0.1)
	tr.RecordMatch(1, 1.0003, 0.2, 0.2) // same 1ms bucket, should be dropped

	st := tr.swimmers[1]
	assert.Len(t, st.updateTimes, 1)
	assert.Len(t, tr.localizationErrs, 1)
}

func TestScanRateAveragesAcrossSonars(t *testing.T) {
	tr := NewTracker()
	tr.RecordScanRate(0, 1, 10)
	tr.RecordScanRate(0, 2, 20)
	tr.RecordScanRate(1, 1, 40)

	m := tr.Metrics(5, 10)
	// sonar 0 mean = 15, sonar 1 mean = 40, overall mean = 27.5
	assert.InDelta(t, 27.5, m.AvgScanRateHz, 1e-9)
}

func TestFrameStatsComputePrecisionRecallF1(t *testing.T) {
	tr := NewTracker()
	tr.RecordFrame(0, 1, IoUResult{TP: 8, FP: 2, FN: 2, IoUSum: 6.4})

	m := tr.Metrics(5, 10)
	assert.InDelta(t, 0.8, m.Precision, 1e-9)
	assert.InDelta(t, 0.8, m.Recall, 1e-9)
	assert.InDelta(t, 0.8, m.F1, 1e-9)
	assert.InDelta(t, 0.2, m.MDR, 1e-9)
	assert.InDelta(t, 0.8, m.MeanIoU, 1e-9)
	assert.Equal(t, 1.0, m.DetectionHitRate)
}

func TestDetectionHitRateDiffersFromRecallOnMixedFrames(t *testing.T) {
	tr := NewTracker()
	tr.RecordFrame(0, 1, IoUResult{TP: 1, FP: 0, FN: 0})
	tr.RecordFrame(0, 2, IoUResult{TP: 0, FP: 0, FN: 5})

	m := tr.Metrics(5, 10)
	assert.InDelta(t, 0.5, m.DetectionHitRate, 1e-9)
	assert.InDelta(t, 1.0/6.0, m.Recall, 1e-9)
}

func TestPruneDropsEventsOlderThanCutoff(t *testing.T) {
	tr := NewTracker()
	tr.AddSwimmer(1, 0)
	tr.RecordFrame(0, 1, IoUResult{TP: 1})
	tr.RecordFrame(0, 100, IoUResult{TP: 1})

	tr.Prune(100, 10)
	assert.Len(t, tr.frameEvents, 1)
	assert.Equal(t, 100.0, tr.frameEvents[0].t)
}

func TestTrackingRateReflectsWindowedMatches(t *testing.T) {
	tr := NewTracker()
	tr.AddSwimmer(1, 0)
	tr.AddSwimmer(2, 0)
	tr.RecordMatch(1, 5, 0.1, 0.1)

	m := tr.Metrics(6, 10)
	assert.InDelta(t, 0.5, m.TrackingRate, 1e-9)
}

func TestTimeToFirstDetectionCensoredAtNowWhenUndetected(t *testing.T) {
	tr := NewTracker()
	tr.AddSwimmer(1, 2)

	m := tr.Metrics(5, 10)
	assert.InDelta(t, 3, m.AvgTimeToFirstDetectionSec, 1e-9)
}
