// Package tuning holds the runtime-settable detection parameters as a single
// typed record. Clamp bounds are declared once as struct tags and parsed
// with github.com/yuin/stagparser into a lookup table, so every field's
// allowed interval lives next to its declaration instead of in a separate
// validation function.
package tuning

import (
	"math"
	"strconv"
	"sync"

	"github.com/PH-19/sonarscan-sim/internal/config"
	stgpsr "github.com/yuin/stagparser"
)

// Tuning is the full set of runtime-settable detection parameters.
type Tuning struct {
	NoiseScale    float64 `clamp:"min=0,max=5"`
	SpeckleProb   float64 `clamp:"min=0,max=0.5"`
	Threshold     float64 `clamp:"min=0,max=10"`
	DBSCANEpsBins float64 `clamp:"min=0.5,max=12"`
	DBSCANMinPts  int     `clamp:"min=2,max=200"`
	KernelCap     int     `clamp:"min=3,max=13"`
}

// Default returns the out-of-the-box tuning used by both engines at
// construction.
func Default() Tuning {
	return Tuning{
		NoiseScale:    config.DefaultNoiseScale,
		SpeckleProb:   config.DefaultSpeckleProb,
		Threshold:     config.DefaultThreshold,
		DBSCANEpsBins: config.DefaultDBSCANEpsBins,
		DBSCANMinPts:  config.DefaultDBSCANMinPts,
		KernelCap:     config.DefaultKernelCap,
	}
}

// clampBound describes one field's [min, max] interval, as parsed from its
// `clamp:"min=...,max=..."` struct tag.
type clampBound struct {
	min, max float64
}

var (
	clampTableOnce sync.Once
	clampTable     map[string]clampBound
)

// fieldBounds parses the Tuning struct's `clamp` tags via stagparser once,
// caching the result rather than re-parsing the struct tags on every call.
// Each field's tag yields one definition per bound ("min=..." and "max=..."),
// whose attribute value stagparser hands back as int64 or float64 depending
// on how the literal was written.
func fieldBounds() map[string]clampBound {
	clampTableOnce.Do(func() {
		clampTable = make(map[string]clampBound)
		defs, err := stgpsr.ParseStruct(&Tuning{}, "clamp")
		if err != nil {
			return
		}
		for name, fieldDefs := range defs {
			b := clampBound{min: math.Inf(-1), max: math.Inf(1)}
			for _, def := range fieldDefs {
				if v, ok := numAttribute(def, "min"); ok {
					b.min = v
				}
				if v, ok := numAttribute(def, "max"); ok {
					b.max = v
				}
			}
			clampTable[name] = b
		}
	})
	return clampTable
}

func numAttribute(def stgpsr.Definition, key string) (float64, bool) {
	raw, ok := def.Attribute(key)
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func clampValue(name string, v float64) float64 {
	b, ok := fieldBounds()[name]
	if !ok {
		return v
	}
	return math.Max(b.min, math.Min(b.max, v))
}

// Partial mirrors Tuning but every field is optional, for merge-then-clamp
// semantics in SetTuning: only fields the caller actually sets are applied.
type Partial struct {
	NoiseScale    *float64
	SpeckleProb   *float64
	Threshold     *float64
	DBSCANEpsBins *float64
	DBSCANMinPts  *int
	KernelCap     *int
}

// Merge applies p on top of base, clamping every touched field to its
// declared interval, and rounding KernelCap down to the next odd integer
// (the kernel-size search only ever visits odd window lengths).
func Merge(base Tuning, p Partial) Tuning {
	out := base
	if p.NoiseScale != nil {
		out.NoiseScale = clampValue("NoiseScale", *p.NoiseScale)
	}
	if p.SpeckleProb != nil {
		out.SpeckleProb = clampValue("SpeckleProb", *p.SpeckleProb)
	}
	if p.Threshold != nil {
		out.Threshold = clampValue("Threshold", *p.Threshold)
	}
	if p.DBSCANEpsBins != nil {
		out.DBSCANEpsBins = clampValue("DBSCANEpsBins", *p.DBSCANEpsBins)
	}
	if p.DBSCANMinPts != nil {
		out.DBSCANMinPts = int(clampValue("DBSCANMinPts", float64(*p.DBSCANMinPts)))
	}
	if p.KernelCap != nil {
		out.KernelCap = int(clampValue("KernelCap", float64(*p.KernelCap)))
	}
	out.KernelCap = oddFloor(out.KernelCap)
	return out
}

// oddFloor rounds k down to the nearest odd integer >= 3.
func oddFloor(k int) int {
	if k < 3 {
		return 3
	}
	if k%2 == 0 {
		k--
	}
	return k
}
