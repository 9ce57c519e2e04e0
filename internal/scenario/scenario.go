// Package scenario loads the harness's swimmer-placement input files: a
// small JSON list the cmd/sonarscansim run/sweep/export subcommands feed
// into an engine via AddSwimmer, or a swimmer count for AddRandomSwimmer
// when no file is given.
package scenario

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/PH-19/sonarscan-sim/internal/engine"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
)

// ErrEmptyScenario is returned when a scenario file contains zero swimmers.
var ErrEmptyScenario = errors.New("scenario: file contains no swimmers")

// Swimmer is one entry of a scenario file: an initial position and
// velocity, in meters and meters/second.
type Swimmer struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// File is the top-level shape of a scenario JSON document.
type File struct {
	Swimmers []Swimmer `json:"swimmers"`
}

// Load reads and parses a scenario file from path.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if len(f.Swimmers) == 0 {
		return nil, ErrEmptyScenario
	}
	return &f, nil
}

// Apply adds every swimmer in the scenario to e.
func (f *File) Apply(e *engine.Engine) {
	for _, s := range f.Swimmers {
		e.AddSwimmer(vecmath.Vector2{X: s.X, Y: s.Y}, vecmath.Vector2{X: s.VX, Y: s.VY})
	}
}
