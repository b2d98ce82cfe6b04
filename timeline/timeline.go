/*
 * timeline.go, part of molview.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package timeline keeps the playback position of a loaded trajectory and
// computes the interpolated positions to show between two frames.
//
// A State is not safe for concurrent use. It is meant to be advanced once per
// tick by a single owner, such as a UI update loop.
package timeline

import (
	"math"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/internal/logging"
)

const (
	MaxSpeed    = 10.0
	MinSpeed    = 0.1
	speedFactor = 1.5
)

// Options are the playback settings a State starts with.
type Options struct {
	//FrameDuration is the wall-clock time, in seconds, spent on each frame at speed 1.
	FrameDuration float64
	Speed         float64
	Loop          bool
	Interpolate   bool
}

// DefaultOptions returns one frame per second, speed 1, looping and interpolation on.
func DefaultOptions() Options {
	return Options{FrameDuration: 1.0, Speed: 1.0, Loop: true, Interpolate: true}
}

// State is the playback state. Playing and paused are told apart by the Playing flag.
type State struct {
	CurrentFrame int
	TotalFrames  int
	Playing      bool
	Speed        float64
	Loop         bool
	Interpolate  bool
	//Factor is the progress from CurrentFrame to the next frame, in [0,1].
	Factor float64

	accumulator   float64
	frameDuration float64
	traj          *chem.Trajectory
	log           *logging.Entry
}

// New returns a stopped State for total frames with the default options.
func New(total int) *State {
	return NewWithOptions(total, DefaultOptions())
}

// NewWithOptions returns a stopped State for total frames. A total below 1 is taken as 1.
func NewWithOptions(total int, opts Options) *State {
	if opts.FrameDuration <= 0 {
		opts.FrameDuration = 1.0
	}
	S := &State{
		Speed:         clampSpeed(opts.Speed),
		Loop:          opts.Loop,
		Interpolate:   opts.Interpolate,
		frameDuration: opts.FrameDuration,
		log:           logging.Component("timeline"),
	}
	S.reset(total)
	return S
}

func clampSpeed(s float64) float64 {
	if s > MaxSpeed {
		return MaxSpeed
	}
	if s < MinSpeed {
		return MinSpeed
	}
	return s
}

func (S *State) reset(total int) {
	if total < 1 {
		total = 1
	}
	S.TotalFrames = total
	S.CurrentFrame = 0
	S.Playing = false
	S.Factor = 0
	S.accumulator = 0
}

// Load attaches traj and resets the state to its first frame, paused.
func (S *State) Load(traj *chem.Trajectory) {
	S.traj = traj
	n := 0
	if traj != nil {
		n = traj.NumFrames()
	}
	S.reset(n)
	S.log.WithField("frames", S.TotalFrames).Debug("trajectory loaded")
}

// Trajectory returns the loaded trajectory, or nil.
func (S *State) Trajectory() *chem.Trajectory { return S.traj }

// FrameDuration returns the seconds spent on each frame at speed 1.
func (S *State) FrameDuration() float64 { return S.frameDuration }

func (S *State) Play()   { S.Playing = true }
func (S *State) Pause()  { S.Playing = false }
func (S *State) Toggle() { S.Playing = !S.Playing }

// Stop pauses and goes back to the first frame.
func (S *State) Stop() {
	S.Playing = false
	S.GotoFrame(0)
}

// Next steps one frame forward. Past the last frame it wraps to the first one
// if looping, and stays on the last one otherwise.
func (S *State) Next() {
	S.step(1)
}

// Previous steps one frame back, wrapping to the last frame if looping.
func (S *State) Previous() {
	S.step(-1)
}

func (S *State) step(d int) {
	f := S.CurrentFrame + d
	switch {
	case f >= S.TotalFrames && S.Loop:
		f = 0
	case f < 0 && S.Loop:
		f = S.TotalFrames - 1
	}
	S.GotoFrame(f)
}

// GotoFrame jumps to frame f, clamped to the valid range.
func (S *State) GotoFrame(f int) {
	if f >= S.TotalFrames {
		f = S.TotalFrames - 1
	}
	if f < 0 {
		f = 0
	}
	S.CurrentFrame = f
	S.Factor = 0
	S.accumulator = 0
}

// SpeedUp multiplies the speed by 1.5, up to MaxSpeed.
func (S *State) SpeedUp() { S.Speed = clampSpeed(S.Speed * speedFactor) }

// SpeedDown divides the speed by 1.5, down to MinSpeed.
func (S *State) SpeedDown() { S.Speed = clampSpeed(S.Speed / speedFactor) }

// Tick advances the state by dt seconds of wall-clock time. It does nothing
// while paused, or if dt is not a positive finite number. It returns true if
// the current frame changed.
func (S *State) Tick(dt float64) bool {
	if !S.Playing || !(dt > 0) || math.IsInf(dt, 0) {
		return false
	}
	advance := dt * S.Speed
	if !(advance > 0) || math.IsInf(advance, 0) {
		return false
	}
	start := S.CurrentFrame
	S.accumulator += advance
	steps := math.Floor(S.accumulator / S.frameDuration)
	S.accumulator -= steps * S.frameDuration
	if !(S.accumulator >= 0 && S.accumulator < S.frameDuration) {
		S.accumulator = 0
	}
	last := S.TotalFrames - 1
	switch {
	case steps == 0:
	case S.Loop:
		S.CurrentFrame = int(math.Mod(float64(S.CurrentFrame)+steps, float64(S.TotalFrames)))
	case steps > float64(last-S.CurrentFrame):
		S.CurrentFrame = last
		S.accumulator = 0
		S.Playing = false
		S.log.WithField("frame", S.CurrentFrame).Debug("reached the last frame, playback stopped")
	default:
		S.CurrentFrame += int(steps)
	}
	S.Factor = 0
	if S.Interpolate {
		S.Factor = S.accumulator / S.frameDuration
	}
	return S.CurrentFrame != start
}

// Progress returns the position in the trajectory, from 0 at the first frame
// to 1 at the last one.
func (S *State) Progress() float64 {
	if S.TotalFrames <= 1 {
		return 0
	}
	return float64(S.CurrentFrame) / float64(S.TotalFrames-1)
}

// SimulationTime returns the simulation time of the current frame for the given
// time step between frames.
func (S *State) SimulationTime(timeStep float64) float64 {
	return float64(S.CurrentFrame) * timeStep
}

// next returns the frame interpolation heads to. The last frame has none.
func (S *State) next() int {
	if S.CurrentFrame+1 < S.TotalFrames {
		return S.CurrentFrame + 1
	}
	return S.CurrentFrame
}

// Position returns the position to display for atom id: the current frame's
// position, or the interpolation towards the next frame when interpolation
// is on. Factor 0 gives the current frame exactly and 1 the next one.
func (S *State) Position(id int) (chem.Vec3, bool) {
	if S.traj == nil {
		return chem.Vec3{}, false
	}
	cur, ok := S.traj.Frame(S.CurrentFrame)
	if !ok {
		return chem.Vec3{}, false
	}
	p, ok := cur.Position(id)
	if !ok {
		return chem.Vec3{}, false
	}
	if !S.Interpolate || S.Factor == 0 {
		return p, true
	}
	nxt, ok := S.traj.Frame(S.next())
	if !ok {
		return p, true
	}
	q, ok := nxt.Position(id)
	if !ok {
		return p, true
	}
	return chem.Lerp(p, q, S.Factor), true
}

// Positions returns the positions to display for every atom of the current frame.
func (S *State) Positions() []chem.Vec3 {
	if S.traj == nil {
		return nil
	}
	cur, ok := S.traj.Frame(S.CurrentFrame)
	if !ok {
		return nil
	}
	ret := make([]chem.Vec3, len(cur.Positions))
	for i := range ret {
		ret[i], _ = S.Position(i)
	}
	return ret
}

// Frame returns the current frame, interpolated towards the next one when
// interpolation is on.
func (S *State) Frame() (*chem.FrameData, bool) {
	if S.traj == nil {
		return nil, false
	}
	cur, ok := S.traj.Frame(S.CurrentFrame)
	if !ok {
		return nil, false
	}
	if !S.Interpolate || S.Factor == 0 {
		return cur, true
	}
	f, err := S.traj.Interpolate(S.CurrentFrame, S.Factor)
	if err != nil {
		return cur, true
	}
	return f, true
}
