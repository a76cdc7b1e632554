// Package playlist drives a timed show: an ordered list of effect launches,
// each held for a duration, optionally looping.
package playlist

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/ledglow/internal/effect"
)

// Entry selects an effect + args and how long to hold it.
type Entry struct {
	Name      string      `yaml:"name"`
	Effect    string      `yaml:"effect"`
	Args      effect.Args `yaml:"args,omitempty"`
	DurationS float64     `yaml:"duration_s"`
}

type Playlist struct {
	Loop    bool    `yaml:"loop,omitempty"`
	Entries []Entry `yaml:"entries"`
}

// Load reads a playlist YAML file.
func Load(path string) (Playlist, error) {
	var p Playlist
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read playlist: %w", err)
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("parse playlist: %w", err)
	}
	return p, nil
}

// State enumerates player states.
type State string

const (
	Idle    State = "idle"
	Running State = "running"
	Paused  State = "paused"
)

// Hooks are dependency-injected callbacks into the engine.
type Hooks struct {
	// Start launches the named effect with the given args.
	Start func(effectName string, args effect.Args)
	// Stop aborts whatever the playlist last started.
	Stop func()
}

// Player owns the playlist timeline and uses Hooks to drive the engine.
type Player struct {
	State State

	list  Playlist
	nowS  float64 // position within the playlist
	idx   int     // current entry index
	hooks Hooks
}

func NewPlayer(h Hooks) *Player {
	return &Player{State: Idle, hooks: h}
}

// Load replaces the current playlist. Resets time and state to Idle.
func (p *Player) Load(list Playlist) error {
	if len(list.Entries) == 0 {
		return errors.New("playlist has no entries")
	}
	p.list = list
	p.nowS = 0
	p.idx = 0
	p.State = Idle
	return nil
}

// Start moves to Running and launches the first entry.
func (p *Player) Start() {
	if p.State == Running || len(p.list.Entries) == 0 {
		return
	}
	p.State = Running
	p.launch()
}

func (p *Player) Pause() { p.State = Paused }

func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops playback and resets to the start.
func (p *Player) Stop() {
	wasRunning := p.State != Idle
	p.State = Idle
	p.nowS = 0
	p.idx = 0
	if wasRunning && p.hooks.Stop != nil {
		p.hooks.Stop()
	}
}

// Seek jumps to absolute playlist time t and launches the entry it lands in.
func (p *Player) Seek(t float64) {
	if len(p.list.Entries) == 0 {
		return
	}
	if t < 0 {
		t = 0
	}
	total := p.totalDuration()
	if total > 0 && t >= total {
		t = total - 1e-9
	}
	acc := 0.0
	idx := 0
	for i, e := range p.list.Entries {
		if t < acc+e.DurationS {
			idx = i
			break
		}
		acc += e.DurationS
	}
	p.idx = idx
	p.nowS = t
	if p.State == Running {
		p.launch()
	}
}

// Tick advances the playlist by dt seconds.
func (p *Player) Tick(dt float64) {
	if p.State != Running || len(p.list.Entries) == 0 || dt <= 0 {
		return
	}
	p.nowS += dt
	if p.localT() >= p.list.Entries[p.idx].DurationS {
		p.advance()
	}
}

func (p *Player) localT() float64 {
	acc := 0.0
	for i := 0; i < p.idx; i++ {
		acc += p.list.Entries[i].DurationS
	}
	return p.nowS - acc
}

func (p *Player) totalDuration() float64 {
	total := 0.0
	for _, e := range p.list.Entries {
		total += e.DurationS
	}
	return total
}

func (p *Player) advance() {
	next := p.idx + 1
	if next >= len(p.list.Entries) {
		if !p.list.Loop {
			p.State = Idle
			if p.hooks.Stop != nil {
				p.hooks.Stop()
			}
			return
		}
		next = 0
		p.nowS = p.localT() - p.list.Entries[p.idx].DurationS
	}
	p.idx = next
	p.launch()
}

func (p *Player) launch() {
	e := p.list.Entries[p.idx]
	if p.hooks.Start != nil {
		p.hooks.Start(e.Effect, e.Args)
	}
}
