// ABOUTME: Demo playback engine driving the sink
// ABOUTME: Decodes a file and pushes PCM with transport controls
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/emmef/pcmsink/internal/decode"
	"github.com/emmef/pcmsink/internal/settings"
	"github.com/emmef/pcmsink/pkg/audio"
	"github.com/emmef/pcmsink/pkg/output"
	"github.com/emmef/pcmsink/pkg/sink"
)

// Config holds player configuration.
type Config struct {
	File         string
	Backend      string // sim, oto, malgo, portaudio
	BufferMs     int    // 0 uses the persisted/default buffer size
	SettingsPath string // "" keeps settings in memory
}

// Status is a playback snapshot published to the UI.
type Status struct {
	File       string
	Rate       int
	Channels   int
	ElapsedMs  int
	TotalMs    int
	BufferFree int
	BufferCap  int
	Paused     bool
	VolumeL    int
	VolumeR    int
	Done       bool
}

// Player pushes a decoded track through the sink the way a playback
// engine would: confirm headroom, write, wait, repeat.
type Player struct {
	mu       sync.Mutex
	config   Config
	sink     *sink.Sink
	session  *sink.Session
	track    *decode.Track
	pos      int
	paused   bool
	onStatus func(Status)
	lastPub  time.Time
}

// New decodes the file and wires the sink over the configured backend.
func New(config Config) (*Player, error) {
	track, err := decode.Open(config.File)
	if err != nil {
		return nil, err
	}

	var device output.Device
	switch config.Backend {
	case "", "sim":
		device = output.NewSim()
	case "oto":
		device = output.NewOto()
	case "malgo":
		device = output.NewMalgo()
	case "portaudio":
		device = output.NewPortAudio()
	default:
		return nil, fmt.Errorf("unknown backend %q", config.Backend)
	}

	var store sink.Settings
	if config.SettingsPath != "" {
		fileStore, err := settings.Open(config.SettingsPath)
		if err != nil {
			return nil, err
		}
		store = fileStore
	} else {
		store = settings.NewMemory()
	}
	if config.BufferMs > 0 {
		store.SetInt("output", "buffer_ms", config.BufferMs)
	}

	return &Player{
		config: config,
		sink:   sink.New(device, sink.WithSettings(store)),
		track:  track,
	}, nil
}

// OnStatus registers the status callback. Call before Run.
func (p *Player) OnStatus(fn func(Status)) {
	p.onStatus = fn
}

// Run plays the track to completion or until ctx is cancelled.
func (p *Player) Run(ctx context.Context) error {
	session, err := p.sink.Open(audio.FormatS16LE, p.track.Rate, p.track.Channels)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.session = session
	p.mu.Unlock()
	defer session.Close()

	// closing the session is what unblocks an in-flight wait
	go func() {
		<-ctx.Done()
		session.Close()
	}()

	frame := session.FrameSize()
	chunk := 4096 - 4096%frame

	for {
		p.mu.Lock()
		pos := p.pos
		p.mu.Unlock()
		if pos >= len(p.track.PCM) {
			break
		}

		free, err := session.BufferFree()
		if err != nil {
			return p.finish(err)
		}
		if free < frame {
			if err := session.PeriodWait(); err != nil {
				return p.finish(err)
			}
			continue
		}

		n := chunk
		if n > free-free%frame {
			n = free - free%frame
		}
		if n > len(p.track.PCM)-pos {
			n = len(p.track.PCM) - pos
		}
		// hold mu across the write so a concurrent seek cannot flush
		// between slicing the chunk and queueing it
		p.mu.Lock()
		if p.pos != pos {
			p.mu.Unlock()
			continue
		}
		w, err := session.Write(p.track.PCM[pos : pos+n])
		if err != nil {
			p.mu.Unlock()
			return p.finish(err)
		}
		p.pos = pos + w
		p.mu.Unlock()
		p.publish(false)
	}

	if err := session.Drain(); err != nil {
		return p.finish(err)
	}
	p.publish(true)
	return nil
}

// finish maps a close-induced error to a clean stop.
func (p *Player) finish(err error) error {
	if errors.Is(err, sink.ErrNotOpen) {
		return nil
	}
	return err
}

// Stop closes the session, unblocking any in-flight wait.
func (p *Player) Stop() {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()
	if session != nil {
		session.Close()
	}
}

// TogglePause flips the transport pause state.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return
	}
	if err := p.session.Pause(!p.paused); err != nil {
		log.Printf("pause failed: %v", err)
		return
	}
	p.paused = !p.paused
	p.publishLocked(false, true)
}

// Seek moves playback by deltaMs, flushing queued audio.
func (p *Player) Seek(deltaMs int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return
	}
	current, err := p.session.OutputTime()
	if err != nil {
		return
	}
	target := current + deltaMs
	if target < 0 {
		target = 0
	}
	if max := p.track.TotalMs(); target > max {
		target = max
	}
	if err := p.session.Flush(target); err != nil {
		log.Printf("seek failed: %v", err)
		return
	}
	p.pos = target * p.track.Rate / 1000 * p.session.FrameSize()
	if p.pos > len(p.track.PCM) {
		p.pos = len(p.track.PCM)
	}
	p.paused = false
	p.publishLocked(false, true)
}

// VolumeStep nudges both channels by delta on the 0-100 scale.
func (p *Player) VolumeStep(delta int) {
	left, right := p.sink.GetVolume()
	p.sink.SetVolume(left+delta, right+delta)
	p.publish(false)
}

// Status returns a playback snapshot.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked(false)
}

func (p *Player) statusLocked(done bool) Status {
	st := Status{
		File:     p.config.File,
		Rate:     p.track.Rate,
		Channels: p.track.Channels,
		TotalMs:  p.track.TotalMs(),
		Paused:   p.paused,
		Done:     done,
	}
	st.VolumeL, st.VolumeR = p.sink.GetVolume()
	if p.session != nil {
		if elapsed, err := p.session.OutputTime(); err == nil {
			st.ElapsedMs = elapsed
		}
		if free, err := p.session.BufferFree(); err == nil {
			st.BufferFree = free
		}
		st.BufferCap = p.session.Capacity()
	}
	return st
}

func (p *Player) publish(done bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.publishLocked(done, false)
}

// publishLocked throttles status updates unless forced. Callers hold
// mu.
func (p *Player) publishLocked(done, force bool) {
	if p.onStatus == nil {
		return
	}
	now := time.Now()
	if !done && !force && now.Sub(p.lastPub) < 100*time.Millisecond {
		return
	}
	p.lastPub = now
	p.onStatus(p.statusLocked(done))
}
