package voice

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"calma-service/internal/domain"
	"calma-service/internal/logger"
	"go.uber.org/zap"
)

// State of the demo player.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StatePlaying State = "playing"
	StateError   State = "error"
)

// Source supplies the clip of a voice.
type Source interface {
	Fetch(ctx context.Context, voice string) ([]byte, error)
}

// Sink plays a clip; Play blocks until playback ends or ctx is cancelled.
type Sink interface {
	Play(ctx context.Context, audio []byte) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, audio []byte) error

func (f SinkFunc) Play(ctx context.Context, audio []byte) error {
	return f(ctx, audio)
}

// FileSink "plays" a clip by writing it to Path.
type FileSink struct {
	Path string
}

func (s FileSink) Play(ctx context.Context, audio []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// Player drives one clip at a time through idle, loading, playing and error.
// A Play while loading is rejected; a Play while playing replaces the clip.
type Player struct {
	source Source
	sink   Sink
	log    *zap.Logger

	mu     sync.Mutex
	state  State
	voice  string
	err    error
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPlayer(source Source, sink Sink, log *zap.Logger) *Player {
	return &Player{
		source: source,
		sink:   sink,
		log:    logger.OrNop(log),
		state:  StateIdle,
		voice:  DefaultVoice,
	}
}

// Play fetches voice's clip and starts playback. It returns once playback has
// started; use Wait to block until it ends.
func (p *Player) Play(ctx context.Context, voice string) error {
	p.mu.Lock()
	if p.state == StateLoading {
		p.mu.Unlock()
		return domain.ErrPlaybackInFlight
	}
	p.stopLocked()
	p.gen++
	gen := p.gen
	p.state = StateLoading
	p.err = nil
	p.mu.Unlock()

	audio, err := p.source.Fetch(ctx, voice)

	p.mu.Lock()
	if gen != p.gen {
		// stopped while loading
		p.mu.Unlock()
		return nil
	}
	if err != nil {
		p.state = StateError
		p.err = err
		p.mu.Unlock()
		p.log.Warn("audio fetch failed", zap.String("voice", voice), zap.Error(err))
		return err
	}
	playCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.state = StatePlaying
	p.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		err := p.sink.Play(playCtx, audio)

		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.gen {
			return
		}
		p.cancel = nil
		if err != nil && playCtx.Err() == nil {
			p.state = StateError
			p.err = err
			return
		}
		p.state = StateIdle
	}()
	return nil
}

// Stop halts playback, returns to idle and clears the error.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.gen++
	p.state = StateIdle
	p.err = nil
}

// SelectVoice changes the selected voice; it is ignored while playing.
func (p *Player) SelectVoice(voice string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StatePlaying {
		return false
	}
	p.voice = voice
	p.err = nil
	return true
}

// Wait blocks until the current playback ends or ctx is done.
func (p *Player) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) Voice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.voice
}

func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Player) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}
