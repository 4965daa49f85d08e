package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// ErrEmptyQueue is returned by playback controls when nothing is queued.
var ErrEmptyQueue = errors.New("nothing queued")

// LocalPlayer is a state-tracking Player over a static catalog. It stands in
// for a real media service: playback is modelled, not audible.
type LocalPlayer struct {
	mu      sync.Mutex
	catalog []Track
	queue   []Track
	current int
	playing bool
}

// NewLocalPlayer builds a player over the given catalog.
func NewLocalPlayer(catalog []Track) *LocalPlayer {
	return &LocalPlayer{catalog: catalog, current: -1}
}

// LoadCatalog reads a JSON track list from path. A missing file yields an
// empty catalog rather than an error.
func LoadCatalog(path string) ([]Track, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading music catalog: %w", err)
	}
	var tracks []Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("parsing music catalog %s: %w", path, err)
	}
	return tracks, nil
}

func (p *LocalPlayer) Authorized() bool { return true }

func (p *LocalPlayer) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < 0 {
		return ErrEmptyQueue
	}
	p.playing = true
	return nil
}

func (p *LocalPlayer) Pause(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	return nil
}

func (p *LocalPlayer) Next(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < 0 || p.current+1 >= len(p.queue) {
		return ErrEmptyQueue
	}
	p.current++
	return nil
}

func (p *LocalPlayer) Previous(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current <= 0 {
		return ErrEmptyQueue
	}
	p.current--
	return nil
}

func (p *LocalPlayer) PlayQuery(ctx context.Context, query string) (Track, error) {
	matches := p.match(query)
	if len(matches) == 0 {
		return Track{}, fmt.Errorf("no songs found for '%s'", query)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, matches[0])
	p.current = len(p.queue) - 1
	p.playing = true
	return matches[0], nil
}

func (p *LocalPlayer) Search(ctx context.Context, query string) ([]Track, error) {
	return p.match(query), nil
}

// NowPlaying reports the current track, if any.
func (p *LocalPlayer) NowPlaying() (Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < 0 || !p.playing {
		return Track{}, false
	}
	return p.queue[p.current], true
}

func (p *LocalPlayer) match(query string) []Track {
	q := strings.ToLower(query)
	var out []Track
	for _, t := range p.catalog {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Artist), q) ||
			strings.Contains(strings.ToLower(t.Album), q) {
			out = append(out, t)
		}
	}
	return out
}
