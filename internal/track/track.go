// Package track feeds trip positions to the trigger scheduler. A track is a
// recorded or scripted sequence of points standing in for live GPS, which is
// acquired outside this system.
package track

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/roadtales/roadtales/internal/model"
)

// Point is one line of a track file: a position plus the delay to wait
// before emitting it.
type Point struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Place   string  `json:"place,omitempty"`
	AfterMS int     `json:"after_ms,omitempty"`
}

func (p Point) position(at time.Time) model.Position {
	return model.Position{
		Coordinates: model.Coordinates{Lat: p.Lat, Lon: p.Lon},
		Place:       p.Place,
		At:          at,
	}
}

// Load reads a track from newline-delimited JSON. Blank lines and
// #-comment lines are skipped.
func Load(r io.Reader) ([]Point, error) {
	var points []Point
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		trimmed := 0
		for trimmed < len(raw) && (raw[trimmed] == ' ' || raw[trimmed] == '\t') {
			trimmed++
		}
		raw = raw[trimmed:]
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}
		var p Point
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("track line %d: %w", line, err)
		}
		points = append(points, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}
	return points, nil
}

// LoadFile reads a track file from disk.
func LoadFile(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open track: %w", err)
	}
	defer f.Close()
	return Load(f)
}
