package track

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	input := `# morning run down the coast
{"lat":38.7223,"lon":-9.1393,"place":"Lisbon"}

{"lat":38.5244,"lon":-8.8882,"place":"Setubal","after_ms":1200}
  {"lat":38.0150,"lon":-7.8650,"after_ms":500}
`
	points, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	if points[0].Place != "Lisbon" || points[0].AfterMS != 0 {
		t.Errorf("first point = %+v", points[0])
	}
	if points[1].AfterMS != 1200 {
		t.Errorf("second point delay = %d, want 1200", points[1].AfterMS)
	}
	if points[2].Place != "" {
		t.Errorf("third point place = %q, want empty", points[2].Place)
	}
}

func TestLoadBadLine(t *testing.T) {
	_, err := Load(strings.NewReader(`{"lat":1}
not json`))
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name the offending line", err)
	}
}

func TestLoadEmpty(t *testing.T) {
	points, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("got %d points, want 0", len(points))
	}
}

func TestReplayEmitsAllPointsAndCloses(t *testing.T) {
	points := []Point{
		{Lat: 1, Lon: 1, Place: "A"},
		{Lat: 2, Lon: 2, Place: "B", AfterMS: 1},
	}
	r := NewReplay(points, 1000)
	go r.Run(context.Background())

	var places []string
	for pos := range r.Positions() {
		places = append(places, pos.Place)
	}
	if len(places) != 2 || places[0] != "A" || places[1] != "B" {
		t.Errorf("places = %v", places)
	}
}

func TestReplayStopsOnCancel(t *testing.T) {
	points := []Point{
		{Lat: 1, Lon: 1, Place: "A"},
		{Lat: 2, Lon: 2, Place: "B", AfterMS: 60_000},
	}
	r := NewReplay(points, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)

	select {
	case pos := <-r.Positions():
		if pos.Place != "A" {
			t.Errorf("first position = %q", pos.Place)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first position never arrived")
	}

	cancel()
	select {
	case _, ok := <-r.Positions():
		if ok {
			t.Error("got a position after cancel, want closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestStaticSource(t *testing.T) {
	s := NewStatic(
		Point{Lat: 1, Lon: 1, Place: "A"}.position(time.Now()),
		Point{Lat: 2, Lon: 2, Place: "B"}.position(time.Now()),
	)
	var places []string
	for pos := range s.Positions() {
		places = append(places, pos.Place)
	}
	if len(places) != 2 || places[1] != "B" {
		t.Errorf("places = %v", places)
	}
}
