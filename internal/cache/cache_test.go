package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("hello", "alloy")
	b := Key("hello", "alloy")
	if a != b {
		t.Error("key not stable")
	}
	if Key("hello", "nova") == a {
		t.Error("different voices must not collide")
	}
	if Key("hello\x00nova", "") == Key("hello", "nova") {
		t.Error("text/voice boundary must not be ambiguous")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory(time.Minute)

	if _, ok := m.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}

	m.Set("k", []byte("mp3 bytes"))
	audio, ok := m.Get("k")
	if !ok || !bytes.Equal(audio, []byte("mp3 bytes")) {
		t.Errorf("Get() = %q, %v", audio, ok)
	}
}

func TestDisk(t *testing.T) {
	d := NewDisk(t.TempDir(), time.Minute)

	if _, ok := d.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}

	d.Set("k", []byte("mp3 bytes"))
	audio, ok := d.Get("k")
	if !ok || !bytes.Equal(audio, []byte("mp3 bytes")) {
		t.Errorf("Get() = %q, %v", audio, ok)
	}
}

func TestLayeredBackfillsFastLayer(t *testing.T) {
	fast := NewMemory(time.Minute)
	slow := NewDisk(t.TempDir(), time.Minute)
	l := NewLayered(fast, slow)

	slow.Set("k", []byte("audio"))

	if _, ok := fast.Get("k"); ok {
		t.Fatal("fast layer should start cold")
	}
	if _, ok := l.Get("k"); !ok {
		t.Fatal("layered get should hit the slow layer")
	}
	if _, ok := fast.Get("k"); !ok {
		t.Error("slow-layer hit should backfill the fast layer")
	}
}
