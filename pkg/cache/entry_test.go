package cache

import (
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"future", time.Now().Add(time.Hour), false},
		{"past", time.Now().Add(-time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Expires: tt.expires}
			if got := e.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	e := NewEntry([]byte("x"), 5*time.Minute)
	if ttl := e.TTL(); ttl <= 4*time.Minute || ttl > 5*time.Minute {
		t.Errorf("TTL() = %v, want ~5m", ttl)
	}

	expired := &Entry{Expires: time.Now().Add(-time.Minute)}
	if ttl := expired.TTL(); ttl != 0 {
		t.Errorf("TTL() of expired entry = %v, want 0", ttl)
	}
}

func TestNewEntry(t *testing.T) {
	before := time.Now()
	e := NewEntry([]byte(`{"status":"OK"}`), time.Hour)

	if string(e.Payload) != `{"status":"OK"}` {
		t.Errorf("Payload = %s", e.Payload)
	}
	if e.CachedAt.Before(before) {
		t.Errorf("CachedAt = %v, want >= %v", e.CachedAt, before)
	}
	if got := e.Expires.Sub(e.CachedAt); got != time.Hour {
		t.Errorf("Expires - CachedAt = %v, want 1h", got)
	}
	if e.Age() < 0 {
		t.Errorf("Age() = %v, want >= 0", e.Age())
	}
}
