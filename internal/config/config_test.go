package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.DefaultRoom != "general" {
		t.Errorf("DefaultRoom = %q, want general", cfg.DefaultRoom)
	}
	if len(cfg.PresetRooms) != 4 || cfg.PresetRooms[0] != "general" {
		t.Errorf("PresetRooms = %v", cfg.PresetRooms)
	}
	if cfg.HistoryLimit != 200 {
		t.Errorf("HistoryLimit = %d, want 200", cfg.HistoryLimit)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("ENV", "production")
	t.Setenv("DEFAULT_ROOM", "lobby")
	t.Setenv("CHAT_ROOMS", "lobby, dev ,ops,")
	t.Setenv("MESSAGE_HISTORY_LIMIT", "50")
	t.Setenv("CLIENT_URL", "https://chat.example.com")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_SECONDS", "2")

	cfg := Load()

	if cfg.Port != "9100" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.IsDevelopment() {
		t.Error("ENV=production should not be development")
	}
	if cfg.DefaultRoom != "lobby" {
		t.Errorf("DefaultRoom = %q", cfg.DefaultRoom)
	}
	want := []string{"lobby", "dev", "ops"}
	if len(cfg.PresetRooms) != len(want) {
		t.Fatalf("PresetRooms = %v, want %v", cfg.PresetRooms, want)
	}
	for i, room := range want {
		if cfg.PresetRooms[i] != room {
			t.Errorf("PresetRooms[%d] = %q, want %q", i, cfg.PresetRooms[i], room)
		}
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d", cfg.HistoryLimit)
	}
	if len(cfg.ClientOrigin) != 1 || cfg.ClientOrigin[0] != "https://chat.example.com" {
		t.Errorf("ClientOrigin = %v", cfg.ClientOrigin)
	}
	if cfg.RateLimitBurst != 5 || cfg.RateLimitRefill != 2*time.Second {
		t.Errorf("rate limit = (%d, %s)", cfg.RateLimitBurst, cfg.RateLimitRefill)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("MESSAGE_HISTORY_LIMIT", "not-a-number")
	t.Setenv("MAX_MESSAGE_SIZE", "-5")

	cfg := Load()

	if cfg.HistoryLimit != 200 {
		t.Errorf("HistoryLimit = %d, want default 200", cfg.HistoryLimit)
	}
	if cfg.MaxMessageSize != 1<<20 {
		t.Errorf("MaxMessageSize = %d, want default", cfg.MaxMessageSize)
	}
}

func TestLoadBlankDefaultRoomFallsBack(t *testing.T) {
	t.Setenv("DEFAULT_ROOM", "   ")

	cfg := Load()
	if cfg.DefaultRoom != "general" {
		t.Errorf("DefaultRoom = %q, want general", cfg.DefaultRoom)
	}
}
