package config

import (
	"errors"
	"testing"
)

func TestParseGameConfigAppliesDefaults(t *testing.T) {
	c, err := ParseGameConfig([]byte(`{"rounds": 3, "cards_path": "cards.toml"}`))
	if err != nil {
		t.Fatalf("ParseGameConfig() error: %v", err)
	}
	want := Default()
	want.Rounds = 3
	want.CardsPath = "cards.toml"
	if c != want {
		t.Fatalf("ParseGameConfig() = %+v, want %+v", c, want)
	}
}

func TestParseGameConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "zero lines", data: `{"lines": 0}`},
		{name: "negative rounds", data: `{"rounds": -1}`},
		{name: "no tiles", data: `{"tile_copies": 0}`},
		{name: "empty tile hand", data: `{"tile_hand_size": 0}`},
		{name: "negative extra", data: `{"command_hand_extra": -2}`},
		{name: "negative delay", data: `{"bot_turn_delay_seconds": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseGameConfig([]byte(tt.data)); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("ParseGameConfig(%s) error = %v, want ErrInvalidConfig", tt.data, err)
			}
		})
	}
}

func TestParseGameConfigMalformed(t *testing.T) {
	if _, err := ParseGameConfig([]byte(`{"lines":`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestGetGameConfigDefaultsWhenUnloaded(t *testing.T) {
	if cfg != nil {
		t.Skip("config already loaded by another test")
	}
	if got := GetGameConfig(); got != Default() {
		t.Fatalf("GetGameConfig() = %+v, want defaults", got)
	}
}
