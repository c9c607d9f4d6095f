package game

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDirection(t *testing.T) {
	pairs := map[Direction]Direction{DirUp: DirDown, DirDown: DirUp, DirLeft: DirRight, DirRight: DirLeft}
	for d, opp := range pairs {
		if d.Opposite() != opp {
			t.Errorf("%v.Opposite() = %v", d, d.Opposite())
		}
		if !d.Valid() {
			t.Errorf("%v not valid", d)
		}
		if sum := d.Delta().Add(opp.Delta()); sum != (Cell{}) {
			t.Errorf("%v + %v deltas = %v", d, opp, sum)
		}
		if ParseDirection(d.String()) != d {
			t.Errorf("ParseDirection(%q) != %v", d.String(), d)
		}
	}
	for _, d := range []Direction{DirNone, Direction(-1), Direction(9)} {
		if d.Valid() || d.Opposite() != DirNone {
			t.Errorf("%d should be invalid", d)
		}
	}
	if ParseDirection(" LEFT ") != DirLeft || ParseDirection("jump") != DirNone {
		t.Error("ParseDirection mismatch")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg := DefaultConfig()
	if cfg.GridWidth() != 30 || cfg.GridHeight() != 20 {
		t.Fatalf("grid %dx%d, want 30x20", cfg.GridWidth(), cfg.GridHeight())
	}

	tests := map[string]func(*Config){
		"zero cell":       func(c *Config) { c.CellSize = 0 },
		"tiny grid":       func(c *Config) { c.CanvasWidth = 20 },
		"margin too wide": func(c *Config) { c.Margin = 10 },
		"start outside":   func(c *Config) { c.Start = Cell{30, 0} },
		"no direction":    func(c *Config) { c.StartDir = DirNone },
		"no lives":        func(c *Config) { c.StartLives = 0 },
		"cap below start": func(c *Config) { c.StartLives, c.MaxLives = 3, 2 },
		"zero interval":   func(c *Config) { c.BaseInterval = 0 },
		"slow factor":     func(c *Config) { c.SlowFactor = 0 },
		"chance":          func(c *Config) { c.SpecialChance = 1.5 },
	}
	for name, mutate := range tests {
		c := DefaultConfig()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestTickResultTextEnums(t *testing.T) {
	in := TickResult{
		Direction: DirUp,
		Food:      newFood(Cell{3, 4}, FoodNormal),
		Ate:       FoodSlowDown,
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"direction":"up"`, `"ate":"slow_down"`, `"kind":"normal"`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("%s missing %s", b, want)
		}
	}
	var out TickResult
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out.Direction != DirUp || out.Ate != FoodSlowDown || out.Food.Kind != FoodNormal {
		t.Errorf("decoded %+v", out)
	}

	// 没吃到东西时 ate 省略
	b, _ = json.Marshal(TickResult{Direction: DirLeft})
	if strings.Contains(string(b), `"ate"`) {
		t.Errorf("ate not omitted: %s", b)
	}

	var d Direction
	if err := json.Unmarshal([]byte(`"sideways"`), &d); err == nil {
		t.Error("expected error for unknown direction")
	}
	var k FoodKind
	if err := json.Unmarshal([]byte(`"extra_life"`), &k); err != nil || k != FoodExtraLife {
		t.Errorf("kind = %v, %v", k, err)
	}
}
