package game

import (
	"errors"
	"math/rand"
	"slices"
	"testing"
	"time"
)

func newTestEngine(t *testing.T, mutate func(*Config), opts ...Option) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SpecialChance = 0
	if mutate != nil {
		mutate(&cfg)
	}
	opts = append([]Option{WithRand(rand.New(rand.NewSource(1)))}, opts...)
	e, err := NewEngine(cfg, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// place 直接摆放蛇与食物，方向取自参数
func place(e *Engine, dir Direction, food Cell, snake ...Cell) {
	e.state.snake = snake
	e.state.dir = dir
	e.state.pending = dir
	e.state.food = newFood(food, FoodNormal)
}

func TestInitialState(t *testing.T) {
	e := newTestEngine(t, nil)
	s := e.State()
	if got := s.Snake(); !slices.Equal(got, []Cell{{9, 10}}) {
		t.Fatalf("snake = %v, want [(9,10)]", got)
	}
	if s.Direction() != DirRight || s.Pending() != DirRight {
		t.Errorf("direction = %v/%v, want right/right", s.Direction(), s.Pending())
	}
	if s.Score() != 0 || s.Lives() != 1 || s.Special() != nil || s.GameOver() {
		t.Errorf("unexpected initial state: score=%d lives=%d special=%v over=%v",
			s.Score(), s.Lives(), s.Special(), s.GameOver())
	}
	if HitsBody(s.Food().Cell, s.Snake()) {
		t.Errorf("food %v on snake", s.Food().Cell)
	}
	if e.Interval() != 100*time.Millisecond {
		t.Errorf("interval = %s", e.Interval())
	}
}

func TestEatAfterSixTicks(t *testing.T) {
	e := newTestEngine(t, nil)
	place(e, DirRight, Cell{15, 10}, Cell{9, 10})

	var res TickResult
	var err error
	for i := 0; i < 6; i++ {
		res, err = e.Tick(DirNone)
		if err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
		if i < 5 && len(res.Snake) != 1 {
			t.Fatalf("tick %d: length %d, want 1", i+1, len(res.Snake))
		}
	}
	if res.Snake[0] != (Cell{15, 10}) {
		t.Errorf("head = %v, want (15,10)", res.Snake[0])
	}
	if len(res.Snake) != 2 || res.Score != 1 || !res.Grew || res.Ate != FoodNormal {
		t.Errorf("len=%d score=%d grew=%v ate=%v", len(res.Snake), res.Score, res.Grew, res.Ate)
	}
	if res.Food.Cell == (Cell{15, 10}) || HitsBody(res.Food.Cell, res.Snake) {
		t.Errorf("new food %v overlaps snake %v", res.Food.Cell, res.Snake)
	}
}

func TestReversalRejected(t *testing.T) {
	e := newTestEngine(t, nil)
	place(e, DirRight, Cell{20, 15}, Cell{5, 5}, Cell{4, 5}, Cell{3, 5})

	res, err := e.Tick(DirLeft)
	if err != nil {
		t.Fatal(err)
	}
	if res.Snake[0] != (Cell{6, 5}) {
		t.Fatalf("head = %v, want (6,5)", res.Snake[0])
	}
	if res.Direction != DirRight || e.State().Pending() != DirRight {
		t.Errorf("direction = %v pending = %v, want right", res.Direction, e.State().Pending())
	}
}

func TestPendingDirectionCarriesForward(t *testing.T) {
	e := newTestEngine(t, nil)
	place(e, DirRight, Cell{0, 0}, Cell{5, 5}, Cell{4, 5})

	if _, err := e.Tick(DirUp); err != nil {
		t.Fatal(err)
	}
	res, err := e.Tick(DirNone)
	if err != nil {
		t.Fatal(err)
	}
	if res.Snake[0] != (Cell{5, 3}) {
		t.Errorf("head = %v, want (5,3)", res.Snake[0])
	}
	// 非法方向忽略
	res, _ = e.Tick(Direction(42))
	if res.Direction != DirUp {
		t.Errorf("direction = %v after invalid input", res.Direction)
	}
}

func TestWallCollisionKeepsSnake(t *testing.T) {
	e := newTestEngine(t, nil)
	place(e, DirRight, Cell{0, 0}, Cell{29, 10}, Cell{28, 10})
	e.state.lives = 2

	res, err := e.Tick(DirNone)
	if err != nil {
		t.Fatal(err)
	}
	if res.Lives != 1 || res.GameOver || !res.LostLife {
		t.Fatalf("lives=%d over=%v lost=%v, want 1/false/true", res.Lives, res.GameOver, res.LostLife)
	}
	if !slices.Equal(res.Snake, []Cell{{29, 10}, {28, 10}}) {
		t.Errorf("snake moved to %v", res.Snake)
	}

	res, _ = e.Tick(DirNone)
	if res.Lives != 0 || !res.GameOver {
		t.Fatalf("lives=%d over=%v, want 0/true", res.Lives, res.GameOver)
	}
	tick := res.Tick
	for i := 0; i < 3; i++ {
		res, _ = e.Tick(DirUp)
		if !res.GameOver || res.Tick != tick {
			t.Fatalf("tick after game over advanced: %+v", res)
		}
	}
}

func TestTailPolicies(t *testing.T) {
	square := []Cell{{5, 5}, {5, 6}, {4, 6}, {4, 5}}
	long := []Cell{{5, 5}, {5, 6}, {4, 6}, {4, 5}, {3, 5}}

	tests := []struct {
		name     string
		policy   TailPolicy
		snake    []Cell
		wantLost bool
	}{
		{"vacated tail is free", TailVacated, square, false},
		{"blocked tail collides", TailBlocked, square, true},
		{"vacated policy hits body", TailVacated, long, true},
		{"blocked policy hits body", TailBlocked, long, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, func(c *Config) { c.TailPolicy = tt.policy })
			place(e, DirUp, Cell{20, 15}, slices.Clone(tt.snake)...)
			e.state.lives = 2
			before := e.State().Snake()

			res, err := e.Tick(DirLeft)
			if err != nil {
				t.Fatal(err)
			}
			if res.LostLife != tt.wantLost {
				t.Fatalf("lostLife = %v, want %v", res.LostLife, tt.wantLost)
			}
			if tt.wantLost {
				if res.Lives != 1 || !slices.Equal(res.Snake, before) {
					t.Errorf("lives=%d snake=%v", res.Lives, res.Snake)
				}
				return
			}
			if res.Snake[0] != (Cell{4, 5}) || len(res.Snake) != len(before) {
				t.Errorf("snake = %v", res.Snake)
			}
		})
	}
}

func TestExtraLife(t *testing.T) {
	for _, lives := range []int{1, 2} {
		e := newTestEngine(t, nil)
		place(e, DirRight, Cell{0, 0}, Cell{9, 10})
		e.state.lives = lives
		sp := newFood(Cell{10, 10}, FoodExtraLife)
		e.state.special = &sp

		res, err := e.Tick(DirNone)
		if err != nil {
			t.Fatal(err)
		}
		if res.Lives != 2 {
			t.Errorf("lives %d -> %d, want 2", lives, res.Lives)
		}
		if res.Score != e.Config().ExtraLifeBonus || res.Ate != FoodExtraLife {
			t.Errorf("score=%d ate=%v", res.Score, res.Ate)
		}
		if res.Special != nil || len(res.Snake) != 1 {
			t.Errorf("special=%v len=%d", res.Special, len(res.Snake))
		}
	}
}

func TestSlowDownExpires(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.CanvasWidth = 1200 })
	place(e, DirRight, Cell{0, 0}, Cell{9, 10})
	sp := newFood(Cell{10, 10}, FoodSlowDown)
	e.state.special = &sp

	res, err := e.Tick(DirNone)
	if err != nil {
		t.Fatal(err)
	}
	if !res.IntervalChanged || e.Interval() != 200*time.Millisecond || res.IntervalMs != 200 {
		t.Fatalf("interval = %s changed=%v", e.Interval(), res.IntervalChanged)
	}
	if e.State().SlowLeft() != 5*time.Second {
		t.Fatalf("slowLeft = %s", e.State().SlowLeft())
	}
	for i := 0; i < 24; i++ {
		res, _ = e.Tick(DirNone)
		if e.Interval() != 200*time.Millisecond || res.IntervalChanged {
			t.Fatalf("tick %d: interval = %s", i, e.Interval())
		}
	}
	res, _ = e.Tick(DirNone)
	if e.Interval() != 100*time.Millisecond || !res.IntervalChanged || e.State().SlowLeft() != 0 {
		t.Errorf("after expiry: interval=%s changed=%v left=%s", e.Interval(), res.IntervalChanged, e.State().SlowLeft())
	}
}

func TestSpecialSpawnGatedBySlowDown(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.SpecialChance = 1 })
	place(e, DirRight, Cell{0, 0}, Cell{5, 5})
	e.state.slowLeft = time.Second

	res, _ := e.Tick(DirNone)
	if res.Special != nil {
		t.Fatalf("special spawned while slowed: %v", res.Special)
	}
	e.state.slowLeft = 0
	e.state.interval = e.cfg.BaseInterval
	res, _ = e.Tick(DirNone)
	if res.Special == nil {
		t.Fatal("special not spawned")
	}
	if !res.Special.Kind.Special() || HitsBody(res.Special.Cell, res.Snake) || res.Special.Cell == res.Food.Cell {
		t.Errorf("bad special %+v", res.Special)
	}
}

func TestHighScorePersistence(t *testing.T) {
	store := &MemoryStore{}
	_ = store.Save(3)
	e := newTestEngine(t, nil, WithStore(store))
	if e.HighScore() != 3 {
		t.Fatalf("high score = %d, want 3", e.HighScore())
	}
	place(e, DirRight, Cell{10, 10}, Cell{9, 10})
	e.state.score = 3

	res, _ := e.Tick(DirNone)
	if res.Score != 4 || res.HighScore != 4 || !res.NewHighScore {
		t.Fatalf("score=%d high=%d new=%v", res.Score, res.HighScore, res.NewHighScore)
	}
	if v, _ := store.Load(); v != 4 {
		t.Errorf("stored = %d, want 4", v)
	}

	if err := e.Restart(); err != nil {
		t.Fatal(err)
	}
	if e.State().Score() != 0 || e.HighScore() != 4 || e.Last().HighScore != 4 {
		t.Errorf("after restart score=%d high=%d", e.State().Score(), e.HighScore())
	}
}

// 随机输入下逐 Tick 检查长度、得分、方向与高分不变量
func TestRandomPlayInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		e := newTestEngine(t, func(c *Config) {
			c.StartLives = 2
			c.SpecialChance = 0.1
		}, WithRand(rand.New(rand.NewSource(seed))))
		input := rand.New(rand.NewSource(seed * 7))
		high := e.HighScore()

		for i := 0; i < 500 && !e.GameOver(); i++ {
			before := e.State().Snake()
			prevDir := e.State().Direction()
			prevScore := e.State().Score()
			prevLives := e.State().Lives()
			hadSpecial := e.State().Special() != nil

			res, err := e.Tick(Direction(input.Intn(6)))
			if err != nil {
				t.Fatalf("seed %d tick %d: %v", seed, i, err)
			}
			if res.Direction == prevDir.Opposite() {
				t.Fatalf("seed %d: reversed %v -> %v", seed, prevDir, res.Direction)
			}
			switch {
			case res.LostLife:
				if res.Lives != prevLives-1 || !slices.Equal(res.Snake, before) {
					t.Fatalf("seed %d: collision lives %d->%d", seed, prevLives, res.Lives)
				}
				if res.Lives == 0 && !res.GameOver {
					t.Fatalf("seed %d: lives 0 without game over", seed)
				}
			case res.Grew:
				if len(res.Snake) != len(before)+1 || res.Score != prevScore+1 {
					t.Fatalf("seed %d: grew len %d->%d score %d->%d", seed, len(before), len(res.Snake), prevScore, res.Score)
				}
			default:
				if len(res.Snake) != len(before) {
					t.Fatalf("seed %d: len %d->%d without food", seed, len(before), len(res.Snake))
				}
				if res.Ate == FoodNone && res.Score != prevScore {
					t.Fatalf("seed %d: score changed without eating", seed)
				}
			}
			if res.Ate.Special() && !hadSpecial {
				t.Fatalf("seed %d: ate %v that was not there", seed, res.Ate)
			}
			if HitsBody(res.Food.Cell, res.Snake) {
				t.Fatalf("seed %d: food on snake", seed)
			}
			if res.Special != nil && HitsBody(res.Special.Cell, res.Snake) {
				t.Fatalf("seed %d: special on snake", seed)
			}
			if res.HighScore < high || res.HighScore < res.Score {
				t.Fatalf("seed %d: high score %d (prev %d, score %d)", seed, res.HighScore, high, res.Score)
			}
			high = res.HighScore
		}
	}
}

func TestGridFullEndsGame(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.CanvasWidth, c.CanvasHeight, c.CellSize = 60, 40, 20
		c.Start = Cell{0, 0}
	})
	// 3x2 网格，吃掉最后一格后无处放食物
	place(e, DirRight, Cell{2, 0}, Cell{1, 0}, Cell{0, 0}, Cell{0, 1}, Cell{1, 1}, Cell{2, 1})

	res, err := e.Tick(DirNone)
	if !errors.Is(err, ErrGridFull) {
		t.Fatalf("err = %v, want ErrGridFull", err)
	}
	if !res.GameOver || res.Score != 1 {
		t.Errorf("over=%v score=%d", res.GameOver, res.Score)
	}
}

func TestReconfigure(t *testing.T) {
	e := newTestEngine(t, nil)
	cfg := e.Config()
	cfg.BaseInterval = 80 * time.Millisecond
	if err := e.Reconfigure(cfg); err != nil {
		t.Fatal(err)
	}
	if e.Interval() != 80*time.Millisecond {
		t.Errorf("interval = %s", e.Interval())
	}
	cfg.BaseInterval = 0
	if err := e.Reconfigure(cfg); err == nil {
		t.Error("expected error for zero interval")
	}
}
