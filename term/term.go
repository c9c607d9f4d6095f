// Package term 在终端里本地运行一局：tcell 负责键盘输入与绘制，
// 节奏由引擎给出的间隔驱动。
package term

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"snakearena/game"
)

type command int

const (
	cmdNone command = iota
	cmdMove
	cmdRestart
	cmdQuit
)

// keyCommand 把按键映射为操作：方向键 / WASD / HJKL 转向，r 重开，q / Esc 退出
func keyCommand(key tcell.Key, r rune) (command, game.Direction) {
	switch key {
	case tcell.KeyUp:
		return cmdMove, game.DirUp
	case tcell.KeyDown:
		return cmdMove, game.DirDown
	case tcell.KeyLeft:
		return cmdMove, game.DirLeft
	case tcell.KeyRight:
		return cmdMove, game.DirRight
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return cmdQuit, game.DirNone
	case tcell.KeyRune:
	default:
		return cmdNone, game.DirNone
	}
	switch r {
	case 'w', 'W', 'k':
		return cmdMove, game.DirUp
	case 's', 'S', 'j':
		return cmdMove, game.DirDown
	case 'a', 'A', 'h':
		return cmdMove, game.DirLeft
	case 'd', 'D', 'l':
		return cmdMove, game.DirRight
	case 'r', 'R':
		return cmdRestart, game.DirNone
	case 'q', 'Q':
		return cmdQuit, game.DirNone
	}
	return cmdNone, game.DirNone
}

// UI 终端渲染与输入
type UI struct {
	screen tcell.Screen
	engine *game.Engine
	log    *zap.SugaredLogger

	last    game.TickResult
	pending game.Direction
	flash   string
	flashN  int // flash 剩余显示的 Tick 数
}

func NewUI(screen tcell.Screen, engine *game.Engine, log *zap.SugaredLogger) *UI {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &UI{screen: screen, engine: engine, log: log, last: engine.Last()}
}

// Run 打开终端并运行到退出或 ctx 结束
func Run(ctx context.Context, engine *game.Engine, log *zap.SugaredLogger) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer s.Fini()
	s.HideCursor()
	return NewUI(s, engine, log).Loop(ctx)
}

// Loop 事件循环：键盘事件只写入待定方向，真正转向发生在下一次 Tick
func (u *UI) Loop(ctx context.Context) error {
	events := make(chan tcell.Event, 32)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	timer := time.NewTimer(u.engine.Interval())
	defer timer.Stop()
	u.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch e := ev.(type) {
			case *tcell.EventResize:
				u.screen.Sync()
				u.Draw()
			case *tcell.EventKey:
				cmd, dir := keyCommand(e.Key(), e.Rune())
				switch cmd {
				case cmdQuit:
					return nil
				case cmdMove:
					u.pending = dir
				case cmdRestart:
					if err := u.Restart(); err != nil {
						return err
					}
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(u.engine.Interval())
				}
			}
		case <-timer.C:
			u.Step()
			if !u.last.GameOver {
				timer.Reset(u.engine.Interval())
			}
		}
	}
}

// Step 推进一格并重绘
func (u *UI) Step() {
	res, err := u.engine.Tick(u.pending)
	u.pending = game.DirNone
	if err != nil {
		u.log.Errorf("tick: %v", err)
	}
	u.last = res
	switch {
	case res.LostLife && !res.GameOver:
		u.setFlash("Ouch! Lives left: %d", res.Lives)
	case res.Ate == game.FoodSlowDown:
		u.setFlash("Slow down!")
	case res.Ate == game.FoodExtraLife:
		u.setFlash("Extra life!")
	case res.NewHighScore:
		u.setFlash("New high score!")
	default:
		if u.flashN > 0 {
			u.flashN--
		}
	}
	u.Draw()
}

// Restart 重开一局
func (u *UI) Restart() error {
	if err := u.engine.Restart(); err != nil {
		return err
	}
	u.last = u.engine.Last()
	u.pending = game.DirNone
	u.flashN = 0
	u.Draw()
	return nil
}

func (u *UI) setFlash(format string, args ...any) {
	u.flash = fmt.Sprintf(format, args...)
	u.flashN = 10
}

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHead   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleBody   = tcell.StyleDefault.Foreground(tcell.ColorLightGreen)
	styleText   = tcell.StyleDefault
	styleAlert  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// 每个格子占两列，使网格在终端里接近正方形
func cellX(c game.Cell) int { return 1 + 2*c.Col }
func cellY(c game.Cell) int { return 2 + c.Row }

// Draw 绘制整个画面：第 0 行状态栏，之下为带边框的网格
func (u *UI) Draw() {
	s := u.screen
	s.Clear()
	cfg := u.engine.Config()
	w, h := cfg.GridWidth(), cfg.GridHeight()
	res := u.last

	status := fmt.Sprintf("Score: %d  High: %d  Lives: %d", res.Score, res.HighScore, res.Lives)
	if res.IntervalMs > cfg.BaseInterval.Milliseconds() {
		status += "  [slow]"
	}
	drawText(s, 0, 0, styleText, status)

	right, bottom := 2*w+1, h+2
	for x := 0; x <= right; x++ {
		s.SetContent(x, 1, '─', nil, styleBorder)
		s.SetContent(x, bottom, '─', nil, styleBorder)
	}
	for y := 1; y <= bottom; y++ {
		s.SetContent(0, y, '│', nil, styleBorder)
		s.SetContent(right, y, '│', nil, styleBorder)
	}
	s.SetContent(0, 1, '┌', nil, styleBorder)
	s.SetContent(right, 1, '┐', nil, styleBorder)
	s.SetContent(0, bottom, '└', nil, styleBorder)
	s.SetContent(right, bottom, '┘', nil, styleBorder)

	drawFood(s, res.Food, '●')
	if res.Special != nil {
		drawFood(s, *res.Special, '◆')
	}
	for i := len(res.Snake) - 1; i >= 0; i-- {
		c := res.Snake[i]
		st := styleBody
		if i == 0 {
			st = styleHead
		}
		s.SetContent(cellX(c), cellY(c), '█', nil, st)
		s.SetContent(cellX(c)+1, cellY(c), '█', nil, st)
	}

	switch {
	case res.GameOver:
		drawText(s, 2, bottom+1, styleAlert, fmt.Sprintf("Game Over! Your score: %d  (r: restart, q: quit)", res.Score))
	case u.flashN > 0:
		drawText(s, 2, bottom+1, styleAlert, u.flash)
	}
	s.Show()
}

func drawFood(s tcell.Screen, f game.Food, r rune) {
	st := tcell.StyleDefault.Foreground(tcell.GetColor(f.Color))
	s.SetContent(cellX(f.Cell), cellY(f.Cell), r, nil, st)
}

func drawText(s tcell.Screen, x, y int, st tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, st)
		x++
	}
}
