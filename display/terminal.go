package rainflow

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	Rc "github.com/mkarrer/rainflow/counting"
	Ro "github.com/mkarrer/rainflow/obvy"
	Rt "github.com/mkarrer/rainflow/types"
)

const (
	screenGutter = 3
)

// View is updated by whatever the counting session has accumulated
type View struct {
	MU         sync.Mutex         // State locks to read data
	Session    *Rc.Session        // The counting session on display
	Screen     tcell.Screen       // the screen itself
	Stats      *Ro.StatsInternal  // Internal status for prometheus
	Supervisor *FeedSupervisor    // Feeding goroutine manager
	server     *http.Server       // Prometheus metrics server
	lastTP     uint64             // last synced turning-point count
	lastCycles float64            // last synced cycle count
}

// shadeRamp maps a cell's share of the matrix maximum to a rune.
var shadeRamp = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// CellRune picks the shade for one matrix cell.
func CellRune(val, max float64) rune {
	if val <= 0 || max <= 0 {
		return shadeRamp[0]
	}
	idx := int(val / max * float64(len(shadeRamp)-1))
	if idx >= len(shadeRamp) {
		idx = len(shadeRamp) - 1
	}
	if idx < 1 {
		idx = 1 // any nonzero count gets at least the faintest shade
	}
	return shadeRamp[idx]
}

// DrawMatrix renders the rainflow matrix as a shaded grid,
// from classes along the x axis and to classes along y.
func (v *View) DrawMatrix(x, y int) {
	m := v.Session.Matrix()
	if m == nil {
		v.DrawText(x, y, x+40, y, "matrix sink disabled")
		return
	}

	var max float64
	for _, c := range m.Cells {
		if c > max {
			max = c
		}
	}

	for to := 0; to < m.N; to++ {
		for from := 0; from < m.N; from++ {
			val := m.At(from, to)
			r := CellRune(val, max)

			var style tcell.Style
			switch {
			case r == ' ':
				style = tcell.StyleDefault
			case val >= max*0.75:
				style = tcell.StyleDefault.Foreground(tcell.ColorAquaMarine)
			case val >= max*0.5:
				style = tcell.StyleDefault.Foreground(tcell.ColorTurquoise)
			case val >= max*0.25:
				style = tcell.StyleDefault.Foreground(tcell.ColorLightSeaGreen)
			default:
				style = tcell.StyleDefault.Foreground(tcell.ColorSeaGreen)
			}
			v.Screen.SetContent(x+from, y+to, r, nil, style)
		}
	}
}

// DrawText displays the text string at the given (x1, y1) with box size (x2, y2)
func (v *View) DrawText(x1, y1, x2, y2 int, text string) {
	row := y1
	col := x1
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorLightSteelBlue)
	for _, r := range text {
		v.Screen.SetContent(col, row, r, nil, style)
		col++
		if col >= x2 {
			row++
			col = x1
		}
		if row > y2 {
			break
		}
	}
}

// DrawViewBorder displays the outline of the View
func (v *View) DrawViewBorder(width, height int) {
	hvStyle := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorPink)
	v.Screen.SetContent(0, 0, tcell.RuneULCorner, nil, hvStyle)
	for i := 1; i < width; i++ {
		v.Screen.SetContent(i, 0, tcell.RuneHLine, nil, hvStyle)
	}
	v.Screen.SetContent(width, 0, tcell.RuneURCorner, nil, hvStyle)

	for i := 1; i < height; i++ {
		v.Screen.SetContent(0, i, tcell.RuneVLine, nil, hvStyle)
	}

	v.Screen.SetContent(0, height, tcell.RuneLLCorner, nil, hvStyle)

	for i := 1; i < height; i++ {
		v.Screen.SetContent(width, i, tcell.RuneVLine, nil, hvStyle)
	}

	v.Screen.SetContent(width, height, tcell.RuneLRCorner, nil, hvStyle)

	for i := 1; i < width; i++ {
		v.Screen.SetContent(i, height, tcell.RuneHLine, nil, hvStyle)
	}
}

// DrawMatrixView draws the live counting display with tcell
func (v *View) DrawMatrixView() {
	width, height := v.GetScreenSize()

	v.MU.Lock()
	frame := DamageFrame{
		Damage:        v.Session.Damage(),
		Cycles:        v.Session.CycleCount(),
		TurningPoints: v.Session.TurningPointCount(),
		ResidueLen:    len(v.Session.ResiduePoints()),
		State:         int(v.Session.State()),
	}
	v.MU.Unlock()

	v.DrawViewBorder(width-2, height-1)

	v.DrawText(1, 1, width-2, 2, fmt.Sprintf("damage %.6e | cycles %.1f | turning points %d | residue %d",
		frame.Damage, frame.Cycles, frame.TurningPoints, frame.ResidueLen))

	v.MU.Lock()
	v.DrawMatrix(1, screenGutter)
	v.MU.Unlock()

	v.DrawText(1, height-1, width, height+10, "/ESC/ to quit")
	v.DrawText(width-10, height-1, width, height+10, "RAINFLOW")
}

// Exit cleanly
func (v *View) exit() {
	v.MU.Lock()
	defer v.MU.Unlock()
	v.Screen.Fini()
	os.Exit(0)
}

// Running Loop to handle events
func (v *View) handleKeyBoardEvent() {
	for {
		ev := v.Screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.ResizeScreen()
		case *tcell.EventKey:
			// Catch quit and exit
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				v.exit()
			}
		}
	}
}

// GetScreenSize provides the terminal size for drawing
func (v *View) GetScreenSize() (int, int) {
	width, height := v.Screen.Size()
	return width, height
}

// ResizeScreen resizes the matrix view after terminal changes
func (v *View) ResizeScreen() {
	v.Screen.Sync()
	v.UpdateScreen()
}

func (v *View) UpdateScreen() {
	v.Screen.Clear()
	v.DrawMatrixView()
	v.Screen.Show()
}

// run runs a loop and updates periodically
// each iteration redraws whatever the supervisor
// has fed into the session since the last tick
func (v *View) run() {
	// Panic recovery and logging
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in run loop", slog.Any("panic", r))
			slog.Error("Recovered from panic", slog.String("stack", string(debug.Stack())))
			debug.PrintStack()
		}
	}()

	slog.Info("Starting MatrixView")
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		v.UpdateScreen()
	}
}

// NewView creates the tcell screen that displays the counting matrix
func NewView(s *Rc.Session) (*View, error) {
	if s == nil {
		slog.Error("Could not get a Session for display")
		return nil, errors.New("counting session not found")
	}

	screen, err := GetTTY()
	if err != nil {
		slog.Error("Could not get new screen", slog.Any("Error", err))
		return nil, err
	}

	// create an attached prometheus registry
	stats := Ro.NewStatsInternal()

	view := &View{
		Session: s,
		Screen:  screen,
		Stats:   stats,
	}

	view.UpdateScreen()

	return view, err
}

// GetTTY initializes the terminal screen.
func GetTTY() (tcell.Screen, error) {
	defStyle := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset)

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(defStyle)
	screen.EnableMouse()
	screen.EnablePaste()
	screen.Clear()

	return screen, nil
}

// StartMatrixView is called by main to run the program with a TUI.
// This also starts up the /metrics endpoint that is populated by prometheus.
func StartMatrixView(s *Rc.Session, sampler Sampler, p Rt.Policy, listen string) error {
	view, err := NewView(s)
	if err != nil {
		slog.Error("Could not start MatrixView", slog.Any("Error", err))
		return err
	}

	// Server for stats endpoint
	view.server = &http.Server{
		Addr:    listen,
		Handler: view.SetupMux(),
	}

	// Feed the session
	view.NewFeedSupervisor(sampler, p)
	view.Supervisor.Start()

	// Run the display loop
	go view.run()

	// Run stats endpoint
	go func() {
		slog.Info("Starting rainflow stats endpoint...", slog.String("Addr", listen))
		if err := view.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not start stats endpoint", slog.Any("Error", err))
		}
	}()

	view.handleKeyBoardEvent()

	return err
}

// StartWebNoTUI serves the counting API and metrics without a terminal.
func StartWebNoTUI(s *Rc.Session, sampler Sampler, p Rt.Policy, listen string) error {
	if s == nil {
		return errors.New("counting session not found")
	}

	// Create View without tcell screen
	stats := Ro.NewStatsInternal()
	view := &View{
		Session: s,
		Stats:   stats,
	}

	// Server for stats endpoint
	view.server = &http.Server{
		Addr:    listen,
		Handler: view.SetupMux(),
	}

	// Start feeding loop
	view.NewFeedSupervisor(sampler, p)
	view.Supervisor.Start()

	// Run stats endpoint (blocks)
	slog.Info("Starting rainflow web server...", slog.String("Addr", listen))
	if err := view.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Could not start stats endpoint", slog.Any("Error", err))
		return err
	}

	return nil
}
