package rainflow_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	Rd "github.com/mkarrer/rainflow/display"
)

func TestView_GetDamageFrame(t *testing.T) {
	t.Run("Reflects the finished session", func(t *testing.T) {
		view := makeTestView(t)
		frame := view.GetDamageFrame()
		assertFloat64(t, frame.Cycles, 1.0)
		assertInt(t, frame.ResidueLen, 2)
		assertInt(t, int(frame.TurningPoints), 4)
	})

	t.Run("Nil session yields an empty frame", func(t *testing.T) {
		view := &Rd.View{}
		frame := view.GetDamageFrame()
		assertFloat64(t, frame.Damage, 0)
		assertInt(t, frame.ResidueLen, 0)
	})
}

func TestView_WebsocketHandler(t *testing.T) {
	view := makeTestView(t)
	srv := httptest.NewServer(view.SetupMux())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("could not dial websocket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var frame Rd.DamageFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("could not read damage frame: %v", err)
	}
	assertFloat64(t, frame.Cycles, 1.0)
	assertInt(t, frame.ResidueLen, 2)
}

func TestCellRune(t *testing.T) {
	t.Run("Zero and empty cells stay blank", func(t *testing.T) {
		if got := Rd.CellRune(0, 10); got != ' ' {
			t.Errorf("got %q want blank", got)
		}
		if got := Rd.CellRune(5, 0); got != ' ' {
			t.Errorf("got %q want blank", got)
		}
	})

	t.Run("Maximum cell uses the full shade", func(t *testing.T) {
		if got := Rd.CellRune(10, 10); got != '█' {
			t.Errorf("got %q want full block", got)
		}
	})

	t.Run("Small but nonzero cells stay visible", func(t *testing.T) {
		if got := Rd.CellRune(0.001, 1000); got == ' ' {
			t.Errorf("expected a visible shade for a nonzero count")
		}
	})

	t.Run("Shade never decreases with the count", func(t *testing.T) {
		prev := ' '
		for v := 0.0; v <= 10; v += 0.5 {
			got := Rd.CellRune(v, 10)
			if got < prev {
				t.Errorf("shade decreased at %v: %q after %q", v, got, prev)
			}
			prev = got
		}
	})
}
