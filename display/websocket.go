package rainflow

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	Rc "github.com/mkarrer/rainflow/counting"
)

// DamageFrame is one live update pushed over the websocket while
// the supervisor is feeding samples.
type DamageFrame struct {
	Damage        float64 `json:"damage"`
	Cycles        float64 `json:"cycles"`
	TurningPoints uint64  `json:"turningPoints"`
	ResidueLen    int     `json:"residueLen"`
	State         int     `json:"state"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (v *View) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Send damage frames periodically
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			frame := v.GetDamageFrame()
			if err := conn.WriteJSON(frame); err != nil {
				return // Connection closed
			}
		}
	}
}

func (v *View) GetDamageFrame() DamageFrame {
	// Make sure we're not nil
	if v.Session == nil {
		return DamageFrame{}
	}

	v.MU.Lock()
	defer v.MU.Unlock()

	return DamageFrame{
		Damage:        Rc.FloatPrecise(v.Session.Damage(), 12),
		Cycles:        v.Session.CycleCount(),
		TurningPoints: v.Session.TurningPointCount(),
		ResidueLen:    len(v.Session.ResiduePoints()),
		State:         int(v.Session.State()),
	}
}
