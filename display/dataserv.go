package rainflow

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	Rc "github.com/mkarrer/rainflow/counting"
)

// SetupMux handles all data serving:
// - Prometheus metric endpoint
// - Websocket for live damage frames
// - Version for programmatic use
// - Counting results for post-finalize queries
func (v *View) SetupMux() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", v.Stats.Handler())
	r.HandleFunc("/ws", v.WebsocketHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(v.StatsMiddleware)
	api.HandleFunc("/version", v.VersionHandler)
	api.HandleFunc("/matrix", v.MatrixHandler)
	api.HandleFunc("/damage", v.DamageHandler)
	api.HandleFunc("/histograms", v.HistogramsHandler)
	api.HandleFunc("/residue", v.ResidueHandler)

	return r
}

var Version = "dev"

// StatsMiddleware counts API hits per path.
func (v *View) StatsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v.Stats.APIHits.WithLabelValues(r.URL.Path).Inc()
		next.ServeHTTP(w, r)
	})
}

func (v *View) VersionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"version": Version})
}

// MatrixHandler serves the full rainflow matrix with its class axis.
func (v *View) MatrixHandler(w http.ResponseWriter, r *http.Request) {
	v.MU.Lock()
	defer v.MU.Unlock()

	type MatrixData struct {
		Classes int       `json:"classes"`
		Cells   []float64 `json:"cells"`
		Sum     float64   `json:"sum"`
	}

	m := v.Session.Matrix()
	if m == nil {
		http.Error(w, "matrix sink disabled", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MatrixData{
		Classes: m.N,
		Cells:   m.Cells,
		Sum:     m.Sum(),
	})
}

// DamageHandler serves cumulative damage plus the residue-handling share.
func (v *View) DamageHandler(w http.ResponseWriter, r *http.Request) {
	v.MU.Lock()
	defer v.MU.Unlock()

	type DamageData struct {
		Damage         float64 `json:"damage"`
		ResidualDamage float64 `json:"residualDamage"`
		Cycles         float64 `json:"cycles"`
		State          int     `json:"state"`
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DamageData{
		Damage:         Rc.FloatPrecise(v.Session.Damage(), 12),
		ResidualDamage: Rc.FloatPrecise(v.Session.ResidualDamage(), 12),
		Cycles:         v.Session.CycleCount(),
		State:          int(v.Session.State()),
	})
}

// HistogramsHandler serves the optional 1-D counting sinks.
func (v *View) HistogramsHandler(w http.ResponseWriter, r *http.Request) {
	v.MU.Lock()
	defer v.MU.Unlock()

	type HistogramData struct {
		RangePairs     []float64 `json:"rangePairs,omitempty"`
		LevelCrossings []float64 `json:"levelCrossings,omitempty"`
	}

	var hd HistogramData
	if rp := v.Session.RangePairs(); rp != nil {
		hd.RangePairs = rp.Counts
	}
	if lc := v.Session.LevelCrossings(); lc != nil {
		hd.LevelCrossings = lc.Counts
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(hd)
}

// ResidueHandler serves the unclosed turning points.
func (v *View) ResidueHandler(w http.ResponseWriter, r *http.Request) {
	v.MU.Lock()
	defer v.MU.Unlock()

	type ResiduePoint struct {
		Value    float64 `json:"value"`
		Class    int     `json:"class"`
		Position uint64  `json:"position"`
	}

	pts := v.Session.ResiduePoints()
	out := make([]ResiduePoint, 0, len(pts))
	for _, tp := range pts {
		out = append(out, ResiduePoint{Value: tp.Value, Class: tp.Class, Position: tp.Position})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
