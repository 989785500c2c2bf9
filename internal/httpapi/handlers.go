package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"

	"github.com/xtding233/prize-gacha/internal/catalog"
	"github.com/xtding233/prize-gacha/internal/machine"
)

type drawResp struct {
	Award  *machine.Award `json:"award,omitempty"`
	Status machine.Status `json:"status"`
	Err    string         `json:"err,omitempty"`
}

type declineResp struct {
	Declined *catalog.Prize `json:"declined,omitempty"`
	Status   machine.Status `json:"status"`
	Err      string         `json:"err,omitempty"`
}

// Handler serves the draw controller's command surface.
type Handler struct {
	ctl *machine.Controller
	log *slog.Logger
}

// NewRouter builds the HTTP routes:
//
//	GET  /v1/state    snapshot for rendering
//	POST /v1/draw     draw; waits for the result unless ?wait=false
//	POST /v1/decline  decline the last high-tier award
//	POST /v1/reset    restore baseline stock
func NewRouter(ctl *machine.Controller, log *slog.Logger) http.Handler {
	h := &Handler{ctl: ctl, log: log}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(AccessLog(log))
	r.Use(middleware.Recoverer)
	r.Use(Compression)
	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/state", h.handleState)
		v1.Post("/draw", h.handleDraw)
		v1.Post("/decline", h.handleDecline)
		v1.Post("/reset", h.handleReset)
	})
	return r
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctl.Snapshot())
}

func (h *Handler) handleDraw(w http.ResponseWriter, r *http.Request) {
	ch, err := h.ctl.RequestDraw()
	if err != nil {
		writeJSON(w, StatusCode(err), drawResp{Status: h.ctl.Snapshot().Status, Err: err.Error()})
		return
	}
	if r.URL.Query().Get("wait") == "false" {
		writeJSON(w, http.StatusAccepted, drawResp{Status: h.ctl.Snapshot().Status})
		return
	}
	select {
	case out := <-ch:
		resp := drawResp{Award: out.Award, Status: h.ctl.Snapshot().Status}
		if out.Err != nil {
			resp.Err = out.Err.Error()
			writeJSON(w, StatusCode(out.Err), resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case <-r.Context().Done():
		// the draw still completes; the client can read it from /v1/state
		h.log.Warn("client left before draw result", slog.Any("err", r.Context().Err()))
	}
}

func (h *Handler) handleDecline(w http.ResponseWriter, r *http.Request) {
	p, err := h.ctl.DeclineLastAward()
	resp := declineResp{Status: h.ctl.Snapshot().Status}
	if err != nil {
		resp.Err = err.Error()
		writeJSON(w, StatusCode(err), resp)
		return
	}
	resp.Declined = &p
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.ctl.ResetInventory()
	writeJSON(w, http.StatusOK, h.ctl.Snapshot())
}

// StatusCode maps controller errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, machine.ErrDrawInProgress):
		return http.StatusTooManyRequests
	case errors.Is(err, machine.ErrStockExhausted),
		errors.Is(err, machine.ErrNoPriorAward),
		errors.Is(err, machine.ErrNotDeclinable),
		errors.Is(err, machine.ErrTriggerDisabled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
