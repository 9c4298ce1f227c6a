package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stratum/pkg/core/micmac"
	"github.com/matzehuels/stratum/pkg/core/triage"
	stratumerrors "github.com/matzehuels/stratum/pkg/errors"
	stratumio "github.com/matzehuels/stratum/pkg/io"
	"github.com/matzehuels/stratum/pkg/schema"
)

// handleAnalyze runs the pipeline on a node-link network. Query parameters
// mode, top, impact, uncertainty and refresh override the server defaults.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	net, err := stratumio.ReadJSON(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.respondError(w, err)
		return
	}

	opts := s.defaults
	q := r.URL.Query()
	if v := q.Get("mode"); v != "" {
		opts.Mode = v
	}
	for name, dst := range map[string]*int{
		"top":         &opts.TopDrivers,
		"impact":      &opts.Thresholds.Impact,
		"uncertainty": &opts.Thresholds.Uncertainty,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, stratumerrors.New(stratumerrors.ErrCodeInvalidInput, "query parameter %q must be an integer", name))
			return
		}
		*dst = n
	}
	opts.Refresh = q.Get("refresh") == "true"
	opts.Logger = s.logger

	rep, err := s.runner.Execute(r.Context(), net, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if rep.CacheInfo.Hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	s.respondJSON(w, http.StatusOK, rep)
}

type classifyRequest struct {
	Influence  *float64 `json:"influence" validate:"required,gte=0"`
	Dependence *float64 `json:"dependence" validate:"required,gte=0"`
}

type classifyResponse struct {
	Influence  float64      `json:"influence"`
	Dependence float64      `json:"dependence"`
	Class      micmac.Class `json:"micmac_class"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := schema.ValidateStruct(req); err != nil {
		s.respondError(w, stratumerrors.Wrap(stratumerrors.ErrCodeInvalidInput, err, "%v", err))
		return
	}
	s.respondJSON(w, http.StatusOK, classifyResponse{
		Influence:  *req.Influence,
		Dependence: *req.Dependence,
		Class:      micmac.Classify(*req.Influence, *req.Dependence),
	})
}

type triageRequest struct {
	Thresholds *triage.Thresholds  `json:"thresholds,omitempty"`
	Items      []triage.Assessment `json:"items" validate:"required,dive"`
}

type triageResponse struct {
	Thresholds triage.Thresholds    `json:"thresholds"`
	Routes     []triage.Routed      `json:"routes"`
	Counts     map[triage.Route]int `json:"counts"`
}

func (s *Server) handleTriage(w http.ResponseWriter, r *http.Request) {
	var req triageRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := schema.ValidateStruct(req); err != nil {
		s.respondError(w, stratumerrors.Wrap(stratumerrors.ErrCodeInvalidInput, err, "%v", err))
		return
	}

	th := s.defaults.Thresholds
	if req.Thresholds != nil {
		th = *req.Thresholds
	}
	if th.Impact <= 0 {
		th.Impact = triage.DefaultThreshold
	}
	if th.Uncertainty <= 0 {
		th.Uncertainty = triage.DefaultThreshold
	}

	routes := triage.Enrich(req.Items, th)
	s.respondJSON(w, http.StatusOK, triageResponse{
		Thresholds: th,
		Routes:     routes,
		Counts:     triage.Counts(routes),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.runner.LoadReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rep)
}
