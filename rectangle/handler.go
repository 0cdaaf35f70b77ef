package rectangle

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"rectangle-service/rectangle/application"
	"rectangle-service/rectangle/domain"

	"github.com/sirupsen/logrus"
)

type handler struct {
	svc     application.UpdateService
	stats   domain.StatsStore
	metrics *Metrics
	log     logrus.FieldLogger
	keyFn   KeyFunc
}

func (h *handler) getRectangle(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r.Context(), h.log)

	d, err := h.svc.Current(r.Context())
	if err != nil {
		log.WithError(err).Error("failed to read rectangle")
		writeError(w, http.StatusInternalServerError, "failed to read dimensions")
		return
	}

	log.WithFields(dimensionFields(d)).Debug("returning rectangle")
	writeJSON(w, http.StatusOK, d)
}

// postRectangle: Received -> Delaying -> Validating -> {Rejected | Persisting -> Persisted}.
func (h *handler) postRectangle(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r.Context(), h.log)

	candidate, ok := h.decode(w, r, log)
	if !ok {
		return
	}
	log = log.WithFields(dimensionFields(candidate))
	log.Info("rectangle update received, validating")

	updated, err := h.svc.Update(r.Context(), candidate)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}

	h.record(r, domain.OutcomeAccepted)
	h.metrics.setDimensions(updated)
	log.Info("rectangle validated and saved")
	writeJSON(w, http.StatusOK, updated)
}

// validateRectangle é a variante separada: Received -> Delaying -> Validating,
// sem persistir.
func (h *handler) validateRectangle(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r.Context(), h.log)

	candidate, ok := h.decode(w, r, log)
	if !ok {
		return
	}
	log = log.WithFields(dimensionFields(candidate))

	if err := h.svc.Check(r.Context(), candidate); err != nil {
		h.fail(w, r, log, err)
		return
	}

	h.record(r, domain.OutcomeAccepted)
	log.Info("rectangle validated")
	writeJSON(w, http.StatusOK, candidate)
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger) (domain.Dimensions, bool) {
	candidate, err := decodeCandidate(w, r)
	if err == nil {
		return candidate, true
	}

	h.record(r, domain.OutcomeMalformed)
	log.WithError(err).Warn("malformed rectangle body")

	detail := err.Error()
	var mbe *malformedBodyError
	if errors.As(err, &mbe) {
		detail = mbe.detail
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request body", Detail: detail})
	return domain.Dimensions{}, false
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		h.record(r, domain.OutcomeRejected)
		log.WithField("reason", ve.Reason).Warn("rectangle validation failed")
		writeError(w, http.StatusBadRequest, ve.Reason)
		return
	}

	h.record(r, domain.OutcomeFailed)
	log.WithError(err).Error("failed to persist rectangle")
	writeError(w, http.StatusInternalServerError, "failed to persist dimensions")
}

// statsResponse lista os totais por resultado, de todos ou de um cliente.
type statsResponse struct {
	Client    string `json:"client,omitempty"`
	Accepted  int64  `json:"accepted"`
	Rejected  int64  `json:"rejected"`
	Malformed int64  `json:"malformed"`
	Failed    int64  `json:"failed"`
}

// getStats devolve os totais; com ?client=<chave> devolve só os do cliente.
func (h *handler) getStats(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r.Context(), h.log)
	client := strings.TrimSpace(r.URL.Query().Get("client"))

	var (
		totals map[domain.Outcome]int64
		err    error
	)
	if client == "" {
		reader, ok := h.stats.(domain.StatsReader)
		if !ok {
			writeError(w, http.StatusNotFound, "stats are not enabled")
			return
		}
		totals, err = reader.Totals(r.Context())
	} else {
		reader, ok := h.stats.(domain.ClientStatsReader)
		if !ok {
			writeError(w, http.StatusNotFound, domain.ErrClientStatsDisabled.Error())
			return
		}
		totals, err = reader.ClientTotals(r.Context(), domain.ClientKey(client))
	}

	switch {
	case errors.Is(err, domain.ErrClientStatsDisabled):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		log.WithError(err).Error("failed to read update stats")
		writeError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Client:    client,
		Accepted:  totals[domain.OutcomeAccepted],
		Rejected:  totals[domain.OutcomeRejected],
		Malformed: totals[domain.OutcomeMalformed],
		Failed:    totals[domain.OutcomeFailed],
	})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// record grava métricas e estatísticas; falha no StatsStore só gera log.
func (h *handler) record(r *http.Request, outcome domain.Outcome) {
	h.metrics.observeUpdate(outcome)
	if h.stats == nil {
		return
	}

	ev := domain.UpdateEvent{
		Client:  domain.ClientKey(h.keyFn(r)),
		Outcome: outcome,
		Route:   r.Method + " " + r.URL.Path,
		At:      time.Now(),
	}
	if err := h.stats.Record(context.WithoutCancel(r.Context()), ev); err != nil {
		requestLogger(r.Context(), h.log).WithError(err).Warn("failed to record update stats")
	}
}

func dimensionFields(d domain.Dimensions) logrus.Fields {
	return logrus.Fields{
		"width":     d.Width,
		"height":    d.Height,
		"perimeter": d.Perimeter(),
	}
}
