// Package detect serves batch anomaly detection over HTTP: every request fits
// a fresh model and scores the posted series.
package detect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-sod/rad/internal/codebook"
	"github.com/go-sod/rad/internal/detector"
	"github.com/go-sod/rad/internal/httputil"
	"github.com/go-sod/rad/internal/logging"
	"github.com/go-sod/rad/internal/model"
	"github.com/go-sod/rad/internal/model/windowed"
	"github.com/go-sod/rad/internal/pipeline"
	"github.com/go-sod/rad/internal/series"
	"github.com/go-sod/rad/internal/window"
)

type request struct {
	Dim         int       `json:"dim"`
	Values      []float64 `json:"values"`
	Fit         []float64 `json:"fit"`
	Fraction    float64   `json:"fraction"`
	Compression float64   `json:"compression"`
}

type response struct {
	RunID     string             `json:"runId"`
	Threshold float64            `json:"threshold"`
	Scored    int                `json:"scored"`
	Dropped   int                `json:"dropped"`
	Anomalies []detector.Anomaly `json:"anomalies"`
}

// unprocessable lists the errors caused by a well-formed request the
// pipeline cannot work with.
var unprocessable = []error{
	model.ErrNotFitted,
	detector.ErrLengthMismatch,
	detector.ErrFraction,
	detector.ErrCompression,
	detector.ErrEmpty,
	series.ErrDimension,
	windowed.ErrNotScalar,
	windowed.ErrFlat,
	window.ErrShortSeries,
	codebook.ErrNoPoints,
}

// NewHandler returns the /detect handler. Params with a zero field fall back
// to defaults.
func NewHandler(cfg *Config, provideModel model.ProvideFn, det *detector.Detector, defaults pipeline.Params, opts ...pipeline.Option) (http.Handler, error) {
	if provideModel == nil || det == nil {
		return nil, errors.New("detect handler needs a model provider and a detector")
	}
	return &handler{
		cfg:          cfg,
		provideModel: provideModel,
		detector:     det,
		defaults:     defaults,
		opts:         opts,
	}, nil
}

type handler struct {
	cfg          *Config
	provideModel model.ProvideFn
	detector     *detector.Detector
	defaults     pipeline.Params
	opts         []pipeline.Option
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if r.Method != http.MethodPost {
		httputil.RespStatus(ctx, w, http.StatusMethodNotAllowed, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}
	if t := r.Header.Get("Content-Type"); !strings.HasPrefix(strings.ToLower(t), "application/json") {
		httputil.RespStatus(ctx, w, http.StatusUnsupportedMediaType, `{"error": "content-type is not application/json"}`)
		return
	}

	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if req.Dim < 0 {
		httputil.RespBadRequest(ctx, w, `{"error": "dim must be positive, got %d"}`, req.Dim)
		return
	}
	if req.Dim == 0 {
		req.Dim = 1
	}
	if (len(req.Values)+len(req.Fit))/req.Dim > h.cfg.MaxSamples {
		httputil.RespBadRequest(ctx, w, `{"error": "series is too large, max allowed samples is %d"}`, h.cfg.MaxSamples)
		return
	}
	data, err := series.New(req.Dim, req.Values)
	if err != nil {
		httputil.RespBadRequest(ctx, w, `{"error": "invalid values: %v"}`, err)
		return
	}
	fit := data
	if req.Fit != nil {
		if fit, err = series.New(req.Dim, req.Fit); err != nil {
			httputil.RespBadRequest(ctx, w, `{"error": "invalid fit values: %v"}`, err)
			return
		}
	}

	params := h.defaults
	if req.Fraction != 0 {
		params.AnomalyFraction = req.Fraction
	}
	if req.Compression != 0 {
		params.Compression = req.Compression
	}

	m, err := h.provideModel()
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "unable create model: %v"}`, err)
		return
	}
	res, err := pipeline.New(m, h.detector, h.opts...).Run(ctx, fit, data, params)
	if err != nil {
		h.respRunErr(ctx, w, err)
		return
	}
	logger.Debugf("run %s flagged %d of %d samples", res.RunID, len(res.Anomalies), res.Scored)

	anomalies := res.Anomalies
	if anomalies == nil {
		anomalies = []detector.Anomaly{}
	}
	httputil.RespJSON(ctx, w, http.StatusOK, response{
		RunID:     res.RunID.String(),
		Threshold: res.Threshold,
		Scored:    res.Scored,
		Dropped:   res.Dropped,
		Anomalies: anomalies,
	})
}

func (h *handler) respRunErr(ctx context.Context, w http.ResponseWriter, err error) {
	for _, target := range unprocessable {
		if errors.Is(err, target) {
			httputil.RespStatus(ctx, w, http.StatusUnprocessableEntity, `{"error": %q}`, err.Error())
			return
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		httputil.RespStatus(ctx, w, http.StatusServiceUnavailable, `{"error": "detection timed out"}`)
		return
	}
	httputil.RespInternalError(ctx, w, `{"error": "detection failed, %v"}`, err)
}
