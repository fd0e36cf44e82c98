package detect

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-sod/rad/internal/httputil"
	rundb "github.com/go-sod/rad/internal/run/database"
	"github.com/go-sod/rad/internal/run/model"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type RunFinder interface {
	Find(ctx context.Context, id uuid.UUID) (model.Report, error)
	FindAll(ctx context.Context, filter rundb.FilterFn) ([]model.Report, error)
}

// NewRunsHandler serves stored run reports: the whole list, or one report
// when the route carries an id variable.
func NewRunsHandler(runs RunFinder) http.Handler {
	return &runsHandler{runs: runs}
}

type runsHandler struct {
	runs RunFinder
}

func (h *runsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		httputil.RespStatus(ctx, w, http.StatusMethodNotAllowed, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}

	raw, ok := mux.Vars(r)["id"]
	if !ok {
		reports, err := h.runs.FindAll(ctx, nil)
		if err != nil {
			httputil.RespInternalError(ctx, w, `{"error": "unable list runs, %v"}`, err)
			return
		}
		if reports == nil {
			reports = []model.Report{}
		}
		httputil.RespJSON(ctx, w, http.StatusOK, reports)
		return
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespBadRequest(ctx, w, `{"error": "invalid run id %q"}`, raw)
		return
	}
	report, err := h.runs.Find(ctx, id)
	if errors.Is(err, rundb.ErrNotFound) {
		httputil.RespStatus(ctx, w, http.StatusNotFound, `{"error": "run %s not found"}`, id)
		return
	}
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "unable find run, %v"}`, err)
		return
	}
	httputil.RespJSON(ctx, w, http.StatusOK, report)
}
