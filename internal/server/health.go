package server

import (
	"context"
	"net/http"

	"github.com/go-sod/rad/internal/httputil"
	"github.com/gorilla/mux"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HandleHealth answers ok while ctx is alive and 503 once shutdown began.
func HandleHealth(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctx.Err() != nil {
			httputil.RespStatus(r.Context(), w, http.StatusServiceUnavailable, `{"status": "shutting down"}`)
			return
		}
		httputil.RespJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// NewGRPC returns a gRPC server exposing the standard health service. The
// service reports NOT_SERVING once ctx is done.
func NewGRPC(ctx context.Context, opts ...grpc.ServerOption) *grpc.Server {
	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	go func() {
		<-ctx.Done()
		hs.Shutdown()
	}()
	return srv
}

type Routes struct {
	Detect  http.Handler
	Runs    http.Handler
	Metrics http.Handler
}

// NewRouter mounts the service routes; nil handlers are left out.
func NewRouter(ctx context.Context, routes Routes) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/health", HandleHealth(ctx)).Methods(http.MethodGet)
	if routes.Detect != nil {
		r.Handle("/detect", routes.Detect)
	}
	if routes.Runs != nil {
		r.Handle("/runs", routes.Runs)
		r.Handle("/runs/{id}", routes.Runs)
	}
	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics).Methods(http.MethodGet)
	}
	return r
}
