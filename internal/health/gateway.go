package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/helloca/ai-service/internal/models"
)

// NewGateway serves GET /healthz by forwarding to the health service on conn.
// The optional ?service= query selects a named service such as DatabaseService.
func NewGateway(conn grpc.ClientConnInterface) http.Handler {
	return runtime.NewServeMux(
		runtime.WithErrorHandler(errorHandler),
		runtime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)),
	)
}

func errorHandler(_ context.Context, _ *runtime.ServeMux, _ runtime.Marshaler, w http.ResponseWriter, _ *http.Request, err error) {
	st := status.Convert(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(runtime.HTTPStatusFromCode(st.Code()))
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Detail: st.Message()})
}
