package docs

import (
	"net/http"

	"github.com/shaowenchen/yapi-mcp-server/pkg/config"
	"github.com/shaowenchen/yapi-mcp-server/pkg/jsonx"
	"go.uber.org/zap"
)

// Handler handles documentation requests
type Handler struct {
	info   ToolsInfoResponse
	logger *zap.Logger
}

// NewHandler creates a new docs handler. Tool information is collected
// once, the tool set does not change while the server runs.
func NewHandler(cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		info:   NewCollector(cfg, logger).CollectToolsInfo(),
		logger: logger,
	}
}

// HandleDocs handles the /mcp/docs endpoint
func (h *Handler) HandleDocs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := jsonx.Marshal(h.info)
	if err != nil {
		h.logger.Error("Failed to encode tools info", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
