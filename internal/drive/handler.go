package drive

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler exposes the Drive folder and dataset refresh over HTTP for the
// ingest sidecar.
type Handler struct {
	service *Service
	ingest  *IngestService
}

// NewHandler builds the handler. service may be nil when Drive is not
// configured; the file endpoints then answer 503 and refresh loads the
// local dataset directory only.
func NewHandler(service *Service, ingest *IngestService) *Handler {
	return &Handler{
		service: service,
		ingest:  ingest,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/api/drive/files/download", h.DownloadFile).Methods("GET")
	router.HandleFunc("/api/dataset/refresh", h.RefreshDataset).Methods("POST")
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		http.Error(w, "drive is not configured", http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query()
	folderID := query.Get("folderId")
	folderPath := query.Get("path")

	if folderPath != "" {
		resolved, err := h.service.ResolveFolderPath(r.Context(), folderPath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		folderID = resolved
	}

	files, err := h.service.ListFolder(r.Context(), folderID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		http.Error(w, "drive is not configured", http.StatusServiceUnavailable)
		return
	}

	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		http.Error(w, "fileId parameter is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=data.csv")

	if err := h.service.Download(r.Context(), fileID, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) RefreshDataset(w http.ResponseWriter, r *http.Request) {
	result, err := h.ingest.Refresh(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("refresh failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "success",
		"result": result,
	})
}
