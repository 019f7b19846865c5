package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rebelsai/docusight/internal/core/domain"
	"github.com/rebelsai/docusight/internal/core/ports"
	"github.com/rebelsai/docusight/internal/observability/metrics"
)

type Router struct {
	authUC     ports.Authorizer
	ingestUC   ports.FolderIngestor
	classifyUC ports.DocumentClassifierService
	docs       ports.DocumentRepository
	results    ports.ClassificationRepository

	defaultPolicy domain.ScanPolicy
	metrics       *metrics.HTTPServerMetrics
	service       string
}

func NewRouter(
	authUC ports.Authorizer,
	ingestUC ports.FolderIngestor,
	classifyUC ports.DocumentClassifierService,
	docs ports.DocumentRepository,
	results ports.ClassificationRepository,
	defaultPolicy domain.ScanPolicy,
	httpMetrics *metrics.HTTPServerMetrics,
	service string,
) *Router {
	return &Router{
		authUC:        authUC,
		ingestUC:      ingestUC,
		classifyUC:    classifyUC,
		docs:          docs,
		results:       results,
		defaultPolicy: defaultPolicy,
		metrics:       httpMetrics,
		service:       service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/auth/start", rt.authStart)
	mux.HandleFunc("/v1/auth/callback", rt.authCallback)
	mux.HandleFunc("/v1/folders/ingest", rt.ingestFolder)
	mux.HandleFunc("/v1/folders/", rt.folderSubresource)
	mux.HandleFunc("/v1/documents/classify", rt.classifyDocuments)
	mux.HandleFunc("/v1/documents/", rt.getDocument)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(rt.service, routePattern, handler)
	}
	return withRequestID(withAccessLog(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

const stateCookie = "oauth_state"

func (rt *Router) authStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/v1/auth",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, rt.authUC.AuthURL(state), http.StatusFound)
}

func (rt *Router) authCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "state mismatch"})
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code is required"})
		return
	}

	user, err := rt.authUC.Authorize(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (rt *Router) ingestFolder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		UserID         string   `json:"user_id"`
		Path           string   `json:"path"`
		IncludeHidden  *bool    `json:"include_hidden"`
		IgnorePatterns []string `json:"ignore_patterns"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	policy := rt.defaultPolicy
	if req.IncludeHidden != nil {
		policy.IncludeHidden = *req.IncludeHidden
	}
	if len(req.IgnorePatterns) > 0 {
		policy.IgnorePatterns = req.IgnorePatterns
	}

	start := time.Now()
	summary, err := rt.ingestUC.Ingest(r.Context(), req.UserID, req.Path, policy)
	if rt.metrics != nil {
		status := "success"
		scanned := 0
		if err != nil {
			status = "error"
		} else {
			scanned = summary.Scanned
		}
		rt.metrics.RecordIngest(rt.service, status, scanned, time.Since(start))
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, summary)
}

// folderSubresource dispatches /v1/folders/{id}/classify and
// /v1/folders/{id}/documents.
func (rt *Router) folderSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/folders/")
	folderID, action, _ := strings.Cut(rest, "/")
	if folderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "folder id is required"})
		return
	}

	switch action {
	case "classify":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		outcomes, err := rt.classifyUC.ClassifyFolder(r.Context(), folderID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"folder_id": folderID, "outcomes": outcomes})
	case "documents":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		docs, err := rt.docs.ListByFolder(r.Context(), folderID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"folder_id": folderID, "documents": docs})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown folder action"})
	}
}

func (rt *Router) classifyDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		DocumentIDs []string `json:"document_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.DocumentIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_ids is required"})
		return
	}

	outcomes, err := rt.classifyUC.ClassifyDocuments(r.Context(), req.DocumentIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	classifications, err := rt.results.ListByDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document":        doc,
		"classifications": classifications,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
