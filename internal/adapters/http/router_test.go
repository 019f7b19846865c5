package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rebelsai/docusight/internal/core/domain"
)

type authFake struct{}

func (authFake) AuthURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (authFake) Authorize(context.Context, string) (*domain.User, error) {
	return &domain.User{ID: "u1", AccountID: "dbid:abc"}, nil
}

type ingestorFake struct {
	summary *domain.IngestSummary
	err     error
	gotUser string
	gotRoot string
	policy  domain.ScanPolicy
}

func (f *ingestorFake) Ingest(_ context.Context, userID, root string, policy domain.ScanPolicy) (*domain.IngestSummary, error) {
	f.gotUser = userID
	f.gotRoot = root
	f.policy = policy
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type classifierServiceFake struct {
	outcomes []domain.ClassifyOutcome
	err      error
	folderID string
}

func (f *classifierServiceFake) ClassifyDocuments(_ context.Context, ids []string) ([]domain.ClassifyOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.ClassifyOutcome, len(ids))
	for i, id := range ids {
		out[i] = domain.ClassifyOutcome{DocumentID: id, Label: domain.LabelNeutral}
	}
	return out, nil
}

func (f *classifierServiceFake) ClassifyFolder(_ context.Context, folderID string) ([]domain.ClassifyOutcome, error) {
	f.folderID = folderID
	if f.err != nil {
		return nil, f.err
	}
	return f.outcomes, nil
}

type docRepoFake struct {
	doc  *domain.Document
	err  error
	docs []domain.Document
}

func (f *docRepoFake) Create(context.Context, *domain.Document) error { return errors.New("not implemented") }
func (f *docRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}
func (f *docRepoFake) ListByFolder(context.Context, string) ([]domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}
func (f *docRepoFake) SetBlobPath(context.Context, string, string, int64) error {
	return errors.New("not implemented")
}

type resultsRepoFake struct {
	rows []domain.Classification
}

func (f *resultsRepoFake) Create(context.Context, *domain.Classification) error {
	return errors.New("not implemented")
}
func (f *resultsRepoFake) ListByDocument(context.Context, string) ([]domain.Classification, error) {
	return f.rows, nil
}

func newTestRouter(ingestor *ingestorFake, classifier *classifierServiceFake, docs *docRepoFake, results *resultsRepoFake) http.Handler {
	if ingestor == nil {
		ingestor = &ingestorFake{}
	}
	if classifier == nil {
		classifier = &classifierServiceFake{}
	}
	if docs == nil {
		docs = &docRepoFake{}
	}
	if results == nil {
		results = &resultsRepoFake{}
	}
	return NewRouter(authFake{}, ingestor, classifier, docs, results, domain.ScanPolicy{}, nil, "test").Handler()
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestIngestFolderEndpoint(t *testing.T) {
	ingestor := &ingestorFake{summary: &domain.IngestSummary{FolderID: "f1", Scanned: 3, Uploaded: 2, NoText: 1}}
	handler := newTestRouter(ingestor, nil, nil, nil)

	body := `{"user_id":"u1","path":"/data/reviews","include_hidden":true}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/folders/ingest", strings.NewReader(body)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ingestor.gotUser != "u1" || ingestor.gotRoot != "/data/reviews" {
		t.Fatalf("unexpected ingest args %q %q", ingestor.gotUser, ingestor.gotRoot)
	}
	if !ingestor.policy.IncludeHidden {
		t.Fatalf("expected include_hidden override")
	}

	var summary domain.IngestSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if summary.FolderID != "f1" || summary.Scanned != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestIngestFolderInvalidInputIs400(t *testing.T) {
	ingestor := &ingestorFake{err: domain.WrapError(domain.ErrInvalidInput, "ingest folder", errors.New("user id and root are required"))}
	handler := newTestRouter(ingestor, nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/folders/ingest", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestIngestFolderAuthErrorIs401(t *testing.T) {
	ingestor := &ingestorFake{err: domain.WrapError(domain.ErrAuthentication, "refresh token", errors.New("revoked"))}
	handler := newTestRouter(ingestor, nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/folders/ingest", strings.NewReader(`{"user_id":"u1","path":"/x"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestClassifyFolderEndpoint(t *testing.T) {
	classifier := &classifierServiceFake{outcomes: []domain.ClassifyOutcome{
		{DocumentID: "d1", Label: domain.LabelPositive, Score: 0.97},
	}}
	handler := newTestRouter(nil, classifier, nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/folders/f1/classify", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if classifier.folderID != "f1" {
		t.Fatalf("expected folder f1, got %s", classifier.folderID)
	}
}

func TestClassifyFolderNotFoundIs404(t *testing.T) {
	classifier := &classifierServiceFake{err: domain.WrapError(domain.ErrNotFound, "get folder", errors.New("f404"))}
	handler := newTestRouter(nil, classifier, nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/folders/f404/classify", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestClassifyDocumentsRequiresIDs(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/documents/classify", strings.NewReader(`{"document_ids":[]}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetDocumentWithClassifications(t *testing.T) {
	docs := &docRepoFake{doc: &domain.Document{ID: "d1", RelPath: "a.txt"}}
	results := &resultsRepoFake{rows: []domain.Classification{{ID: "c1", DocumentID: "d1", Label: domain.LabelPositive}}}
	handler := newTestRouter(nil, nil, docs, results)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/documents/d1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Document        domain.Document         `json:"document"`
		Classifications []domain.Classification `json:"classifications"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Document.ID != "d1" || len(body.Classifications) != 1 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/folders/ingest", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthStartRedirectsWithState(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/start", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d", rec.Code)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "https://provider.example/authorize?state=") {
		t.Fatalf("unexpected redirect %s", location)
	}

	var state string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == stateCookie {
			state = cookie.Value
		}
	}
	if state == "" || !strings.HasSuffix(location, state) {
		t.Fatalf("expected state cookie bound to redirect, cookie=%q location=%s", state, location)
	}
}

func TestAuthCallbackStateMismatch(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/callback?code=c&state=other", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "expected"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthCallbackSuccess(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/callback?code=c&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var user domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("unexpected user %+v", user)
	}
}
