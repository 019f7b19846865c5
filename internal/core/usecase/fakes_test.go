package usecase

import (
	"context"
	"errors"
	"io"
	"iter"
	"strings"

	"github.com/rebelsai/docusight/internal/core/domain"
	"github.com/rebelsai/docusight/internal/core/ports"
)

type folderRepoFake struct {
	created     *domain.Folder
	createErr   error
	counted     int
	countErr    error
	getResult   *domain.Folder
	getErr      error
	countCalled bool
}

func (f *folderRepoFake) Create(_ context.Context, folder *domain.Folder) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyFolder := *folder
	f.created = &copyFolder
	return nil
}

func (f *folderRepoFake) GetByID(_ context.Context, id string) (*domain.Folder, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getResult != nil {
		return f.getResult, nil
	}
	return &domain.Folder{ID: id}, nil
}

func (f *folderRepoFake) UpdateDocumentCount(_ context.Context, _ string, count int) error {
	if f.countErr != nil {
		return f.countErr
	}
	f.countCalled = true
	f.counted = count
	return nil
}

type docRepoFake struct {
	created   []domain.Document
	createErr error

	byID   map[string]*domain.Document
	getErr error

	listResult []domain.Document
	listErr    error

	blobPaths map[string]string
	setErr    error
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *doc)
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", errors.New(id))
	}
	return doc, nil
}

func (f *docRepoFake) ListByFolder(context.Context, string) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResult, nil
}

func (f *docRepoFake) SetBlobPath(_ context.Context, id, blobPath string, _ int64) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.blobPaths == nil {
		f.blobPaths = make(map[string]string)
	}
	f.blobPaths[id] = blobPath
	return nil
}

type classificationRepoFake struct {
	created   []domain.Classification
	createErr error
}

func (f *classificationRepoFake) Create(_ context.Context, cls *domain.Classification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *cls)
	return nil
}

func (f *classificationRepoFake) ListByDocument(context.Context, string) ([]domain.Classification, error) {
	return nil, errors.New("not implemented")
}

type blobClientFake struct {
	uploads   map[string]string
	uploadErr error
	texts     map[string]string
	getErr    error
}

func (f *blobClientFake) Upload(_ context.Context, remotePath string, data io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.uploads == nil {
		f.uploads = make(map[string]string)
	}
	f.uploads[remotePath] = string(raw)
	return nil
}

func (f *blobClientFake) Download(_ context.Context, remotePath string) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	text, ok := f.texts[remotePath]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "download", errors.New(remotePath))
	}
	return io.NopCloser(strings.NewReader(text)), nil
}

type blobFactoryFake struct {
	client    *blobClientFake
	clientErr error
	acquired  int
	released  int
}

func (f *blobFactoryFake) ClientFor(context.Context, string) (ports.BlobClient, error) {
	if f.clientErr != nil {
		return nil, f.clientErr
	}
	f.acquired++
	return f.client, nil
}

func (f *blobFactoryFake) Release(ports.BlobClient) {
	f.released++
}

type scannerFake struct {
	entries []domain.ScanEntry
	err     error
}

func (f *scannerFake) Scan(context.Context, string, domain.ScanPolicy) (iter.Seq[domain.ScanEntry], error) {
	if f.err != nil {
		return nil, f.err
	}
	return func(yield func(domain.ScanEntry) bool) {
		for _, entry := range f.entries {
			if !yield(entry) {
				return
			}
		}
	}, nil
}

type queueFake struct {
	folderID string
	err      error
}

func (f *queueFake) PublishFolderIngested(_ context.Context, folderID string) error {
	if f.err != nil {
		return f.err
	}
	f.folderID = folderID
	return nil
}

func (f *queueFake) SubscribeFolderIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type classifierFake struct {
	results []domain.PredictionResult
	err     error
	inputs  []string
	calls   int
}

func (f *classifierFake) ClassifyTexts(_ context.Context, texts []string) ([]domain.PredictionResult, error) {
	f.calls++
	f.inputs = append([]string(nil), texts...)
	if f.err != nil {
		return nil, f.err
	}
	if f.results != nil {
		return f.results, nil
	}
	out := make([]domain.PredictionResult, len(texts))
	for i := range texts {
		out[i] = domain.PredictionResult{Prediction: domain.Prediction{Label: domain.LabelNeutral, Score: 0.5}}
	}
	return out, nil
}

func (f *classifierFake) ModelName() string {
	return "test-model"
}

type providerFake struct {
	user *domain.User
	cred *domain.Credential
	err  error
}

func (f *providerFake) AuthCodeURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (f *providerFake) Exchange(context.Context, string) (*domain.User, *domain.Credential, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	user := *f.user
	cred := *f.cred
	return &user, &cred, nil
}

type userRepoFake struct {
	upserted *domain.User
	err      error
}

func (f *userRepoFake) Upsert(_ context.Context, user *domain.User) error {
	if f.err != nil {
		return f.err
	}
	copyUser := *user
	f.upserted = &copyUser
	return nil
}

func (f *userRepoFake) GetByID(context.Context, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

type credStoreFake struct {
	saved   *domain.Credential
	saveErr error
}

func (f *credStoreFake) Save(_ context.Context, cred *domain.Credential) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	copyCred := *cred
	f.saved = &copyCred
	return nil
}

func (f *credStoreFake) Get(context.Context, string) (*domain.Credential, error) {
	return nil, errors.New("not implemented")
}
