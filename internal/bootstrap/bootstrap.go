package bootstrap

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/rebelsai/docusight/internal/config"
	"github.com/rebelsai/docusight/internal/core/domain"
	"github.com/rebelsai/docusight/internal/core/ports"
	"github.com/rebelsai/docusight/internal/core/usecase"
	"github.com/rebelsai/docusight/internal/infrastructure/blob"
	"github.com/rebelsai/docusight/internal/infrastructure/blob/dropbox"
	"github.com/rebelsai/docusight/internal/infrastructure/convert"
	"github.com/rebelsai/docusight/internal/infrastructure/inference"
	"github.com/rebelsai/docusight/internal/infrastructure/queue/nats"
	"github.com/rebelsai/docusight/internal/infrastructure/repository/postgres"
	"github.com/rebelsai/docusight/internal/infrastructure/resilience"
	"github.com/rebelsai/docusight/internal/infrastructure/scanner"
)

type App struct {
	Config config.Config

	Queue      ports.MessageQueue
	Folders    ports.FolderRepository
	Docs       ports.DocumentRepository
	Results    ports.ClassificationRepository
	AuthUC     ports.Authorizer
	IngestUC   ports.FolderIngestor
	ClassifyUC ports.DocumentClassifierService

	ScanPolicy domain.ScanPolicy

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	users := postgres.NewUserRepository(db)
	creds := postgres.NewCredentialRepository(db)
	folders := postgres.NewFolderRepository(db)
	docs := postgres.NewDocumentRepository(db)
	results := postgres.NewClassificationRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	oauth := dropbox.NewOAuth(cfg.DropboxClientID, cfg.DropboxClientSecret, cfg.DropboxRedirectURL, dropbox.OAuthOptions{})
	blobFactory := blob.NewClientFactory(creds, oauth, func(accessToken string) ports.BlobClient {
		return dropbox.NewClient(accessToken, dropbox.Options{
			ContentURL: cfg.DropboxContentURL,
			RateLimit:  rate.Limit(cfg.BlobRequestRate),
			RateBurst:  cfg.BlobRequestBurst,
			Executor:   executor,
		})
	}, blob.FactoryOptions{
		ExpiryMargin: time.Duration(cfg.CredExpiryMarginSeconds) * time.Second,
	})

	fsScanner := scanner.NewFSScanner(convert.DefaultRegistry())
	policy, err := scanner.LoadPolicy(cfg.ScanPolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load scan policy: %w", err)
	}
	if cfg.ScanIncludeHidden {
		policy.IncludeHidden = true
	}

	inferenceClient := inference.NewClient(cfg.InferenceURL, inference.ClientOptions{Executor: executor})
	classifier := inference.NewEngine(inferenceClient, inference.EngineConfig{
		Model:         cfg.InferenceModel,
		Device:        cfg.InferenceDevice,
		BatchSize:     cfg.ClassifyBatchSize,
		MaxInputChars: cfg.MaxInputChars,
	})

	authUC := usecase.NewAuthorizeUseCase(oauth, users, creds)
	ingestUC := usecase.NewIngestFolderUseCase(folders, docs, fsScanner, blobFactory, queue)
	classifyUC := usecase.NewClassifyDocumentsUseCase(docs, folders, results, blobFactory, classifier)

	return &App{
		Config: cfg,

		Queue:      queue,
		Folders:    folders,
		Docs:       docs,
		Results:    results,
		AuthUC:     authUC,
		IngestUC:   ingestUC,
		ClassifyUC: classifyUC,

		ScanPolicy: policy,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
