package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/talx-hub/coinledger/internal/model/ledger"
	"github.com/talx-hub/coinledger/internal/model/notification"
)

const (
	DocumentLedger        = "coins"
	DocumentNotifications = "notifications"
)

type DocumentRepository[T any] struct {
	backend Backend
	log     *slog.Logger
	name    string
}

func NewDocumentRepository[T any](backend Backend, name string, log *slog.Logger,
) *DocumentRepository[T] {
	return &DocumentRepository[T]{
		backend: backend,
		log:     log,
		name:    name,
	}
}

// Load returns the zero T with version 0 when nothing is stored yet.
func (r *DocumentRepository[T]) Load(ctx context.Context) (T, int64, error) {
	var doc T

	body, version, err := r.backend.Read(ctx, r.name)
	if err != nil {
		return doc, 0, fmt.Errorf("failed to load %s: %w", r.name, err)
	}
	if len(body) == 0 {
		return doc, version, nil
	}
	if err = json.Unmarshal(body, &doc); err != nil {
		return doc, 0, fmt.Errorf("failed to decode %s: %w", r.name, err)
	}
	return doc, version, nil
}

func (r *DocumentRepository[T]) Save(ctx context.Context, doc T, version int64) (int64, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", r.name, err)
	}

	newVersion, err := r.backend.Write(ctx, r.name, body, version)
	if err != nil {
		return 0, fmt.Errorf("failed to save %s: %w", r.name, err)
	}
	r.log.LogAttrs(ctx, slog.LevelDebug, "document saved",
		slog.String("name", r.name),
		slog.Int64("version", newVersion),
		slog.Int("size", len(body)))
	return newVersion, nil
}

type LedgerRepository struct {
	docs *DocumentRepository[ledger.Document]
}

func NewLedgerRepository(backend Backend, log *slog.Logger) *LedgerRepository {
	return &LedgerRepository{
		docs: NewDocumentRepository[ledger.Document](backend, DocumentLedger, log),
	}
}

func (r *LedgerRepository) Load(ctx context.Context) (*ledger.Document, error) {
	doc, version, err := r.docs.Load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.Accounts == nil {
		doc.Accounts = make(map[string]*ledger.Entry)
	}
	doc.Version = version
	return &doc, nil
}

func (r *LedgerRepository) Save(ctx context.Context, doc *ledger.Document) error {
	version, err := r.docs.Save(ctx, *doc, doc.Version)
	if err != nil {
		return err
	}
	doc.Version = version
	return nil
}

type NotificationRepository struct {
	docs *DocumentRepository[notification.Document]
}

func NewNotificationRepository(backend Backend, log *slog.Logger) *NotificationRepository {
	return &NotificationRepository{
		docs: NewDocumentRepository[notification.Document](
			backend, DocumentNotifications, log),
	}
}

func (r *NotificationRepository) Load(ctx context.Context) (*notification.Document, error) {
	doc, version, err := r.docs.Load(ctx)
	if err != nil {
		return nil, err
	}
	doc.Version = version
	return &doc, nil
}

func (r *NotificationRepository) Save(ctx context.Context, doc *notification.Document) error {
	version, err := r.docs.Save(ctx, *doc, doc.Version)
	if err != nil {
		return err
	}
	doc.Version = version
	return nil
}
