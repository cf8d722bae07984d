package docgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docgen/backend/internal/domain/document"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const generatedSubdir = "generated_documents"

// PersistenceError signals that an artifact could not be stored. When
// the metadata insert fails after the file was written, the file is
// removed before the error is returned, so no orphans remain.
type PersistenceError struct {
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// ArtifactPersister writes generated files under the client's base
// folder and records their metadata.
type ArtifactPersister struct {
	data       document.DataPort
	repo       document.GeneratedDocumentRepository
	clientsDir string
	logger     *zap.Logger
}

// NewArtifactPersister creates an artifact persister rooted at
// clientsDir, under which every client's base folder resolves
func NewArtifactPersister(data document.DataPort, repo document.GeneratedDocumentRepository, clientsDir string, logger *zap.Logger) *ArtifactPersister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtifactPersister{data: data, repo: repo, clientsDir: clientsDir, logger: logger}
}

// PersistResult reports where an artifact landed
type PersistResult struct {
	DocumentID uuid.UUID
	// RelativePath is relative to the client's base folder.
	RelativePath string
	AbsolutePath string
}

// Persist writes the bytes under
// <client base>/generated_documents/<project|general>/<fileName> and
// records a generated-document row. A metadata failure deletes the
// file before returning.
func (p *ArtifactPersister) Persist(
	ctx context.Context,
	data []byte,
	clientID uuid.UUID,
	projectID *uuid.UUID,
	fileName string,
	docType document.DocType,
	sourceTemplateID string,
	createdBy string,
) (*PersistResult, error) {
	client, err := p.data.GetClient(ctx, clientID)
	if err != nil {
		return nil, &PersistenceError{Message: "cannot load client", Cause: err}
	}
	if client == nil {
		return nil, &PersistenceError{Message: fmt.Sprintf("client %s not found", clientID)}
	}
	if client.BaseFolderPath == "" {
		return nil, &PersistenceError{Message: fmt.Sprintf("client %s has no base folder", clientID)}
	}

	projectDir := "general"
	if projectID != nil {
		projectDir = strings.ReplaceAll(projectID.String(), "-", "")
	}
	relativePath := filepath.Join(generatedSubdir, projectDir, fileName)
	absolutePath := filepath.Join(p.clientsDir, client.BaseFolderPath, relativePath)

	if err := os.MkdirAll(filepath.Dir(absolutePath), 0755); err != nil {
		return nil, &PersistenceError{Message: "cannot create output directory", Cause: err}
	}
	if err := os.WriteFile(absolutePath, data, 0644); err != nil {
		return nil, &PersistenceError{Message: "cannot write artifact", Cause: err}
	}

	record, err := document.NewGeneratedDocument(
		clientID, projectID, fileName, fileName, relativePath,
		docType, sourceTemplateID, createdBy,
	)
	if err == nil {
		err = p.repo.Save(ctx, record)
	}
	if err != nil {
		if rmErr := os.Remove(absolutePath); rmErr != nil {
			p.logger.Error("orphan artifact could not be removed",
				zap.String("path", absolutePath), zap.Error(rmErr))
		}
		return nil, &PersistenceError{Message: "cannot record artifact metadata", Cause: err}
	}

	p.logger.Info("artifact persisted",
		zap.String("document_id", record.ID.String()),
		zap.String("client_id", clientID.String()),
		zap.String("relative_path", relativePath))

	return &PersistResult{
		DocumentID:   record.ID,
		RelativePath: relativePath,
		AbsolutePath: absolutePath,
	}, nil
}
