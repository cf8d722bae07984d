package docgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docgen/backend/internal/domain/document"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type persisterFixture struct {
	data       *fakeDataPort
	repo       *fakeDocumentRepository
	persister  *ArtifactPersister
	clientsDir string
	clientID   uuid.UUID
}

func newPersisterFixture(t *testing.T) *persisterFixture {
	t.Helper()
	f := &persisterFixture{
		data:       newFakeDataPort(),
		repo:       &fakeDocumentRepository{},
		clientsDir: t.TempDir(),
		clientID:   uuid.New(),
	}
	f.data.clients[f.clientID] = &document.Client{
		ID:             f.clientID,
		CompanyName:    "Acme Trading",
		BaseFolderPath: "acme",
	}
	f.persister = NewArtifactPersister(f.data, f.repo, f.clientsDir, nil)
	return f
}

func TestPersist_WritesFileAndMetadata(t *testing.T) {
	f := newPersisterFixture(t)
	payload := []byte("%PDF-1.4 content")

	result, err := f.persister.Persist(context.Background(), payload, f.clientID, nil,
		"Invoice_INV-2026-00001_Acme_20260310.pdf", document.DocTypeFinalInvoice,
		"final_invoice_template.html", "tester")
	require.NoError(t, err)

	wantRel := filepath.Join("generated_documents", "general", "Invoice_INV-2026-00001_Acme_20260310.pdf")
	assert.Equal(t, wantRel, result.RelativePath)
	assert.Equal(t, filepath.Join(f.clientsDir, "acme", wantRel), result.AbsolutePath)

	written, err := os.ReadFile(result.AbsolutePath)
	require.NoError(t, err)
	assert.Equal(t, payload, written)

	require.Len(t, f.repo.saved, 1)
	record := f.repo.saved[0]
	assert.Equal(t, result.DocumentID, record.ID)
	assert.Equal(t, f.clientID, record.ClientID)
	assert.Equal(t, wantRel, record.RelativePath)
	assert.Equal(t, document.DocTypeFinalInvoice, record.DocumentType)
	assert.Equal(t, "final_invoice_template.html", record.SourceTemplateID)
	assert.Equal(t, "tester", record.CreatedBy)
}

func TestPersist_ProjectDirectoryDropsDashes(t *testing.T) {
	f := newPersisterFixture(t)
	projectID := uuid.New()

	result, err := f.persister.Persist(context.Background(), []byte("x"), f.clientID, &projectID,
		"doc.pdf", document.DocTypeProformaInvoice, "", "")
	require.NoError(t, err)

	wantDir := strings.ReplaceAll(projectID.String(), "-", "")
	assert.Equal(t, filepath.Join("generated_documents", wantDir, "doc.pdf"), result.RelativePath)
}

func TestPersist_MetadataFailureRemovesFile(t *testing.T) {
	f := newPersisterFixture(t)
	f.repo.saveErr = errors.New("insert failed")

	_, err := f.persister.Persist(context.Background(), []byte("x"), f.clientID, nil,
		"doc.pdf", document.DocTypeProformaInvoice, "", "")
	require.Error(t, err)
	var persistErr *PersistenceError
	require.ErrorAs(t, err, &persistErr)

	orphan := filepath.Join(f.clientsDir, "acme", "generated_documents", "general", "doc.pdf")
	_, statErr := os.Stat(orphan)
	assert.True(t, os.IsNotExist(statErr), "orphan file should have been removed")
}

func TestPersist_UnknownClient(t *testing.T) {
	f := newPersisterFixture(t)

	_, err := f.persister.Persist(context.Background(), []byte("x"), uuid.New(), nil,
		"doc.pdf", document.DocTypeProformaInvoice, "", "")
	require.Error(t, err)
	var persistErr *PersistenceError
	assert.ErrorAs(t, err, &persistErr)
	assert.Empty(t, f.repo.saved)
}

func TestPersist_ClientWithoutBaseFolder(t *testing.T) {
	f := newPersisterFixture(t)
	f.data.clients[f.clientID].BaseFolderPath = ""

	_, err := f.persister.Persist(context.Background(), []byte("x"), f.clientID, nil,
		"doc.pdf", document.DocTypeProformaInvoice, "", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "base folder")
}

func TestPersist_ClientLookupError(t *testing.T) {
	f := newPersisterFixture(t)
	f.data.clientErr = errors.New("db down")

	_, err := f.persister.Persist(context.Background(), []byte("x"), f.clientID, nil,
		"doc.pdf", document.DocTypeProformaInvoice, "", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "db down")
}
