package document

import (
	"strings"

	"github.com/docgen/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GeneratedDocument is the metadata record persisted after an artifact
// has been written to disk. It binds the file to its client, project,
// source template and on-disk location.
type GeneratedDocument struct {
	shared.BaseEntity
	ClientID       uuid.UUID
	ProjectID      *uuid.UUID
	DisplayName    string
	FileNameOnDisk string
	// RelativePath is relative to the client's base folder.
	RelativePath     string
	DocumentType     DocType
	SourceTemplateID string
	CreatedBy        string
}

// NewGeneratedDocument creates a new generated document record
func NewGeneratedDocument(
	clientID uuid.UUID,
	projectID *uuid.UUID,
	displayName string,
	fileNameOnDisk string,
	relativePath string,
	docType DocType,
	sourceTemplateID string,
	createdBy string,
) (*GeneratedDocument, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Client ID is required")
	}
	if strings.TrimSpace(fileNameOnDisk) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "File name cannot be empty")
	}
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Invalid document type")
	}

	if strings.TrimSpace(displayName) == "" {
		displayName = fileNameOnDisk
	}

	return &GeneratedDocument{
		BaseEntity:       shared.NewBaseEntity(),
		ClientID:         clientID,
		ProjectID:        projectID,
		DisplayName:      strings.TrimSpace(displayName),
		FileNameOnDisk:   fileNameOnDisk,
		RelativePath:     relativePath,
		DocumentType:     docType,
		SourceTemplateID: sourceTemplateID,
		CreatedBy:        createdBy,
	}, nil
}
