package docgen

import (
	"context"
	"fmt"
	"sync"

	"github.com/docgen/backend/internal/domain/document"
	"github.com/google/uuid"
)

// fakeSettingsStore is an in-memory document.SettingsStore with the
// same compare-and-set semantics as the database-backed one.
type fakeSettingsStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	casErr error
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{values: make(map[string]string)}
}

func (s *fakeSettingsStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *fakeSettingsStore) SetIfCAS(_ context.Context, key string, expected *string, newValue string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.casErr != nil {
		return false, s.casErr
	}
	current, exists := s.values[key]
	if expected == nil {
		if exists {
			return false, nil
		}
		s.values[key] = newValue
		return true, nil
	}
	if !exists || current != *expected {
		return false, nil
	}
	s.values[key] = newValue
	return true, nil
}

func (s *fakeSettingsStore) value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// fakeDataPort is an in-memory document.DataPort
type fakeDataPort struct {
	companies    map[uuid.UUID]*document.Company
	personnel    map[uuid.UUID][]document.Personnel
	clients      map[uuid.UUID]*document.Client
	contacts     map[uuid.UUID][]document.Contact
	countries    map[uuid.UUID]*document.Country
	cities       map[uuid.UUID]*document.City
	projects     map[uuid.UUID]*document.Project
	products     map[uuid.UUID]*document.Product
	links        []document.ProductLink
	translations map[uuid.UUID][]document.ProductTranslation
	media        map[uuid.UUID][]document.MediaLink
	notes        map[string]string

	clientErr error
	mediaErr  error
}

func newFakeDataPort() *fakeDataPort {
	return &fakeDataPort{
		companies:    make(map[uuid.UUID]*document.Company),
		personnel:    make(map[uuid.UUID][]document.Personnel),
		clients:      make(map[uuid.UUID]*document.Client),
		contacts:     make(map[uuid.UUID][]document.Contact),
		countries:    make(map[uuid.UUID]*document.Country),
		cities:       make(map[uuid.UUID]*document.City),
		projects:     make(map[uuid.UUID]*document.Project),
		products:     make(map[uuid.UUID]*document.Product),
		translations: make(map[uuid.UUID][]document.ProductTranslation),
		media:        make(map[uuid.UUID][]document.MediaLink),
		notes:        make(map[string]string),
	}
}

func (p *fakeDataPort) GetCompany(_ context.Context, companyID uuid.UUID) (*document.Company, error) {
	return p.companies[companyID], nil
}

func (p *fakeDataPort) GetPersonnelForCompany(_ context.Context, companyID uuid.UUID) ([]document.Personnel, error) {
	return p.personnel[companyID], nil
}

func (p *fakeDataPort) GetClient(_ context.Context, clientID uuid.UUID) (*document.Client, error) {
	if p.clientErr != nil {
		return nil, p.clientErr
	}
	return p.clients[clientID], nil
}

func (p *fakeDataPort) GetContactsForClient(_ context.Context, clientID uuid.UUID, primaryOnly *bool) ([]document.Contact, error) {
	all := p.contacts[clientID]
	if primaryOnly == nil {
		return all, nil
	}
	var filtered []document.Contact
	for _, c := range all {
		if c.IsPrimaryForClient == *primaryOnly {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (p *fakeDataPort) GetCountry(_ context.Context, countryID uuid.UUID) (*document.Country, error) {
	return p.countries[countryID], nil
}

func (p *fakeDataPort) GetCity(_ context.Context, cityID uuid.UUID) (*document.City, error) {
	return p.cities[cityID], nil
}

func (p *fakeDataPort) GetProject(_ context.Context, projectID uuid.UUID) (*document.Project, error) {
	return p.projects[projectID], nil
}

func (p *fakeDataPort) GetProduct(_ context.Context, productID uuid.UUID) (*document.Product, error) {
	return p.products[productID], nil
}

func (p *fakeDataPort) GetProductsForClientOrProject(_ context.Context, clientID uuid.UUID, projectID *uuid.UUID) ([]document.ProductLink, error) {
	var out []document.ProductLink
	for _, link := range p.links {
		if link.ClientID != clientID {
			continue
		}
		if projectID != nil && link.ProjectID != nil && *link.ProjectID != *projectID {
			continue
		}
		out = append(out, link)
	}
	return out, nil
}

func (p *fakeDataPort) GetProductLink(_ context.Context, linkID uuid.UUID) (*document.ProductLink, error) {
	for i := range p.links {
		if p.links[i].ID == linkID {
			return &p.links[i], nil
		}
	}
	return nil, nil
}

func (p *fakeDataPort) GetProductTranslations(_ context.Context, productID uuid.UUID, targetLanguageCode string) ([]document.ProductTranslation, error) {
	var out []document.ProductTranslation
	for _, t := range p.translations[productID] {
		if t.LanguageCode == targetLanguageCode {
			out = append(out, t)
		}
	}
	return out, nil
}

func (p *fakeDataPort) GetMediaLinksForProduct(_ context.Context, productID uuid.UUID) ([]document.MediaLink, error) {
	if p.mediaErr != nil {
		return nil, p.mediaErr
	}
	return p.media[productID], nil
}

func (p *fakeDataPort) GetClientDocumentNotes(_ context.Context, clientID uuid.UUID, docType document.DocType, languageCode string) (string, error) {
	return p.notes[noteKey(clientID, docType, languageCode)], nil
}

func noteKey(clientID uuid.UUID, docType document.DocType, lang string) string {
	return fmt.Sprintf("%s|%s|%s", clientID, docType, lang)
}

var _ document.SettingsStore = (*fakeSettingsStore)(nil)
var _ document.DataPort = (*fakeDataPort)(nil)

// fakeDocumentRepository records saved metadata in memory
type fakeDocumentRepository struct {
	mu      sync.Mutex
	saved   []*document.GeneratedDocument
	saveErr error
}

func (r *fakeDocumentRepository) Save(_ context.Context, doc *document.GeneratedDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, doc)
	return nil
}

func (r *fakeDocumentRepository) FindByID(_ context.Context, id uuid.UUID) (*document.GeneratedDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.saved {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepository) FindByClient(_ context.Context, clientID uuid.UUID) ([]document.GeneratedDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []document.GeneratedDocument
	for _, d := range r.saved {
		if d.ClientID == clientID {
			out = append(out, *d)
		}
	}
	return out, nil
}

var _ document.GeneratedDocumentRepository = (*fakeDocumentRepository)(nil)
