package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"traveldesk/internal/i18n"
	"traveldesk/internal/model"
	"traveldesk/internal/repository"
	"traveldesk/internal/travel"
	"traveldesk/pkg/pagination"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateDocumentDTO struct {
	UserID         string `json:"user_id"` // operations and admin may file for others
	DocumentType   string `json:"document_type" example:"passport"`
	DocumentNumber string `json:"document_number"`
	IssuingCountry string `json:"issuing_country"`
	CountryCode    string `json:"country_code"`
	IssueDate      Date   `json:"issue_date" swaggertype:"string" example:"2021-05-01"`
	ExpiryDate     Date   `json:"expiry_date" swaggertype:"string" example:"2031-05-01"`
	Notes          string `json:"notes"`
}

type UpdateDocumentDTO struct {
	DocumentType   *string `json:"document_type"`
	DocumentNumber *string `json:"document_number"`
	IssuingCountry *string `json:"issuing_country"`
	CountryCode    *string `json:"country_code"`
	IssueDate      *Date   `json:"issue_date" swaggertype:"string"`
	ExpiryDate     *Date   `json:"expiry_date" swaggertype:"string"`
	Notes          *string `json:"notes"`
}

type DocumentListFilter struct {
	UserID       *uuid.UUID
	DocumentType travel.DocumentType
	Page         int
	Limit        int
}

type DocumentResponse struct {
	ID              string       `json:"id"`
	User            *UserSummary `json:"user"`
	DocumentType    string       `json:"document_type"`
	DocumentNumber  string       `json:"document_number"`
	IssuingCountry  string       `json:"issuing_country"`
	CountryCode     string       `json:"country_code"`
	IssueDate       *string      `json:"issue_date"`
	ExpiryDate      string       `json:"expiry_date"`
	Status          travel.Badge `json:"status"`
	DaysUntilExpiry int          `json:"days_until_expiry"`
	Notes           string       `json:"notes,omitempty"`
	CreatedAt       string       `json:"created_at"`
	UpdatedAt       string       `json:"updated_at"`
}

// --- Interface ---

type DocumentService interface {
	Create(ctx context.Context, actor Actor, req CreateDocumentDTO) (*DocumentResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*DocumentResponse, error)
	List(ctx context.Context, actor Actor, filter DocumentListFilter) ([]DocumentResponse, int64, error)
	// Expiring lists documents that are expired or expire within the warning window.
	Expiring(ctx context.Context, actor Actor, page, limit int) ([]DocumentResponse, int64, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateDocumentDTO) (*DocumentResponse, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type documentService struct {
	tx    repository.TransactionManager
	docs  repository.DocumentRepository
	users repository.UserRepository
	audit repository.AuditRepository
	now   func() time.Time
}

func NewDocumentService(tx repository.TransactionManager, docs repository.DocumentRepository, users repository.UserRepository, audit repository.AuditRepository, now func() time.Time) DocumentService {
	if now == nil {
		now = time.Now
	}
	return &documentService{tx: tx, docs: docs, users: users, audit: audit, now: now}
}

// --- Implementation ---

// managesAll reports whether the actor handles documents of every employee.
func managesAll(actor Actor) bool {
	return actor.Role == travel.RoleAdmin || actor.Role.IsOperations()
}

func (s *documentService) Create(ctx context.Context, actor Actor, req CreateDocumentDTO) (*DocumentResponse, error) {
	ownerID := actor.UserID
	if strings.TrimSpace(req.UserID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(req.UserID))
		if err != nil {
			return nil, travel.ValidationError{Field: "user_id", Message: "user_id must be a valid id"}
		}
		ownerID = parsed
	}
	if ownerID != actor.UserID && !managesAll(actor) {
		return nil, fmt.Errorf("%w: cannot file documents for another employee", ErrForbidden)
	}
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, notFound(err, "user")
	}

	doc := model.EmployeeDocument{
		UserID:         ownerID,
		DocumentType:   travel.DocumentType(strings.TrimSpace(req.DocumentType)),
		DocumentNumber: strings.TrimSpace(req.DocumentNumber),
		IssuingCountry: strings.TrimSpace(req.IssuingCountry),
		CountryCode:    strings.ToUpper(strings.TrimSpace(req.CountryCode)),
		ExpiryDate:     req.ExpiryDate.Time,
		Notes:          strings.TrimSpace(req.Notes),
	}
	if !req.IssueDate.IsZero() {
		issued := req.IssueDate.Time
		doc.IssueDate = &issued
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.docs.Create(txCtx, &doc); err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		return s.writeAudit(txCtx, actor, model.ActionCreateDocument, doc)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, doc.ID)
}

func (s *documentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	res := s.toResponse(ctx, *doc)
	return &res, nil
}

func (s *documentService) List(ctx context.Context, actor Actor, filter DocumentListFilter) ([]DocumentResponse, int64, error) {
	p := pagination.New(filter.Page, filter.Limit)
	repoFilter := repository.DocumentFilter{
		UserID:       filter.UserID,
		DocumentType: filter.DocumentType,
		Offset:       p.Offset,
		Limit:        p.Limit,
	}
	if !managesAll(actor) {
		me := actor.UserID
		repoFilter.UserID = &me
	}
	return s.list(ctx, repoFilter)
}

func (s *documentService) Expiring(ctx context.Context, actor Actor, page, limit int) ([]DocumentResponse, int64, error) {
	p := pagination.New(page, limit)
	cutoff := s.now().UTC().AddDate(0, 0, travel.ExpiringSoonWindowDays)
	repoFilter := repository.DocumentFilter{
		ExpiresBefore: &cutoff,
		Offset:        p.Offset,
		Limit:         p.Limit,
	}
	if !managesAll(actor) {
		me := actor.UserID
		repoFilter.UserID = &me
	}
	return s.list(ctx, repoFilter)
}

func (s *documentService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateDocumentDTO) (*DocumentResponse, error) {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		doc, err := s.load(txCtx, actor, id)
		if err != nil {
			return err
		}

		if req.DocumentType != nil {
			doc.DocumentType = travel.DocumentType(strings.TrimSpace(*req.DocumentType))
		}
		if req.DocumentNumber != nil {
			doc.DocumentNumber = strings.TrimSpace(*req.DocumentNumber)
		}
		if req.IssuingCountry != nil {
			doc.IssuingCountry = strings.TrimSpace(*req.IssuingCountry)
		}
		if req.CountryCode != nil {
			doc.CountryCode = strings.ToUpper(strings.TrimSpace(*req.CountryCode))
		}
		if req.IssueDate != nil {
			if req.IssueDate.IsZero() {
				doc.IssueDate = nil
			} else {
				issued := req.IssueDate.Time
				doc.IssueDate = &issued
			}
		}
		if req.ExpiryDate != nil {
			doc.ExpiryDate = req.ExpiryDate.Time
		}
		if req.Notes != nil {
			doc.Notes = strings.TrimSpace(*req.Notes)
		}
		if err := validateDocument(*doc); err != nil {
			return err
		}

		doc.User = nil
		if err := s.docs.Update(txCtx, doc); err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}
		return s.writeAudit(txCtx, actor, model.ActionUpdateDocument, *doc)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *documentService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		doc, err := s.load(txCtx, actor, id)
		if err != nil {
			return err
		}
		if err := s.docs.Delete(txCtx, id); err != nil {
			return notFound(err, "document")
		}
		return s.writeAudit(txCtx, actor, model.ActionDeleteDocument, *doc)
	})
}

// load fetches a document and enforces ownership for non-operations callers.
func (s *documentService) load(ctx context.Context, actor Actor, id uuid.UUID) (*model.EmployeeDocument, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "document")
	}
	if doc.UserID != actor.UserID && !managesAll(actor) {
		return nil, fmt.Errorf("%w: document %s belongs to another employee", ErrForbidden, id)
	}
	return doc, nil
}

func (s *documentService) reload(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "document")
	}
	res := s.toResponse(ctx, *doc)
	return &res, nil
}

func (s *documentService) list(ctx context.Context, filter repository.DocumentFilter) ([]DocumentResponse, int64, error) {
	docs, total, err := s.docs.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	result := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		result = append(result, s.toResponse(ctx, d))
	}
	return result, total, nil
}

func (s *documentService) writeAudit(ctx context.Context, actor Actor, action string, doc model.EmployeeDocument) error {
	details, _ := json.Marshal(map[string]interface{}{
		"user_id":       doc.UserID.String(),
		"document_type": doc.DocumentType,
		"expiry_date":   formatDate(doc.ExpiryDate),
	})
	userID := actor.UserID
	entry := model.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityID:   doc.ID.String(),
		EntityName: model.ClipEntityName(string(doc.DocumentType) + " " + doc.DocumentNumber),
		Details:    string(details),
	}
	if err := s.audit.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *documentService) toResponse(ctx context.Context, d model.EmployeeDocument) DocumentResponse {
	status, days := travel.ClassifyExpiry(d.ExpiryDate, s.now())
	var issued *string
	if d.IssueDate != nil {
		v := formatDate(*d.IssueDate)
		issued = &v
	}
	return DocumentResponse{
		ID:              d.ID.String(),
		User:            toUserSummary(d.User),
		DocumentType:    string(d.DocumentType),
		DocumentNumber:  d.DocumentNumber,
		IssuingCountry:  d.IssuingCountry,
		CountryCode:     d.CountryCode,
		IssueDate:       issued,
		ExpiryDate:      formatDate(d.ExpiryDate),
		Status:          i18n.Localize(ctx, travel.ClassifyDocument(status)),
		DaysUntilExpiry: days,
		Notes:           d.Notes,
		CreatedAt:       d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func validateDocument(d model.EmployeeDocument) error {
	switch d.DocumentType {
	case travel.DocumentPassport, travel.DocumentVisa:
	default:
		return travel.ValidationError{Field: "document_type", Message: "document_type must be passport or visa"}
	}
	if d.DocumentNumber == "" {
		return travel.ValidationError{Field: "document_number", Message: "document number is required"}
	}
	if d.ExpiryDate.IsZero() {
		return travel.ValidationError{Field: "expiry_date", Message: "expiry date is required"}
	}
	if d.IssueDate != nil && !d.ExpiryDate.After(*d.IssueDate) {
		return travel.ValidationError{Field: "expiry_date", Message: "expiry date must be after issue date"}
	}
	if len(d.CountryCode) > 3 {
		return travel.ValidationError{Field: "country_code", Message: "country code must be an ISO code"}
	}
	return nil
}
