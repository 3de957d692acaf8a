package service

import (
	"context"
	"path/filepath"
	"strings"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"
	"dashboard/internal/clock"
	"dashboard/internal/model"
	"dashboard/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var allowedDocumentExt = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".xlsx": true,
	".pptx": true,
}

type DocumentResponse struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	UploadedBy string `json:"uploaded_by"`
	UploadedAt string `json:"uploaded_at"`
}

type DocumentContent struct {
	Filename string
	Data     []byte
}

type DocumentService interface {
	Upload(ctx context.Context, id authz.Identity, filename string, content []byte) (DocumentResponse, error)
	List(ctx context.Context) ([]DocumentResponse, error)
	Download(ctx context.Context, documentID string) (DocumentContent, error)
	// Delete is approver only. It removes the record; the stored content stays
	// because other documents or purchase-request images may share it.
	Delete(ctx context.Context, id authz.Identity, documentID string) error
}

type documentService struct {
	tm        repository.TransactionManager
	repo      repository.DocumentRepository
	auditRepo repository.AuditRepository
	blobs     BlobStore
	gate      authz.Gate
	clock     clock.Clock
	log       logrus.FieldLogger
}

func NewDocumentService(tm repository.TransactionManager, repo repository.DocumentRepository, auditRepo repository.AuditRepository, blobs BlobStore, gate authz.Gate, clk clock.Clock, log logrus.FieldLogger) DocumentService {
	return &documentService{tm: tm, repo: repo, auditRepo: auditRepo, blobs: blobs, gate: gate, clock: clk, log: log}
}

func (s *documentService) Upload(ctx context.Context, id authz.Identity, filename string, content []byte) (DocumentResponse, error) {
	filename = strings.TrimSpace(filepath.Base(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return DocumentResponse{}, apperror.Validation("filename is required")
	}
	if ext := strings.ToLower(filepath.Ext(filename)); !allowedDocumentExt[ext] {
		return DocumentResponse{}, apperror.Validation("file type %q is not allowed", ext)
	}
	if len(content) == 0 {
		return DocumentResponse{}, apperror.Validation("file is empty")
	}

	ref, err := s.blobs.Put(ctx, content)
	if err != nil {
		return DocumentResponse{}, passThrough(err, "failed to store document")
	}

	now := clock.Seconds(s.clock)
	doc := model.Document{
		Filename:   filename,
		ContentRef: ref,
		Size:       int64(len(content)),
		UploadedBy: id.Username,
		UploadedAt: now,
	}
	err = s.tm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &doc); err != nil {
			return apperror.Infrastructure(err, "failed to create document")
		}
		return writeAudit(txCtx, s.auditRepo, now, id.Username, model.ActionUploadDocument,
			doc.ID.String(), doc.Filename, map[string]interface{}{"size": doc.Size, "content_ref": ref})
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"username":    id.Username,
		"filename":    doc.Filename,
	}).Info("document uploaded")
	return toDocumentResponse(doc), nil
}

func (s *documentService) List(ctx context.Context) ([]DocumentResponse, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Infrastructure(err, "failed to list documents")
	}
	res := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		res = append(res, toDocumentResponse(d))
	}
	return res, nil
}

func (s *documentService) find(ctx context.Context, documentID string) (*model.Document, error) {
	docID, err := uuid.Parse(documentID)
	if err != nil {
		return nil, apperror.Validation("invalid document id %q", documentID)
	}
	doc, err := s.repo.FindByID(ctx, docID)
	if err != nil {
		return nil, loadErr(err, "document")
	}
	return doc, nil
}

func (s *documentService) Download(ctx context.Context, documentID string) (DocumentContent, error) {
	doc, err := s.find(ctx, documentID)
	if err != nil {
		return DocumentContent{}, err
	}
	data, err := s.blobs.Get(ctx, doc.ContentRef)
	if err != nil {
		return DocumentContent{}, passThrough(err, "failed to read document")
	}
	return DocumentContent{Filename: doc.Filename, Data: data}, nil
}

func (s *documentService) Delete(ctx context.Context, id authz.Identity, documentID string) error {
	if err := s.gate.RequireApprover(id, "delete documents"); err != nil {
		return err
	}

	var doc *model.Document
	err := s.tm.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if doc, err = s.find(txCtx, documentID); err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, doc.ID); err != nil {
			return apperror.Infrastructure(err, "failed to delete document")
		}
		return writeAudit(txCtx, s.auditRepo, clock.Seconds(s.clock), id.Username, model.ActionDeleteDocument,
			doc.ID.String(), doc.Filename, nil)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"document_id": doc.ID, "username": id.Username}).Info("document deleted")
	return nil
}

func toDocumentResponse(d model.Document) DocumentResponse {
	return DocumentResponse{
		ID:         d.ID.String(),
		Filename:   d.Filename,
		Size:       d.Size,
		UploadedBy: d.UploadedBy,
		UploadedAt: d.UploadedAt.UTC().Format(timeLayout),
	}
}
