package lifecycle

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pentapillisuresh/getbid/models"
)

// maxDocumentBytes caps a single upload at 16 MiB.
const maxDocumentBytes = 16 << 20

// UploadDocument stores a file and returns its record. Callers keep only the
// id; it is the opaque foreign key tenders and bids carry.
func (s *Service) UploadDocument(ctx context.Context, fileName, contentType string, data []byte) (*models.Document, error) {
	if len(data) == 0 {
		return nil, Errorf(KindValidation, "document is empty")
	}
	if len(data) > maxDocumentBytes {
		return nil, Errorf(KindValidation, "document exceeds %d bytes", maxDocumentBytes)
	}
	if fileName == "" {
		return nil, Errorf(KindValidation, "file name is required")
	}
	doc := &models.Document{
		ID:          uuid.New(),
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Data:        data,
		CreatedAt:   s.now(),
	}
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}
	s.log.Info("document stored",
		zap.String("document_id", doc.ID.String()),
		zap.String("file_name", fileName),
		zap.Int64("size", doc.SizeBytes))
	return doc, nil
}

// GetDocument returns a stored document with its contents.
func (s *Service) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	return s.store.GetDocument(ctx, id)
}
