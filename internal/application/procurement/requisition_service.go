package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/procurement"
	"github.com/procurex/backend/internal/domain/shared"
)

// ObjectStorageService abstracts the blob store holding requisition
// documents. Clients upload through presigned URLs; the service only keeps
// the storage key.
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// DocumentUploadResponse carries a presigned upload slot for a requisition
// document
type DocumentUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// RequisitionService handles requisition intake and approval
type RequisitionService struct {
	requisitionRepo procurement.PurchaseRequisitionRepository
	storage         ObjectStorageService
}

// NewRequisitionService creates a new RequisitionService
func NewRequisitionService(requisitionRepo procurement.PurchaseRequisitionRepository) *RequisitionService {
	return &RequisitionService{requisitionRepo: requisitionRepo}
}

// SetObjectStorage sets the blob store used for requisition documents
func (s *RequisitionService) SetObjectStorage(storage ObjectStorageService) {
	s.storage = storage
}

// Create creates a requisition with its lines. With Submit set the
// requisition goes straight into the approval queue.
func (s *RequisitionService) Create(ctx context.Context, req CreateRequisitionRequest) (*RequisitionResponse, error) {
	number, err := s.requisitionRepo.GenerateRequisitionNumber(ctx)
	if err != nil {
		return nil, err
	}

	requisition, err := procurement.NewPurchaseRequisition(number)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if _, err := requisition.AddItem(item.ItemID, item.RequiredQuantity, item.Price, item.VendorIDs); err != nil {
			return nil, err
		}
	}

	if req.DocumentKey != "" {
		if s.storage != nil {
			exists, err := s.storage.ObjectExists(ctx, req.DocumentKey)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, shared.NewDomainError("INVALID_INPUT", "Referenced document was never uploaded")
			}
		}
		requisition.AttachDocument(req.DocumentKey)
	}

	if req.Submit {
		if err := requisition.Submit(); err != nil {
			return nil, err
		}
	}

	if err := s.requisitionRepo.Save(ctx, requisition); err != nil {
		return nil, err
	}

	response := ToRequisitionResponse(requisition)
	return &response, nil
}

// GetByID returns one requisition with its lines
func (s *RequisitionService) GetByID(ctx context.Context, id uuid.UUID) (*RequisitionResponse, error) {
	requisition, err := s.requisitionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToRequisitionResponse(requisition)
	return &response, nil
}

// List returns the requisition page matching the filter. Search matches the
// requisition number.
func (s *RequisitionService) List(ctx context.Context, filter RequisitionListFilter) ([]RequisitionResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	requisitions, err := s.requisitionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.requisitionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RequisitionResponse, len(requisitions))
	for i := range requisitions {
		responses[i] = ToRequisitionResponse(&requisitions[i])
	}
	return responses, total, nil
}

// Decide applies an approval decision to a pending requisition
func (s *RequisitionService) Decide(ctx context.Context, id uuid.UUID, req ApproveRequisitionRequest) (*RequisitionResponse, error) {
	requisition, err := s.requisitionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch procurement.RequisitionStatus(req.Decision) {
	case procurement.RequisitionStatusAccepted:
		err = requisition.Approve()
	case procurement.RequisitionStatusRejected:
		err = requisition.Reject()
	default:
		err = shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown decision %q", req.Decision))
	}
	if err != nil {
		return nil, err
	}

	if err := s.requisitionRepo.SaveWithLock(ctx, requisition); err != nil {
		return nil, err
	}

	response := ToRequisitionResponse(requisition)
	return &response, nil
}

// RequestDocumentUpload returns a presigned slot for uploading a requisition
// document
func (s *RequisitionService) RequestDocumentUpload(ctx context.Context, fileName, contentType string) (*DocumentUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Document storage is not configured")
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "File name is required")
	}

	storageKey := fmt.Sprintf("requisitions/%s/%s", uuid.New(), fileName)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, contentType, 15*time.Minute)
	if err != nil {
		return nil, err
	}

	return &DocumentUploadResponse{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// DocumentDownloadURL returns a presigned download URL for the requisition's
// document
func (s *RequisitionService) DocumentDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	if s.storage == nil {
		return "", shared.NewDomainError("STORAGE_UNAVAILABLE", "Document storage is not configured")
	}

	requisition, err := s.requisitionRepo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if requisition.DocumentURL == "" {
		return "", shared.ErrNotFound
	}

	url, _, err := s.storage.GenerateDownloadURL(ctx, requisition.DocumentURL, 15*time.Minute)
	return url, err
}
