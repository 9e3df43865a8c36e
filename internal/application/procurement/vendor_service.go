package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/procurement"
)

// VendorService handles vendor management
type VendorService struct {
	vendorRepo procurement.VendorRepository
}

// NewVendorService creates a new VendorService
func NewVendorService(vendorRepo procurement.VendorRepository) *VendorService {
	return &VendorService{vendorRepo: vendorRepo}
}

// Create creates a new vendor
func (s *VendorService) Create(ctx context.Context, req CreateVendorRequest) (*VendorResponse, error) {
	vendor, err := procurement.NewVendor(req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	response := ToVendorResponse(vendor)
	return &response, nil
}

// GetByID returns one vendor
func (s *VendorService) GetByID(ctx context.Context, id uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToVendorResponse(vendor)
	return &response, nil
}

// List returns the vendor page matching the filter. Search matches the
// vendor name.
func (s *VendorService) List(ctx context.Context, filter VendorListFilter) ([]VendorResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)

	vendors, err := s.vendorRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.vendorRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]VendorResponse, len(vendors))
	for i := range vendors {
		responses[i] = ToVendorResponse(&vendors[i])
	}
	return responses, total, nil
}
