package services

import (
	"context"
	"strings"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
)

// AllRegions lists every region when used as a filter
const AllRegions = "all"

// FacilityService exposes the facility directory to callers
type FacilityService struct {
	directory repositories.FacilityDirectory
	resolver  *FacilityResolver
}

// NewFacilityService creates a new facility service
func NewFacilityService(directory repositories.FacilityDirectory, resolver *FacilityResolver) *FacilityService {
	return &FacilityService{
		directory: directory,
		resolver:  resolver,
	}
}

// ListFacilities returns one page of facilities. An empty region or "all"
// lists every region in directory order. A zero limit returns everything
// from offset on.
func (s *FacilityService) ListFacilities(_ context.Context, filter repositories.FacilityFilter) (*repositories.FacilityPage, error) {
	if filter.Offset < 0 {
		return nil, apperrors.NewValidationError("offset must not be negative")
	}
	if filter.Limit < 0 {
		return nil, apperrors.NewValidationError("limit must not be negative")
	}

	var facilities []entities.Facility
	region := entities.NormalizeRegion(filter.Region)
	if region == "" || region == AllRegions {
		facilities = s.directory.All()
	} else {
		if !s.directory.HasRegion(region) {
			return nil, apperrors.NewInvalidRegionError(filter.Region, s.directory.Regions())
		}
		facilities = s.directory.InRegion(region)
	}

	total := len(facilities)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}

	page := make([]entities.Facility, end-start)
	copy(page, facilities[start:end])

	return &repositories.FacilityPage{
		Facilities: page,
		Total:      total,
		Offset:     filter.Offset,
		Limit:      filter.Limit,
	}, nil
}

// Regions returns the known regions in directory order
func (s *FacilityService) Regions() []string {
	return s.directory.Regions()
}

// CountFacilities returns the size of the directory
func (s *FacilityService) CountFacilities() int {
	return s.directory.Count()
}

// Resolve reports how a facility name resolves without acting on it
func (s *FacilityService) Resolve(nameQuery, regionHint string) entities.ResolveResult {
	return s.resolver.Resolve(nameQuery, regionHint)
}

// Lookup returns the facility of region whose name equals name, ignoring
// case. Donors and requests record the canonical name, so this recovers
// their contact numbers.
func (s *FacilityService) Lookup(region, name string) (entities.Facility, bool) {
	for _, f := range s.directory.InRegion(region) {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return entities.Facility{}, false
}
