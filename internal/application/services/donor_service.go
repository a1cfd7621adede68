package services

import (
	"context"
	"time"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// ChangeNotifier is told after every successful mutation of the registry
// or the ledger.
type ChangeNotifier interface {
	NotifyChanged()
}

// DonorInput is the caller-supplied data for a registration.
type DonorInput struct {
	Name          string `json:"name"`
	BloodType     string `json:"blood_type"`
	Region        string `json:"region"`
	FacilityQuery string `json:"facility"`
	Phone         string `json:"phone"`
}

// DonorService handles donor registration and listing
type DonorService struct {
	directory repositories.FacilityDirectory
	resolver  *FacilityResolver
	registry  repositories.DonorRegistry
	notifier  ChangeNotifier
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewDonorService creates a new donor service. notifier and metrics may be nil.
func NewDonorService(
	directory repositories.FacilityDirectory,
	resolver *FacilityResolver,
	registry repositories.DonorRegistry,
	notifier ChangeNotifier,
	metrics *observability.Metrics,
) *DonorService {
	return &DonorService{
		directory: directory,
		resolver:  resolver,
		registry:  registry,
		notifier:  notifier,
		metrics:   metrics,
		now:       time.Now,
	}
}

// RegisterDonor validates the blood type, then the region, then resolves
// the facility and only then appends the donor.
func (s *DonorService) RegisterDonor(ctx context.Context, in DonorInput) (*entities.Donor, error) {
	ctx, span := observability.StartSpan(ctx, "DonorService.RegisterDonor")
	defer span.End()

	bloodType, err := entities.ParseBloodType(in.BloodType)
	if err != nil {
		return nil, err
	}
	region, err := validateRegion(s.directory, in.Region, true)
	if err != nil {
		return nil, err
	}
	facility, err := s.resolver.ResolveExact(ctx, in.FacilityQuery, region)
	if err != nil {
		return nil, err
	}

	donor, err := entities.NewDonor(in.Name, bloodType, facility, in.Phone, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.registry.Register(ctx, *donor); err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInternalError("failed to register donor", err)
	}

	span.SetAttributes(
		attribute.String("donor.blood_type", string(bloodType)),
		attribute.String("donor.region", region),
	)
	observability.RecordDonorRegistration(ctx, s.metrics, string(bloodType), region)
	observability.LoggerFromContext(ctx).Info().
		Str("donor_id", donor.ID).
		Str("blood_type", string(bloodType)).
		Str("region", region).
		Str("facility", facility.Name).
		Msg("Donor registered")

	if s.notifier != nil {
		s.notifier.NotifyChanged()
	}
	return donor, nil
}

// ListDonors returns every donor in registration order
func (s *DonorService) ListDonors(ctx context.Context) ([]entities.Donor, error) {
	donors, err := s.registry.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list donors", err)
	}
	return donors, nil
}

// CountDonors returns the number of registered donors
func (s *DonorService) CountDonors(ctx context.Context) (int, error) {
	return s.registry.Count(ctx)
}
