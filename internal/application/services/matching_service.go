package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/providers"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/config"
	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// NearbyQuery asks for donors of a blood type around a facility.
// A nil RadiusKm selects the default radius; a zero Limit the default limit.
type NearbyQuery struct {
	BloodType     string
	Region        string
	FacilityQuery string
	RadiusKm      *float64
	Limit         int
}

// NearbyResult holds the closest donors. Total counts every donor in range,
// Donors is truncated to the limit.
type NearbyResult struct {
	Facility  entities.Facility     `json:"facility"`
	BloodType entities.BloodType    `json:"blood_type"`
	RadiusKm  float64               `json:"radius_km"`
	Total     int                   `json:"total"`
	Donors    []entities.DonorMatch `json:"donors"`
}

// EmergencyInput is the caller-supplied data for an emergency request.
type EmergencyInput struct {
	PatientName   string `json:"patient_name"`
	BloodType     string `json:"blood_type"`
	Region        string `json:"region"`
	FacilityQuery string `json:"facility"`
	Urgency       string `json:"urgency"`
}

// EmergencyResult is the recorded request with the donors found within the
// emergency radius. Escalation is set when nobody was found.
type EmergencyResult struct {
	Request    entities.EmergencyRequest `json:"request"`
	RadiusKm   float64                   `json:"radius_km"`
	Total      int                       `json:"total"`
	Donors     []entities.DonorMatch     `json:"donors"`
	Escalation *entities.Escalation      `json:"escalation,omitempty"`
}

// MatchingService answers nearby-donor queries and runs the emergency
// request workflow.
type MatchingService struct {
	directory repositories.FacilityDirectory
	resolver  *FacilityResolver
	registry  repositories.DonorRegistry
	ledger    repositories.RequestLedger
	eventBus  providers.EventBus
	notifier  ChangeNotifier
	metrics   *observability.Metrics
	cfg       config.MatchingConfig
	now       func() time.Time
}

// NewMatchingService creates a new matching service. eventBus, notifier and
// metrics may be nil.
func NewMatchingService(
	directory repositories.FacilityDirectory,
	resolver *FacilityResolver,
	registry repositories.DonorRegistry,
	ledger repositories.RequestLedger,
	eventBus providers.EventBus,
	notifier ChangeNotifier,
	metrics *observability.Metrics,
	cfg config.MatchingConfig,
) *MatchingService {
	return &MatchingService{
		directory: directory,
		resolver:  resolver,
		registry:  registry,
		ledger:    ledger,
		eventBus:  eventBus,
		notifier:  notifier,
		metrics:   metrics,
		cfg:       cfg,
		now:       time.Now,
	}
}

// FindNearbyDonors resolves the facility and returns compatible donors
// within the radius, closest first.
func (s *MatchingService) FindNearbyDonors(ctx context.Context, q NearbyQuery) (*NearbyResult, error) {
	ctx, span := observability.StartSpan(ctx, "MatchingService.FindNearbyDonors")
	defer span.End()

	bloodType, err := entities.ParseBloodType(q.BloodType)
	if err != nil {
		return nil, err
	}
	region, err := validateRegion(s.directory, q.Region, false)
	if err != nil {
		return nil, err
	}

	radius := s.cfg.DefaultRadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, apperrors.NewValidationError("radius_km must be a finite number")
	}
	if radius < 0 {
		return nil, apperrors.NewValidationError("radius_km must not be negative")
	}
	limit := q.Limit
	if limit < 0 {
		return nil, apperrors.NewValidationError("limit must not be negative")
	}
	if limit == 0 {
		limit = s.cfg.NearbyLimit
	}

	facility, err := s.resolver.ResolveExact(ctx, q.FacilityQuery, region)
	if err != nil {
		return nil, err
	}

	matches, err := s.registry.Query(ctx, bloodType, facility.Location, radius)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInternalError("failed to query donors", err)
	}

	span.SetAttributes(
		attribute.String("donor.blood_type", string(bloodType)),
		attribute.String("facility.name", facility.Name),
		attribute.Float64("search.radius_km", radius),
		attribute.Int("search.total", len(matches)),
	)
	observability.RecordNearbySearch(ctx, s.metrics, string(bloodType), len(matches) > 0)

	return &NearbyResult{
		Facility:  facility,
		BloodType: bloodType,
		RadiusKm:  radius,
		Total:     len(matches),
		Donors:    truncate(matches, limit),
	}, nil
}

// CreateEmergencyRequest records an emergency request and searches the
// emergency radius around the facility. Nothing is recorded when
// validation or resolution fails.
func (s *MatchingService) CreateEmergencyRequest(ctx context.Context, in EmergencyInput) (*EmergencyResult, error) {
	ctx, span := observability.StartSpan(ctx, "MatchingService.CreateEmergencyRequest")
	defer span.End()

	bloodType, err := entities.ParseBloodType(in.BloodType)
	if err != nil {
		return nil, err
	}
	region, err := validateRegion(s.directory, in.Region, false)
	if err != nil {
		return nil, err
	}
	facility, err := s.resolver.ResolveExact(ctx, in.FacilityQuery, region)
	if err != nil {
		return nil, err
	}

	draft, err := entities.NewEmergencyRequest(in.PatientName, bloodType, facility, in.Urgency, s.now())
	if err != nil {
		return nil, err
	}

	radius := s.cfg.EmergencyRadiusKm
	matches, err := s.registry.Query(ctx, bloodType, facility.Location, radius)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInternalError("failed to query donors", err)
	}

	request, err := s.ledger.Append(ctx, *draft)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInternalError("failed to record emergency request", err)
	}

	result := &EmergencyResult{
		Request:  request,
		RadiusKm: radius,
		Total:    len(matches),
		Donors:   truncate(matches, s.cfg.EmergencyLimit),
	}
	if len(matches) == 0 {
		result.Escalation = &entities.Escalation{
			Reason:       entities.EscalationReasonNoDonors,
			Message:      fmt.Sprintf("No %s donors within %gkm of %s. Contact the blood bank directly.", bloodType, radius, facility.Name),
			FacilityName: facility.Name,
			Contact:      facility.SecondaryContact,
		}
	}

	span.SetAttributes(
		attribute.Int("emergency.sequence_id", request.SequenceID),
		attribute.String("emergency.urgency", request.Urgency),
		attribute.Int("emergency.match_count", len(matches)),
	)
	observability.RecordEmergencyRequest(ctx, s.metrics, string(bloodType), facility.Region, result.Escalation != nil)

	logger := observability.LoggerFromContext(ctx)
	logger.Info().
		Int("sequence_id", request.SequenceID).
		Str("blood_type", string(bloodType)).
		Str("region", facility.Region).
		Str("facility", facility.Name).
		Str("urgency", request.Urgency).
		Int("matches", len(matches)).
		Msg("Emergency request recorded")

	s.publish(ctx, &request, len(matches))
	if s.notifier != nil {
		s.notifier.NotifyChanged()
	}
	return result, nil
}

// publish announces the request on the global and regional channels.
// Failures are logged; the request is already recorded.
func (s *MatchingService) publish(ctx context.Context, request *entities.EmergencyRequest, matchCount int) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewEmergencyEvent(request, matchCount)
	for _, channel := range []string{
		providers.EventChannelEmergencies,
		providers.GetRegionalChannel(request.Region),
	} {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Str("channel", channel).
				Int("sequence_id", request.SequenceID).
				Msg("Failed to publish emergency event")
		}
	}
}

// ListRequests returns the ledger in sequence order
func (s *MatchingService) ListRequests(ctx context.Context) ([]entities.EmergencyRequest, error) {
	requests, err := s.ledger.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list emergency requests", err)
	}
	return requests, nil
}

// CountRequests returns the number of recorded emergency requests
func (s *MatchingService) CountRequests(ctx context.Context) (int, error) {
	return s.ledger.Count(ctx)
}

func truncate(matches []entities.DonorMatch, limit int) []entities.DonorMatch {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
