package services

import (
	"context"
	"strings"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// FacilityResolver turns free-text facility names into directory entries.
type FacilityResolver struct {
	directory repositories.FacilityDirectory
}

// NewFacilityResolver creates a resolver over directory
func NewFacilityResolver(directory repositories.FacilityDirectory) *FacilityResolver {
	return &FacilityResolver{directory: directory}
}

// Resolve matches nameQuery case-insensitively as a substring of facility
// names. A known regionHint is searched first; when it yields nothing the
// remaining regions are searched. An empty query matches every facility.
func (r *FacilityResolver) Resolve(nameQuery, regionHint string) entities.ResolveResult {
	needle := strings.ToLower(strings.TrimSpace(nameQuery))
	hint := entities.NormalizeRegion(regionHint)

	if hint != "" && r.directory.HasRegion(hint) {
		if matches := matchIn(r.directory.InRegion(hint), needle); len(matches) > 0 {
			return entities.NewResolveResult(nameQuery, matches)
		}
	}

	var matches []entities.Facility
	for _, region := range r.directory.Regions() {
		if region == hint {
			continue
		}
		matches = append(matches, matchIn(r.directory.InRegion(region), needle)...)
	}
	return entities.NewResolveResult(nameQuery, matches)
}

func matchIn(facilities []entities.Facility, needle string) []entities.Facility {
	var out []entities.Facility
	for _, f := range facilities {
		if strings.Contains(strings.ToLower(f.Name), needle) {
			out = append(out, f)
		}
	}
	return out
}

// ResolveExact resolves nameQuery to exactly one facility.
//
// Matches outside the hinted region are rejected, unique or not: the caller
// named a region and no candidate is in it. Not-found errors list the
// hinted region's facilities (or every facility without a hint) as
// remediation; ambiguity errors carry the candidates.
func (r *FacilityResolver) ResolveExact(ctx context.Context, nameQuery, regionHint string) (entities.Facility, error) {
	_, span := observability.StartSpan(ctx, "FacilityResolver.ResolveExact")
	defer span.End()

	hint := entities.NormalizeRegion(regionHint)
	res := r.Resolve(nameQuery, hint)
	span.SetAttributes(
		attribute.String("facility.query", nameQuery),
		attribute.String("facility.region_hint", hint),
		attribute.String("facility.resolve_status", res.Status.String()),
		attribute.Int("facility.match_count", len(res.Matches)),
	)

	switch res.Status {
	case entities.ResolveAmbiguous:
		if hint == "" || res.Matches[0].Region == hint {
			return entities.Facility{}, apperrors.NewAmbiguousFacilityError(nameQuery, res.Matches, len(res.Matches))
		}
	case entities.ResolveUnique:
		f, _ := res.Facility()
		if hint == "" || f.Region == hint {
			return f, nil
		}
	}
	return entities.Facility{}, apperrors.NewFacilityNotFoundError(nameQuery, r.available(hint))
}

func (r *FacilityResolver) available(region string) []string {
	if region != "" && r.directory.HasRegion(region) {
		return entities.FacilityNames(r.directory.InRegion(region))
	}
	return entities.FacilityNames(r.directory.All())
}

// validateRegion checks that a non-empty region exists in the directory and
// returns its normalized form.
func validateRegion(directory repositories.FacilityDirectory, region string, required bool) (string, error) {
	normalized := entities.NormalizeRegion(region)
	if normalized == "" && !required {
		return "", nil
	}
	if !directory.HasRegion(normalized) {
		return "", apperrors.NewInvalidRegionError(region, directory.Regions())
	}
	return normalized, nil
}
