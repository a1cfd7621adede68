package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownTool is returned by ToolExecutor.Call for names outside the catalogue.
var ErrUnknownTool = errors.New("unknown tool")

// title capitalizes region names. A Caser keeps state, so each call gets its own.
func title(s string) string {
	return cases.Title(language.Und).String(s)
}

// ToolExecutor runs catalogue tools against the services and renders
// their outcome as chat-friendly text.
type ToolExecutor struct {
	donors          *services.DonorService
	matching        *services.MatchingService
	facilities      *services.FacilityService
	validationPhone string
}

// NewToolExecutor creates a new tool executor
func NewToolExecutor(
	donors *services.DonorService,
	matching *services.MatchingService,
	facilities *services.FacilityService,
	validationPhone string,
) *ToolExecutor {
	return &ToolExecutor{
		donors:          donors,
		matching:        matching,
		facilities:      facilities,
		validationPhone: validationPhone,
	}
}

// Tools returns the tool catalogue
func (e *ToolExecutor) Tools() []Tool {
	return toolCatalogue(e.facilities)
}

// Call runs the named tool. Caller mistakes (unknown blood type, region or
// facility) are part of the text result; only faults return an error.
func (e *ToolExecutor) Call(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	var (
		text string
		err  error
	)
	switch name {
	case ToolValidate:
		return e.validationPhone, nil
	case ToolRegisterDonor:
		text, err = e.registerDonor(ctx, args)
	case ToolFindNearbyDonors:
		text, err = e.findNearby(ctx, args)
	case ToolEmergencyRequest:
		text, err = e.emergency(ctx, args)
	case ToolListFacilities:
		text, err = e.listFacilities(ctx, args)
	case ToolListDonors:
		text, err = e.listDonors(ctx)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if err != nil {
		if msg, ok := describeCallerError(err, argString(args, "city")); ok {
			return msg, nil
		}
		return "", err
	}
	return text, nil
}

func (e *ToolExecutor) registerDonor(ctx context.Context, args map[string]interface{}) (string, error) {
	donor, err := e.donors.RegisterDonor(ctx, services.DonorInput{
		Name:          argString(args, "name"),
		BloodType:     argString(args, "blood_type"),
		Region:        argString(args, "city"),
		FacilityQuery: argString(args, "hospital_name"),
		Phone:         argString(args, "phone"),
	})
	if err != nil {
		return "", err
	}
	total, err := e.donors.CountDonors(ctx)
	if err != nil {
		return "", err
	}
	facility, _ := e.facilities.Lookup(donor.Region, donor.FacilityName)

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Successfully registered %s as %s blood donor in %s\n", donor.Name, donor.BloodType, title(donor.Region))
	fmt.Fprintf(&b, "📍 Nearest hospital: %s\n", donor.FacilityName)
	fmt.Fprintf(&b, "📞 Emergency: %s\n", facility.EmergencyContact)
	fmt.Fprintf(&b, "🩸 Blood bank: %s\n", facility.SecondaryContact)
	fmt.Fprintf(&b, "📊 Total donors: %d", total)
	return b.String(), nil
}

func (e *ToolExecutor) findNearby(ctx context.Context, args map[string]interface{}) (string, error) {
	radius, err := argFloat(args, "radius_km")
	if err != nil {
		return "", err
	}
	result, err := e.matching.FindNearbyDonors(ctx, services.NearbyQuery{
		BloodType:     argString(args, "blood_type"),
		Region:        argString(args, "city"),
		FacilityQuery: argString(args, "hospital_name"),
		RadiusKm:      radius,
	})
	if err != nil {
		return "", err
	}

	if result.Total == 0 {
		return fmt.Sprintf("❌ No %s donors found within %gkm of %s in %s",
			result.BloodType, result.RadiusKm, result.Facility.Name, title(result.Facility.Region)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🩸 Found %d %s donors within %gkm of %s:\n\n", result.Total, result.BloodType, result.RadiusKm, result.Facility.Name)
	for i, m := range result.Donors {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, m.Donor.Name, title(m.Donor.Region))
		fmt.Fprintf(&b, "   📍 Hospital: %s\n", m.Donor.FacilityName)
		fmt.Fprintf(&b, "   📏 Distance: %skm\n", formatDistance(m.DistanceKm))
		fmt.Fprintf(&b, "   📞 Phone: %s\n\n", m.Donor.Phone)
	}
	return b.String(), nil
}

func (e *ToolExecutor) emergency(ctx context.Context, args map[string]interface{}) (string, error) {
	urgency := argString(args, "urgency")
	if urgency == "" {
		urgency = defaultUrgency
	}
	result, err := e.matching.CreateEmergencyRequest(ctx, services.EmergencyInput{
		PatientName:   argString(args, "patient_name"),
		BloodType:     argString(args, "blood_type"),
		Region:        argString(args, "city"),
		FacilityQuery: argString(args, "hospital_name"),
		Urgency:       urgency,
	})
	if err != nil {
		return "", err
	}

	req := result.Request
	var b strings.Builder
	fmt.Fprintf(&b, "🚨 EMERGENCY: %s blood request created\n", strings.ToUpper(req.Urgency))
	fmt.Fprintf(&b, "👤 Patient: %s\n", req.PatientName)
	fmt.Fprintf(&b, "🩸 Required: %s blood\n", req.BloodType)
	fmt.Fprintf(&b, "🏥 Hospital: %s, %s\n", req.Facility.Name, title(req.Facility.Region))
	fmt.Fprintf(&b, "📞 Emergency: %s\n", req.Facility.EmergencyContact)
	fmt.Fprintf(&b, "🩸 Blood Bank: %s\n", req.Facility.SecondaryContact)
	fmt.Fprintf(&b, "🆔 Request ID: %d\n\n", req.SequenceID)

	if result.Escalation != nil {
		b.WriteString("❌ No nearby donors found. Expanding search to blood banks...\n")
		fmt.Fprintf(&b, "🏥 Contact blood bank directly: %s", result.Escalation.Contact)
		return b.String(), nil
	}

	fmt.Fprintf(&b, "📍 Found %d nearby compatible donors:\n\n", result.Total)
	for i, m := range result.Donors {
		fmt.Fprintf(&b, "%d. %s - %skm away\n", i+1, m.Donor.Name, formatDistance(m.DistanceKm))
		fmt.Fprintf(&b, "   📍 Near: %s\n", m.Donor.FacilityName)
		fmt.Fprintf(&b, "   📞 Contact: %s\n\n", m.Donor.Phone)
	}
	return b.String(), nil
}

func (e *ToolExecutor) listFacilities(ctx context.Context, args map[string]interface{}) (string, error) {
	region := entities.NormalizeRegion(argString(args, "city"))
	if region == "" {
		region = services.AllRegions
	}

	var b strings.Builder
	if region == services.AllRegions {
		b.WriteString("🏥 Major Hospitals Across India:\n\n")
		for _, r := range e.facilities.Regions() {
			page, err := e.facilities.ListFacilities(ctx, regionFilter(r))
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "📍 %s:\n", strings.ToUpper(r))
			writeFacilities(&b, page.Facilities)
		}
		return b.String(), nil
	}

	page, err := e.facilities.ListFacilities(ctx, regionFilter(region))
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "🏥 Hospitals in %s:\n\n", title(region))
	writeFacilities(&b, page.Facilities)
	b.WriteString("💡 Tip: Use the hospital name when registering as a donor or creating emergency requests!")
	return b.String(), nil
}

func (e *ToolExecutor) listDonors(ctx context.Context) (string, error) {
	donors, err := e.donors.ListDonors(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if len(donors) == 0 {
		b.WriteString("📋 No donors registered yet.\n\n")
		b.WriteString("💡 Use register_blood_donor to add donors:\n")
		fmt.Fprintf(&b, "1. Choose your city from: %s\n", strings.Join(e.facilities.Regions(), ", "))
		b.WriteString("2. Select your nearest hospital\n")
		b.WriteString("3. We'll handle the coordinates automatically!")
		return b.String(), nil
	}

	fmt.Fprintf(&b, "🩸 Registered Blood Donors in India (%d total):\n\n", len(donors))
	for i, d := range donors {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, d.Name, d.BloodType)
		fmt.Fprintf(&b, "   📍 City: %s\n", title(d.Region))
		fmt.Fprintf(&b, "   🏥 Hospital: %s\n", d.FacilityName)
		fmt.Fprintf(&b, "   📞 Phone: %s\n\n", d.Phone)
	}
	return b.String(), nil
}

func writeFacilities(b *strings.Builder, facilities []entities.Facility) {
	for i, f := range facilities {
		fmt.Fprintf(b, "%d. %s\n", i+1, f.Name)
		fmt.Fprintf(b, "   Emergency: %s\n", f.EmergencyContact)
		fmt.Fprintf(b, "   Blood Bank: %s\n\n", f.SecondaryContact)
	}
}

// describeCallerError renders validation and lookup failures for the chat
// client. It reports false for anything else.
func describeCallerError(err error, region string) (string, bool) {
	appErr, ok := apperrors.As(err)
	if !ok {
		return "", false
	}

	switch appErr.Code {
	case apperrors.CodeFacilityNotFound:
		names, _ := appErr.Details.([]string)
		where := "any city"
		if r := entities.NormalizeRegion(region); r != "" {
			where = r
		}
		return fmt.Sprintf("❌ %s in %s. Available hospitals: %s",
			upperFirst(appErr.Message), where, strings.Join(names, ", ")), true
	case apperrors.CodeAmbiguousFacility:
		candidates, _ := appErr.Details.([]entities.Facility)
		labels := make([]string, len(candidates))
		for i, f := range candidates {
			labels[i] = fmt.Sprintf("%s (%s)", f.Name, title(f.Region))
		}
		return fmt.Sprintf("❌ %s. Candidates: %s", upperFirst(appErr.Message), strings.Join(labels, ", ")), true
	case apperrors.CodeInvalidRegion:
		known, _ := appErr.Details.([]string)
		return fmt.Sprintf("❌ City '%s' not found. Available cities: %s", region, strings.Join(known, ", ")), true
	case apperrors.CodeInvalidBloodType:
		accepted, _ := appErr.Details.([]string)
		return fmt.Sprintf("❌ %s. Accepted blood types: %s", upperFirst(appErr.Message), strings.Join(accepted, ", ")), true
	}
	if appErr.Type == apperrors.ErrorTypeValidation {
		return "❌ " + upperFirst(appErr.Message), true
	}
	return "", false
}

func regionFilter(region string) repositories.FacilityFilter {
	return repositories.FacilityFilter{Region: region}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatDistance rounds to two decimals without trailing zeros.
func formatDistance(km float64) string {
	return strconv.FormatFloat(math.Round(km*100)/100, 'f', -1, 64)
}

func argString(args map[string]interface{}, key string) string {
	switch v := args[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// argFloat reads an optional numeric argument. JSON numbers and numeric
// strings are both accepted.
func argFloat(args map[string]interface{}, key string) (*float64, error) {
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, apperrors.NewValidationError(key + " must be a number")
		}
		return &f, nil
	default:
		return nil, apperrors.NewValidationError(key + " must be a number")
	}
}
