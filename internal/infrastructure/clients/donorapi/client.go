package donorapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
)

// Client talks to the donor registry REST API.
type Client struct {
	http  *resty.Client
	rpcID atomic.Int64
}

// DonorList is the body of GET /api/donors
type DonorList struct {
	Donors []entities.Donor `json:"donors"`
	Total  int              `json:"total"`
}

// RequestList is the body of GET /api/emergency-requests
type RequestList struct {
	Requests []entities.EmergencyRequest `json:"requests"`
	Total    int                         `json:"total"`
}

// Regions is the body of GET /api/regions
type Regions struct {
	Regions []string `json:"regions"`
	Total   int      `json:"total"`
}

// FacilityQuery filters GET /api/facilities. Zero fields are omitted.
type FacilityQuery struct {
	Region string
	Offset int
	Limit  int
}

// NearbyQuery mirrors the query string of GET /api/donors/nearby.
type NearbyQuery struct {
	BloodType string
	Region    string
	Facility  string
	RadiusKm  float64
	Limit     int
}

type errorBody struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

// ListFacilities pages through the facility directory.
func (c *Client) ListFacilities(ctx context.Context, q FacilityQuery) (*repositories.FacilityPage, error) {
	params := map[string]string{}
	if q.Region != "" {
		params["region"] = q.Region
	}
	if q.Offset > 0 {
		params["offset"] = strconv.Itoa(q.Offset)
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}

	var page repositories.FacilityPage
	if err := c.get(ctx, "/api/facilities", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ResolveFacility resolves a free-text facility name, optionally hinted
// with a region.
func (c *Client) ResolveFacility(ctx context.Context, name, region string) (*entities.ResolveResult, error) {
	params := map[string]string{"name": name}
	if region != "" {
		params["region"] = region
	}

	var res entities.ResolveResult
	if err := c.get(ctx, "/api/facilities/resolve", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListRegions returns the regions in directory order.
func (c *Client) ListRegions(ctx context.Context) (*Regions, error) {
	var out Regions
	if err := c.get(ctx, "/api/regions", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterDonor registers a donor at a facility.
func (c *Client) RegisterDonor(ctx context.Context, in services.DonorInput) (*entities.Donor, error) {
	var donor entities.Donor
	if err := c.post(ctx, "/api/donors", in, &donor); err != nil {
		return nil, err
	}
	return &donor, nil
}

// ListDonors returns every registered donor in registration order.
func (c *Client) ListDonors(ctx context.Context) (*DonorList, error) {
	var out DonorList
	if err := c.get(ctx, "/api/donors", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindNearby returns donors of a blood type near a facility.
func (c *Client) FindNearby(ctx context.Context, q NearbyQuery) (*services.NearbyResult, error) {
	params := map[string]string{
		"blood_type": q.BloodType,
		"facility":   q.Facility,
	}
	if q.Region != "" {
		params["region"] = q.Region
	}
	if q.RadiusKm > 0 {
		params["radius_km"] = strconv.FormatFloat(q.RadiusKm, 'f', -1, 64)
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}

	var out services.NearbyResult
	if err := c.get(ctx, "/api/donors/nearby", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEmergencyRequest files an emergency request.
func (c *Client) CreateEmergencyRequest(ctx context.Context, in services.EmergencyInput) (*services.EmergencyResult, error) {
	var out services.EmergencyResult
	if err := c.post(ctx, "/api/emergency-requests", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEmergencyRequests returns every recorded request in sequence order.
func (c *Client) ListEmergencyRequests(ctx context.Context) (*RequestList, error) {
	var out RequestList
	if err := c.get(ctx, "/api/emergency-requests", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	var failure errorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		SetError(&failure).
		Get(path)
	return checkResponse(resp, err, &failure)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	var failure errorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		SetError(&failure).
		Post(path)
	return checkResponse(resp, err, &failure)
}

// checkResponse turns transport failures and error bodies into AppErrors
// so callers can branch on Type and Code the same way the server does.
func checkResponse(resp *resty.Response, err error, failure *errorBody) error {
	if err != nil {
		return apperrors.NewExternalError("donor api request failed", err)
	}
	if !resp.IsError() {
		return nil
	}

	appErr := &apperrors.AppError{
		Type:    errorTypeForStatus(resp.StatusCode()),
		Code:    apperrors.Code(failure.Code),
		Message: failure.Error,
		Details: failure.Details,
	}
	if appErr.Message == "" {
		appErr.Message = fmt.Sprintf("donor api returned status %d", resp.StatusCode())
	}
	if appErr.Code == "" {
		appErr.Code = apperrors.CodeExternal
	}
	return appErr
}

func errorTypeForStatus(status int) apperrors.ErrorType {
	switch status {
	case http.StatusBadRequest:
		return apperrors.ErrorTypeValidation
	case http.StatusNotFound:
		return apperrors.ErrorTypeNotFound
	case http.StatusConflict:
		return apperrors.ErrorTypeAmbiguous
	case http.StatusBadGateway:
		return apperrors.ErrorTypeExternal
	default:
		return apperrors.ErrorTypeInternal
	}
}
