package publicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/duxnet-project/duxnet/pkg/directory"
	"github.com/duxnet-project/duxnet/pkg/dispatcher"
	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/escrow"
	"github.com/duxnet-project/duxnet/pkg/fund"
	"github.com/duxnet-project/duxnet/pkg/model"
	"github.com/duxnet-project/duxnet/pkg/version"
)

// APIClient is a utility for interacting with a node's API server.
type APIClient struct {
	BaseURI        string
	DefaultHeaders map[string]string

	Client *http.Client
}

// NewAPIClient returns a new client for a node's API server.
func NewAPIClient(baseURI string) *APIClient {
	return &APIClient{
		BaseURI:        baseURI,
		DefaultHeaders: map[string]string{},

		Client: &http.Client{
			Timeout:   300 * time.Second,
			Transport: otelhttp.NewTransport(nil),
		},
	}
}

// Alive calls the node's API server health check.
func (apiClient *APIClient) Alive(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiClient.BaseURI+"/livez", nil)
	if err != nil {
		return false, nil
	}
	res, err := apiClient.Client.Do(req)
	if err != nil {
		return false, nil
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	return res.StatusCode == http.StatusOK, nil
}

func (apiClient *APIClient) Version(ctx context.Context) (*version.BuildVersionInfo, error) {
	var res versionResponse
	if err := apiClient.get(ctx, "/version", nil, &res); err != nil {
		return nil, err
	}
	return res.VersionInfo, nil
}

func (apiClient *APIClient) RegisterService(
	ctx context.Context, request directory.RegisterRequest) (model.Service, error) {
	var res registerServiceResponse
	if err := apiClient.post(ctx, "/api/services/register", request, &res); err != nil {
		return model.Service{}, err
	}
	return res.Service, nil
}

func (apiClient *APIClient) SearchServices(ctx context.Context, query string) ([]model.Service, error) {
	var res searchServicesResponse
	params := url.Values{"query": []string{query}}
	if err := apiClient.get(ctx, "/api/services/search", params, &res); err != nil {
		return nil, err
	}
	return res.Services, nil
}

func (apiClient *APIClient) GetService(ctx context.Context, id string) (model.Service, error) {
	var res getServiceResponse
	params := url.Values{"id": []string{id}}
	if err := apiClient.get(ctx, "/api/services/get", params, &res); err != nil {
		return model.Service{}, err
	}
	return res.Service, nil
}

func (apiClient *APIClient) DeactivateService(ctx context.Context, id string) error {
	var res deactivateServiceResponse
	return apiClient.post(ctx, "/api/services/deactivate", deactivateServiceRequest{ServiceID: id}, &res)
}

func (apiClient *APIClient) SubmitTask(ctx context.Context, request dispatcher.SubmitRequest) (model.Task, error) {
	var res submitTaskResponse
	if err := apiClient.post(ctx, "/api/tasks/submit", request, &res); err != nil {
		return model.Task{}, err
	}
	return res.Task, nil
}

func (apiClient *APIClient) GetTask(ctx context.Context, id string) (model.Task, error) {
	var res getTaskResponse
	params := url.Values{"id": []string{id}}
	if err := apiClient.get(ctx, "/api/tasks/get", params, &res); err != nil {
		return model.Task{}, err
	}
	return res.Task, nil
}

func (apiClient *APIClient) CreateEscrow(ctx context.Context, request escrow.CreateRequest) (model.Escrow, error) {
	var res createEscrowResponse
	if err := apiClient.post(ctx, "/api/escrow/create", request, &res); err != nil {
		return model.Escrow{}, err
	}
	return res.Escrow, nil
}

func (apiClient *APIClient) ReleaseEscrow(ctx context.Context, id string) (model.Escrow, error) {
	return apiClient.settleEscrow(ctx, "/api/escrow/release", id)
}

func (apiClient *APIClient) RefundEscrow(ctx context.Context, id string) (model.Escrow, error) {
	return apiClient.settleEscrow(ctx, "/api/escrow/refund", id)
}

func (apiClient *APIClient) DisputeEscrow(ctx context.Context, id string) (model.Escrow, error) {
	return apiClient.settleEscrow(ctx, "/api/escrow/dispute", id)
}

func (apiClient *APIClient) settleEscrow(ctx context.Context, api, id string) (model.Escrow, error) {
	var res settleEscrowResponse
	if err := apiClient.post(ctx, api, settleEscrowRequest{EscrowID: id}, &res); err != nil {
		return model.Escrow{}, err
	}
	return res.Escrow, nil
}

func (apiClient *APIClient) GetEscrow(ctx context.Context, id string) (model.Escrow, error) {
	var res getEscrowResponse
	params := url.Values{"id": []string{id}}
	if err := apiClient.get(ctx, "/api/escrow/get", params, &res); err != nil {
		return model.Escrow{}, err
	}
	return res.Escrow, nil
}

func (apiClient *APIClient) Reputation(ctx context.Context, did string) (float64, error) {
	var res reputationResponse
	params := url.Values{"did": []string{did}}
	if err := apiClient.get(ctx, "/api/reputation", params, &res); err != nil {
		return 0, err
	}
	return res.Score, nil
}

func (apiClient *APIClient) NodeStatus(ctx context.Context) (model.NodeStatus, error) {
	var res nodeStatusResponse
	if err := apiClient.get(ctx, "/api/status", nil, &res); err != nil {
		return model.NodeStatus{}, err
	}
	return res.Status, nil
}

func (apiClient *APIClient) NetworkStats(ctx context.Context) (model.NetworkStats, error) {
	var res networkStatsResponse
	if err := apiClient.get(ctx, "/api/stats", nil, &res); err != nil {
		return model.NetworkStats{}, err
	}
	return res.Stats, nil
}

func (apiClient *APIClient) CommunityFundStats(ctx context.Context) ([]fund.Balance, error) {
	var res communityFundStatsResponse
	if err := apiClient.get(ctx, "/api/community_fund/stats", nil, &res); err != nil {
		return nil, err
	}
	return res.Balances, nil
}

func (apiClient *APIClient) post(ctx context.Context, api string, reqData, resData interface{}) error {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(reqData); err != nil {
		return errors.Wrap(err, "publicapi: error encoding request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiClient.BaseURI+api, &body)
	if err != nil {
		return errors.Wrap(err, "publicapi: error creating post request")
	}
	req.Header.Set("Content-Type", "application/json")
	for header, value := range apiClient.DefaultHeaders {
		req.Header.Set(header, value)
	}
	req.Close = true // don't keep connections lying around

	return apiClient.do(req, resData)
}

func (apiClient *APIClient) get(ctx context.Context, api string, params url.Values, resData interface{}) error {
	addr := apiClient.BaseURI + api
	if len(params) > 0 {
		addr += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return errors.Wrap(err, "publicapi: error creating get request")
	}
	for header, value := range apiClient.DefaultHeaders {
		req.Header.Set(header, value)
	}
	req.Close = true

	return apiClient.do(req, resData)
}

func (apiClient *APIClient) do(req *http.Request, resData interface{}) error {
	res, err := apiClient.Client.Do(req)
	if err != nil {
		return errors.Wrap(err, "publicapi: error sending request")
	}
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "publicapi: error reading response body")
	}

	if res.StatusCode != http.StatusOK {
		// the server writes coded errors as a structured body; surface it so
		// callers can branch on the error code
		var errorResponse duxerrors.ErrorResponse
		if err := json.Unmarshal(responseBody, &errorResponse); err == nil && errorResponse.Code != "" {
			return &errorResponse
		}
		return fmt.Errorf("publicapi: request failed with status %d: %s", res.StatusCode, string(responseBody))
	}

	if err := json.Unmarshal(responseBody, resData); err != nil {
		return errors.Wrap(err, "publicapi: error decoding response body")
	}
	return nil
}
