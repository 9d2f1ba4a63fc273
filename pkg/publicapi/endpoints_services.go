package publicapi

import (
	"encoding/json"
	"net/http"

	"github.com/duxnet-project/duxnet/pkg/directory"
	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/model"
)

type registerServiceRequest struct {
	directory.RegisterRequest
}

type registerServiceResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Service model.Service `json:"service"`
}

func (apiServer *APIServer) registerService(res http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(res, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := req.Context()

	var registerReq registerServiceRequest
	if err := json.NewDecoder(req.Body).Decode(&registerReq); err != nil {
		httpError(res, duxerrors.NewInvalidInput("error decoding register request: %s", err))
		return
	}

	service, err := apiServer.Node.Directory.Register(ctx, registerReq.RegisterRequest)
	if err != nil {
		httpError(res, err)
		return
	}

	apiServer.writeJSON(res, registerServiceResponse{
		Success: true,
		Message: "service registered",
		Service: service,
	})
}

type searchServicesResponse struct {
	Success  bool            `json:"success"`
	Services []model.Service `json:"services"`
	Count    int             `json:"count"`
}

func (apiServer *APIServer) searchServices(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	services, err := apiServer.Node.Directory.Search(ctx, req.URL.Query().Get("query"))
	if err != nil {
		httpError(res, err)
		return
	}

	apiServer.writeJSON(res, searchServicesResponse{
		Success:  true,
		Services: services,
		Count:    len(services),
	})
}

type getServiceResponse struct {
	Success bool          `json:"success"`
	Service model.Service `json:"service"`
}

func (apiServer *APIServer) getService(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	service, err := apiServer.Node.Directory.Get(ctx, req.URL.Query().Get("id"))
	if err != nil {
		httpError(res, err)
		return
	}

	apiServer.writeJSON(res, getServiceResponse{
		Success: true,
		Service: service,
	})
}

type deactivateServiceRequest struct {
	ServiceID string `json:"service_id"`
}

type deactivateServiceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (apiServer *APIServer) deactivateService(res http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(res, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := req.Context()

	var deactivateReq deactivateServiceRequest
	if err := json.NewDecoder(req.Body).Decode(&deactivateReq); err != nil {
		httpError(res, duxerrors.NewInvalidInput("error decoding deactivate request: %s", err))
		return
	}

	if err := apiServer.Node.Directory.Deactivate(ctx, deactivateReq.ServiceID); err != nil {
		httpError(res, err)
		return
	}

	apiServer.writeJSON(res, deactivateServiceResponse{
		Success: true,
		Message: "service deactivated",
	})
}
