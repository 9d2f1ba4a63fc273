package publicapi

import (
	"net/http"

	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/fund"
	"github.com/duxnet-project/duxnet/pkg/model"
	"github.com/duxnet-project/duxnet/pkg/version"
)

type reputationResponse struct {
	Success bool    `json:"success"`
	DID     string  `json:"did"`
	Score   float64 `json:"score"`
}

func (apiServer *APIServer) getReputation(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	did := req.URL.Query().Get("did")
	if did == "" {
		httpError(res, duxerrors.NewInvalidInput("did query parameter is required"))
		return
	}

	apiServer.writeJSON(res, reputationResponse{
		Success: true,
		DID:     did,
		Score:   apiServer.Node.Reputation.Get(ctx, did),
	})
}

type nodeStatusResponse struct {
	Success bool             `json:"success"`
	Status  model.NodeStatus `json:"status"`
}

func (apiServer *APIServer) nodeStatus(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	status, err := apiServer.Node.Status.NodeStatus(ctx)
	if err != nil {
		httpError(res, err)
		return
	}

	apiServer.writeJSON(res, nodeStatusResponse{
		Success: true,
		Status:  status,
	})
}

type networkStatsResponse struct {
	Success bool               `json:"success"`
	Stats   model.NetworkStats `json:"stats"`
}

func (apiServer *APIServer) networkStats(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	stats, err := apiServer.Node.Status.NetworkStats(ctx)
	if err != nil {
		httpError(res, err)
		return
	}

	apiServer.writeJSON(res, networkStatsResponse{
		Success: true,
		Stats:   stats,
	})
}

type communityFundStatsResponse struct {
	Success  bool           `json:"success"`
	Balances []fund.Balance `json:"balances"`
}

func (apiServer *APIServer) communityFundStats(res http.ResponseWriter, req *http.Request) {
	apiServer.writeJSON(res, communityFundStatsResponse{
		Success:  true,
		Balances: apiServer.Node.Fund.Balances(),
	})
}

type versionResponse struct {
	VersionInfo *version.BuildVersionInfo `json:"build_version_info"`
}

func (apiServer *APIServer) version(res http.ResponseWriter, req *http.Request) {
	apiServer.writeJSON(res, versionResponse{
		VersionInfo: version.Get(),
	})
}

func (apiServer *APIServer) healthz(res http.ResponseWriter, req *http.Request) {
	apiServer.writeJSON(res, map[string]string{"status": "OK"})
}

func (apiServer *APIServer) livez(res http.ResponseWriter, req *http.Request) {
	// Extremely simple liveness check (should be fine to be public / no-auth)
	res.WriteHeader(http.StatusOK)
	_, _ = res.Write([]byte("OK"))
}
