package publicapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/escrow"
	"github.com/duxnet-project/duxnet/pkg/model"
)

type createEscrowRequest struct {
	escrow.CreateRequest
}

type createEscrowResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Escrow  model.Escrow `json:"escrow"`
}

func (apiServer *APIServer) createEscrow(res http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(res, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := req.Context()

	var createReq createEscrowRequest
	if err := json.NewDecoder(req.Body).Decode(&createReq); err != nil {
		httpError(res, duxerrors.NewInvalidInput("error decoding escrow request: %s", err))
		return
	}

	opened, err := apiServer.Node.Escrow.Create(ctx, createReq.CreateRequest)
	if err != nil {
		httpError(res, err)
		return
	}

	apiServer.writeJSON(res, createEscrowResponse{
		Success: true,
		Message: "escrow created",
		Escrow:  opened,
	})
}

type settleEscrowRequest struct {
	EscrowID string `json:"escrow_id"`
}

type settleEscrowResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Escrow  model.Escrow `json:"escrow"`
}

func (apiServer *APIServer) releaseEscrow(res http.ResponseWriter, req *http.Request) {
	apiServer.settleEscrow(res, req, apiServer.Node.Escrow.Release, "escrow released")
}

func (apiServer *APIServer) refundEscrow(res http.ResponseWriter, req *http.Request) {
	apiServer.settleEscrow(res, req, apiServer.Node.Escrow.Refund, "escrow refunded")
}

func (apiServer *APIServer) disputeEscrow(res http.ResponseWriter, req *http.Request) {
	apiServer.settleEscrow(res, req, apiServer.Node.Escrow.Dispute, "escrow disputed")
}

// settleEscrow is the shared body of release, refund and dispute. Settling an
// already settled escrow reports the no-op with a 200 rather than failing, so
// retried settlement calls are safe.
func (apiServer *APIServer) settleEscrow(
	res http.ResponseWriter,
	req *http.Request,
	settle func(context.Context, string) error,
	message string,
) {
	if req.Method != http.MethodPost {
		http.Error(res, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := req.Context()

	var settleReq settleEscrowRequest
	if err := json.NewDecoder(req.Body).Decode(&settleReq); err != nil {
		httpError(res, duxerrors.NewInvalidInput("error decoding escrow request: %s", err))
		return
	}

	if err := settle(ctx, settleReq.EscrowID); err != nil {
		if duxerrors.IsAlreadySettled(err) {
			current, getErr := apiServer.Node.Escrow.Get(ctx, settleReq.EscrowID)
			if getErr != nil {
				httpError(res, getErr)
				return
			}
			apiServer.writeJSON(res, settleEscrowResponse{
				Success: true,
				Message: "escrow already settled",
				Escrow:  current,
			})
			return
		}
		httpError(res, err)
		return
	}

	settled, err := apiServer.Node.Escrow.Get(ctx, settleReq.EscrowID)
	if err != nil {
		httpError(res, err)
		return
	}

	apiServer.writeJSON(res, settleEscrowResponse{
		Success: true,
		Message: message,
		Escrow:  settled,
	})
}

type getEscrowResponse struct {
	Success bool         `json:"success"`
	Escrow  model.Escrow `json:"escrow"`
}

func (apiServer *APIServer) getEscrow(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	current, err := apiServer.Node.Escrow.Get(ctx, req.URL.Query().Get("id"))
	if err != nil {
		httpError(res, err)
		return
	}

	apiServer.writeJSON(res, getEscrowResponse{
		Success: true,
		Escrow:  current,
	})
}
