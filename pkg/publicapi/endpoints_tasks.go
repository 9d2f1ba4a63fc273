package publicapi

import (
	"encoding/json"
	"net/http"

	"github.com/duxnet-project/duxnet/pkg/dispatcher"
	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/model"
)

type submitTaskRequest struct {
	dispatcher.SubmitRequest
}

type submitTaskResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Task    model.Task `json:"task"`
}

func (apiServer *APIServer) submitTask(res http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(res, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := req.Context()

	var submitReq submitTaskRequest
	if err := json.NewDecoder(req.Body).Decode(&submitReq); err != nil {
		httpError(res, duxerrors.NewInvalidInput("error decoding submit request: %s", err))
		return
	}

	task, err := apiServer.Node.Dispatcher.Submit(ctx, submitReq.SubmitRequest)
	if err != nil {
		httpError(res, err)
		return
	}

	apiServer.writeJSON(res, submitTaskResponse{
		Success: true,
		Message: "task submitted",
		Task:    task,
	})
}

type getTaskResponse struct {
	Success bool       `json:"success"`
	Task    model.Task `json:"task"`
}

func (apiServer *APIServer) getTask(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	task, err := apiServer.Node.Dispatcher.Get(ctx, req.URL.Query().Get("id"))
	if err != nil {
		httpError(res, err)
		return
	}

	apiServer.writeJSON(res, getTaskResponse{
		Success: true,
		Task:    task,
	})
}
