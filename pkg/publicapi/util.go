package publicapi

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/duxnet-project/duxnet/pkg/duxerrors"
)

func (apiServer *APIServer) writeJSON(res http.ResponseWriter, payload interface{}) {
	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(payload); err != nil {
		log.Error().Err(err).Msg("error writing API response")
	}
}

// httpError maps the coded error taxonomy onto an HTTP status and writes the
// structured error body.
func httpError(res http.ResponseWriter, err error) {
	log.Error().Err(err).Send()
	http.Error(res, duxerrors.ErrorToErrorResponse(err), duxerrors.HTTPStatusCode(err))
}
