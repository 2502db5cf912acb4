// Package httputil provides JSON response helpers for the matlayer HTTP API.
//
// # Responses
//
// [WriteJSON] encodes any value with a status code. [WriteError] maps an
// error to a status through its [errors.Code]:
//
//	if err != nil {
//	    httputil.WriteError(w, err)  // INVALID_KIND -> 400, NOT_FOUND -> 404
//	    return
//	}
//	httputil.WriteJSON(w, http.StatusOK, res)
//
// # Requests
//
// [DecodeJSON] reads a bounded request body. An empty body leaves the target
// untouched so optional payloads need no special casing.
//
// [errors.Code]: github.com/matzehuels/matlayer/pkg/errors
package httputil
