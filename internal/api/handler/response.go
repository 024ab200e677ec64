package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/rj/api"
)

// created api.SuccessJSON 固定回 200，新增資源時改用 201
func created(w http.ResponseWriter, data any) {
	api.JSON(w, http.StatusCreated, api.Response{
		Success: true,
		Data:    data,
	})
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON body 為空時視為 {}
func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
