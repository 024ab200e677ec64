package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/parkeat/internal/pkg/util"
	"github.com/RoyceAzure/lab/parkeat/internal/service"
	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/rs/zerolog"
)

var (
	errBadRequest      = errors.New("bad request")
	errUnauthenticated = errors.New("not logged in")
	errItemNotInCart   = errors.New("product is not in cart")
)

// errorCode service error 對應的錯誤碼，未知錯誤一律 500
func errorCode(err error) er.ErrCode {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrCartEmpty),
		errors.Is(err, service.ErrTableCodeRequired),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		return er.BadRequestCode
	case errors.Is(err, errUnauthenticated):
		return er.UnauthenticatedCode
	case errors.Is(err, errItemNotInCart),
		errors.Is(err, service.ErrStoreNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotExist),
		errors.Is(err, service.ErrNotificationNotExist):
		return er.NotFoundCode
	case errors.Is(err, service.ErrOrderNotCancellable),
		errors.Is(err, service.ErrOrderFinished):
		return er.ConflictCode
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return er.UnavailableCode
	default:
		return er.InternalErrorCode
	}
}

// writeError 500 只記 log，不把內部錯誤帶給 client
func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	code := errorCode(err)
	if code == er.InternalErrorCode {
		logger.Error().Err(err).
			Str("request_id", util.GetRequestIDFromContext(r.Context())).
			Str("url", r.URL.Path).
			Msg("request failed")
		api.ErrorJSON(w, int(code), nil, er.ErrStrMap[code])
		return
	}
	api.ErrorJSON(w, int(code), err, er.ErrStrMap[code])
}
