package util

import (
	"context"

	"github.com/RoyceAzure/lab/parkeat/internal/constants"
)

// GetRequestIDFromContext 取得 RequestIDMiddleware 放入的 request id，不存在回傳空字串
func GetRequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(constants.RequestIDKey).(string); ok {
		return v
	}
	return ""
}
