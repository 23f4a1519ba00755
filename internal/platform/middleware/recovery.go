// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/taibuivan/kinora/internal/platform/apperr"
	"github.com/taibuivan/kinora/internal/platform/ctxutil"
	"github.com/taibuivan/kinora/internal/platform/respond"
)

// PanicRecovery turns a handler panic into a 500 INTERNAL_ERROR and logs the
// stack. [http.ErrAbortHandler] is re-raised so net/http aborts the response.
// fallback is used when no request-scoped logger is present; it may be nil.
func PanicRecovery(fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(recovered)
				}

				logger := ctxutil.Logger(request.Context())
				if logger == slog.Default() && fallback != nil {
					logger = fallback
				}
				logger.ErrorContext(request.Context(), "panic_recovered",
					slog.String("panic", fmt.Sprint(recovered)),
					slog.String("stack", string(debug.Stack())),
				)

				respond.JSON(writer, http.StatusInternalServerError, respond.ErrorEnvelope{
					Error: "An unexpected error occurred",
					Code:  apperr.CodeInternal,
				})
			}()

			next.ServeHTTP(writer, request)
		})
	}
}
