package rectangle

import (
	"net/http"
	"time"

	"rectangle-service/rectangle/application"
	"rectangle-service/rectangle/infra"
)

// PendingOptions limita quantas atualizações podem esperar o atraso de
// validação ao mesmo tempo. Max <= 0 desliga o limite.
type PendingOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
}

func PendingMiddleware(opts PendingOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	slots := infra.NewUpdateSlots(opts.Max)
	svc := application.PendingService{
		Slots:          slots,
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				requestLogger(r.Context(), nil).
					WithField("in_flight", slots.InFlight()).
					Warn("too many pending rectangle updates")
				writeError(w, opts.RejectStatus, http.StatusText(opts.RejectStatus))
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
