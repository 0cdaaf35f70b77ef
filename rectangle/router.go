package rectangle

import (
	"context"
	"net/http"
	"time"

	"rectangle-service/rectangle/application"
	"rectangle-service/rectangle/domain"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	routeRectangle = "/api/rectangle"
	routeValidate  = "/api/rectangle/validate"
	routeStats     = "/api/rectangle/stats"
	routeHealth    = "/healthz"
	routeMetrics   = "/metrics"
)

type Options struct {
	Store domain.Store
	// Delay antes de validar cada candidato. Zero só faz sentido em testes.
	Delay time.Duration

	Stats   domain.StatsStore
	Metrics *Metrics
	Logger  logrus.FieldLogger

	// KeyFn identifica o cliente; padrão é o IP remoto.
	KeyFn KeyFunc

	// ValidateEndpoint habilita POST /api/rectangle/validate (valida sem persistir).
	ValidateEndpoint bool

	CORSOrigins []string

	// RateLimit nil desliga o rate limit.
	RateLimit *RateLimitOptions
	Pending   PendingOptions
}

// NewRouter monta as rotas do retângulo com seus middlewares.
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc("", false)
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	h := &handler{
		svc: application.UpdateService{
			Store:   opts.Store,
			Delay:   opts.Delay,
			OnDelay: opts.Metrics.trackPending,
		},
		stats:   opts.Stats,
		metrics: opts.Metrics,
		log:     opts.Logger,
		keyFn:   opts.KeyFn,
	}

	if d, err := opts.Store.Get(context.Background()); err == nil {
		opts.Metrics.setDimensions(d)
	}

	// rate limit por fora: cliente bloqueado não ocupa vaga pendente
	mutating := func(next http.Handler) http.Handler {
		next = PendingMiddleware(opts.Pending)(next)
		if opts.RateLimit != nil {
			rl := *opts.RateLimit
			if rl.KeyFn == nil {
				rl.KeyFn = opts.KeyFn
			}
			next = RateLimitMiddleware(rl)(next)
		}
		return next
	}

	r := mux.NewRouter()
	r.Use(opts.Metrics.TagRoute)

	r.HandleFunc(routeRectangle, h.getRectangle).Methods(http.MethodGet)
	r.Handle(routeRectangle, mutating(http.HandlerFunc(h.postRectangle))).Methods(http.MethodPost)
	if opts.ValidateEndpoint {
		r.Handle(routeValidate, mutating(http.HandlerFunc(h.validateRectangle))).Methods(http.MethodPost)
	}
	r.HandleFunc(routeStats, h.getStats).Methods(http.MethodGet)
	r.HandleFunc(routeHealth, h.health).Methods(http.MethodGet)
	if opts.Metrics != nil {
		r.Handle(routeMetrics, opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	// log e métricas por fora do mux e do CORS: 404, 405 e preflight também
	// ganham X-Request-ID, linha de log e amostra de métrica
	var out http.Handler = CORS(opts.CORSOrigins)(r)
	out = opts.Metrics.Middleware(out)
	return RequestLogMiddleware(opts.Logger)(out)
}
