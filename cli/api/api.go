package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/oaiiae/huma-contacts/datastores"
	"github.com/oaiiae/huma-contacts/handlers"
	"github.com/oaiiae/huma-contacts/router"
	"github.com/oaiiae/huma-contacts/services"
)

type ServerOptions struct {
	Host              string        `short:"H" doc:"host to listen on"                      default:""`
	Port              string        `short:"p" doc:"port to listen on"                      default:"8888"`
	ReadHeaderTimeout time.Duration `          doc:"time allowed to read request headers"   default:"15s"`
	ShutdownTimeout   time.Duration `          doc:"time allowed to drain running requests" default:"1m"`
}

func NewServer(options *ServerOptions, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              options.Host + ":" + options.Port,
		ReadHeaderTimeout: options.ReadHeaderTimeout,
		Handler:           handler,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

type StoreOptions struct {
	ContactsFile string `doc:"JSON file holding the contacts, empty keeps them in memory" default:"contacts.json"`
}

func NewStore(options *StoreOptions, logger *slog.Logger) datastores.ContactsStore {
	if options.ContactsFile == "" {
		logger.Warn("contacts are kept in memory and lost on exit")
		return datastores.NewContactsInmem()
	}
	logger.Debug("contacts are stored in a file", "path", options.ContactsFile)
	return datastores.NewContactsFile(options.ContactsFile)
}

type RouterOptions struct {
	EndpointsPrefix string `doc:"mount endpoints at a prefix"                            default:"/api"`
	ErrorDetails    bool   `doc:"include internal error details in error responses"     default:"false"`
	CORSOrigins     string `doc:"comma separated origins allowed by CORS, empty disables" default:"*"`
}

func NewRouter(
	options *RouterOptions,
	store datastores.ContactsStore,
	title string,
	version string,
	revision string,
	created string,
	logger *slog.Logger,
	opts ...func(huma.API),
) http.Handler {
	buildinfoMetric := joinQuote("build_info{goversion=", runtime.Version(),
		",title=", title,
		",version=", version,
		",revision=", revision,
		",created=", created,
		"} 1\n")
	metriks := metrics.NewSet()
	return router.New(title, version,
		readiness(store, logger),
		func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, buildinfoMetric)
			metriks.WritePrometheus(w)
			metrics.WriteProcessMetrics(w)
		},
		splitComma(options.CORSOrigins),
		append([]func(huma.API){
			router.OptUseMiddleware(
				ctxlog{}.loggerMiddleware(logger),
				meterRequests(metriks),
				ctxlog{}.recoverMiddleware(logger, options.ErrorDetails),
			),
			router.OptGroup(options.EndpointsPrefix,
				router.OptGroup("/contacts", router.OptAutoRegister(&handlers.Contacts{
					Service:      services.NewContacts(store),
					ErrorHandler: ctxlog{}.errorHandler(logger),
					ErrorDetails: options.ErrorDetails,
				})),
			),
		}, opts...)...,
	)
}

// readiness reports whether the store can be listed.
func readiness(store datastores.ContactsStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := store.List(r.Context())
		if err != nil {
			logger.LogAttrs(r.Context(), slog.LevelWarn, "not ready", slog.Any("err", err))
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		}
	}
}

// ctxlog is a [context.Context] key and acts as a virtual package for operations related to it.
type ctxlog struct{}

// loggerMiddleware returns a middleware that sets a [slog.Logger] in
// the [context.Context] and logs the request after it has terminated.
// Requests without an X-Request-Id header are given one.
func (key ctxlog) loggerMiddleware(parent *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		requestID := ctx.Header("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.SetHeader("X-Request-Id", requestID)
		logger := parent.With("x-request-id", requestID)

		start := time.Now()
		next(huma.WithValue(ctx, key, logger.WithGroup("op").With("id", ctx.Operation().OperationID)))

		logger.LogAttrs(context.Background(), slog.LevelInfo,
			joinSpace(ctx.Operation().Method, ctx.Operation().Path, ctx.Version().Proto),
			slog.String("from", ctx.RemoteAddr()),
			slog.String("ref", ctx.Header("Referer")),
			slog.String("ua", ctx.Header("User-Agent")),
			slog.Int("status", ctx.Status()),
			slog.Duration("dur", time.Since(start)),
		)
	}
}

// recoverMiddleware returns a middleware that recovers and logs the value from panic.
// The response is an internal server error written by [handlers.WriteError].
func (key ctxlog) recoverMiddleware(fallback *slog.Logger, details bool) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			v := recover()
			if v != nil {
				logger, ok := ctx.Context().Value(key).(*slog.Logger)
				if !ok {
					logger = fallback
				}
				logger.LogAttrs(context.Background(), slog.LevelError, "panic occurred", slog.Any("recovered", v))
				handlers.WriteError(ctx, handlers.MapError(&handlers.PanicError{Value: v, Stack: debug.Stack()}, details))
			}
		}()
		next(ctx)
	}
}

// errorHandler returns a function that gets the [slog.Logger] from [context.Context] and logs the error.
func (key ctxlog) errorHandler(fallback *slog.Logger) func(context.Context, error) {
	return func(ctx context.Context, err error) {
		level := slog.LevelError
		attrs := []slog.Attr{slog.Any("err", err)}

		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.GetStatus() / 100 {
			case 5: //nolint: mnd // 5XX HTTP Status Codes
				level = slog.LevelError
			case 4: //nolint: mnd // 4XX HTTP Status Codes
				level = slog.LevelWarn
			case 3: //nolint: mnd // 3XX HTTP Status Codes
				level = slog.LevelInfo
			}
			attrs = append(attrs, slog.Int("status", statusErr.GetStatus()))
		}
		if cause := errors.Unwrap(err); cause != nil {
			attrs = append(attrs, slog.Any("cause", cause))
		}

		logger, ok := ctx.Value(key).(*slog.Logger)
		if !ok {
			logger = fallback
		}
		logger.LogAttrs(context.Background(), level, "error occurred", attrs...)
	}
}

func meterRequests(set *metrics.Set) func(huma.Context, func(huma.Context)) {
	type ref struct {
		*metrics.Counter
		*metrics.PrometheusHistogram
	}

	refs := sync.Map{}
	refsMu := sync.Mutex{}
	buckets := metrics.ExponentialBuckets(1e-3, 5, 6) //nolint: mnd // arbitrary

	return func(ctx huma.Context, next func(huma.Context)) {
		op, start := ctx.Operation(), time.Now()
		next(ctx)

		uid := op.OperationID + http.StatusText(ctx.Status())
		val, ok := refs.Load(uid)
		if !ok {
			refsMu.Lock()
			val, ok = refs.Load(uid)
			if !ok {
				labels := joinQuote("{method=", op.Method, ",path=", op.Path, ",status=", strconv.Itoa(ctx.Status()), "}") //nolint: golines
				val = ref{
					set.NewCounter("http_requests_total" + labels),
					set.NewPrometheusHistogramExt("http_request_duration_seconds"+labels, buckets),
				}
				refs.Store(uid, val)
			}
			refsMu.Unlock()
		}
		valref := val.(ref) //nolint: errcheck // always true
		valref.Counter.Inc()
		valref.PrometheusHistogram.UpdateDuration(start)
	}
}

// splitComma splits s on commas, dropping blank elements.
func splitComma(s string) []string {
	var elems []string
	for elem := range strings.SplitSeq(s, ",") {
		elem = strings.TrimSpace(elem)
		if elem != "" {
			elems = append(elems, elem)
		}
	}
	return elems
}

// joinQuote is [strings.Join] with " as separator.
func joinQuote(elems ...string) string { return strings.Join(elems, `"`) }

// joinSpace is [strings.Join] with space as separator.
func joinSpace(elems ...string) string { return strings.Join(elems, ` `) }
