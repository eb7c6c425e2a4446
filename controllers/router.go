package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/pprof"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/wire"
	"github.com/julienschmidt/httprouter"
	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/storage/data"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

var (
	listener ServerLifecycleListener
	server   *http.Server
	// ControllerInjector for binding controllers
	ControllerInjector = wire.NewSet(ConfigureAPI, NewRouter, NewStatusController, NewMetricsController, NewLeadsController, NewQueueController,
		NewQueuesController, NewCheckinController, NewCheckoutController, NewRotationController, NewHeldLeadsController, NewPreviewController,
		NewExecuteController, NewImportController, NewRedistributionJobController, NewAuditController,
		wire.Struct(new(Controllers), "StatusController", "MetricsController", "LeadsController", "QueueController", "QueuesController",
			"CheckinController", "CheckoutController", "RotationController", "HeldLeadsController", "PreviewController", "ExecuteController",
			"ImportController", "RedistributionJobController", "AuditController"))
	// ErrUnsupportedMediaType is returned when client does not provide appropriate `Content-Type` header
	ErrUnsupportedMediaType = errors.New("Media type not supported")
	// ErrNotFound is returned when resource is not found
	ErrNotFound = errors.New("Request resource not found")
	// ErrBadRequest is returned when the request body could not be understood
	ErrBadRequest = errors.New("Bad Request: body could not be parsed")
	// ErrServiceUnavailable is returned when the dispatcher no longer accepts leads
	ErrServiceUnavailable = errors.New("Service is shutting down")
)

const (
	previousPaginationQueryParamKey = "previous"
	nextPaginationQueryParamKey     = "next"
	jsonContentTypeHeaderValue      = "application/json"
	headerContentType               = "Content-Type"
	headerLastModified              = "Last-Modified"
	headerRequestID                 = "X-Request-ID"
	requestIDLogFieldKey            = "requestId"
	anonymousActor                  = "anonymous"
	maxRequestBodySize              = 10 << 20
)

type (
	// Controllers represents factory object containing all the controllers
	Controllers struct {
		StatusController            *StatusController
		MetricsController           *MetricsController
		LeadsController             *LeadsController
		QueueController             *QueueController
		QueuesController            *QueuesController
		CheckinController           *CheckinController
		CheckoutController          *CheckoutController
		RotationController          *RotationController
		HeldLeadsController         *HeldLeadsController
		PreviewController           *PreviewController
		ExecuteController           *ExecuteController
		ImportController            *ImportController
		RedistributionJobController *RedistributionJobController
		AuditController             *AuditController
	}

	// ServerLifecycleListener listens to key server lifecycle error
	ServerLifecycleListener interface {
		StartingServer()
		ServerStartFailed(err error)
		ServerShutdownCompleted()
	}

	// EndpointController represents very basic functionality of an endpoint
	EndpointController interface {
		GetPath() string
		FormatAsRelativeLink(params ...httprouter.Param) string
	}

	// Get represents GET Method Call to a resource
	Get interface {
		Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params)
	}

	// Put represents PUT Method Call to a resource
	Put interface {
		Put(w http.ResponseWriter, r *http.Request, ps httprouter.Params)
	}

	// Post represents POST Method Call to a resource
	Post interface {
		Post(w http.ResponseWriter, r *http.Request, ps httprouter.Params)
	}

	// ListResult is a page of resources with links to the neighbouring pages
	ListResult struct {
		Result interface{}       `json:"result"`
		Pages  map[string]string `json:"pages"`
	}

	idKey struct{}
)

// NotifyOnInterrupt registers channel to get notified when interrupt is captured
var NotifyOnInterrupt = func(stop *chan os.Signal) {
	signal.Notify(*stop, os.Interrupt, syscall.SIGTERM)
}

var getJSON = func(buf *bytes.Buffer, data interface{}) error {
	return json.NewEncoder(buf).Encode(data)
}

func getRequestID(r *http.Request) (requestID string) {
	ctx := r.Context()
	requestID, ok := ctx.Value(idKey{}).(string)
	if !ok {
		requestID = r.Header.Get(headerRequestID)
		if len(requestID) < 1 {
			requestID = xid.New().String()
		}
	}
	return requestID
}

// getRequestIDHandler is similar to hlog.RequestIDHandler just the twist is it expects string as request id and not xid.ID
func getRequestIDHandler(fieldKey, headerName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := getRequestID(r)
			ctx := context.WithValue(r.Context(), idKey{}, requestID)
			r = r.WithContext(ctx)
			log := zerolog.Ctx(ctx)
			if len(fieldKey) > 0 {
				log.UpdateContext(func(c zerolog.Context) zerolog.Context {
					return c.Str(fieldKey, requestID)
				})
			}
			if len(headerName) > 0 {
				w.Header().Set(headerName, requestID)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func logAccess(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("")
}

func getHandler(apiRouter *httprouter.Router) http.Handler {
	// logger first so the request id and the access log land on the request's logger
	return hlog.NewHandler(log.Logger)(getRequestIDHandler(requestIDLogFieldKey, headerRequestID)(hlog.AccessHandler(logAccess)(apiRouter)))
}

// ConfigureAPI configures API Server with interrupt handling
func ConfigureAPI(httpConfig config.HTTPConfig, iListener ServerLifecycleListener, apiRouter *httprouter.Router) *http.Server {
	listener = iListener
	handler := getHandler(apiRouter)
	server = &http.Server{
		Handler:      handler,
		Addr:         httpConfig.GetHTTPListeningAddr(),
		ReadTimeout:  httpConfig.GetHTTPReadTimeout(),
		WriteTimeout: httpConfig.GetHTTPWriteTimeout(),
	}
	go func() {
		log.Info().Str("addr", httpConfig.GetHTTPListeningAddr()).Msg("listening to http")
		iListener.StartingServer()
		if serverListenErr := server.ListenAndServe(); serverListenErr != nil && !errors.Is(serverListenErr, http.ErrServerClosed) {
			iListener.ServerStartFailed(serverListenErr)
			log.Print(serverListenErr)
		}
	}()
	stop := make(chan os.Signal, 1)
	NotifyOnInterrupt(&stop)
	go func() {
		<-stop
		handleExit()
	}()
	return server
}

func handleExit() {
	log.Print("Shutting down the server...")
	serverShutdownContext, shutdownTimeoutCancelFunc := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownTimeoutCancelFunc()
	server.Shutdown(serverShutdownContext)
	log.Print("Server gracefully stopped!")
	listener.ServerShutdownCompleted()
}

// NewRouter returns a new instance of the router
func NewRouter(controllers *Controllers) *httprouter.Router {
	apiRouter := httprouter.New()
	apiRouter.HandlerFunc(http.MethodGet, "/debug/pprof/", pprof.Index)
	apiRouter.HandlerFunc(http.MethodGet, "/debug/pprof/cmdline", pprof.Cmdline)
	apiRouter.HandlerFunc(http.MethodGet, "/debug/pprof/profile", pprof.Profile)
	apiRouter.HandlerFunc(http.MethodGet, "/debug/pprof/symbol", pprof.Symbol)
	apiRouter.HandlerFunc(http.MethodGet, "/debug/pprof/trace", pprof.Trace)
	apiRouter.Handler(http.MethodGet, "/debug/pprof/goroutine", pprof.Handler("goroutine"))
	apiRouter.Handler(http.MethodGet, "/debug/pprof/heap", pprof.Handler("heap"))
	setupAPIRoutes(apiRouter, controllers.StatusController, controllers.MetricsController, controllers.LeadsController, controllers.QueuesController,
		controllers.QueueController, controllers.CheckinController, controllers.CheckoutController, controllers.RotationController,
		controllers.HeldLeadsController, controllers.PreviewController, controllers.ExecuteController, controllers.ImportController,
		controllers.RedistributionJobController, controllers.AuditController)
	return apiRouter
}

func getPagination(req *http.Request) *data.Pagination {
	result := &data.Pagination{}
	originalURL := req.URL
	previous := originalURL.Query().Get(previousPaginationQueryParamKey)
	if len(previous) > 0 {
		prevCursor, err := data.ParseCursor(previous)
		if err == nil {
			result.Previous = prevCursor
		}
	}
	next := originalURL.Query().Get(nextPaginationQueryParamKey)
	if len(next) > 0 {
		nextCursor, err := data.ParseCursor(next)
		if err == nil {
			result.Next = nextCursor
		}
	}
	return result
}

// getPaginationLinks keeps every query param other than the cursors so filters survive paging
func getPaginationLinks(req *http.Request, pagination *data.Pagination) map[string]string {
	links := make(map[string]string)
	if pagination == nil {
		return links
	}
	pageLink := func(key string, cursor *data.Cursor) {
		pageURL := cloneBaseURL(req.URL)
		queries := req.URL.Query()
		queries.Del(previousPaginationQueryParamKey)
		queries.Del(nextPaginationQueryParamKey)
		queries.Set(key, cursor.String())
		pageURL.RawQuery = queries.Encode()
		links[key] = pageURL.String()
	}
	if pagination.Previous != nil {
		pageLink(previousPaginationQueryParamKey, pagination.Previous)
	}
	if pagination.Next != nil {
		pageLink(nextPaginationQueryParamKey, pagination.Next)
	}
	return links
}

func cloneBaseURL(originalURL *url.URL) *url.URL {
	newURL := &url.URL{}
	newURL.Scheme = originalURL.Scheme
	newURL.Host = originalURL.Host
	newURL.Path = originalURL.Path
	newURL.RawPath = originalURL.RawPath
	return newURL
}

func setupAPIRoutes(apiRouter *httprouter.Router, endpoints ...EndpointController) {
	for _, endpoint := range endpoints {
		getEndpoint, ok := endpoint.(Get)
		if ok {
			apiRouter.GET(endpoint.GetPath(), getEndpoint.Get)
		}
		putEndpoint, ok := endpoint.(Put)
		if ok {
			apiRouter.PUT(endpoint.GetPath(), putEndpoint.Put)
		}
		postEndpoint, ok := endpoint.(Post)
		if ok {
			apiRouter.POST(endpoint.GetPath(), postEndpoint.Post)
		}
	}
}

// getActor reads who is acting from the configured header
func getActor(r *http.Request, headerName string) string {
	if len(headerName) > 0 {
		if actor := strings.TrimSpace(r.Header.Get(headerName)); len(actor) > 0 {
			return actor
		}
	}
	return anonymousActor
}

// readJSON decodes the request body into target; it writes the error response itself and returns false
// when the body is unusable
func readJSON(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	contentType := r.Header.Get(headerContentType)
	if len(contentType) > 0 && !strings.HasPrefix(contentType, jsonContentTypeHeaderValue) {
		writeUnsupportedMediaType(w)
		return false
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	if err := decoder.Decode(target); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("could not decode request body")
		writeBadRequest(w)
		return false
	}
	return true
}

func writeErr(w http.ResponseWriter, err error) {
	writeStatus(w, http.StatusInternalServerError, err)
}

func writeNotFound(w http.ResponseWriter) {
	writeStatus(w, http.StatusNotFound, ErrNotFound)
}

func writeBadRequest(w http.ResponseWriter) {
	writeStatus(w, http.StatusBadRequest, ErrBadRequest)
}

func writeUnsupportedMediaType(w http.ResponseWriter) {
	writeStatus(w, http.StatusUnsupportedMediaType, ErrUnsupportedMediaType)
}

func writeStatus(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)
	if err != nil {
		w.Write([]byte(err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	writeJSONWithStatus(w, http.StatusOK, data)
}

func writeJSONWithStatus(w http.ResponseWriter, code int, data interface{}) {
	var buf bytes.Buffer
	err := getJSON(&buf, data)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Add(headerContentType, jsonContentTypeHeaderValue)
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func formatURL(params []httprouter.Param, urlTemplate string, urlParamNames ...string) (result string) {
	paramValues := make(map[string]string)
	for _, paramName := range urlParamNames {
		if val := findParam(params, paramName); len(val) > 0 {
			paramValues[paramName] = val
		}
	}
	result = urlTemplate
	for key, value := range paramValues {
		result = strings.ReplaceAll(result, ":"+key, value)
	}
	return result
}

func findParam(params httprouter.Params, name string) string {
	return params.ByName(name)
}
