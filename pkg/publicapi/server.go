package publicapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/duxnet-project/duxnet/pkg/node"
	"github.com/duxnet-project/duxnet/pkg/system"
)

type APIServerConfig struct {
	// These are TCP connection deadlines and not HTTP timeouts. They don't
	// control the time it takes for our handlers to complete.
	ReadHeaderTimeout time.Duration // the amount of time allowed to read request headers
	ReadTimeout       time.Duration // the maximum duration for reading the entire request, including the body
	WriteTimeout      time.Duration // the maximum duration before timing out writes of the response

	// This represents maximum duration for handlers to complete, or else fail
	// the request with 503 error code.
	RequestHandlerTimeout time.Duration
}

var DefaultAPIServerConfig = &APIServerConfig{
	ReadHeaderTimeout:     10 * time.Second,
	ReadTimeout:           20 * time.Second,
	WriteTimeout:          20 * time.Second,
	RequestHandlerTimeout: 30 * time.Second,
}

// APIServer configures a node's public REST API.
type APIServer struct {
	Node   *node.Node
	Host   string
	Port   int
	Config *APIServerConfig
}

// NewServer returns a new API server for a marketplace node.
func NewServer(host string, port int, n *node.Node) *APIServer {
	return NewServerWithConfig(host, port, n, DefaultAPIServerConfig)
}

func NewServerWithConfig(host string, port int, n *node.Node, config *APIServerConfig) *APIServer {
	return &APIServer{
		Node:   n,
		Host:   host,
		Port:   port,
		Config: config,
	}
}

// GetURI returns the HTTP URI that the server is listening on.
func (apiServer *APIServer) GetURI() string {
	return fmt.Sprintf("http://%s:%d", apiServer.Host, apiServer.Port)
}

// ListenAndServe listens for and serves HTTP requests against the API server.
func (apiServer *APIServer) ListenAndServe(ctx context.Context, cm *system.CleanupManager) error {
	sm := http.NewServeMux()
	sm.Handle("/api/services/register", apiServer.instrument("services_register", apiServer.registerService))
	sm.Handle("/api/services/search", apiServer.instrument("services_search", apiServer.searchServices))
	sm.Handle("/api/services/get", apiServer.instrument("services_get", apiServer.getService))
	sm.Handle("/api/services/deactivate", apiServer.instrument("services_deactivate", apiServer.deactivateService))
	sm.Handle("/api/tasks/submit", apiServer.instrument("tasks_submit", apiServer.submitTask))
	sm.Handle("/api/tasks/get", apiServer.instrument("tasks_get", apiServer.getTask))
	sm.Handle("/api/escrow/create", apiServer.instrument("escrow_create", apiServer.createEscrow))
	sm.Handle("/api/escrow/release", apiServer.instrument("escrow_release", apiServer.releaseEscrow))
	sm.Handle("/api/escrow/refund", apiServer.instrument("escrow_refund", apiServer.refundEscrow))
	sm.Handle("/api/escrow/dispute", apiServer.instrument("escrow_dispute", apiServer.disputeEscrow))
	sm.Handle("/api/escrow/get", apiServer.instrument("escrow_get", apiServer.getEscrow))
	sm.Handle("/api/reputation", apiServer.instrument("reputation", apiServer.getReputation))
	sm.Handle("/api/status", apiServer.instrument("status", apiServer.nodeStatus))
	sm.Handle("/api/stats", apiServer.instrument("stats", apiServer.networkStats))
	sm.Handle("/api/community_fund/stats", apiServer.instrument("community_fund_stats", apiServer.communityFundStats))
	sm.Handle("/version", apiServer.instrument("version", apiServer.version))
	sm.Handle("/healthz", apiServer.instrument("healthz", apiServer.healthz))
	sm.Handle("/livez", apiServer.instrument("livez", apiServer.livez))
	sm.Handle("/metrics", promhttp.Handler())

	srv := http.Server{
		Handler:           sm,
		Addr:              fmt.Sprintf("%s:%d", apiServer.Host, apiServer.Port),
		ReadHeaderTimeout: apiServer.Config.ReadHeaderTimeout,
		ReadTimeout:       apiServer.Config.ReadTimeout,
		WriteTimeout:      apiServer.Config.WriteTimeout,
	}

	log.Debug().Msgf(
		"API server listening for node %s on %s...", apiServer.Node.NodeID, srv.Addr)

	// Cleanup resources when system is done:
	cm.RegisterCallback(func() error {
		return srv.Shutdown(ctx)
	})

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		log.Debug().Msgf(
			"API server closed for node %s on %s.", apiServer.Node.NodeID, srv.Addr)
		return nil // expected error if the server is shut down
	}

	return err
}

func (apiServer *APIServer) instrument(name string, fn http.HandlerFunc) http.Handler {
	// otel handler
	handler := otelhttp.NewHandler(fn, fmt.Sprintf("pkg/publicapi/%s", name))

	// throttling handler
	handler = tollbooth.LimitHandler(
		tollbooth.NewLimiter(
			1000, //nolint:gomnd
			&limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour}),
		handler)

	// timeout handler
	handler = http.TimeoutHandler(handler, apiServer.Config.RequestHandlerTimeout, "Server Timeout!")

	return handler
}
