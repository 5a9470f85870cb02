package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
	"github.com/birdlab-tech/building-analytics/services/collector/filters"
	"github.com/gin-gonic/gin"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("api")

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	seriesProvider SeriesProvider
	statusProvider StatusProvider
	filterSets     FilterSetStorage
	serviceKey     string
	listenAddr     string
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ServiceKeyApi  string
	ListenAddress  string
	SeriesProvider SeriesProvider
	StatusProvider StatusProvider
	FilterSets     FilterSetStorage
	GeneralHandler func(http.Handler) http.Handler
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.SeriesProvider) {
		return nil, errors.New("nil series provider")
	}
	if check.IfNil(args.StatusProvider) {
		return nil, errors.New("nil status provider")
	}
	if check.IfNil(args.FilterSets) {
		return nil, errors.New("nil filter sets storage")
	}
	if args.GeneralHandler == nil {
		return nil, errors.New("nil http handler")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		seriesProvider: args.SeriesProvider,
		statusProvider: args.StatusProvider,
		filterSets:     args.FilterSets,
		serviceKey:     args.ServiceKeyApi,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
	}

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	api := s.router.Group("/api")

	// Read-only snapshot queries for the dashboard
	api.GET("/status", s.handleStatus)
	api.GET("/labels", s.handleLabels)
	api.GET("/series/:label", s.handleSeries)
	api.GET("/snapshot", s.handleSnapshot)

	// Filter set management; mutations require the service key
	api.GET("/filtersets", s.handleListFilterSets)
	api.GET("/filtersets/:name", s.handleGetFilterSet)

	protected := api.Group("/")
	protected.Use(s.authAPIKey())
	{
		protected.POST("/filtersets", s.handleSaveFilterSet)
		protected.DELETE("/filtersets/:name", s.handleDeleteFilterSet)
	}
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: handler,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()
	return s.filterSets.Close()
}

// --- Middlewares ---

func (s *server) authAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Api-Key")
		if key != s.serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// --- Handlers ---

func (s *server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.statusProvider.Status())
}

func (s *server) handleLabels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"labels": s.seriesProvider.Labels()})
}

func (s *server) handleSeries(c *gin.Context) {
	label := c.Param("label")

	samples, found := s.seriesProvider.Series(label)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown label"})
		return
	}

	c.JSON(http.StatusOK, common.SeriesSnapshot{
		Label:   label,
		Samples: samples,
	})
}

func (s *server) handleSnapshot(c *gin.Context) {
	all := s.seriesProvider.AllSeries()

	snapshots := make([]common.SeriesSnapshot, 0, len(all))
	for _, label := range s.seriesProvider.Labels() {
		samples, found := all[label]
		if !found {
			continue
		}
		snapshots = append(snapshots, common.SeriesSnapshot{
			Label:   label,
			Samples: samples,
		})
	}

	c.JSON(http.StatusOK, gin.H{"series": snapshots})
}

func (s *server) handleListFilterSets(c *gin.Context) {
	sets, err := s.filterSets.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"filterSets": sets})
}

func (s *server) handleGetFilterSet(c *gin.Context) {
	set, err := s.filterSets.Get(c.Request.Context(), c.Param("name"))
	if errors.Is(err, filters.ErrFilterSetNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, set)
}

func (s *server) handleSaveFilterSet(c *gin.Context) {
	var set common.FilterSet
	if err := c.ShouldBindJSON(&set); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if len(set.Name) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty filter set name"})
		return
	}

	err := s.filterSets.Save(c.Request.Context(), set)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Debug("saved filter set", "name", set.Name, "sender", c.Request.RemoteAddr)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleDeleteFilterSet(c *gin.Context) {
	err := s.filterSets.Delete(c.Request.Context(), c.Param("name"))
	if errors.Is(err, filters.ErrFilterSetNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *server) IsInterfaceNil() bool {
	return s == nil
}
