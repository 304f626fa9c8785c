package main

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pathnet"
	"pathnet/internal/config"
	"pathnet/internal/pathsource"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve path network queries over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Get()
			if err != nil {
				return err
			}

			logger := setupLogging(cfg.LogLevel)
			network, err := buildNetwork(cfg, logger)
			if err != nil {
				return err
			}
			if network.IsBuilt() {
				if _, err := network.FindDisconnectedEnds(); err != nil {
					return err
				}
			} else {
				logger.Info().Msg("no path file configured, POST /rebuildNetwork to load paths")
			}

			gin.SetMode(gin.ReleaseMode)
			srv := newServer(cfg, network, logger)

			logger.Info().Str("listen", cfg.Listen).Msg("server starting")
			return srv.router().Run(cfg.Listen)
		},
	}
}

// server guards the current network. Rebuilds build a fresh network and
// swap it in, so queries never observe a half-built one.
type server struct {
	cfg    config.Config
	log    zerolog.Logger
	mu     sync.RWMutex
	net    *pathnet.Network
	netOpt []pathnet.Option

	// the network's random source is not safe for concurrent use
	pickMu sync.Mutex
}

func newServer(cfg config.Config, network *pathnet.Network, logger zerolog.Logger) *server {
	return &server{cfg: cfg, log: logger, net: network, netOpt: networkOptions(cfg, logger)}
}

func (s *server) network() *pathnet.Network {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.net
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware())

	r.GET("/health", s.healthHandler)
	r.POST("/rebuildNetwork", s.rebuildHandler)
	r.GET("/closestNode", s.closestNodeHandler)
	r.GET("/closestPoint", s.closestPointHandler)
	r.GET("/closebyEnds", s.closebyEndsHandler)
	r.POST("/nextPath", s.nextPathHandler)
	r.POST("/route", s.routeHandler)
	r.GET("/disconnected", s.disconnectedHandler)
	r.GET("/networkLines", s.networkLinesHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// writeError maps the network's error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, pathnet.ErrUnbuiltNetwork):
		status, code = http.StatusServiceUnavailable, "unbuilt_network"
	case errors.Is(err, pathnet.ErrNoContinuation):
		status, code = http.StatusNotFound, "no_continuation"
	case errors.Is(err, pathnet.ErrNoMatchingType):
		status, code = http.StatusConflict, "no_matching_type"
	case errors.Is(err, pathnet.ErrNoRoute):
		status, code = http.StatusNotFound, "no_route"
	case errors.Is(err, pathnet.ErrInvalidPath),
		errors.Is(err, pathnet.ErrIndexOutOfRange),
		errors.Is(err, pathnet.ErrNullNode),
		errors.Is(err, pathnet.ErrUnknownVehicleType):
		status, code = http.StatusBadRequest, "invalid_argument"
	}
	c.JSON(status, gin.H{"success": false, "error": code, "message": err.Error()})
}

func (s *server) healthHandler(c *gin.Context) {
	network := s.network()

	status := "ready"
	numPaths := 0
	if paths, err := network.Paths(); err == nil {
		numPaths = len(paths)
	} else {
		status = "waiting for network"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"built":    network.IsBuilt(),
		"numPaths": numPaths,
	})
}

type rebuildRequest struct {
	Paths        []pathsource.PathSpec `json:"paths"`
	RebuildKnots *bool                 `json:"rebuildKnots,omitempty"`
}

// POST /rebuildNetwork - replace the network with the posted paths, or
// reload the configured file when none are posted
func (s *server) rebuildHandler(c *gin.Context) {
	var req rebuildRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_request", "message": err.Error()})
			return
		}
	}

	rebuildKnots := s.cfg.Network.RebuildKnots
	if req.RebuildKnots != nil {
		rebuildKnots = *req.RebuildKnots
	}

	var src pathnet.Source
	switch {
	case len(req.Paths) > 0:
		src = pathsource.Specs{Specs: req.Paths, Options: s.cfg.Source.Options}
	case s.cfg.Source.File != "":
		src = pathsource.File{
			Name:    s.cfg.Source.File,
			Format:  pathsource.Format(s.cfg.Source.Format),
			Options: s.cfg.Source.Options,
			Logger:  s.log,
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_request", "message": "no paths posted and no source file configured"})
		return
	}

	network := pathnet.NewNetwork(s.netOpt...)
	if err := network.RebuildNetwork(src, rebuildKnots); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_paths", "message": err.Error()})
		return
	}

	s.mu.Lock()
	s.net = network
	s.mu.Unlock()

	paths, _ := network.Paths()
	resp := gin.H{"success": true, "numPaths": len(paths)}
	if bound, ok := pathsource.Bounds(paths); ok {
		resp["boundingBox"] = gin.H{
			"minX": bound.Min.X(), "minY": bound.Min.Y(),
			"maxX": bound.Max.X(), "maxY": bound.Max.Y(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func queryPoint(c *gin.Context) (pathnet.Point, bool) {
	var p pathnet.Point
	for _, axis := range []struct {
		key string
		dst *float64
	}{{"x", &p.X}, {"y", &p.Y}, {"z", &p.Z}} {
		raw := c.DefaultQuery(axis.key, "0")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_argument", "message": "bad " + axis.key + " coordinate"})
			return p, false
		}
		*axis.dst = v
	}
	return p, true
}

func nodeJSON(n pathnet.Node) gin.H {
	if n.IsNull() {
		return gin.H{"path": nil, "index": -1}
	}
	return gin.H{"path": n.Path.Name, "index": n.Index, "position": n.Position()}
}

// GET /closestNode?x=&y=&z=
func (s *server) closestNodeHandler(c *gin.Context) {
	pos, ok := queryPoint(c)
	if !ok {
		return
	}

	node, err := s.network().ClosestNode(pos)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "node": nodeJSON(node)})
}

// GET /closestPoint?x=&y=&z=
func (s *server) closestPointHandler(c *gin.Context) {
	pos, ok := queryPoint(c)
	if !ok {
		return
	}

	cp, err := s.network().ClosestPoint(pos)
	if err != nil {
		writeError(c, err)
		return
	}
	if cp.Node.IsNull() {
		c.JSON(http.StatusOK, gin.H{"success": true, "found": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"found":    true,
		"point":    cp.Point,
		"path":     cp.Node.Path.Name,
		"segment":  cp.Segment,
		"node":     nodeJSON(cp.Node),
		"along":    cp.Along,
		"distance": cp.Distance,
	})
}

func (s *server) lookupPath(c *gin.Context, network *pathnet.Network, name string) (*pathnet.Path, bool) {
	if !network.IsBuilt() {
		writeError(c, pathnet.ErrUnbuiltNetwork)
		return nil, false
	}
	p, ok := network.PathByName(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "unknown_path", "message": "no path named " + strconv.Quote(name)})
		return nil, false
	}
	return p, true
}

// GET /closebyEnds?path=&index=&radius=&includeSelf=&onlyForwardFacing=
func (s *server) closebyEndsHandler(c *gin.Context) {
	network := s.network()
	path, ok := s.lookupPath(c, network, c.Query("path"))
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.DefaultQuery("index", strconv.Itoa(path.LastIndex())))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_argument", "message": "bad index"})
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "0"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_argument", "message": "bad radius"})
		return
	}

	var opts []pathnet.EndOption
	if c.Query("includeSelf") == "true" {
		opts = append(opts, pathnet.IncludeSelf())
	}
	if c.Query("onlyForwardFacing") == "true" {
		opts = append(opts, pathnet.OnlyForwardFacing())
	}

	ends, err := network.ClosebyEnds(path, index, radius, opts...)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(ends))
	for _, e := range ends {
		out = append(out, gin.H{"path": e.Path.Name, "isLast": e.IsLast, "position": e.Position()})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ends": out})
}

type nextPathRequest struct {
	Path        string `json:"path" binding:"required"`
	Index       *int   `json:"index"` // node index; defaults to the path's last node
	VehicleType string `json:"vehicleType" binding:"required"`
}

// POST /nextPath - pick a random continuation for a vehicle at a node
func (s *server) nextPathHandler(c *gin.Context) {
	var req nextPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_request", "message": err.Error()})
		return
	}

	vt, err := pathnet.ParseVehicleType(req.VehicleType)
	if err != nil {
		writeError(c, err)
		return
	}

	network := s.network()
	path, ok := s.lookupPath(c, network, req.Path)
	if !ok {
		return
	}

	node := pathnet.End{Path: path, IsLast: true}.Node()
	if req.Index != nil {
		node.Index = *req.Index
		limit := path.PointCount()
		if path.HasKnots() {
			limit = path.KnotCount()
		}
		if node.Index < 0 || node.Index >= limit {
			writeError(c, pathnet.ErrIndexOutOfRange)
			return
		}
	}

	s.pickMu.Lock()
	next, err := network.NextRandomPathForVehicle(node, vt)
	s.pickMu.Unlock()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": next.Name, "length": next.Length()})
}

type routeRequest struct {
	From        string `json:"from" binding:"required"`
	To          string `json:"to" binding:"required"`
	VehicleType string `json:"vehicleType" binding:"required"`
}

// POST /route - shortest chain of paths between two paths
func (s *server) routeHandler(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_request", "message": err.Error()})
		return
	}

	vt, err := pathnet.ParseVehicleType(req.VehicleType)
	if err != nil {
		writeError(c, err)
		return
	}

	network := s.network()
	from, ok := s.lookupPath(c, network, req.From)
	if !ok {
		return
	}
	to, ok := s.lookupPath(c, network, req.To)
	if !ok {
		return
	}

	route, err := network.Route(from, to, vt)
	if err != nil {
		writeError(c, err)
		return
	}

	names := make([]string, len(route.Paths))
	for i, p := range route.Paths {
		names[i] = p.Name
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "paths": names, "distance": route.Distance})
}

// GET /disconnected - paths whose last point leads nowhere
func (s *server) disconnectedHandler(c *gin.Context) {
	dead, err := s.network().DisconnectedEnds()
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(dead))
	for _, p := range dead {
		out = append(out, gin.H{"path": p.Name, "last": p.Last()})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(dead), "paths": out})
}

// GET /networkLines - paths (or junctions with ?junctions=true) as GeoJSON
func (s *server) networkLinesHandler(c *gin.Context) {
	network := s.network()

	var (
		data []byte
		err  error
	)
	if c.Query("junctions") == "true" {
		var graph *pathnet.JunctionGraph
		if graph, err = network.ConnectivityGraph(); err == nil {
			data, err = pathsource.ExportJunctions(graph.Lines())
		}
	} else {
		var paths []*pathnet.Path
		if paths, err = network.Paths(); err == nil {
			data, err = pathsource.ExportGeoJSON(paths)
		}
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/geo+json", data)
}
