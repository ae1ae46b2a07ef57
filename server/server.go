package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/royalcat/rgeolattice/algorithm"
	"github.com/royalcat/rgeolattice/geomodel"
	"github.com/royalcat/rgeolattice/maskio"
	"github.com/royalcat/rgeolattice/rasterizer"
	"github.com/royalcat/rgeolattice/sink"
	"github.com/royalcat/rgeolattice/source"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const MaxBodySize = 32 * 1000 * 1000 // 32MB

type Config struct {
	Address     string
	MaxBodySize int
	// CellSize is used when a request has no spacing argument.
	CellSize float64
}

func Run(ctx context.Context, cfg Config, capability rasterizer.Rasterizer, opts ...algorithm.Option) error {
	log := slog.Default().With("component", "server")

	s, err := New(capability, cfg.CellSize, opts...)
	if err != nil {
		return err
	}
	s.baseCtx = ctx

	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = MaxBodySize
	}

	server := &fasthttp.Server{
		ReadTimeout:        10 * time.Second,
		MaxRequestBodySize: cfg.MaxBodySize,
		Handler:            s.Router().Handler,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", "address", cfg.Address)
		serveErr <- server.ListenAndServe(cfg.Address)
	}()

	// wait cancel
	select {
	case err := <-serveErr:
		return fmt.Errorf("ListenAndServe(): %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.ShutdownWithContext(shutdownCtx)
}

type Server struct {
	baseCtx  context.Context
	cellSize float64

	mask *algorithm.PolygonMask
	net  *algorithm.PointNet

	inFlight *xsync.Counter
	metrics  *serverMetrics
	log      *slog.Logger
}

func New(capability rasterizer.Rasterizer, cellSize float64, opts ...algorithm.Option) (*Server, error) {
	mask, err := algorithm.NewPolygonMask(capability, opts...)
	if err != nil {
		return nil, err
	}
	net, err := algorithm.NewPointNet(capability, opts...)
	if err != nil {
		return nil, err
	}
	if !(cellSize > 0) {
		cellSize = algorithm.DefaultPixelDimension
	}

	s := &Server{
		baseCtx:  context.Background(),
		cellSize: cellSize,
		mask:     mask,
		net:      net,
		inFlight: xsync.NewCounter(),
		log:      slog.Default().With("component", "server"),
	}
	s.metrics, err = newServerMetrics(s.inFlight)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize otel metrics: %w", err)
	}
	return s, nil
}

func (s *Server) Router() *router.Router {
	r := router.New()
	r.POST("/lattice/points", s.PointsHandler)
	r.POST("/lattice/mask", s.MaskHandler)
	r.GET("/algorithms", s.AlgorithmsHandler)
	r.Handle(http.MethodGet, "/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	return r
}

var bufPool = sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

// parseRequest reads the spacing argument and the polygon body shared by
// both lattice endpoints.
func (s *Server) parseRequest(ctx *fasthttp.RequestCtx) (source.Source, float64, bool) {
	cellSize := s.cellSize
	if arg := ctx.QueryArgs().Peek("spacing"); len(arg) > 0 {
		v, err := strconv.ParseFloat(string(arg), 64)
		if err != nil {
			ctx.Response.SetStatusCode(http.StatusBadRequest)
			ctx.Response.SetBodyString("failed to parse spacing: " + err.Error())
			return nil, 0, false
		}
		cellSize = v
	}

	src, err := source.ParseGeoJSON("request", ctx.Request.Body())
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("failed to parse request: " + err.Error())
		return nil, 0, false
	}
	return src, cellSize, true
}

func (s *Server) PointsHandler(ctx *fasthttp.RequestCtx) {
	s.inFlight.Inc()
	defer s.inFlight.Dec()
	s.metrics.requests.Add(s.baseCtx, 1, endpointAttr("points"))

	src, cellSize, ok := s.parseRequest(ctx)
	if !ok {
		return
	}

	format := string(ctx.QueryArgs().Peek("format"))
	if format == "" {
		format = "geojson"
	}

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	var out sink.Writer
	var contentType string
	var err error
	switch format {
	case "geojson":
		contentType = "application/geo+json"
		out, err = sink.NewGeoJSON(buf, src.SpatialRef())
	case "rgl":
		contentType = "application/octet-stream"
		out, err = sink.NewBinary(buf, sink.BinaryHeader{SpatialRef: src.SpatialRef(), CellSize: cellSize})
	case "json":
		contentType = "application/json"
		out = &sink.Memory{SRS: src.SpatialRef()}
	default:
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("unknown format: " + format)
		return
	}
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		return
	}

	jobCtx, cancel := jobContext(s.baseCtx, ctx)
	defer cancel()

	res, err := s.net.Run(jobCtx, algorithm.PointParams{
		Source:   src,
		CellSize: cellSize,
		Sink:     out,
	})
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	if err := out.Close(); err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		return
	}
	s.metrics.points.Add(s.baseCtx, res.Points)

	if mem, ok := out.(*sink.Memory); ok {
		data, err := mem.Points.MarshalJSON()
		if err != nil {
			ctx.Response.SetStatusCode(http.StatusInternalServerError)
			return
		}
		buf.Write(data)
	}

	ctx.Response.SetStatusCode(http.StatusOK)
	ctx.Response.Header.SetContentType(contentType)
	ctx.Response.SetBody(buf.Bytes())
}

func (s *Server) MaskHandler(ctx *fasthttp.RequestCtx) {
	s.inFlight.Inc()
	defer s.inFlight.Dec()
	s.metrics.requests.Add(s.baseCtx, 1, endpointAttr("mask"))

	src, cellSize, ok := s.parseRequest(ctx)
	if !ok {
		return
	}

	jobCtx, cancel := jobContext(s.baseCtx, ctx)
	defer cancel()

	res, err := s.mask.Run(jobCtx, algorithm.MaskParams{
		Source:   src,
		CellSize: cellSize,
	})
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	if res.Grid.Empty() {
		ctx.Response.SetStatusCode(http.StatusNoContent)
		return
	}

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := maskio.WriteASCII(buf, maskio.Raster{Mask: res.Mask, Extent: res.Extent}); err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		return
	}

	ctx.Response.SetStatusCode(http.StatusOK)
	ctx.Response.Header.SetContentType("text/plain; charset=utf-8")
	ctx.Response.SetBody(buf.Bytes())
}

func (s *Server) AlgorithmsHandler(ctx *fasthttp.RequestCtx) {
	s.metrics.requests.Add(s.baseCtx, 1, endpointAttr("algorithms"))

	out, err := json.Marshal(algorithm.Descriptors())
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString("failed to marshal response")
		return
	}

	ctx.Response.SetStatusCode(http.StatusOK)
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetBody(out)
}

// jobContext ends when either the server or the request ends.
func jobContext(base, req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(base)
	stop := context.AfterFunc(req, func() {
		cancel(context.Cause(req))
	})
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, geomodel.ErrInvalidParameter), errors.Is(err, geomodel.ErrMissingSource):
		status = http.StatusBadRequest
	case errors.Is(err, geomodel.ErrCancelled):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("lattice request failed", "error", err.Error())
	}
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyString(err.Error())
}
