package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ssargent/fixedwidth/pkg/codec"
)

// Server holds the API server state
type Server struct {
	catalog LayoutCatalog
	config  ServerConfig
	metrics *Metrics
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(catalog LayoutCatalog, config ServerConfig, metrics *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.SetLayouts(len(catalog.Names()))

	return &Server{
		catalog: catalog,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]interface{}{
		"status":  "healthy",
		"layouts": len(s.catalog.Names()),
	})
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	names := s.catalog.Names()
	layouts := make([]LayoutSummary, 0, len(names))
	for _, name := range names {
		if l, ok := s.catalog.Get(name); ok {
			layouts = append(layouts, summarize(name, l))
		}
	}
	sendSuccess(w, layouts)
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	name, layout, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sendSuccess(w, describe(name, layout))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	name, layout, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req GenerateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Record == nil {
		sendError(w, "record is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	buf, err := layout.Generate(req.Record)
	s.metrics.RecordCodecOperation(name, operationGenerate, err, len(buf), time.Since(start))
	if err != nil {
		s.logCodecError(r, name, operationGenerate, err)
		sendCodecError(w, err)
		return
	}

	sendSuccess(w, GenerateResponse{
		Record:       string(buf),
		RecordBase64: base64.StdEncoding.EncodeToString(buf),
		Length:       len(buf),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	name, layout, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req ParseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	var data []byte
	switch {
	case req.Record != nil && req.RecordBase64 != nil:
		sendError(w, "record and record_base64 are mutually exclusive", http.StatusBadRequest)
		return
	case req.Record != nil:
		data = []byte(*req.Record)
	case req.RecordBase64 != nil:
		decoded, err := base64.StdEncoding.DecodeString(*req.RecordBase64)
		if err != nil {
			sendError(w, "record_base64 is not valid base64", http.StatusBadRequest)
			return
		}
		data = decoded
	default:
		sendError(w, "record or record_base64 is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	fields, err := layout.Parse(data)
	s.metrics.RecordCodecOperation(name, operationParse, err, len(data), time.Since(start))
	if err != nil {
		s.logCodecError(r, name, operationParse, err)
		sendCodecError(w, err)
		return
	}

	sendSuccess(w, ParseResponse{Fields: fields})
}

// lookup resolves the {name} URL parameter, answering 404 when the catalog
// has no such layout
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, *codec.Layout, bool) {
	name := chi.URLParam(r, "name")
	if name == "" {
		sendError(w, "Layout name is required", http.StatusBadRequest)
		return "", nil, false
	}

	layout, ok := s.catalog.Get(name)
	if !ok {
		sendError(w, "Layout not found", http.StatusNotFound)
		return "", nil, false
	}
	return name, layout, true
}

// decodeBody reads a JSON request body. Numbers are kept as json.Number so
// large integers survive unchanged.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := r.Body
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}

	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, io.EOF):
			sendError(w, "Request body is empty", http.StatusBadRequest)
		default:
			sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		}
		return false
	}
	return true
}

func (s *Server) logCodecError(r *http.Request, layout, operation string, err error) {
	s.logger.Debug("codec operation failed",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("layout", layout),
		zap.String("operation", operation),
		zap.String("kind", string(codec.KindOf(err))),
		zap.Error(err),
	)
}
