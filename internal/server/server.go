package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CK6170/densevec-go/file"
	"github.com/CK6170/densevec-go/logging"
	"github.com/CK6170/densevec-go/matrix"
	"github.com/CK6170/densevec-go/models"
)

// Config configures a Server. The zero value serves the API only, with no
// logging beyond the /ws/log stream.
type Config struct {
	// WebDir, when set, is served at / as a static frontend.
	WebDir string
	// Logger receives every engine record in addition to /ws/log clients.
	Logger logging.Logger
	// Strict enables matrix.WithStrictChecks on every workspace vector.
	Strict bool
	// MaxDimension bounds the dimension of created vectors (matrix default when 0).
	MaxDimension int
}

type Server struct {
	mux *http.ServeMux

	store  *VectorStore
	logger logging.Logger
	opts   []matrix.Option

	// WebSocket hub for engine log records
	wsLog *WSHub
}

func New(cfg Config) *Server {
	s := &Server{
		mux:   http.NewServeMux(),
		store: NewVectorStore(),
		wsLog: NewWSHub(),
	}
	s.logger = logging.Multi(cfg.Logger, s.wsLog)
	s.opts = []matrix.Option{matrix.WithLogger(s.logger), matrix.WithMaxDimension(cfg.MaxDimension)}
	if cfg.Strict {
		s.opts = append(s.opts, matrix.WithStrictChecks())
	}

	// API
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/vectors", s.handleVectors)
	s.mux.HandleFunc("/api/vectors/{id}", s.handleVector)
	s.mux.HandleFunc("/api/vectors/{id}/element", s.handleElement)
	s.mux.HandleFunc("/api/vectors/{id}/scale", s.handleScale)
	s.mux.HandleFunc("/api/ops", s.handleOps)
	s.mux.HandleFunc("/api/upload", s.handleUpload)
	s.mux.HandleFunc("/api/download", s.handleDownload)

	// WS
	s.mux.HandleFunc("/ws/log", s.handleWSLog)

	if cfg.WebDir != "" {
		// Static frontend
		fs := http.FileServer(http.Dir(cfg.WebDir))
		s.mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Avoid stale UI/assets after updates.
			if r.URL != nil {
				p := r.URL.Path
				if p == "/" ||
					strings.HasSuffix(p, ".html") ||
					strings.HasSuffix(p, ".js") ||
					strings.HasSuffix(p, ".css") {
					w.Header().Set("Cache-Control", "no-store")
				}
			}
			fs.ServeHTTP(w, r)
		}))
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// Store exposes the workspace, for preloading vectors at startup.
func (s *Server) Store() *VectorStore { return s.store }

// Load creates one workspace vector per entry of vf, in name order.
func (s *Server) Load(vf *file.VectorFile) ([]VectorResponse, error) {
	out := make([]VectorResponse, 0, len(vf.VECTORS))
	for _, name := range file.Names(vf) {
		values := vf.VECTORS[name]
		v, code := matrix.Create(len(values), values, s.opts...)
		if code != models.SUCCESS {
			return out, fmt.Errorf("vector %q: %w", name, code)
		}
		out = append(out, s.store.Put(name, v).Snapshot())
	}
	return out, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func (s *Server) readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	b, err := io.ReadAll(io.LimitReader(r.Body, 2<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// writeCode reports a failed engine operation.
func (s *Server) writeCode(w http.ResponseWriter, code models.ErrorCode) {
	status := http.StatusBadRequest
	if code == models.VECTOR_NOT_FOUND {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, APIError{Error: code.String(), Code: code})
}

// record resolves the {id} path value or writes a 404.
func (s *Server) record(w http.ResponseWriter, id string) (*VectorRecord, bool) {
	rec, ok := s.store.Get(id)
	if !ok {
		s.writeCode(w, models.VECTOR_NOT_FOUND)
	}
	return rec, ok
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, 200, HealthResponse{OK: true, Timestamp: time.Now(), Vectors: s.store.Len()})
}

func (s *Server) handleVectors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		recs := s.store.List()
		out := make([]VectorResponse, 0, len(recs))
		for _, rec := range recs {
			out = append(out, rec.Snapshot())
		}
		s.writeJSON(w, 200, out)
	case http.MethodPost:
		var req CreateVectorRequest
		if err := s.readJSON(r, &req); err != nil {
			s.writeJSON(w, 400, APIError{Error: err.Error()})
			return
		}
		v, code := matrix.Create(len(req.Values), req.Values, s.opts...)
		if code != models.SUCCESS {
			s.writeCode(w, code)
			return
		}
		s.writeJSON(w, 201, s.store.Put(req.Name, v).Snapshot())
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleVector(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		rec, ok := s.record(w, id)
		if !ok {
			return
		}
		s.writeJSON(w, 200, rec.Snapshot())
	case http.MethodPut:
		rec, ok := s.record(w, id)
		if !ok {
			return
		}
		var req SetDataRequest
		if err := s.readJSON(r, &req); err != nil {
			s.writeJSON(w, 400, APIError{Error: err.Error()})
			return
		}
		var code models.ErrorCode
		var out VectorResponse
		rec.With(func(v *matrix.Vector) {
			code = v.SetData(len(req.Values), req.Values)
			out = snapshot(rec, v)
		})
		if code != models.SUCCESS {
			s.writeCode(w, code)
			return
		}
		s.writeJSON(w, 200, out)
	case http.MethodDelete:
		if !s.store.Remove(id) {
			s.writeCode(w, models.VECTOR_NOT_FOUND)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleElement(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.record(w, r.PathValue("id"))
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		index, err := strconv.Atoi(r.URL.Query().Get("index"))
		if err != nil {
			s.writeJSON(w, 400, APIError{Error: "invalid index", Code: models.INVALID_ARGUMENT})
			return
		}
		var val float64
		var code models.ErrorCode
		rec.With(func(v *matrix.Vector) { val, code = v.Element(index) })
		if code != models.SUCCESS {
			s.writeCode(w, code)
			return
		}
		s.writeJSON(w, 200, ElementResponse{Index: index, Value: val})
	case http.MethodPost:
		var req ElementRequest
		if err := s.readJSON(r, &req); err != nil {
			s.writeJSON(w, 400, APIError{Error: err.Error()})
			return
		}
		var code models.ErrorCode
		var out VectorResponse
		rec.With(func(v *matrix.Vector) {
			code = v.SetElement(req.Index, req.Value)
			out = snapshot(rec, v)
		})
		if code != models.SUCCESS {
			s.writeCode(w, code)
			return
		}
		s.writeJSON(w, 200, out)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	rec, ok := s.record(w, r.PathValue("id"))
	if !ok {
		return
	}
	var req ScaleRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	var code models.ErrorCode
	var out VectorResponse
	rec.With(func(v *matrix.Vector) {
		code = v.Scale(req.By)
		out = snapshot(rec, v)
	})
	if code != models.SUCCESS {
		s.writeCode(w, code)
		return
	}
	s.writeJSON(w, 200, out)
}

func (s *Server) handleOps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req OpRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	op := strings.ToLower(strings.TrimSpace(req.Op))
	a, ok := s.record(w, req.A)
	if !ok {
		return
	}

	switch op {
	case "norm":
		kind := models.SECOND
		if req.Norm != "" {
			if kind, ok = models.ParseNorm(req.Norm); !ok {
				s.writeCode(w, models.INVALID_ARGUMENT)
				return
			}
		}
		var n float64
		a.With(func(v *matrix.Vector) { n = v.Norm(kind) })
		s.writeValue(w, op, models.SUCCESS, n)
		return
	case "clone":
		var c *matrix.Vector
		a.With(func(v *matrix.Vector) { c = matrix.Clone(v) })
		if c == nil {
			s.writeCode(w, models.NULLPTR_ERROR)
			return
		}
		out := s.store.Put(req.Name, c).Snapshot()
		s.writeJSON(w, 201, OpResponse{Op: op, Code: models.SUCCESS, Vector: &out})
		return
	}

	b, ok := s.record(w, req.B)
	if !ok {
		return
	}
	switch op {
	case "add", "sub":
		var res *matrix.Vector
		var code models.ErrorCode
		withPair(a, b, func(x, y *matrix.Vector) { res, code = combine(x, y, op == "sub") })
		if code != models.SUCCESS {
			s.writeCode(w, code)
			return
		}
		out := s.store.Put(req.Name, res).Snapshot()
		s.writeJSON(w, 201, OpResponse{Op: op, Code: code, Vector: &out})
	case "inc", "dec":
		var code models.ErrorCode
		var out VectorResponse
		withPair(a, b, func(x, y *matrix.Vector) {
			if op == "inc" {
				code = x.Increment(y)
			} else {
				code = x.Decrement(y)
			}
			out = snapshot(a, x)
		})
		s.writeOutcome(w, op, code, &out)
	case "dot":
		var d float64
		var code models.ErrorCode
		withPair(a, b, func(x, y *matrix.Vector) {
			d = matrix.Dot(x, y)
			if math.IsNaN(d) && x.Dim() != y.Dim() {
				code = models.MISMATCHING_DIMENSIONS
			}
		})
		s.writeValue(w, op, code, d)
	case "equals":
		kind := models.SECOND
		if req.Norm != "" {
			if kind, ok = models.ParseNorm(req.Norm); !ok {
				s.writeCode(w, models.INVALID_ARGUMENT)
				return
			}
		}
		if req.Tol < 0 || math.IsNaN(req.Tol) {
			s.writeCode(w, models.INVALID_ARGUMENT)
			return
		}
		var eq bool
		withPair(a, b, func(x, y *matrix.Vector) { eq = matrix.Equals(x, y, kind, req.Tol) })
		s.writeJSON(w, 200, OpResponse{Op: op, Code: models.SUCCESS, Equal: &eq})
	case "copy":
		var code models.ErrorCode
		var out VectorResponse
		withPair(a, b, func(x, y *matrix.Vector) {
			code = matrix.Copy(x, y)
			out = snapshot(a, x)
		})
		s.writeOutcome(w, op, code, &out)
	case "move":
		var code models.ErrorCode
		var out VectorResponse
		withPair(a, b, func(x, y *matrix.Vector) {
			code = matrix.Move(x, &y)
			if code == models.SUCCESS {
				b.v = y
			}
			out = snapshot(a, x)
		})
		if code == models.SUCCESS {
			s.store.forget(b.ID)
		}
		s.writeOutcome(w, op, code, &out)
	default:
		s.writeJSON(w, 400, APIError{Error: fmt.Sprintf("unknown op %q", req.Op), Code: models.INVALID_ARGUMENT})
	}
}

// combine builds x+y or x-y as a new vector and reports the exact failure
// code, which matrix.Add and matrix.Sub only log.
func combine(x, y *matrix.Vector, minus bool) (*matrix.Vector, models.ErrorCode) {
	if x.Dim() != y.Dim() {
		return nil, models.MISMATCHING_DIMENSIONS
	}
	if minus {
		if d := matrix.Sub(x, y); d != nil {
			return d, models.SUCCESS
		}
	} else if d := matrix.Add(x, y); d != nil {
		return d, models.SUCCESS
	}
	// Replay on a scratch clone to learn why it failed.
	c := matrix.Clone(x)
	if c == nil {
		return nil, models.NULLPTR_ERROR
	}
	defer c.Release()
	var code models.ErrorCode
	if minus {
		code = c.Decrement(y)
	} else {
		code = c.Increment(y)
	}
	if code == models.SUCCESS {
		code = models.UNKNOWN
	}
	return nil, code
}

// writeValue reports a scalar result. A result that is not finite cannot be
// encoded as JSON and is reported with its element code instead.
func (s *Server) writeValue(w http.ResponseWriter, op string, code models.ErrorCode, x float64) {
	if code == models.SUCCESS {
		code = matrix.Classify(x)
	}
	if code != models.SUCCESS {
		s.writeCode(w, code)
		return
	}
	s.writeJSON(w, 200, OpResponse{Op: op, Code: code, Value: &x})
}

func (s *Server) writeOutcome(w http.ResponseWriter, op string, code models.ErrorCode, out *VectorResponse) {
	if code != models.SUCCESS {
		s.writeCode(w, code)
		return
	}
	s.writeJSON(w, 200, OpResponse{Op: op, Code: code, Vector: out})
}

// handleUpload loads a vector file posted as multipart field "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	f, _, err := fileFromMultipart(r, "file")
	if err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, 4<<20))
	if err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	var vf file.VectorFile
	if err := json.Unmarshal(raw, &vf); err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error(), Code: models.IO_ERROR})
		return
	}
	loaded, err := s.Load(&vf)
	if err != nil {
		var code models.ErrorCode
		errors.As(err, &code)
		s.writeJSON(w, 400, APIError{Error: err.Error(), Code: code})
		return
	}
	s.writeJSON(w, 200, UploadResponse{Vectors: loaded})
}

func fileFromMultipart(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return nil, nil, err
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	return f, hdr, nil
}

// handleDownload returns the workspace as a vector file. Unnamed vectors are
// keyed by id.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	vf := file.VectorFile{VECTORS: map[string][]float64{}}
	for _, rec := range s.store.List() {
		snap := rec.Snapshot()
		key := snap.Name
		if key == "" {
			key = snap.ID
		}
		vf.VECTORS[key] = snap.Values
	}
	raw, err := json.MarshalIndent(vf, "", "  ")
	if err != nil {
		s.writeJSON(w, 500, APIError{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="vectors.json"`)
	w.WriteHeader(200)
	_, _ = w.Write(raw)
}
