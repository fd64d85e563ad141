package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/featurespace/analysis"
	"github.com/sartorproj/featurespace/errs"
	"github.com/sartorproj/featurespace/features"
	"github.com/sartorproj/featurespace/reduction"
	"github.com/sartorproj/featurespace/timeseries"
)

// FileField is the multipart field holding an uploaded table.
const FileField = "file"

// ProjectionRequest is the body of POST /v1/projections. Values cells must
// be JSON numbers; K defaults to the configured top-k when absent.
type ProjectionRequest struct {
	Names     []string            `json:"names" binding:"required"`
	Columns   []string            `json:"columns" binding:"required"`
	Values    [][]json.RawMessage `json:"values" binding:"required"`
	Algorithm string              `json:"algorithm" binding:"required"`
	Params    *analysis.Params    `json:"params,omitempty"`
	K         *int                `json:"k,omitempty"`
	Selected  []string            `json:"selected,omitempty"`
	Added     []string            `json:"added,omitempty"`
}

// matrix parses the cells of r. Strings, nulls and other non-numbers fail
// with errs.ErrNonNumericInput.
func (r *ProjectionRequest) matrix() (*features.Matrix, error) {
	records := make([][]string, len(r.Values))
	for i, row := range r.Values {
		records[i] = make([]string, len(row))
		for j, cell := range row {
			records[i][j] = string(cell)
		}
	}
	x, err := reduction.ParseMatrix(records)
	if err != nil {
		return nil, err
	}
	rows, _ := x.Dims()
	values := make([][]float64, rows)
	for i := range values {
		values[i] = mat.Row(nil, i, x)
	}
	return features.NewMatrix(r.Names, r.Columns, values)
}

func (s *Server) handleFeatures(c *gin.Context) {
	coll, err := s.readCollection(c)
	if err != nil {
		s.respondError(c, "failed to read upload", err)
		return
	}
	period, fill, err := s.featureParams(c)
	if err != nil {
		s.respondError(c, "invalid query", err)
		return
	}

	m, err := s.analyzer.ComputeFeatures(c.Request.Context(), coll, period, fill)
	if err != nil {
		s.respondError(c, "failed to compute features", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) handleProjection(c *gin.Context) {
	var req ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(c, "invalid request body", err)
			return
		}
		s.respondError(c, "invalid request body", errs.InvalidParameter("%v", err))
		return
	}
	alg, err := analysis.ParseAlgorithm(req.Algorithm)
	if err != nil {
		s.respondError(c, "invalid algorithm", err)
		return
	}
	m, err := req.matrix()
	if err != nil {
		s.respondError(c, "invalid feature matrix", err)
		return
	}
	k := s.analyzer.TopK()
	if req.K != nil {
		k = *req.K
	}

	result, err := s.analyzer.Project(c.Request.Context(), m, alg, req.Params, k)
	if err != nil {
		s.respondError(c, "projection failed", err)
		return
	}
	result.Projection.Label(req.Selected, req.Added)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	coll, err := s.readCollection(c)
	if err != nil {
		s.respondError(c, "failed to read upload", err)
		return
	}
	period, fill, err := s.featureParams(c)
	if err != nil {
		s.respondError(c, "invalid query", err)
		return
	}
	algorithms, err := analysis.ParseAlgorithms(c.Query("algorithms"))
	if err != nil {
		s.respondError(c, "invalid query", err)
		return
	}
	k, err := queryInt(c, "k", s.analyzer.TopK())
	if err != nil {
		s.respondError(c, "invalid query", err)
		return
	}

	report, err := s.analyzer.Analyze(c.Request.Context(), coll, period, fill, algorithms, k)
	if err != nil {
		s.respondError(c, "analysis failed", err)
		return
	}
	selected := splitList(c.Query("selected"))
	for _, r := range report.Results {
		r.Projection.Label(selected, nil)
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleDescribe(c *gin.Context) {
	coll, err := s.readCollection(c)
	if err != nil {
		s.respondError(c, "failed to read upload", err)
		return
	}
	id := c.Query("id")
	if id == "" && coll.Len() == 1 {
		id = coll.IDs()[0]
	}
	if id == "" {
		s.respondError(c, "invalid query", errs.InvalidParameter("id is required when the upload holds %d series", coll.Len()))
		return
	}
	period, err := queryInt(c, "period", s.config.Features.Period)
	if err != nil {
		s.respondError(c, "invalid query", err)
		return
	}
	lags, err := queryInt(c, "lags", 0)
	if err != nil {
		s.respondError(c, "invalid query", err)
		return
	}

	series, err := coll.Select(id)
	if err != nil {
		s.respondError(c, "unknown series", err)
		return
	}
	report, err := analysis.DescribeSeries(series, period, lags)
	if err != nil {
		s.respondError(c, "failed to describe series", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// readCollection parses the uploaded .csv or .xlsx table.
func (s *Server) readCollection(c *gin.Context) (*timeseries.Collection, error) {
	fh, err := c.FormFile(FileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errs.InvalidParameter("missing multipart field %q: %v", FileField, err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := timeseries.ReadTable(fh.Filename, f)
	switch {
	case errors.Is(err, errs.ErrUnsupportedFormat):
		return nil, err
	case err != nil:
		return nil, errs.InvalidParameter("%s: %v", fh.Filename, err)
	}
	coll, err := timeseries.ToLong(table)
	if err != nil {
		return nil, err
	}
	if coll.Len() == 0 {
		return nil, errs.InvalidParameter("%s holds no series", fh.Filename)
	}
	s.logger.Debugw("Read upload", "file", fh.Filename, "size", fh.Size, "series", coll.Len())
	return coll, nil
}

func (s *Server) featureParams(c *gin.Context) (int, float64, error) {
	period, err := queryInt(c, "period", s.config.Features.Period)
	if err != nil {
		return 0, 0, err
	}
	fill := s.config.Features.Fill
	if v, ok := c.GetQuery("fill"); ok {
		fill, err = strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(fill) || math.IsInf(fill, 0) {
			return 0, 0, errs.InvalidParameter("fill: %q is not a number", v)
		}
	}
	return period, fill, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.InvalidParameter("%s: %q is not an integer", key, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
