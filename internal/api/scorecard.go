package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/fidde/scorecard/pkg/models"
)

// getScorecard returns the frequency, lag or matrix grid.
// GET /msapi/scorecard?domain=&frequency=&lag=&env=&appid=&appname=
func (s *Server) getScorecard(w http.ResponseWriter, r *http.Request) {
	req, err := ParseReportRequest(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	grid, err := s.reports.Build(r.Context(), req)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	body, err := json.Marshal(grid)
	if err != nil {
		s.logger.Error("encoding grid", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
	w.Header().Set("ETag", etag)
	if matchesETag(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ParseReportRequest maps scorecard query parameters onto a request. A
// present frequency parameter selects the frequency grid, otherwise a
// present lag parameter selects the lag grid, otherwise the matrix. The
// env parameter is accepted and has no effect.
func ParseReportRequest(q url.Values) (models.ReportRequest, error) {
	req := models.ReportRequest{Shape: models.ShapeMatrix}

	switch {
	case q.Has("frequency"):
		req.Shape = models.ShapeFrequency
		req.Bucket = models.BucketWeek
		if strings.EqualFold(q.Get("frequency"), string(models.BucketMonth)) {
			req.Bucket = models.BucketMonth
		}
	case q.Has("lag"):
		req.Shape = models.ShapeLag
		req.LagMode = models.LagDuration
		if strings.EqualFold(q.Get("lag"), string(models.LagDays)) {
			req.LagMode = models.LagDays
		}
	}

	var err error
	if req.DomainID, err = optionalInt(q, "domain"); err != nil {
		return req, err
	}
	if req.AppID, err = optionalInt(q, "appid"); err != nil {
		return req, err
	}
	req.AppName = strings.TrimSpace(q.Get("appname"))
	req.Environment = q.Get("env")
	return req, nil
}

func optionalInt(q url.Values, name string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter %q: must be an integer", name, raw)
	}
	return &v, nil
}

func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
