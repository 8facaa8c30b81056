package recommend

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meetspot-ai/meetspot/internal/geo"
	"github.com/meetspot-ai/meetspot/internal/telemetry"
)

// Service runs the full recommendation pipeline: resolve locations,
// choose a center, search venues, rank them, and write a summary.
type Service struct {
	geocoder *Geocoder
	center   *CenterEngine
	searcher *Searcher
	ranker   *Ranker
	metrics  *telemetry.Metrics
	logger   *log.Logger
}

// NewService wires the pipeline. metrics may be nil.
func NewService(geocoder *Geocoder, center *CenterEngine, searcher *Searcher, ranker *Ranker, metrics *telemetry.Metrics, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		geocoder: geocoder,
		center:   center,
		searcher: searcher,
		ranker:   ranker,
		metrics:  metrics,
		logger:   logger,
	}
}

// Recommend executes one request end to end.
func (s *Service) Recommend(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if len(req.Locations) < 2 {
		return nil, &InsufficientInputError{Got: len(req.Locations), Need: 2}
	}

	locations, err := s.geocoder.ResolveAll(ctx, req.Locations)
	if err != nil {
		s.observe("geocode_failed", start)
		return nil, err
	}

	participantCoords := participantsOf(locations)

	keywords := normalizeKeywords(req.Keywords)
	primary := keywords[0]

	report, err := s.center.SmartCenter(ctx, participantCoords, primary)
	if err != nil {
		s.observe("center_failed", start)
		return nil, err
	}
	s.logger.Printf("center chosen at %s (geometric %s)", report.Chosen, report.Geometric)

	venues, err := s.searcher.Search(ctx, report.Chosen, keywords, req.Radius, req.PlaceType)
	if err != nil {
		s.observe("search_failed", start)
		return nil, err
	}

	ranked := s.ranker.Rank(venues, keywords, req.Requirements)

	result := &Result{
		RequestID: uuid.NewString(),
		Locations: locations,
		Center:    report,
		Venues:    ranked,
	}
	result.Summary = buildSummary(result, keywords)

	s.observe("ok", start)
	if s.metrics != nil {
		s.metrics.VenuesReturned.Observe(float64(len(ranked)))
	}
	s.logger.Printf("request %s: %d venues for %v", result.RequestID, len(ranked), keywords)
	return result, nil
}

// normalizeKeywords drops empty and whitespace-only entries; when
// nothing survives the default category is used. The first surviving
// keyword drives center selection.
func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		out = append(out, "咖啡馆")
	}
	return out
}

func (s *Service) observe(outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.Recommendations.WithLabelValues(outcome).Inc()
	s.metrics.RecommendDuration.Observe(time.Since(start).Seconds())
}

func participantsOf(locations []Location) []geo.Coordinate {
	out := make([]geo.Coordinate, 0, len(locations))
	for _, l := range locations {
		out = append(out, l.Coordinate)
	}
	return out
}

func buildSummary(r *Result, keywords []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "为 %d 位参与者推荐 %s 附近的聚会地点（%s）：\n",
		len(r.Locations), r.Center.Chosen, strings.Join(keywords, "、"))
	for i, v := range r.Venues {
		fmt.Fprintf(&b, "%d. %s（%.0f米", i+1, v.Name, v.Distance)
		if v.HasRating {
			fmt.Fprintf(&b, "，评分%.1f", v.Rating)
		}
		b.WriteString("）")
		if len(v.Reasons) > 0 {
			fmt.Fprintf(&b, " 推荐理由：%s", strings.Join(v.Reasons, "，"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
