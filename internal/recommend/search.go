package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"

	"github.com/meetspot-ai/meetspot/internal/amap"
	"github.com/meetspot-ai/meetspot/internal/cache"
	"github.com/meetspot-ai/meetspot/internal/geo"
)

// DefaultRadius is the search radius in meters when a request does not
// set one.
const DefaultRadius = 5000

// Searcher finds venues around a meeting center.
type Searcher struct {
	places PlaceAPI
	store  cache.Store
	logger *log.Logger
}

// NewSearcher builds a venue searcher. store may be nil to disable
// result caching.
func NewSearcher(places PlaceAPI, store cache.Store, logger *log.Logger) *Searcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Searcher{places: places, store: store, logger: logger}
}

// Search runs one upstream lookup per category concurrently, merges the
// results in category order, and deduplicates by (name, coordinate).
// A category whose lookup fails is skipped rather than aborting the rest.
// When everything comes back empty and a type filter was set, the search
// retries once with the same keywords and no type filter; an empty
// result after that is a NoVenuesFoundError.
func (s *Searcher) Search(ctx context.Context, center geo.Coordinate, categories []string, radius int, typeCodes string) ([]Venue, error) {
	if radius <= 0 {
		radius = DefaultRadius
	}
	if len(categories) == 0 {
		categories = []string{"咖啡馆"}
	}

	merged := Dedupe(s.fanOut(ctx, center, categories, radius, typeCodes))

	if len(merged) == 0 && typeCodes != "" {
		s.logger.Printf("constrained search empty, dropping type filter %q around %s", typeCodes, center)
		merged = Dedupe(s.fanOut(ctx, center, categories, radius, ""))
	}
	if len(merged) == 0 {
		return nil, &NoVenuesFoundError{Center: center.String(), Radius: radius, Categories: categories}
	}
	return merged, nil
}

func (s *Searcher) fanOut(ctx context.Context, center geo.Coordinate, categories []string, radius int, typeCodes string) []Venue {
	perCategory := make([][]Venue, len(categories))
	var wg sync.WaitGroup
	for i, cat := range categories {
		wg.Add(1)
		go func(i int, cat string) {
			defer wg.Done()
			venues, err := s.searchOne(ctx, center, cat, radius, typeCodes)
			if err != nil {
				s.logger.Printf("category %q search failed: %v", cat, err)
				return
			}
			perCategory[i] = venues
		}(i, cat)
	}
	wg.Wait()

	merged := make([]Venue, 0, 32)
	for _, vs := range perCategory {
		merged = append(merged, vs...)
	}
	return merged
}

func (s *Searcher) searchOne(ctx context.Context, center geo.Coordinate, keyword string, radius int, typeCodes string) ([]Venue, error) {
	key := fmt.Sprintf("poi:%s_%s_%d_%s", center.String(), keyword, radius, typeCodes)
	if s.store != nil {
		if raw, ok, err := s.store.Get(ctx, key); err == nil && ok {
			var cached []Venue
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	pois, err := s.places.SearchAround(ctx, center.String(), keyword, radius, typeCodes)
	if err != nil {
		return nil, err
	}

	venues := make([]Venue, 0, len(pois))
	for _, p := range pois {
		v, err := venueFromPOI(p, keyword, center)
		if err != nil {
			s.logger.Printf("skipping malformed poi %q: %v", p.Name, err)
			continue
		}
		venues = append(venues, v)
	}

	if s.store != nil {
		if raw, err := json.Marshal(venues); err == nil {
			if err := s.store.Set(ctx, key, raw); err != nil {
				s.logger.Printf("poi cache write failed: %v", err)
			}
		}
	}
	return venues, nil
}

func venueFromPOI(p amap.POI, category string, center geo.Coordinate) (Venue, error) {
	coord, err := geo.ParseCoordinate(p.Location)
	if err != nil {
		return Venue{}, err
	}
	v := Venue{
		ID:         p.ID,
		Name:       p.Name,
		Category:   category,
		TypeText:   p.Type,
		Address:    p.Address,
		Coordinate: coord,
		Tel:        p.Tel,
		Cost:       p.BizExt.CostString(),
		Distance:   geo.Distance(center, coord),
	}
	if r := p.BizExt.RatingString(); r != "" {
		if f, err := strconv.ParseFloat(r, 64); err == nil {
			v.Rating = f
			v.HasRating = true
		}
	}
	if len(p.Photos) > 0 {
		v.PhotoURL = p.Photos[0].URL
	}
	return v, nil
}

// Dedupe drops venues whose (name, coordinate) pair was already seen,
// keeping the first occurrence. Addresses are not part of the key since
// different category searches format them inconsistently.
func Dedupe(venues []Venue) []Venue {
	seen := make(map[string]bool, len(venues))
	out := venues[:0:0]
	for _, v := range venues {
		key := v.Name + "_" + v.Coordinate.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
