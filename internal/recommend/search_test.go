package recommend

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/meetspot-ai/meetspot/internal/amap"
	"github.com/meetspot-ai/meetspot/internal/cache"
	"github.com/meetspot-ai/meetspot/internal/geo"
)

type scriptedPlaceAPI struct {
	mu      sync.Mutex
	calls   int
	byQuery map[string][]amap.POI // keyed by "keywords|typeCodes"
	errFor  map[string]error
}

func (f *scriptedPlaceAPI) SearchAround(_ context.Context, location, keywords string, radius int, typeCodes string) ([]amap.POI, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := f.errFor[keywords]; err != nil {
		return nil, err
	}
	return f.byQuery[keywords+"|"+typeCodes], nil
}

var searchCenter = geo.Coordinate{Lng: 116.40, Lat: 39.90}

func TestSearchTagsVenuesWithCategory(t *testing.T) {
	api := &scriptedPlaceAPI{byQuery: map[string][]amap.POI{
		"咖啡馆|": {{ID: "c1", Name: "咖啡A", Location: "116.401,39.901"}},
		"餐厅|":  {{ID: "r1", Name: "餐厅B", Location: "116.402,39.902"}},
	}}
	s := NewSearcher(api, nil, nil)
	venues, err := s.Search(context.Background(), searchCenter, []string{"咖啡馆", "餐厅"}, 0, "")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(venues) != 2 {
		t.Fatalf("venues = %d, want 2", len(venues))
	}
	// Merge preserves category input order.
	if venues[0].Category != "咖啡馆" || venues[1].Category != "餐厅" {
		t.Fatalf("categories = %q, %q", venues[0].Category, venues[1].Category)
	}
	if venues[0].Distance <= 0 {
		t.Fatalf("distance not computed: %f", venues[0].Distance)
	}
}

func TestSearchOneCategoryFailureDoesNotAbort(t *testing.T) {
	api := &scriptedPlaceAPI{
		byQuery: map[string][]amap.POI{
			"咖啡馆|": {{ID: "c1", Name: "咖啡A", Location: "116.401,39.901"}},
		},
		errFor: map[string]error{"餐厅": errors.New("upstream 500")},
	}
	s := NewSearcher(api, nil, nil)
	venues, err := s.Search(context.Background(), searchCenter, []string{"咖啡馆", "餐厅"}, 0, "")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(venues) != 1 || venues[0].Name != "咖啡A" {
		t.Fatalf("venues = %+v", venues)
	}
}

func TestSearchDedupesAcrossCategories(t *testing.T) {
	shared := amap.POI{ID: "x", Name: "共享空间", Location: "116.403,39.903"}
	api := &scriptedPlaceAPI{byQuery: map[string][]amap.POI{
		"咖啡馆|": {shared},
		"餐厅|":  {shared, {ID: "r1", Name: "餐厅B", Location: "116.404,39.904"}},
	}}
	s := NewSearcher(api, nil, nil)
	venues, err := s.Search(context.Background(), searchCenter, []string{"咖啡馆", "餐厅"}, 0, "")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(venues) != 2 {
		t.Fatalf("venues = %d, want 2 after dedupe", len(venues))
	}
	// First occurrence wins, so the shared venue keeps the first category.
	if venues[0].Name != "共享空间" || venues[0].Category != "咖啡馆" {
		t.Fatalf("first venue = %+v", venues[0])
	}
}

func TestSearchFallbackKeepsKeywords(t *testing.T) {
	// The type-filtered lookup is empty; the retry keeps the keyword and
	// only drops the type filter.
	api := &scriptedPlaceAPI{byQuery: map[string][]amap.POI{
		"咖啡馆|": {{ID: "b1", Name: "附近的咖啡", Location: "116.405,39.905"}},
	}}
	s := NewSearcher(api, nil, nil)
	venues, err := s.Search(context.Background(), searchCenter, []string{"咖啡馆"}, 0, "050000")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(venues) != 1 || venues[0].Name != "附近的咖啡" {
		t.Fatalf("venues = %+v", venues)
	}
	if venues[0].Category != "咖啡馆" {
		t.Fatalf("fallback venue lost its category: %q", venues[0].Category)
	}
}

func TestSearchNoVenuesAfterFallback(t *testing.T) {
	api := &scriptedPlaceAPI{byQuery: map[string][]amap.POI{}}
	s := NewSearcher(api, nil, nil)
	_, err := s.Search(context.Background(), searchCenter, []string{"咖啡馆"}, 3000, "")
	var nvErr *NoVenuesFoundError
	if !errors.As(err, &nvErr) {
		t.Fatalf("expected NoVenuesFoundError, got %v", err)
	}
	if nvErr.Radius != 3000 {
		t.Fatalf("radius = %d", nvErr.Radius)
	}
}

func TestSearchUsesCache(t *testing.T) {
	api := &scriptedPlaceAPI{byQuery: map[string][]amap.POI{
		"咖啡馆|": {{ID: "c1", Name: "咖啡A", Location: "116.401,39.901"}},
	}}
	store := cache.NewLRUStore(16, time.Minute)
	s := NewSearcher(api, store, nil)
	ctx := context.Background()

	if _, err := s.Search(ctx, searchCenter, []string{"咖啡馆"}, 0, ""); err != nil {
		t.Fatalf("first search failed: %v", err)
	}
	first := api.calls
	if _, err := s.Search(ctx, searchCenter, []string{"咖啡馆"}, 0, ""); err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	if api.calls != first {
		t.Fatalf("upstream calls grew from %d to %d, expected cache hit", first, api.calls)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	venues := []Venue{
		{Name: "A", Coordinate: geo.Coordinate{Lng: 116.40, Lat: 39.90}},
		{Name: "A", Coordinate: geo.Coordinate{Lng: 116.40, Lat: 39.90}},
		{Name: "A", Coordinate: geo.Coordinate{Lng: 116.41, Lat: 39.90}}, // same name, other spot
		{Name: "B", Coordinate: geo.Coordinate{Lng: 116.40, Lat: 39.90}},
	}
	once := Dedupe(venues)
	if len(once) != 3 {
		t.Fatalf("dedupe = %d venues, want 3", len(once))
	}
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("dedupe not idempotent: %+v vs %+v", once, twice)
	}
}
