package recommend

import (
	"fmt"
	"math"
	"testing"
)

func venue(name, category string, rating, distance float64) Venue {
	return Venue{
		Name:      name,
		Category:  category,
		Rating:    rating,
		HasRating: rating > 0,
		Distance:  distance,
	}
}

func TestScoreComposition(t *testing.T) {
	r := NewRanker(0, 0)
	// rating 4.0 -> 40; distance 1000 -> 20*(1-0.5) = 10.
	got := r.Rank([]Venue{venue("A", "咖啡馆", 4.0, 1000)}, []string{"咖啡馆"}, "")
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if math.Abs(got[0].Score-50) > 1e-9 {
		t.Fatalf("score = %f, want 50", got[0].Score)
	}
}

func TestScoreDistanceFloorsAtZero(t *testing.T) {
	r := NewRanker(0, 0)
	got := r.Rank([]Venue{venue("A", "咖啡馆", 3.0, 5000)}, []string{"咖啡馆"}, "")
	if math.Abs(got[0].Score-30) > 1e-9 {
		t.Fatalf("score = %f, want 30 (no negative distance term)", got[0].Score)
	}
}

func TestScoreMissingRatingIsZeroBase(t *testing.T) {
	r := NewRanker(0, 0)
	got := r.Rank([]Venue{venue("A", "咖啡馆", 0, 500)}, []string{"咖啡馆"}, "")
	if math.Abs(got[0].Score-15) > 1e-9 {
		t.Fatalf("score = %f, want 15 (distance term only)", got[0].Score)
	}
}

func TestCategoryBonusOnlyMultiCategory(t *testing.T) {
	r := NewRanker(0, 0)
	single := r.Rank([]Venue{venue("A", "咖啡馆", 4.0, 2000)}, []string{"咖啡馆"}, "")
	multi := r.Rank([]Venue{venue("A", "咖啡馆", 4.0, 2000)}, []string{"咖啡馆", "餐厅"}, "")
	if math.Abs(single[0].Score-40) > 1e-9 {
		t.Fatalf("single score = %f, want 40", single[0].Score)
	}
	if math.Abs(multi[0].Score-55) > 1e-9 {
		t.Fatalf("multi score = %f, want 55 with category bonus", multi[0].Score)
	}
}

func TestRequirementThemeBonus(t *testing.T) {
	r := NewRanker(0, 0)
	v := venue("安静咖啡", "咖啡馆", 4.0, 2000)
	v.TypeText = "餐饮服务;咖啡厅"
	got := r.Rank([]Venue{v}, []string{"咖啡馆"}, "想找个安静的地方，最好方便停车")
	// Quiet theme matches (trigger 安静, marker 咖啡); parking does not
	// (venue has no parking marker). 40 + 10.
	if math.Abs(got[0].Score-50) > 1e-9 {
		t.Fatalf("score = %f, want 50", got[0].Score)
	}
	if got[0].Reasons[0] != "环境安静" {
		t.Fatalf("reasons = %v", got[0].Reasons)
	}
}

func TestRankStableOnTies(t *testing.T) {
	r := NewRanker(0, 0)
	venues := []Venue{
		venue("第一", "咖啡馆", 4.0, 2000),
		venue("第二", "咖啡馆", 4.0, 2000),
		venue("第三", "咖啡馆", 4.0, 2000),
	}
	got := r.Rank(venues, []string{"咖啡馆"}, "")
	for i, name := range []string{"第一", "第二", "第三"} {
		if got[i].Name != name {
			t.Fatalf("position %d = %q, tie order not preserved", i, got[i].Name)
		}
	}
}

func TestSingleCategoryTopFive(t *testing.T) {
	r := NewRanker(0, 0)
	var venues []Venue
	for i := 0; i < 9; i++ {
		venues = append(venues, venue(fmt.Sprintf("v%d", i), "咖啡馆", float64(i%5), 2000))
	}
	got := r.Rank(venues, []string{"咖啡馆"}, "")
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
}

func TestBalancingCapsPerCategory(t *testing.T) {
	r := NewRanker(8, 5)
	var venues []Venue
	// Ten cafes score higher than ten restaurants.
	for i := 0; i < 10; i++ {
		venues = append(venues, venue(fmt.Sprintf("c%d", i), "咖啡馆", 5.0, 2000))
	}
	for i := 0; i < 10; i++ {
		venues = append(venues, venue(fmt.Sprintf("r%d", i), "餐厅", 3.0, 2000))
	}
	got := r.Rank(venues, []string{"咖啡馆", "餐厅"}, "")
	if len(got) != 8 {
		t.Fatalf("len = %d, want cap 8", len(got))
	}
	counts := map[string]int{}
	for _, v := range got {
		counts[v.Category]++
	}
	// max(2, 8/2) = 4 per category despite the cafes outscoring.
	if counts["咖啡馆"] != 4 || counts["餐厅"] != 4 {
		t.Fatalf("counts = %v, want 4 per category", counts)
	}
	// Global re-sort puts the stronger category first.
	if got[0].Category != "咖啡馆" {
		t.Fatalf("head category = %q", got[0].Category)
	}
}

func TestBalancingNeverPads(t *testing.T) {
	r := NewRanker(8, 5)
	venues := []Venue{
		venue("c0", "咖啡馆", 4.0, 1000),
		venue("r0", "餐厅", 4.0, 1000),
	}
	got := r.Rank(venues, []string{"咖啡馆", "餐厅"}, "")
	if len(got) != 2 {
		t.Fatalf("len = %d: thin categories must not be padded", len(got))
	}
}

func TestBalancingFloorOfTwo(t *testing.T) {
	// Five categories: 8/5 rounds down to 1, floor lifts it to 2.
	r := NewRanker(8, 5)
	var venues []Venue
	cats := []string{"a", "b", "c", "d", "e"}
	for _, c := range cats {
		for i := 0; i < 3; i++ {
			venues = append(venues, venue(fmt.Sprintf("%s%d", c, i), c, 4.0, 2000))
		}
	}
	got := r.Rank(venues, cats, "")
	// Each group keeps 2, then the global cap trims to 8.
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}
}

func TestUntaggedVenuesSkipBalancing(t *testing.T) {
	// A keyword-free fallback search leaves Category empty; a
	// multi-category request must still return those venues.
	r := NewRanker(8, 5)
	venues := []Venue{
		venue("附近店A", "", 4.0, 800),
		venue("附近店B", "", 3.5, 600),
	}
	got := r.Rank(venues, []string{"咖啡馆", "餐厅"}, "")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 untagged venues kept", len(got))
	}
	if got[0].Name != "附近店A" {
		t.Fatalf("head = %q, want highest score first", got[0].Name)
	}
}

func TestTierReasonsFallback(t *testing.T) {
	v := venue("远处无评分", "咖啡馆", 0, 1800)
	reasons := tierReasons(v)
	if len(reasons) != 1 || reasons[0] != "综合评分较高" {
		t.Fatalf("reasons = %v, want generic fallback", reasons)
	}
	near := venue("近处好店", "咖啡馆", 4.7, 300)
	reasons = tierReasons(near)
	if reasons[0] != "距离中心点很近" {
		t.Fatalf("reasons = %v", reasons)
	}
}
