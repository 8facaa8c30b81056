package recommend

import (
	"fmt"
	"sort"
	"strings"
)

// Ranking constants. Distance influence fades to zero at 2km.
const (
	ratingWeight       = 10.0
	distanceWeight     = 20.0
	distanceHorizon    = 2000.0
	categoryMatchBonus = 15.0
	requirementBonus   = 10.0

	// MultiCategoryCap bounds the final list for multi-category requests;
	// SingleCategoryTop bounds single-category ones.
	MultiCategoryCap  = 8
	SingleCategoryTop = 5
)

// requirementThemes matches free-text wishes against venue tags. A theme
// scores only when the requirement text asks for it AND the venue's tag
// text shows evidence.
var requirementThemes = []struct {
	label    string
	triggers []string // looked up in the requirement text
	markers  []string // looked up in venue type/name text
}{
	{"停车便利", []string{"停车", "车位", "开车"}, []string{"停车"}},
	{"环境安静", []string{"安静", "清净", "不吵"}, []string{"咖啡", "书店", "图书馆", "茶馆"}},
	{"商务会谈", []string{"商务", "会议", "办公", "谈事"}, []string{"商务", "酒店", "写字楼"}},
	{"交通便利", []string{"交通", "地铁", "公交", "好找"}, []string{"地铁", "车站", "交通"}},
}

// Ranker scores and orders venues.
type Ranker struct {
	multiCap  int
	singleTop int
}

// NewRanker builds a ranker; non-positive bounds fall back to defaults.
func NewRanker(multiCap, singleTop int) *Ranker {
	if multiCap <= 0 {
		multiCap = MultiCategoryCap
	}
	if singleTop <= 0 {
		singleTop = SingleCategoryTop
	}
	return &Ranker{multiCap: multiCap, singleTop: singleTop}
}

// Rank scores every venue, then either balances representation across
// categories (multi-category requests whose venues carry category tags)
// or takes a simple top slice.
// Balancing keeps the top max(2, cap/numCategories) per category and
// re-sorts the survivors globally; it never pads a thin category.
// All sorts are stable, so equal scores keep upstream order.
func (r *Ranker) Rank(venues []Venue, categories []string, requirements string) []ScoredVenue {
	scored := make([]ScoredVenue, 0, len(venues))
	for _, v := range venues {
		scored = append(scored, r.score(v, categories, requirements))
	}

	if len(categories) > 1 && anyTagged(scored, categories) {
		return r.balance(scored, categories)
	}

	sortByScore(scored)
	if len(scored) > r.singleTop {
		scored = scored[:r.singleTop]
	}
	return scored
}

func (r *Ranker) score(v Venue, categories []string, requirements string) ScoredVenue {
	s := ScoredVenue{Venue: v}

	s.Score = v.Rating * ratingWeight
	if d := distanceWeight * (1 - v.Distance/distanceHorizon); d > 0 {
		s.Score += d
	}
	if len(categories) > 1 {
		for _, c := range categories {
			if v.Category == c {
				s.Score += categoryMatchBonus
				break
			}
		}
	}

	tagText := v.TypeText + " " + v.Name
	for _, theme := range requirementThemes {
		if containsAny(requirements, theme.triggers) && containsAny(tagText, theme.markers) {
			s.Score += requirementBonus
			s.Reasons = append(s.Reasons, theme.label)
		}
	}

	s.Reasons = append(s.Reasons, tierReasons(v)...)
	return s
}

// anyTagged reports whether at least one venue carries a requested
// category. A keyword-free fallback search leaves venues untagged; those
// sets skip balancing and take the plain top slice instead.
func anyTagged(scored []ScoredVenue, categories []string) bool {
	for _, s := range scored {
		for _, c := range categories {
			if s.Category == c {
				return true
			}
		}
	}
	return false
}

func (r *Ranker) balance(scored []ScoredVenue, categories []string) []ScoredVenue {
	perGroup := r.multiCap / len(categories)
	if perGroup < 2 {
		perGroup = 2
	}

	byCategory := make(map[string][]ScoredVenue)
	for _, s := range scored {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	kept := make([]ScoredVenue, 0, r.multiCap)
	for _, cat := range categories {
		group := byCategory[cat]
		sortByScore(group)
		if len(group) > perGroup {
			group = group[:perGroup]
		}
		kept = append(kept, group...)
	}

	sortByScore(kept)
	if len(kept) > r.multiCap {
		kept = kept[:r.multiCap]
	}
	return kept
}

func sortByScore(s []ScoredVenue) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Score > s[j].Score })
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// tierReasons produces the human-readable tail reasons: a distance tier,
// a rating tier, or the generic fallback when neither stands out.
func tierReasons(v Venue) []string {
	var out []string
	switch {
	case v.Distance <= 500:
		out = append(out, "距离中心点很近")
	case v.Distance <= 1000:
		out = append(out, fmt.Sprintf("距离适中（约%.0f米）", v.Distance))
	}
	if v.HasRating && v.Rating >= 4.5 {
		out = append(out, fmt.Sprintf("评分优秀（%.1f分）", v.Rating))
	} else if v.HasRating && v.Rating >= 4.0 {
		out = append(out, fmt.Sprintf("评分良好（%.1f分）", v.Rating))
	}
	if len(out) == 0 {
		out = append(out, "综合评分较高")
	}
	return out
}
