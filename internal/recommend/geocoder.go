package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/meetspot-ai/meetspot/internal/amap"
	"github.com/meetspot-ai/meetspot/internal/cache"
	"github.com/meetspot-ai/meetspot/internal/geo"
)

// GeocodeAPI is the slice of the map client the geocoder needs.
type GeocodeAPI interface {
	Geocode(ctx context.Context, address string) ([]amap.Geocode, error)
}

// universityAliases maps common campus shorthands to full addresses that
// include the city and district, so 北大 does not resolve to some other
// city's 北大街.
var universityAliases = map[string]string{
	"北大":   "北京市海淀区北京大学",
	"清华":   "北京市海淀区清华大学",
	"上交":   "上海市闵行区上海交通大学",
	"复旦":   "上海市杨浦区复旦大学",
	"浙大":   "杭州市西湖区浙江大学",
	"南大":   "南京市鼓楼区南京大学",
	"中大":   "广州市海珠区中山大学",
	"华科":   "武汉市洪山区华中科技大学",
	"西交":   "西安市碑林区西安交通大学",
	"哈工大":  "哈尔滨市南岗区哈尔滨工业大学",
	"中科大":  "合肥市包河区中国科学技术大学",
	"人大":   "北京市海淀区中国人民大学",
	"北师大":  "北京市海淀区北京师范大学",
	"华师大":  "上海市普陀区华东师范大学",
	"北理工":  "北京市海淀区北京理工大学",
	"北航":   "北京市海淀区北京航空航天大学",
	"同济":   "上海市杨浦区同济大学",
	"东南":   "南京市玄武区东南大学",
	"天大":   "天津市南开区天津大学",
	"南开":   "天津市南开区南开大学",
	"厦大":   "厦门市思明区厦门大学",
	"山大":   "济南市历城区山东大学",
	"川大":   "成都市武侯区四川大学",
	"重大":   "重庆市沙坪坝区重庆大学",
	"兰大":   "兰州市城关区兰州大学",
	"吉大":   "长春市朝阳区吉林大学",
	"华南理工": "广州市天河区华南理工大学",
	"电子科大": "成都市郫都区电子科技大学",
	"西工大":  "西安市碑林区西北工业大学",
	"中南":   "长沙市岳麓区中南大学",
	"湖大":   "长沙市岳麓区湖南大学",
	"暨大":   "广州市天河区暨南大学",
	"央美":   "北京市朝阳区中央美术学院",
	"北影":   "北京市海淀区北京电影学院",
	"中戏":   "北京市东城区中央戏剧学院",
}

// ExpandAlias returns the full-address form of a known shorthand, or the
// input unchanged.
func ExpandAlias(input string) string {
	if full, ok := universityAliases[input]; ok {
		return full
	}
	return input
}

// Geocoder resolves free-form location text to coordinates. Results are
// cached under the ORIGINAL user input, so a shorthand and its expansion
// are distinct cache entries.
type Geocoder struct {
	api    GeocodeAPI
	store  cache.Store
	logger *log.Logger
}

// NewGeocoder builds a geocoder. store may be nil to disable caching.
func NewGeocoder(api GeocodeAPI, store cache.Store, logger *log.Logger) *Geocoder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Geocoder{api: api, store: store, logger: logger}
}

// Resolve turns one user-typed location into a Location. The input runs
// through alias expansion before hitting the upstream; on failure the
// returned AddressResolutionError names the expansion that was tried.
func (g *Geocoder) Resolve(ctx context.Context, input string) (Location, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Location{}, &AddressResolutionError{Input: input, Suggestions: []string{"地址为空，请输入具体地点"}}
	}

	if g.store != nil {
		if raw, ok, err := g.store.Get(ctx, "geocode:"+input); err == nil && ok {
			var loc Location
			if json.Unmarshal(raw, &loc) == nil {
				return loc, nil
			}
		}
	}

	expanded := ExpandAlias(input)
	if expanded != input {
		g.logger.Printf("expanded %q to %q", input, expanded)
	}

	geos, err := g.api.Geocode(ctx, expanded)
	if err != nil {
		return Location{}, &AddressResolutionError{
			Input:       input,
			Expanded:    expanded,
			Suggestions: AddressSuggestions(input),
			Cause:       err,
		}
	}
	if len(geos) == 0 || geos[0].Location == "" {
		return Location{}, &AddressResolutionError{
			Input:       input,
			Expanded:    expanded,
			Suggestions: AddressSuggestions(input),
		}
	}

	coord, err := geo.ParseCoordinate(geos[0].Location)
	if err != nil {
		return Location{}, &AddressResolutionError{
			Input:       input,
			Expanded:    expanded,
			Suggestions: AddressSuggestions(input),
			Cause:       err,
		}
	}
	loc := Location{
		Input:      input,
		Address:    geos[0].FormattedAddress,
		Coordinate: coord,
	}
	if loc.Address == "" {
		loc.Address = input
	}

	if g.store != nil {
		if raw, err := json.Marshal(loc); err == nil {
			if err := g.store.Set(ctx, "geocode:"+input, raw); err != nil {
				g.logger.Printf("cache write for %q failed: %v", input, err)
			}
		}
	}
	return loc, nil
}

// ResolveAll resolves every input, failing on the first unresolvable one.
func (g *Geocoder) ResolveAll(ctx context.Context, inputs []string) ([]Location, error) {
	locs := make([]Location, 0, len(inputs))
	for _, in := range inputs {
		loc, err := g.Resolve(ctx, in)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// vagueTerms maps generic words to concrete-input hints.
var vagueTerms = []struct {
	term string
	hint string
}{
	{"大学", "请输入完整大学名称，如 '北京大学'、'清华大学'"},
	{"学校", "请输入具体学校全名，如 '上海交通大学附属中学'"},
	{"医院", "请输入完整医院名称，如 '北京协和医院'"},
	{"商场", "请输入具体商场名称，如 '王府井百货大楼'"},
	{"火车站", "请输入完整站名，如 '北京南站'、'上海虹桥站'"},
	{"机场", "请输入完整机场名称，如 '北京首都国际机场'"},
	{"公园", "请输入具体公园名称，如 '颐和园'、'中山公园'"},
	{"广场", "请输入具体广场名称，如 '天安门广场'、'人民广场'"},
	{"地铁站", "请输入完整地铁站名，如 '中关村地铁站'"},
}

var majorCities = map[string]bool{
	"北京": true, "上海": true, "广州": true, "深圳": true, "杭州": true,
	"南京": true, "武汉": true, "成都": true, "西安": true, "天津": true,
}

// AddressSuggestions produces user-facing hints for an input that failed
// to resolve: flags vague terms, bare city names, and too-short input,
// with a generic fallback when nothing specific applies.
func AddressSuggestions(input string) []string {
	var out []string
	for _, v := range vagueTerms {
		if strings.Contains(input, v.term) {
			out = append(out, v.hint)
		}
	}
	if majorCities[input] {
		out = append(out,
			fmt.Sprintf("城市名过于宽泛，请添加具体区域，如 '%s市朝阳区三里屯'", input),
			fmt.Sprintf("或使用知名地标，如 '%s火车站'、'%s机场'", input, input))
	}
	switch n := utf8.RuneCountInString(input); {
	case n <= 2:
		out = append(out,
			"地址过于简短，请提供更详细的信息",
			"标准格式：'省市 + 区县 + 具体地点'，如 '北京市海淀区中关村大街'")
	case n <= 4:
		out = append(out,
			"地址信息不够具体，建议添加区县信息或使用完整地标名")
	}
	if len(out) == 0 {
		out = append(out,
			"请输入具体地址，如 '北京市海淀区中关村大街1号'",
			"或使用知名地标，如 '北京大学'、'天安门广场'",
			"检查拼写并尝试官方全称")
	}
	return out
}
