package amap

// Wire types for the AMap v3 REST API. Numeric fields arrive as strings
// and, when absent, sometimes as empty arrays; keep them loose here and
// let callers parse.

type geocodeResponse struct {
	Status   string    `json:"status"`
	Info     string    `json:"info"`
	Infocode string    `json:"infocode"`
	Count    string    `json:"count"`
	Geocodes []Geocode `json:"geocodes"`
}

// Geocode is one candidate resolution of a free-form address.
type Geocode struct {
	FormattedAddress string `json:"formatted_address"`
	Province         string `json:"province"`
	City             string `json:"city"`
	District         string `json:"district"`
	Location         string `json:"location"` // "lng,lat"
	Level            string `json:"level"`
}

type placeResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Infocode string `json:"infocode"`
	Count    string `json:"count"`
	POIs     []POI  `json:"pois"`
}

// POI is one place record from the around search.
type POI struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	TypeCode string  `json:"typecode"`
	Address  string  `json:"address"`
	Location string  `json:"location"` // "lng,lat"
	Tel      string  `json:"tel"`
	Distance string  `json:"distance"` // meters from the search center
	BizExt   BizExt  `json:"biz_ext"`
	Photos   []Photo `json:"photos"`
}

// BizExt carries the rating and cost extensions. AMap returns "[]" for
// missing values, so these stay raw strings.
type BizExt struct {
	Rating interface{} `json:"rating"`
	Cost   interface{} `json:"cost"`
}

// Photo is one POI photo reference.
type Photo struct {
	Title interface{} `json:"title"`
	URL   string      `json:"url"`
}

// RatingString normalizes the rating extension to a plain string,
// returning "" when the upstream sent an empty array or nothing.
func (b BizExt) RatingString() string {
	if s, ok := b.Rating.(string); ok {
		return s
	}
	return ""
}

// CostString normalizes the cost extension like RatingString.
func (b BizExt) CostString() string {
	if s, ok := b.Cost.(string); ok {
		return s
	}
	return ""
}
