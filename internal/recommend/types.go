package recommend

import (
	"github.com/meetspot-ai/meetspot/internal/geo"
)

// Location is a resolved participant location.
type Location struct {
	Input      string         `json:"input"`   // what the user typed
	Address    string         `json:"address"` // formatted address from the geocoder
	Coordinate geo.Coordinate `json:"coordinate"`
}

// Venue is a candidate meeting place after search, before ranking.
type Venue struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Category   string         `json:"category"` // which search keyword produced it
	TypeText   string         `json:"type_text"`
	Address    string         `json:"address"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Tel        string         `json:"tel,omitempty"`
	Rating     float64        `json:"rating"`    // 0 when upstream had none
	HasRating  bool           `json:"has_rating"`
	Cost       string         `json:"cost,omitempty"`
	Distance   float64        `json:"distance"` // meters from the meeting center
	PhotoURL   string         `json:"photo_url,omitempty"`
}

// ScoredVenue is a venue with its ranking score and reasons.
type ScoredVenue struct {
	Venue
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// CenterCandidate is one evaluated smart-center position.
type CenterCandidate struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	POIDensity float64        `json:"poi_density"`
	Transit    float64        `json:"transit_score"`
	Fairness   float64        `json:"fairness_score"`
	Composite  float64        `json:"composite_score"`
}

// CenterReport describes how the meeting center was chosen.
type CenterReport struct {
	Geometric  geo.Coordinate  `json:"geometric_center"`
	Chosen     geo.Coordinate  `json:"chosen_center"`
	Best       CenterCandidate `json:"best_candidate"`
	Candidates int             `json:"candidates_evaluated"`
}

// Request is one recommendation request.
type Request struct {
	Locations    []string `json:"locations"`
	Keywords     []string `json:"keywords"`          // venue categories, e.g. 咖啡馆
	Requirements string   `json:"user_requirements"` // free text, e.g. 需要停车位
	PlaceType    string   `json:"place_type"`        // AMap type code filter, optional
	Radius       int      `json:"radius"`            // meters, 0 means default
}

// Result is the full recommendation outcome.
type Result struct {
	RequestID string        `json:"request_id"`
	Locations []Location    `json:"locations"`
	Center    CenterReport  `json:"center"`
	Venues    []ScoredVenue `json:"venues"`
	Summary   string        `json:"summary"`
}
