package recommend

import (
	"context"
	"io"
	"log"
	"math"
	"sync"

	"github.com/meetspot-ai/meetspot/internal/amap"
	"github.com/meetspot-ai/meetspot/internal/geo"
)

// PlaceAPI is the slice of the map client used for candidate evaluation
// and venue search.
type PlaceAPI interface {
	SearchAround(ctx context.Context, location, keywords string, radius int, typeCodes string) ([]amap.POI, error)
}

// Candidate evaluation constants. Density looks for the requested
// category around each candidate; transit looks for metro stations.
const (
	densityRadius  = 1000 // meters
	transitRadius  = 1000
	transitKeyword = "地铁站"

	innerRingRadius = 500.0
	outerRingRadius = 1000.0
	ringPoints      = 8

	weightDensity  = 0.4
	weightTransit  = 0.3
	weightFairness = 0.3
)

// CenterEngine chooses the meeting center for a set of participants.
type CenterEngine struct {
	places PlaceAPI
	logger *log.Logger
}

// NewCenterEngine builds a center engine. places may be nil, in which
// case SmartCenter degrades to the geometric center with zero density
// and transit scores.
func NewCenterEngine(places PlaceAPI, logger *log.Logger) *CenterEngine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &CenterEngine{places: places, logger: logger}
}

// GeometricCenter computes the plain geometric center. Fewer than two
// points is an InsufficientInputError.
func (e *CenterEngine) GeometricCenter(points []geo.Coordinate) (geo.Coordinate, error) {
	if len(points) < 2 {
		return geo.Coordinate{}, &InsufficientInputError{Got: len(points), Need: 2}
	}
	return geo.Center(points)
}

// SmartCenter evaluates the geometric center plus two rings of radial
// offsets and picks the candidate with the best composite of category
// density, transit proximity, and participant fairness. Ties keep the
// earliest candidate, so the geometric center wins when nothing beats it.
func (e *CenterEngine) SmartCenter(ctx context.Context, points []geo.Coordinate, category string) (CenterReport, error) {
	center, err := e.GeometricCenter(points)
	if err != nil {
		return CenterReport{}, err
	}

	candidates := candidatePositions(center)
	evaluated := make([]CenterCandidate, len(candidates))

	var wg sync.WaitGroup
	for i, pos := range candidates {
		wg.Add(1)
		go func(i int, pos geo.Coordinate) {
			defer wg.Done()
			evaluated[i] = e.evaluate(ctx, pos, points, category)
		}(i, pos)
	}
	wg.Wait()

	best := evaluated[0]
	for _, c := range evaluated[1:] {
		if c.Composite > best.Composite {
			best = c
		}
	}

	e.logger.Printf("smart center: %d candidates, best composite %.1f at %s",
		len(evaluated), best.Composite, best.Coordinate)
	return CenterReport{
		Geometric:  center,
		Chosen:     best.Coordinate,
		Best:       best,
		Candidates: len(evaluated),
	}, nil
}

func candidatePositions(center geo.Coordinate) []geo.Coordinate {
	out := []geo.Coordinate{center}
	for _, radius := range []float64{innerRingRadius, outerRingRadius} {
		for k := 0; k < ringPoints; k++ {
			angle := 2 * math.Pi * float64(k) / ringPoints
			out = append(out, geo.Offset(center, radius*math.Cos(angle), radius*math.Sin(angle)))
		}
	}
	return out
}

func (e *CenterEngine) evaluate(ctx context.Context, pos geo.Coordinate, participants []geo.Coordinate, category string) CenterCandidate {
	c := CenterCandidate{Coordinate: pos}

	if e.places != nil {
		if pois, err := e.places.SearchAround(ctx, pos.String(), category, densityRadius, ""); err == nil {
			c.POIDensity = math.Min(float64(len(pois))*5, 100)
		} else {
			e.logger.Printf("density probe at %s failed: %v", pos, err)
		}
		if pois, err := e.places.SearchAround(ctx, pos.String(), transitKeyword, transitRadius, ""); err == nil {
			c.Transit = math.Min(float64(len(pois))*10, 100)
		} else {
			e.logger.Printf("transit probe at %s failed: %v", pos, err)
		}
	}

	c.Fairness = FairnessScore(pos, participants)
	c.Composite = weightDensity*c.POIDensity + weightTransit*c.Transit + weightFairness*c.Fairness
	return c
}

// FairnessScore rates how evenly a point sits between participants:
// 100 minus the spread between the farthest and nearest participant in
// hundreds of meters, clamped to [0, 100].
func FairnessScore(pos geo.Coordinate, participants []geo.Coordinate) float64 {
	if len(participants) == 0 {
		return 0
	}
	minD, maxD := math.Inf(1), math.Inf(-1)
	for _, p := range participants {
		d := geo.Distance(pos, p)
		minD = math.Min(minD, d)
		maxD = math.Max(maxD, d)
	}
	score := 100 - (maxD-minD)/100
	return math.Max(0, math.Min(100, score))
}
