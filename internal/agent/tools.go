package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meetspot-ai/meetspot/internal/geo"
	"github.com/meetspot-ai/meetspot/internal/recommend"
)

// The four built-in tools mirror the recommendation pipeline so the
// model can run it stepwise or call the full pipeline in one shot.

func mustJSON(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(raw)
}

// GeocodeTool resolves user-typed locations to coordinates.
type GeocodeTool struct {
	Geocoder *recommend.Geocoder
}

func (t *GeocodeTool) Name() string { return "geocode_locations" }

func (t *GeocodeTool) Description() string {
	return "将一组地点名称解析为经纬度坐标，支持大学简称自动扩展"
}

func (t *GeocodeTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"locations": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "地点名称列表，如 ['北京大学','国贸']",
			},
		},
		"required": []string{"locations"},
	}
}

func (t *GeocodeTool) Execute(ctx context.Context, args string) (string, error) {
	var in struct {
		Locations []string `json:"locations"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("bad arguments: %w", err)
	}
	locs, err := t.Geocoder.ResolveAll(ctx, in.Locations)
	if err != nil {
		return "", err
	}
	return mustJSON(locs), nil
}

// CenterTool picks the meeting center for a set of coordinates.
type CenterTool struct {
	Engine *recommend.CenterEngine
}

func (t *CenterTool) Name() string { return "calculate_center" }

func (t *CenterTool) Description() string {
	return "根据参与者坐标计算最佳会面中心点，综合周边密度、交通和公平性"
}

func (t *CenterTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"coordinates": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"lng": map[string]interface{}{"type": "number"},
						"lat": map[string]interface{}{"type": "number"},
					},
					"required": []string{"lng", "lat"},
				},
			},
			"keywords": map[string]interface{}{
				"type":        "string",
				"description": "场所类型，用于评估候选点周边密度，默认 咖啡馆",
			},
			"use_smart_algorithm": map[string]interface{}{
				"type":        "boolean",
				"description": "false 时只返回几何中心",
			},
		},
		"required": []string{"coordinates"},
	}
}

func (t *CenterTool) Execute(ctx context.Context, args string) (string, error) {
	var in struct {
		Coordinates []geo.Coordinate `json:"coordinates"`
		Keywords    string           `json:"keywords"`
		UseSmart    *bool            `json:"use_smart_algorithm"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("bad arguments: %w", err)
	}
	if in.Keywords == "" {
		in.Keywords = "咖啡馆"
	}
	if in.UseSmart != nil && !*in.UseSmart {
		center, err := t.Engine.GeometricCenter(in.Coordinates)
		if err != nil {
			return "", err
		}
		return mustJSON(map[string]interface{}{
			"center":    center,
			"algorithm": "geometric",
		}), nil
	}
	report, err := t.Engine.SmartCenter(ctx, in.Coordinates, in.Keywords)
	if err != nil {
		return "", err
	}
	return mustJSON(map[string]interface{}{
		"center":    report.Chosen,
		"algorithm": "smart",
		"report":    report,
	}), nil
}

// SearchTool finds venues around a center.
type SearchTool struct {
	Searcher *recommend.Searcher
}

func (t *SearchTool) Name() string { return "search_venues" }

func (t *SearchTool) Description() string {
	return "在中心点附近按类型搜索场所，多类型并发搜索并去重"
}

func (t *SearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"center": map[string]interface{}{
				"type":        "string",
				"description": "中心点坐标 'lng,lat'",
			},
			"keywords": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"radius": map[string]interface{}{
				"type":        "integer",
				"description": "搜索半径（米），默认 5000",
			},
			"place_type": map[string]interface{}{
				"type":        "string",
				"description": "可选的高德类型码过滤，如 050000",
			},
		},
		"required": []string{"center", "keywords"},
	}
}

func (t *SearchTool) Execute(ctx context.Context, args string) (string, error) {
	var in struct {
		Center    string   `json:"center"`
		Keywords  []string `json:"keywords"`
		Radius    int      `json:"radius"`
		PlaceType string   `json:"place_type"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("bad arguments: %w", err)
	}
	center, err := geo.ParseCoordinate(in.Center)
	if err != nil {
		return "", err
	}
	venues, err := t.Searcher.Search(ctx, center, in.Keywords, in.Radius, in.PlaceType)
	if err != nil {
		return "", err
	}
	return mustJSON(venues), nil
}

// RecommendTool runs the whole pipeline in one call.
type RecommendTool struct {
	Service *recommend.Service
}

func (t *RecommendTool) Name() string { return "meetspot_recommend" }

func (t *RecommendTool) Description() string {
	return "端到端推荐：解析地点、计算中心点、搜索并排序场所，返回推荐列表和摘要"
}

func (t *RecommendTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"locations": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"keywords": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"user_requirements": map[string]interface{}{
				"type":        "string",
				"description": "自由文本偏好，如 需要停车位、环境安静",
			},
			"place_type": map[string]interface{}{"type": "string"},
		},
		"required": []string{"locations"},
	}
}

func (t *RecommendTool) Execute(ctx context.Context, args string) (string, error) {
	var req recommend.Request
	if err := json.Unmarshal([]byte(args), &req); err != nil {
		return "", fmt.Errorf("bad arguments: %w", err)
	}
	result, err := t.Service.Recommend(ctx, req)
	if err != nil {
		return "", err
	}
	return mustJSON(result), nil
}
