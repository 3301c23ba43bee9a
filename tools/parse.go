package tools

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultLocation is used when no known city is mentioned.
	DefaultLocation = "수원"
	// DefaultCapacityKW is used when no capacity is mentioned.
	DefaultCapacityKW = 5.0
)

// Locations are the cities the tools know about, in match order.
var Locations = []string{"수원", "서울", "부산", "대구", "인천", "광주", "대전", "울산"}

var capacityPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*kw`)

// ParseLocation returns the first known city mentioned in text, or
// DefaultLocation.
func ParseLocation(text string) string {
	for _, loc := range Locations {
		if strings.Contains(text, loc) {
			return loc
		}
	}
	return DefaultLocation
}

// ParseCapacity returns the first "<number> kW" in text, case-insensitively,
// or DefaultCapacityKW.
func ParseCapacity(text string) float64 {
	m := capacityPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return DefaultCapacityKW
	}
	capacity, err := strconv.ParseFloat(m[1], 64)
	if err != nil || capacity <= 0 {
		return DefaultCapacityKW
	}
	return capacity
}

// PredictionRequest is what a prediction question asks about.
type PredictionRequest struct {
	Location   string
	CapacityKW float64
}

// ParsePredictionRequest extracts location and capacity from text.
func ParsePredictionRequest(text string) PredictionRequest {
	return PredictionRequest{
		Location:   ParseLocation(text),
		CapacityKW: ParseCapacity(text),
	}
}
