package sink

import (
	"regexp"
	"strings"
)

var locationPattern = regexp.MustCompile(`^L(\d+)_O(\d+)_`)

// pointTags groups the categorization tags attached to every written point so dashboards
// can filter by subsystem without string-matching labels in queries
type pointTags struct {
	system          string
	measurementType string
	line            string
	outstation      string
}

func categorizePoint(label string) pointTags {
	lower := strings.ToLower(label)

	var system string
	switch {
	case strings.Contains(lower, "boiler"):
		system = "boiler"
	case strings.Contains(lower, "ahu"), strings.Contains(lower, "air"):
		system = "ahu"
	case strings.Contains(lower, "chw"), strings.Contains(lower, "chiller"):
		system = "chiller"
	case strings.Contains(lower, "lphw"):
		system = "heating"
	case strings.Contains(lower, "pump"):
		system = "pump"
	case strings.Contains(lower, "valve"):
		system = "valve"
	case strings.Contains(lower, "temp"):
		system = "temperature"
	default:
		system = "other"
	}

	var measurementType string
	switch {
	case strings.Contains(lower, "temp"):
		measurementType = "temperature"
	case strings.Contains(lower, "speed"):
		measurementType = "speed"
	case strings.Contains(lower, "valve"), strings.Contains(lower, "spt"):
		measurementType = "position"
	case strings.Contains(lower, "pump"):
		measurementType = "status"
	case strings.Contains(lower, "press"):
		measurementType = "pressure"
	default:
		measurementType = "value"
	}

	line, outstation := "unknown", "unknown"
	matches := locationPattern.FindStringSubmatch(label)
	if matches != nil {
		line, outstation = matches[1], matches[2]
	}

	return pointTags{
		system:          system,
		measurementType: measurementType,
		line:            line,
		outstation:      outstation,
	}
}
