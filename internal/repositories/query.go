package repositories

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const earthRadiusMeters = 6371008.8

// slugPattern matches base and base-N case-insensitively, the shape of generated slugs.
func slugPattern(base string) string {
	return `^(` + regexp.QuoteMeta(base) + `)((-[0-9]*$)?)$`
}

func countSlugMatches(base string, slugs []string) int {
	re := regexp.MustCompile(`(?i)` + slugPattern(base))
	n := 0
	for _, s := range slugs {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}

// haversine returns the great-circle distance in meters between two lng/lat points.
func haversine(lng1, lat1, lng2, lat2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// boundingBox returns a lng/lat box containing every point within meters of the center.
func boundingBox(lng, lat, meters float64) (minLng, maxLng, minLat, maxLat float64) {
	dLat := meters / earthRadiusMeters * 180 / math.Pi
	cos := math.Cos(lat * math.Pi / 180)
	dLng := 180.0
	if cos > 1e-9 {
		dLng = math.Min(180, dLat/cos)
	}
	return lng - dLng, lng + dLng, math.Max(-90, lat-dLat), math.Min(90, lat+dLat)
}

// searchTerms splits a free-text query into distinct lowercase terms.
func searchTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	return terms
}

// textScore approximates a text index score: term hits weighted by field length.
func textScore(terms []string, fields ...string) float64 {
	var score float64
	for _, field := range fields {
		words := strings.Fields(strings.ToLower(field))
		if len(words) == 0 {
			continue
		}
		hits := 0
		for _, w := range words {
			w = strings.Trim(w, ".,;:!?\"'()")
			for _, t := range terms {
				if w == t || strings.HasPrefix(w, t) {
					hits++
				}
			}
		}
		score += float64(hits) * (0.5 + 0.5/float64(len(words)))
	}
	return score
}

func uniqueTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
