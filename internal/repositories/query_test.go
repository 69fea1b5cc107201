package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCountSlugMatches(t *testing.T) {
	slugs := []string{"cafe-retro", "Cafe-Retro-2", "cafe-retro-3", "cafe-retro-bar", "cafe-retros", "old-cafe-retro"}
	assert.Equal(t, 3, countSlugMatches("cafe-retro", slugs))
	assert.Equal(t, 0, countSlugMatches("tea-house", slugs))
	assert.Equal(t, 1, countSlugMatches("cafe-retro-bar", slugs))
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 0, haversine(-79.38, 43.65, -79.38, 43.65), 1e-6)
	// One degree of latitude is about 111 km.
	assert.InDelta(t, 111195, haversine(0, 0, 0, 1), 100)
	// Toronto to Montreal.
	assert.InDelta(t, 504000, haversine(-79.3832, 43.6532, -73.5673, 45.5017), 5000)
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	lng, lat := -79.3832, 43.6532
	minLng, maxLng, minLat, maxLat := boundingBox(lng, lat, 10000)

	assert.Less(t, minLng, lng)
	assert.Greater(t, maxLng, lng)
	assert.GreaterOrEqual(t, haversine(lng, lat, lng, maxLat), 9999.0)
	assert.GreaterOrEqual(t, haversine(lng, lat, maxLng, lat), 9990.0)
	assert.GreaterOrEqual(t, haversine(lng, lat, lng, minLat), 9999.0)
}

func TestTextScore(t *testing.T) {
	terms := searchTerms("Coffee  coffee BEANS")
	assert.Equal(t, []string{"coffee", "beans"}, terms)

	strong := textScore(terms, "Coffee Beans", "The best coffee in town")
	weak := textScore(terms, "Tea House", "Also serves coffee")
	none := textScore(terms, "Tea House", "Only tea")

	assert.Greater(t, strong, weak)
	assert.Greater(t, weak, 0.0)
	assert.Equal(t, 0.0, none)
}

func TestUniqueTags(t *testing.T) {
	assert.Equal(t, []string{"Family Friendly", "Wifi"}, uniqueTags([]string{"Wifi", " ", "Family Friendly", "Wifi"}))
	assert.Equal(t, []string{}, uniqueTags(nil))
}

func TestSlugFilterUsesCaseInsensitiveRegex(t *testing.T) {
	re, ok := slugFilter("cafe-retro")["slug"].(primitive.Regex)
	assert.True(t, ok)
	assert.Equal(t, "i", re.Options)
	assert.Equal(t, `^(cafe-retro)((-[0-9]*$)?)$`, re.Pattern)
}

func TestTopStoresPipeline(t *testing.T) {
	p := topStoresPipeline(2, 10)
	assert.Len(t, p, 5)

	assert.Equal(t, "$lookup", p[0][0].Key)
	assert.Equal(t, "$match", p[1][0].Key)
	match := p[1][0].Value.(bson.D)
	assert.Equal(t, "reviews.1", match[0].Key)
	assert.Equal(t, "$project", p[2][0].Key)
	assert.Equal(t, "$sort", p[3][0].Key)
	assert.Equal(t, bson.E{Key: "$limit", Value: 10}, p[4][0])

	// Without a minimum there is nothing to match on.
	assert.Len(t, topStoresPipeline(0, 10), 4)
}

func TestTagsPipelineAndFilters(t *testing.T) {
	p := tagsPipeline()
	assert.Len(t, p, 3)
	assert.Equal(t, bson.E{Key: "$unwind", Value: "$tags"}, p[0][0])

	assert.Equal(t, bson.M{"tags": "Wifi"}, tagFilter("Wifi"))
	assert.Equal(t, bson.M{"tags.0": bson.M{"$exists": true}}, tagFilter(""))

	near := nearFilter(-79.4, 43.6, 10000)
	geo := near["location"].(bson.M)["$near"].(bson.M)
	assert.Equal(t, 10000.0, geo["$maxDistance"])
	assert.Equal(t, []float64{-79.4, 43.6}, geo["$geometry"].(bson.M)["coordinates"])
}
