package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		name      string
		url       string
		wantSkip  int64
		wantLimit int64
	}{
		{"defaults", "/products", 0, 20},
		{"explicit", "/products?page=3&limit=10", 20, 10},
		{"clamped to max", "/products?limit=500", 0, 100},
		{"garbage falls back", "/products?page=abc&limit=-5", 0, 20},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", c.url, nil)
			skip, limit := ParsePagination(r, 20, 100)
			assert.Equal(t, c.wantSkip, skip)
			assert.Equal(t, c.wantLimit, limit)
		})
	}
}

func TestParseSort(t *testing.T) {
	def := bson.D{{Key: "dateCreated", Value: -1}}
	allowed := map[string]bson.D{
		"price":  {{Key: "price", Value: 1}},
		"newest": {{Key: "dateCreated", Value: -1}},
	}

	assert.Equal(t, allowed["price"], ParseSort("price", def, allowed))
	assert.Equal(t, def, ParseSort("not-a-key", def, allowed))
	assert.Equal(t, def, ParseSort("", def, allowed))
}

func TestRegexFilterQuotesMeta(t *testing.T) {
	filter := RegexFilter("name", "c++ (pro)")

	inner, ok := filter["name"].(bson.M)
	assert.True(t, ok)
	assert.Equal(t, `c\+\+ \(pro\)`, inner["$regex"])
	assert.Equal(t, "i", inner["$options"])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "photo.jpg", SanitizeFilename("photo.jpg"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "my_photo__1_.png", SanitizeFilename("my photo (1).png"))
}
