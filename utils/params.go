package utils

import (
	"context"
	"net/http"
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ParsePagination reads page/limit query params, clamping limit to max.
func ParsePagination(r *http.Request, def, max int64) (skip, limit int64) {
	q := r.URL.Query()

	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.ParseInt(q.Get("limit"), 10, 64)
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}

	return (page - 1) * limit, limit
}

// ParseSort maps a sort keyword to a bson sort document.
func ParseSort(key string, def bson.D, allowed map[string]bson.D) bson.D {
	if s, ok := allowed[key]; ok {
		return s
	}
	return def
}

func RegexFilter(field, search string) bson.M {
	return bson.M{field: bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}}
}

// FindAndDecode runs a find and decodes every document into a slice of T.
func FindAndDecode[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AggregateAndDecode runs an aggregation pipeline and decodes every result.
func AggregateAndDecode[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
