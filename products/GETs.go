package products

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mercato/apperr"
	"mercato/db"
	"mercato/models"
	"mercato/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// categoryLookup joins each product with its category document.
func categoryLookup() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         "categories",
			"localField":   "category",
			"foreignField": "_id",
			"as":           "categoryDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$categoryDoc",
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}

// --- List Products ---
func GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if categories := r.URL.Query().Get("categories"); categories != "" {
		var ids []primitive.ObjectID
		for _, raw := range strings.Split(categories, ",") {
			id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
			if err != nil {
				utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid category filter"))
				return
			}
			ids = append(ids, id)
		}
		filter["category"] = bson.M{"$in": ids}
	}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["$or"] = []bson.M{
			utils.RegexFilter("name", search),
			utils.RegexFilter("description", search),
		}
	}

	sort := utils.ParseSort(r.URL.Query().Get("sort"),
		bson.D{{Key: "dateCreated", Value: -1}},
		map[string]bson.D{
			"price-asc":  {{Key: "price", Value: 1}},
			"price-desc": {{Key: "price", Value: -1}},
			"newest":     {{Key: "dateCreated", Value: -1}},
		})

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: sort}},
	}
	// the full catalog stays the default; paging is opt-in
	if q := r.URL.Query(); q.Has("page") || q.Has("limit") {
		skip, limit := utils.ParsePagination(r, 20, 100)
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: skip}},
			bson.D{{Key: "$limit", Value: limit}},
		)
	}
	pipeline = append(pipeline, categoryLookup()...)

	products, err := utils.AggregateAndDecode[models.ProductDetail](ctx, db.ProductsCollection, pipeline)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to fetch products", err))
		return
	}
	if products == nil {
		products = []models.ProductDetail{}
	}

	utils.RespondWithJSON(w, http.StatusOK, products)
}

func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	productID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Product with this ID was not found"))
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": productID}}},
	}
	pipeline = append(pipeline, categoryLookup()...)

	products, err := utils.AggregateAndDecode[models.ProductDetail](ctx, db.ProductsCollection, pipeline)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to fetch product", err))
		return
	}
	if len(products) == 0 {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Product was not found"))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, products[0])
}

func GetProductsCount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// registered under the :id wildcard; only /products/get/count is real
	if ps.ByName("id") != "get" {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Not found"))
		return
	}

	count, err := db.ProductsCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Products were not counted", err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"productsCount": count})
}

// GetFeaturedProducts returns the newest featured products. A limit of zero
// (or an absent limit) means unlimited, matching the storage semantics the
// storefront relies on.
func GetFeaturedProducts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if ps.ByName("id") != "get" {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Not found"))
		return
	}

	limit, _ := strconv.ParseInt(ps.ByName("limit"), 10, 64)
	if limit < 0 {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid limit"))
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isFeatured": true}}},
		{{Key: "$sort", Value: bson.D{{Key: "dateCreated", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, categoryLookup()...)

	products, err := utils.AggregateAndDecode[models.ProductDetail](ctx, db.ProductsCollection, pipeline)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Featured products were not found", err))
		return
	}
	if products == nil {
		products = []models.ProductDetail{}
	}

	utils.RespondWithJSON(w, http.StatusOK, products)
}
