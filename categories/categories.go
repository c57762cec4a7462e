package categories

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mercato/apperr"
	"mercato/db"
	"mercato/models"
	"mercato/mq"
	"mercato/rdx"
	"mercato/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const listCacheKey = "categories:list"

// --- List Categories ---
func GetCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if cached, err := rdx.RdxGet(listCacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	categories, err := utils.FindAndDecode[models.Category](ctx, db.CategoriesCollection, bson.M{}, opts)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to fetch categories", err))
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	if data, err := json.Marshal(categories); err == nil {
		if err := rdx.RdxSetTTL(listCacheKey, string(data), 5*time.Minute); err != nil {
			log.Printf("Redis cache failed: %v", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, categories)
}

func GetCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	categoryID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Category with this ID was not found"))
		return
	}

	var category models.Category
	err = db.CategoriesCollection.FindOne(ctx, bson.M{"_id": categoryID}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Category was not found"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to fetch category", err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, category)
}

func CreateCategory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}
	if category.Name == "" {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Category name is required"))
		return
	}

	category.ID = primitive.NewObjectID()
	if _, err := db.CategoriesCollection.InsertOne(ctx, category); err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Category was not created", err))
		return
	}

	invalidateListCache()
	go mq.Emit(context.Background(), "category-created", models.Index{EntityType: "category", EntityId: category.ID.Hex(), Method: "POST"})

	utils.RespondWithJSON(w, http.StatusCreated, category)
}

func EditCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	categoryID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Category with this ID was not found"))
		return
	}

	var input models.Category
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}

	update := bson.M{"$set": bson.M{
		"name":  input.Name,
		"icon":  input.Icon,
		"color": input.Color,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var category models.Category
	err = db.CategoriesCollection.FindOneAndUpdate(ctx, bson.M{"_id": categoryID}, update, opts).Decode(&category)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Category was not found"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to update category", err))
		return
	}

	invalidateListCache()
	go mq.Emit(context.Background(), "category-updated", models.Index{EntityType: "category", EntityId: category.ID.Hex(), Method: "PUT"})

	utils.RespondWithJSON(w, http.StatusOK, category)
}

func DeleteCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	categoryID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Category with this ID was not found"))
		return
	}

	res, err := db.CategoriesCollection.DeleteOne(ctx, bson.M{"_id": categoryID})
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to delete category", err))
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Category was not found"))
		return
	}

	invalidateListCache()
	go mq.Emit(context.Background(), "category-deleted", models.Index{EntityType: "category", EntityId: categoryID.Hex(), Method: "DELETE"})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Category was deleted"})
}

func invalidateListCache() {
	if err := rdx.RdxDel(listCacheKey); err != nil {
		log.Printf("Redis invalidate failed: %v", err)
	}
}
