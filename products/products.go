package products

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"mercato/apperr"
	"mercato/db"
	"mercato/filemgr"
	"mercato/models"
	"mercato/mq"
	"mercato/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Function to handle the creation of products
func CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Parse the multipart form data (with a 10MB limit)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Unable to parse form"))
		return
	}

	name := r.FormValue("name")
	if len(name) == 0 || len(name) > 100 {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Name must be between 1 and 100 characters"))
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price <= 0 {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid price value. Must be a positive number"))
		return
	}

	stock, err := strconv.Atoi(r.FormValue("countInStock"))
	if err != nil || stock < 0 {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid stock value. Must be a non-negative integer"))
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(r.FormValue("category"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid category ID"))
		return
	}
	if err := categoryExists(ctx, categoryID); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	rating, _ := strconv.ParseFloat(r.FormValue("rating"), 64)
	numReviews, _ := strconv.Atoi(r.FormValue("numReviews"))
	isFeatured, _ := strconv.ParseBool(r.FormValue("isFeatured"))

	product := models.Product{
		ID:              primitive.NewObjectID(),
		Name:            name,
		Description:     r.FormValue("description"),
		RichDescription: r.FormValue("richDescription"),
		Brand:           r.FormValue("brand"),
		Price:           price,
		Category:        categoryID,
		CountInStock:    stock,
		Rating:          rating,
		NumReviews:      numReviews,
		IsFeatured:      isFeatured,
		Images:          []string{},
		DateCreated:     time.Now(),
	}

	imageFile, imageHeader, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Image for this product was not found"))
		return
	}
	defer imageFile.Close()

	filename, err := filemgr.SaveImage(imageFile, imageHeader)
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Unsupported image type. Only JPG, PNG and WEBP are allowed"))
		return
	}
	if err := filemgr.CreateThumb(filename, 150, 200); err != nil {
		log.Printf("Thumbnail generation failed for %s: %v", filename, err)
	}
	product.Image = "/uploads/" + filename

	if _, err := db.ProductsCollection.InsertOne(ctx, product); err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Product was not created", err))
		return
	}

	go mq.Emit(context.Background(), "product-created", models.Index{EntityType: "product", EntityId: product.ID.Hex(), Method: "POST", ItemType: "category", ItemId: categoryID.Hex()})

	utils.RespondWithJSON(w, http.StatusCreated, product)
}

type productInput struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	RichDescription string  `json:"richDescription"`
	Image           string  `json:"image"`
	Brand           string  `json:"brand"`
	Price           float64 `json:"price"`
	Category        string  `json:"category"`
	CountInStock    int     `json:"countInStock"`
	Rating          float64 `json:"rating"`
	NumReviews      int     `json:"numReviews"`
	IsFeatured      bool    `json:"isFeatured"`
}

func EditProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	productID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Product with this ID was not found"))
		return
	}

	var input productInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}

	if input.Price <= 0 {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid price value. Must be a positive number"))
		return
	}
	if input.CountInStock < 0 {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid stock value. Must be a non-negative integer"))
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(input.Category)
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid category ID"))
		return
	}
	if err := categoryExists(ctx, categoryID); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	update := bson.M{"$set": bson.M{
		"name":            input.Name,
		"description":     input.Description,
		"richDescription": input.RichDescription,
		"image":           input.Image,
		"brand":           input.Brand,
		"price":           input.Price,
		"category":        categoryID,
		"countInStock":    input.CountInStock,
		"rating":          input.Rating,
		"numReviews":      input.NumReviews,
		"isFeatured":      input.IsFeatured,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err = db.ProductsCollection.FindOneAndUpdate(ctx, bson.M{"_id": productID}, update, opts).Decode(&product)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Product was not found"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to update product", err))
		return
	}

	go mq.Emit(context.Background(), "product-updated", models.Index{EntityType: "product", EntityId: product.ID.Hex(), Method: "PUT"})

	utils.RespondWithJSON(w, http.StatusOK, product)
}

func DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	productID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Product with this ID was not found"))
		return
	}

	res, err := db.ProductsCollection.DeleteOne(ctx, bson.M{"_id": productID})
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to delete product", err))
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Product was not found"))
		return
	}

	go mq.Emit(context.Background(), "product-deleted", models.Index{EntityType: "product", EntityId: productID.Hex(), Method: "DELETE"})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Product was deleted"})
}

func categoryExists(ctx context.Context, categoryID primitive.ObjectID) error {
	err := db.CategoriesCollection.FindOne(ctx, bson.M{"_id": categoryID}).Err()
	if err == mongo.ErrNoDocuments {
		return apperr.New(apperr.Validation, "Category for this product was not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to check category", err)
	}
	return nil
}
