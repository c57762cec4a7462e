package products

import (
	"context"
	"log"
	"net/http"
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

const maxGalleryImages = 8

// UpdateGalleryImages replaces a product's image list from a multipart upload.
func UpdateGalleryImages(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	// registered as /:id/:productid; only the gallery-images segment is real
	if ps.ByName("id") != "gallery-images" {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Not found"))
		return
	}

	productID, err := primitive.ObjectIDFromHex(ps.ByName("productid"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Product with this ID was not found"))
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Unable to parse form"))
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) > maxGalleryImages {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Too many gallery images"))
		return
	}

	imagesPaths := []string{}
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Error reading uploaded image", err))
			return
		}

		filename, err := filemgr.SaveImage(file, header)
		file.Close()
		if err != nil {
			utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Unsupported image type. Only JPG, PNG and WEBP are allowed"))
			return
		}
		if err := filemgr.CreateThumb(filename, 150, 200); err != nil {
			log.Printf("Thumbnail generation failed for %s: %v", filename, err)
		}
		imagesPaths = append(imagesPaths, "/uploads/"+filename)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err = db.ProductsCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"images": imagesPaths}},
		opts,
	).Decode(&product)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Product was not found"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to update gallery", err))
		return
	}

	go mq.Emit(context.Background(), "product-gallery-updated", models.Index{EntityType: "product", EntityId: product.ID.Hex(), Method: "PUT"})

	utils.RespondWithJSON(w, http.StatusOK, product)
}
