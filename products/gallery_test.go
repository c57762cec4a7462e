package products

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpdateGalleryImagesRejectsOtherSegments(t *testing.T) {
	productID := primitive.NewObjectID().Hex()

	r := httptest.NewRequest("PUT", "/api/v1/products/anything/"+productID, nil)
	w := httptest.NewRecorder()
	UpdateGalleryImages(w, r, httprouter.Params{
		{Key: "id", Value: "anything"},
		{Key: "productid", Value: productID},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProductsCountRejectsOtherSegments(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/products/anything/count", nil)
	w := httptest.NewRecorder()
	GetProductsCount(w, r, httprouter.Params{{Key: "id", Value: "anything"}})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFeaturedProductsRejectsOtherSegments(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/products/anything/featured/5", nil)
	w := httptest.NewRecorder()
	GetFeaturedProducts(w, r, httprouter.Params{
		{Key: "id", Value: "anything"},
		{Key: "limit", Value: "5"},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}
