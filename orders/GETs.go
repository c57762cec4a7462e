package orders

import (
	"context"
	"net/http"
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

// detailLookup joins an order with its user summary and fully resolved
// items (item -> product -> category).
func detailLookup() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user",
			"foreignField": "_id",
			"as":           "userDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$userDoc",
			"preserveNullAndEmptyArrays": true,
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "orderitems",
			"let":  bson.M{"itemIds": "$orderItems"},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$in": []interface{}{"$_id", "$$itemIds"}}}},
				{"$lookup": bson.M{
					"from":         "products",
					"localField":   "product",
					"foreignField": "_id",
					"as":           "productDoc",
				}},
				{"$unwind": bson.M{"path": "$productDoc", "preserveNullAndEmptyArrays": true}},
				{"$lookup": bson.M{
					"from":         "categories",
					"localField":   "productDoc.category",
					"foreignField": "_id",
					"as":           "productDoc.categoryDoc",
				}},
				{"$unwind": bson.M{"path": "$productDoc.categoryDoc", "preserveNullAndEmptyArrays": true}},
			},
			"as": "itemDocs",
		}}},
	}
}

// --- List Orders ---
func GetOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "dateOrdered", Value: -1}}}},
	}
	pipeline = append(pipeline, detailLookup()...)

	orders, err := utils.AggregateAndDecode[models.OrderDetail](ctx, db.OrdersCollection, pipeline)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to fetch orders", err))
		return
	}
	if orders == nil {
		orders = []models.OrderDetail{}
	}

	utils.RespondWithJSON(w, http.StatusOK, orders)
}

func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orderID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Order with this ID was not found"))
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": orderID}}},
	}
	pipeline = append(pipeline, detailLookup()...)

	orders, err := utils.AggregateAndDecode[models.OrderDetail](ctx, db.OrdersCollection, pipeline)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to fetch order", err))
		return
	}
	if len(orders) == 0 {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Order was not found"))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, orders[0])
}

func GetTotalSales(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// registered under the :id wildcard; only /orders/get/total-sales is real
	if ps.ByName("id") != "get" {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Not found"))
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalSales": bson.M{"$sum": "$totalPrice"},
		}}},
	}

	type salesRow struct {
		TotalSales float64 `bson:"totalSales"`
	}
	rows, err := utils.AggregateAndDecode[salesRow](ctx, db.OrdersCollection, pipeline)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Total sales were not counted", err))
		return
	}

	var total float64
	if len(rows) > 0 {
		total = rows[0].TotalSales
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"totalSales": total})
}

func GetOrdersCount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if ps.ByName("id") != "get" {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Not found"))
		return
	}

	count, err := db.OrdersCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Orders were not counted", err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ordersCount": count})
}

// GetUserOrders lists one user's orders, newest first.
func GetUserOrders(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if ps.ByName("id") != "get" {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Not found"))
		return
	}

	userID, err := primitive.ObjectIDFromHex(ps.ByName("userid"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "User with this ID was not found"))
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "dateOrdered", Value: -1}}}},
	}
	pipeline = append(pipeline, detailLookup()...)

	orders, err := utils.AggregateAndDecode[models.OrderDetail](ctx, db.OrdersCollection, pipeline)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "User orders were not found", err))
		return
	}
	if orders == nil {
		orders = []models.OrderDetail{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"userOrdersList": orders})
}
