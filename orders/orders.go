package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mercato/apperr"
	"mercato/db"
	"mercato/live"
	"mercato/models"
	"mercato/mq"
	"mercato/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Hub receives stock updates after successful orders; main wires it in.
var Hub *live.Hub

type orderInput struct {
	OrderItems      []LineItem `json:"orderItems"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	ShippingAddress string     `json:"shippingAddress"`
	Country         string     `json:"country"`
	City            string     `json:"city"`
	Zip             string     `json:"zip"`
	Phone           string     `json:"phone"`
	Status          string     `json:"status"`
	User            string     `json:"user"`
}

type orderResult struct {
	order     models.Order
	remaining map[string]int
}

// CreateOrder reserves stock, persists the order items and the order inside
// one transaction, then announces the stock changes. Any failure aborts the
// whole sequence; no decrement or insert survives a partial run.
func CreateOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input orderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}

	userID, err := primitive.ObjectIDFromHex(input.User)
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid user ID"))
		return
	}

	status := input.Status
	if status == "" {
		status = models.OrderStatusPending
	}

	session, err := db.Client.StartSession()
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Order was not created", err))
		return
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		items, remaining, totalPrice, err := buildOrderItems(sc, input.OrderItems, reserveStock(db.ProductsCollection))
		if err != nil {
			return nil, err
		}

		itemDocs := make([]interface{}, len(items))
		itemIDs := make([]primitive.ObjectID, len(items))
		for i, item := range items {
			itemDocs[i] = item
			itemIDs[i] = item.ID
		}
		if _, err := db.OrderItemsCollection.InsertMany(sc, itemDocs); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "Order items were not created", err)
		}

		order := models.Order{
			ID:              primitive.NewObjectID(),
			OrderItems:      itemIDs,
			FirstName:       input.FirstName,
			LastName:        input.LastName,
			ShippingAddress: input.ShippingAddress,
			Country:         input.Country,
			City:            input.City,
			Zip:             input.Zip,
			Phone:           input.Phone,
			Status:          status,
			TotalPrice:      totalPrice,
			User:            userID,
			DateOrdered:     time.Now(),
		}
		if _, err := db.OrdersCollection.InsertOne(sc, order); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "Order was not created", err)
		}

		return orderResult{order: order, remaining: remaining}, nil
	})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	res := result.(orderResult)
	for productID, left := range res.remaining {
		live.PublishStockUpdate(Hub, productID, left)
	}
	go mq.Emit(context.Background(), "order-created", models.Index{EntityType: "order", EntityId: res.order.ID.Hex(), Method: "POST", ItemType: "user", ItemId: userID.Hex()})

	utils.RespondWithJSON(w, http.StatusCreated, res.order)
}

// EditOrder updates only the status field.
func EditOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orderID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Order with this ID was not found"))
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Status == "" {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Order status is required"))
		return
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order models.Order
	err = db.OrdersCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"status": input.Status}},
		opts,
	).Decode(&order)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Order was not found"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to update order", err))
		return
	}

	go mq.Emit(context.Background(), "order-updated", models.Index{EntityType: "order", EntityId: order.ID.Hex(), Method: "PUT"})

	utils.RespondWithJSON(w, http.StatusOK, order)
}

// DeleteOrder removes the order and cascades to its order items. Products
// are never touched.
func DeleteOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orderID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Order with this ID was not found"))
		return
	}

	var order models.Order
	err = db.OrdersCollection.FindOneAndDelete(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Order was not found"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to delete order", err))
		return
	}

	if err := cascadeOrderItems(ctx, order, purgeOrderItems(db.OrderItemsCollection)); err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to delete order items", err))
		return
	}

	go mq.Emit(context.Background(), "order-deleted", models.Index{EntityType: "order", EntityId: orderID.Hex(), Method: "DELETE"})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Order was deleted"})
}
