package orders

import (
	"context"

	"mercato/apperr"
	"mercato/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LineItem is one (product, quantity) pair of an order request.
type LineItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// reserveFunc atomically decrements stock for one product, returning the unit
// price at decrement time and the remaining stock. It fails with a not-found
// error for unknown products and a conflict error on insufficient stock.
type reserveFunc func(ctx context.Context, productID primitive.ObjectID, quantity int) (price float64, remaining int, err error)

// buildOrderItems walks the requested line items, reserving stock for each
// and tallying the total price. The first failure aborts the walk; callers
// run it inside a transaction so partial reservations roll back.
func buildOrderItems(ctx context.Context, items []LineItem, reserve reserveFunc) ([]models.OrderItem, map[string]int, float64, error) {
	if len(items) == 0 {
		return nil, nil, 0, apperr.New(apperr.Validation, "Order must contain at least one item")
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	remaining := make(map[string]int, len(items))
	var totalPrice float64

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, nil, 0, apperr.New(apperr.Validation, "Item quantity must be positive")
		}

		productID, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			return nil, nil, 0, apperr.New(apperr.Validation, "Invalid product ID in order")
		}

		price, left, err := reserve(ctx, productID, item.Quantity)
		if err != nil {
			return nil, nil, 0, err
		}

		orderItems = append(orderItems, models.OrderItem{
			ID:       primitive.NewObjectID(),
			Quantity: item.Quantity,
			Product:  productID,
		})
		remaining[item.Product] = left
		totalPrice += float64(item.Quantity) * price
	}

	return orderItems, remaining, totalPrice, nil
}

// purgeItemsFunc removes order item documents by id.
type purgeItemsFunc func(ctx context.Context, itemIDs []primitive.ObjectID) error

// cascadeOrderItems deletes the items of a removed order. Only the item
// documents go; product stock is never restored or touched.
func cascadeOrderItems(ctx context.Context, order models.Order, purge purgeItemsFunc) error {
	if len(order.OrderItems) == 0 {
		return nil
	}
	return purge(ctx, order.OrderItems)
}

func purgeOrderItems(coll *mongo.Collection) purgeItemsFunc {
	return func(ctx context.Context, itemIDs []primitive.ObjectID) error {
		_, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": itemIDs}})
		return err
	}
}

// reserveStock returns a reserveFunc backed by a conditional $inc. The
// stock check and decrement are one document operation, so two concurrent
// orders can never both pass the check and oversell.
func reserveStock(coll *mongo.Collection) reserveFunc {
	return func(ctx context.Context, productID primitive.ObjectID, quantity int) (float64, int, error) {
		filter := bson.M{
			"_id":          productID,
			"countInStock": bson.M{"$gte": quantity},
		}
		update := bson.M{"$inc": bson.M{"countInStock": -quantity}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		var product models.Product
		err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product)
		if err == mongo.ErrNoDocuments {
			if probeErr := coll.FindOne(ctx, bson.M{"_id": productID}).Err(); probeErr == mongo.ErrNoDocuments {
				return 0, 0, apperr.New(apperr.NotFound, "Product in order was not found")
			}
			return 0, 0, apperr.New(apperr.Conflict, "Quantity of product in stock less than quantity in order")
		}
		if err != nil {
			return 0, 0, apperr.Wrap(apperr.Internal, "Failed to reserve stock", err)
		}

		return product.Price, product.CountInStock, nil
	}
}
