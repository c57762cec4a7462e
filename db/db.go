package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	CategoriesCollection *mongo.Collection
	ProductsCollection   *mongo.Collection
	OrdersCollection     *mongo.Collection
	OrderItemsCollection *mongo.Collection
	UserCollection       *mongo.Collection
	Client               *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "shopdb"
	}

	clientOptions := options.Client().ApplyURI(mongoURI)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	CategoriesCollection = Client.Database(dbName).Collection("categories")
	ProductsCollection = Client.Database(dbName).Collection("products")
	OrdersCollection = Client.Database(dbName).Collection("orders")
	OrderItemsCollection = Client.Database(dbName).Collection("orderitems")
	UserCollection = Client.Database(dbName).Collection("users")
}

// InitIndexes creates the unique indexes the user collection relies on.
// Duplicate email/phone/username inserts surface as write errors mapped to
// conflict responses.
func InitIndexes(ctx context.Context) error {
	idxs := []mongo.IndexModel{
		{
			Keys:    bson.M{"email": 1},
			Options: options.Index().SetUnique(true).SetName("unique_email"),
		},
		{
			Keys:    bson.M{"phone": 1},
			Options: options.Index().SetUnique(true).SetName("unique_phone"),
		},
		{
			Keys:    bson.M{"username": 1},
			Options: options.Index().SetUnique(true).SetName("unique_username"),
		},
	}
	_, err := UserCollection.Indexes().CreateMany(ctx, idxs)
	return err
}
