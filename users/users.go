package users

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
	"golang.org/x/crypto/bcrypt"
)

type userInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"isAdmin"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

func (in *userInput) validate() error {
	if in.Username == "" || in.Email == "" || in.Password == "" || in.Phone == "" {
		return apperr.New(apperr.Validation, "Username, email, password and phone are required")
	}
	return nil
}

// --- List Users ---
func GetUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	userList, err := utils.FindAndDecode[models.User](ctx, db.UserCollection, bson.M{}, opts)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to fetch users", err))
		return
	}
	if userList == nil {
		userList = []models.User{}
	}

	utils.RespondWithJSON(w, http.StatusOK, userList)
}

func GetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "User with this ID was not found"))
		return
	}

	var user models.User
	err = db.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "User was not found"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to fetch user", err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

func CreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input userInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}
	if err := input.validate(); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	user, err := insertUser(ctx, input)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	go mq.Emit(context.Background(), "user-created", models.Index{EntityType: "user", EntityId: user.ID.Hex(), Method: "POST"})

	utils.RespondWithJSON(w, http.StatusCreated, user)
}

func EditUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "User with this ID was not found"))
		return
	}

	var input userInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}
	if err := input.validate(); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Could not process password", err))
		return
	}

	update := bson.M{"$set": bson.M{
		"username":     input.Username,
		"email":        input.Email,
		"passwordHash": string(hashed),
		"phone":        input.Phone,
		"isAdmin":      input.IsAdmin,
		"firstName":    input.FirstName,
		"lastName":     input.LastName,
		"street":       input.Street,
		"apartment":    input.Apartment,
		"zip":          input.Zip,
		"city":         input.City,
		"country":      input.Country,
		"updatedAt":    time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = db.UserCollection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&user)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "User was not found"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, mapUserWriteErr(err, "Failed to update user"))
		return
	}

	go mq.Emit(context.Background(), "user-updated", models.Index{EntityType: "user", EntityId: user.ID.Hex(), Method: "PUT"})

	utils.RespondWithJSON(w, http.StatusOK, user)
}

func DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "User with this ID was not found"))
		return
	}

	res, err := db.UserCollection.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to delete user", err))
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "User was not found"))
		return
	}

	// revoke the token mirrored at login
	if _, err := rdx.RdxHdel("tokens", userID.Hex()); err != nil {
		log.Printf("Redis token revoke failed: %v", err)
	}

	go mq.Emit(context.Background(), "user-deleted", models.Index{EntityType: "user", EntityId: userID.Hex(), Method: "DELETE"})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "User was deleted"})
}

func GetUsersCount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// registered under the :id wildcard; only /users/get/count is real
	if ps.ByName("id") != "get" {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Not found"))
		return
	}

	count, err := db.UserCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Users were not counted", err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"userCount": count})
}

// insertUser hashes the password and persists a new user document.
// Duplicate username/email/phone surfaces as a conflict.
func insertUser(ctx context.Context, input userInput) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "Could not process password", err)
	}

	now := time.Now()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		Phone:        input.Phone,
		IsAdmin:      input.IsAdmin,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Street:       input.Street,
		Apartment:    input.Apartment,
		Zip:          input.Zip,
		City:         input.City,
		Country:      input.Country,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := db.UserCollection.InsertOne(ctx, user); err != nil {
		return models.User{}, mapUserWriteErr(err, "User was not created")
	}

	return user, nil
}

// mapUserWriteErr surfaces unique index violations (email, phone, username)
// as conflicts; anything else stays an internal error.
func mapUserWriteErr(err error, msg string) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperr.New(apperr.Conflict, "User with this username, email or phone already exists")
	}
	return apperr.Wrap(apperr.Internal, msg, err)
}
