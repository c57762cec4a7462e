package users

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mercato/apperr"
	"mercato/db"
	"mercato/globals"
	"mercato/middleware"
	"mercato/models"
	"mercato/mq"
	"mercato/rdx"
	"mercato/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 24 * time.Hour

// GenerateAccessToken signs a token carrying the user's id, email and admin
// flag.
func GenerateAccessToken(user models.User) (string, error) {
	claims := middleware.Claims{
		UserID:  user.ID.Hex(),
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Invalid request body"))
		return
	}
	if input.Email == "" || input.Password == "" {
		utils.RespondWithAppError(w, apperr.New(apperr.Validation, "Email and password are required"))
		return
	}

	var storedUser models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&storedUser)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithAppError(w, apperr.New(apperr.Unauthorized, "User with this email or password was not found"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to fetch user", err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedUser.PasswordHash), []byte(input.Password)); err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.Unauthorized, "User with this email or password was not found"))
		return
	}

	tokenString, err := GenerateAccessToken(storedUser)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to generate token", err))
		return
	}

	if err := rdx.RdxHset("tokens", storedUser.ID.Hex(), tokenString); err != nil {
		log.Printf("Redis token storage failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"user":  storedUser.Email,
		"token": tokenString,
	})
}

// Register creates a user through the public signup endpoint.
func Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

	go mq.Emit(context.Background(), "user-registered", models.Index{EntityType: "user", EntityId: user.ID.Hex(), Method: "POST"})

	utils.RespondWithJSON(w, http.StatusCreated, user)
}
