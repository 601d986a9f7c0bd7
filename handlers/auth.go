package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"go_canteen/canteenapi/models"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var secretKey = []byte(os.Getenv("session_secret"))

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

//SignupHandler handles requests to create new canteen accounts

func (db *DB) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error decoding JSON: "+err.Error(), http.StatusBadRequest)
		signupRequests.WithLabelValues("error").Inc()
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		signupRequests.WithLabelValues("error").Inc()
		return
	}
	if req.Role != models.RoleStudent && req.Role != models.RoleStaff {
		http.Error(w, "Role must be student or staff", http.StatusBadRequest)
		signupRequests.WithLabelValues("error").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.Users.FindOne(ctx, bson.M{"username": req.Username}).Err()
	if err == nil {
		http.Error(w, "Username already exists", http.StatusBadRequest)
		signupRequests.WithLabelValues("error").Inc()
		return
	}
	if err != mongo.ErrNoDocuments {
		http.Error(w, "Database error: "+err.Error(), http.StatusInternalServerError)
		signupRequests.WithLabelValues("error").Inc()
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password: "+err.Error(), http.StatusInternalServerError)
		signupRequests.WithLabelValues("error").Inc()
		return
	}

	_, err = db.Users.InsertOne(ctx, models.User{
		Username: req.Username,
		Password: string(passwordHash),
		Role:     req.Role,
	})
	if err != nil {
		http.Error(w, "Failed to create user: "+err.Error(), http.StatusInternalServerError)
		signupRequests.WithLabelValues("error").Inc()
		return
	}

	signupRequests.WithLabelValues("success").Inc()
	respondJSON(w, http.StatusOK, map[string]string{"message": "Sign up successful!"})
}

//LoginHandler verifies credentials and issues access and refresh tokens

func (db *DB) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error decoding JSON: "+err.Error(), http.StatusBadRequest)
		loginRequests.WithLabelValues("error").Inc()
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		loginRequests.WithLabelValues("error").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := db.Users.FindOne(ctx, bson.M{"username": req.Username, "role": req.Role}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		loginRequests.WithLabelValues("error").Inc()
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		loginRequests.WithLabelValues("error").Inc()
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		loginRequests.WithLabelValues("error").Inc()
		return
	}

	// Credentials are correct, generate JWT tokens
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(time.Hour * 1).Unix(),
		"iat":      time.Now().Unix(),
	})
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		loginRequests.WithLabelValues("error").Inc()
		return
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
		"type":     "refresh",
	})
	refreshTokenString, err := refreshToken.SignedString(secretKey)
	if err != nil {
		http.Error(w, "Failed to generate token "+err.Error(), http.StatusInternalServerError)
		loginRequests.WithLabelValues("error").Inc()
		return
	}

	loginRequests.WithLabelValues("success").Inc()
	respondJSON(w, http.StatusOK, map[string]string{
		"message":       "Login successful",
		"role":          user.Role,
		"username":      user.Username,
		"token":         tokenString,
		"refresh_token": refreshTokenString,
	})
}

func (db *DB) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	// Retrieve username from context
	username, _ := r.Context().Value("username").(string)

	var user models.PublicUser
	err := db.Users.FindOne(context.TODO(), bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching user details", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// SeedHandler resets the users collection to a known test pair.
func (db *DB) SeedHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.Users.DeleteMany(ctx, bson.M{}); err != nil {
		http.Error(w, "Failed to reset users", http.StatusInternalServerError)
		return
	}

	seeds := []struct {
		username, password, role string
	}{
		{"student1", "123", models.RoleStudent},
		{"staff1", "admin", models.RoleStaff},
	}

	docs := make([]interface{}, 0, len(seeds))
	for _, s := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}
		docs = append(docs, models.User{Username: s.username, Password: string(hash), Role: s.role})
	}

	if _, err := db.Users.InsertMany(ctx, docs); err != nil {
		http.Error(w, "Failed to seed users", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Sample users added"})
}
