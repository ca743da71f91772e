package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// User is an account that can own projects. Ownership is recorded on
// projects as the hex form of the account id.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// UserHandler holds deps for account routes.
type UserHandler struct {
	cfg Config
	db  *DB
	col *mongo.Collection
}

func NewUserHandler(cfg Config, db *DB) *UserHandler {
	return &UserHandler{cfg: cfg, db: db, col: db.Collection("users")}
}

// Routes registers account routes: auth, self-service under /users/me, and
// an admin-only listing.
func (h *UserHandler) Routes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.With(AuthMiddleware(h.cfg)).Get("/users/me", h.Me)
	r.With(AuthMiddleware(h.cfg)).Put("/users/me", h.UpdateMe)
	r.With(AuthMiddleware(h.cfg)).Delete("/users/me", h.DeleteMe)

	r.With(AuthMiddleware(h.cfg), RequireRole(RoleAdmin)).Get("/users", h.List)
}

// issueToken signs a 24h session token for an account.
func (h *UserHandler) issueToken(u User) (string, error) {
	return GenerateToken(h.cfg.JWTSecret, h.cfg.JWTIssuer, u.ID.Hex(), u.Role, 24*time.Hour)
}

// currentUser loads the account behind the request claims.
func (h *UserHandler) currentUser(r *http.Request) (User, error) {
	var u User
	claims, err := getClaims(r)
	if err != nil {
		return u, err
	}
	uid, err := primitive.ObjectIDFromHex(claims.Sub)
	if err != nil {
		return u, err
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	err = h.col.FindOne(ctx, bson.M{"_id": uid}).Decode(&u)
	return u, err
}

// Register creates an account and signs it in immediately, so a fresh user
// can create their first project without a second round trip.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" {
		errorJSON(w, http.StatusBadRequest, "email and username required")
		return
	}
	if err := ValidatePassword(in.Password); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "password hashing failed")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	u := User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: string(pwHash),
		Role:         RoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	// Accounts are unique by email.
	_, _ = h.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	res, err := h.col.InsertOne(ctx, u)
	if err != nil {
		if isDuplicateKey(err) {
			errorJSON(w, http.StatusConflict, "email already exists")
			return
		}
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	token, err := h.issueToken(u)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "could not generate token")
		return
	}
	writeJSON(w, http.StatusCreated, bson.M{"id": u.ID, "username": u.Username, "token": token})
}

// Login verifies credentials and returns a session token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	var u User
	err := h.col.FindOne(ctx, bson.M{"email": strings.TrimSpace(strings.ToLower(in.Email))}).Decode(&u)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		errorJSON(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.issueToken(u)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "could not generate token")
		return
	}
	writeJSON(w, http.StatusOK, bson.M{"token": token, "username": u.Username})
}

// Me returns the authenticated account.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r)
	if err != nil {
		errorJSON(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateMe changes the authenticated account's username and/or password.
// A new password passes the same complexity check as registration.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r)
	if err != nil {
		errorJSON(w, http.StatusNotFound, "user not found")
		return
	}
	var in struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	update := bson.M{"updated_at": time.Now()}
	if in.Username != nil && strings.TrimSpace(*in.Username) != "" {
		update["username"] = strings.TrimSpace(*in.Username)
	}
	if in.Password != nil {
		if err := ValidatePassword(*in.Password); err != nil {
			errorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		pwHash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "password hashing failed")
			return
		}
		update["password_hash"] = string(pwHash)
	}
	if len(update) == 1 {
		writeJSON(w, http.StatusOK, bson.M{"updated": 0})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	res, err := h.col.UpdateByID(ctx, u.ID, bson.M{"$set": update})
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bson.M{"updated": res.ModifiedCount})
}

// DeleteMe removes the authenticated account and every project it owns, so
// no orphaned projects keep pointing at a dead owner id.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r)
	if err != nil {
		errorJSON(w, http.StatusNotFound, "user not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	if _, err := h.db.Collection("projects").DeleteMany(ctx, bson.M{"owner": u.ID.Hex()}); err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := h.col.DeleteOne(ctx, bson.M{"_id": u.ID}); err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List returns accounts, newest first, for the admin console.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page := clamp(parseInt(r.URL.Query().Get("page"), 1), 1, 1000000)
	pageSize := clamp(parseInt(r.URL.Query().Get("page_size"), 20), 1, 100)
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSkip(int64((page - 1) * pageSize)).SetLimit(int64(pageSize)).SetSort(bson.D{{Key: "_id", Value: -1}})
	cur, err := h.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer cur.Close(ctx)
	var items []User
	if err := cur.All(ctx, &items); err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, _ := h.col.CountDocuments(ctx, bson.M{})
	writeJSON(w, http.StatusOK, apiListResponse[User]{Items: items, Page: page, PageSize: pageSize, TotalItems: total})
}

// isDuplicateKey reports whether an insert failed on a unique index.
func isDuplicateKey(err error) bool {
	if we, ok := err.(mongo.WriteException); ok {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
