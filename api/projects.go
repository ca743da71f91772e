package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"poxil-server/editor"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProjectHandler groups dependencies for project routes.
type ProjectHandler struct {
	cfg Config
	db  *DB
	col *mongo.Collection
}

func NewProjectHandler(cfg Config, db *DB) *ProjectHandler {
	return &ProjectHandler{cfg: cfg, db: db, col: db.Collection("projects")}
}

// Routes registers project routes.
func (h *ProjectHandler) Routes(r chi.Router) {
	r.With(AuthMiddleware(h.cfg)).Post("/projects", h.Create)
	r.With(AuthMiddleware(h.cfg)).Get("/projects", h.List)
	r.With(OptionalAuthMiddleware(h.cfg)).Get("/projects/{id}", h.Get)
	r.With(AuthMiddleware(h.cfg)).Put("/projects/{id}", h.Update)
	r.With(AuthMiddleware(h.cfg)).Delete("/projects/{id}", h.Delete)
}

func validCanvasSize(v int) bool {
	return v >= editor.MinCanvasSize && v <= editor.MaxCanvasSize
}

// normalizeGrids makes every frame carry exactly one grid per current layer:
// missing grids are backfilled empty, grid keys for layers that no longer
// exist are pruned.
func normalizeGrids(p *editor.Project) {
	ids := make(map[string]bool, len(p.Layers))
	for _, l := range p.Layers {
		ids[l.ID] = true
	}
	for i := range p.Frames {
		f := &p.Frames[i]
		if f.Layers == nil {
			f.Layers = make(map[string]editor.PixelGrid, len(p.Layers))
		}
		for id := range f.Layers {
			if !ids[id] {
				delete(f.Layers, id)
			}
		}
		for _, l := range p.Layers {
			if _, ok := f.Layers[l.ID]; !ok {
				f.Layers[l.ID] = editor.NewGrid(p.Width, p.Height)
			}
		}
	}
}

// Create POST /projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := getClaims(r)
	if err != nil {
		errorJSON(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	var in struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Width       int            `json:"width"`
		Height      int            `json:"height"`
		IsPublic    bool           `json:"isPublic"`
		Layers      []editor.Layer `json:"layers"`
		Frames      []editor.Frame `json:"frames"`
	}
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		errorJSON(w, http.StatusBadRequest, "name required")
		return
	}
	if !validCanvasSize(in.Width) || !validCanvasSize(in.Height) {
		errorJSON(w, http.StatusBadRequest, fmt.Sprintf("width and height must be between %d and %d", editor.MinCanvasSize, editor.MaxCanvasSize))
		return
	}

	p := editor.NewProject(in.Name, in.Width, in.Height, claims.Sub)
	p.Description = in.Description
	p.IsPublic = in.IsPublic
	if len(in.Layers) > 0 {
		p.Layers = in.Layers
	}
	if len(in.Frames) > 0 {
		p.Frames = in.Frames
	}
	normalizeGrids(p)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if _, err := h.col.InsertOne(ctx, p); err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// List GET /projects?page=1&page_size=20 — caller's projects, newest update first.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, err := getClaims(r)
	if err != nil {
		errorJSON(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	page := clamp(parseInt(r.URL.Query().Get("page"), 1), 1, 1000000)
	pageSize := clamp(parseInt(r.URL.Query().Get("page_size"), 20), 1, 100)
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"owner": claims.Sub}
	opts := options.Find().SetSkip(int64((page - 1) * pageSize)).SetLimit(int64(pageSize)).SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := h.col.Find(ctx, filter, opts)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer cur.Close(ctx)
	var items []editor.Project
	if err := cur.All(ctx, &items); err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := h.col.CountDocuments(ctx, filter)
	if err != nil {
		total = int64(len(items))
	}
	writeJSON(w, http.StatusOK, apiListResponse[editor.Project]{Items: items, Page: page, PageSize: pageSize, TotalItems: total})
}

// Get GET /projects/{id} — readable by the owner or anyone when public.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	var p editor.Project
	if err := h.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		}
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !p.IsPublic {
		claims, err := getClaims(r)
		if err != nil || claims.Sub != p.Owner {
			errorJSON(w, http.StatusForbidden, "project is private")
			return
		}
	}
	writeJSON(w, http.StatusOK, p)
}

// Update PUT /projects/{id} — partial update, owner only.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, err := getClaims(r)
	if err != nil {
		errorJSON(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	var in struct {
		Name        *string        `json:"name"`
		Description *string        `json:"description"`
		IsPublic    *bool          `json:"isPublic"`
		Layers      []editor.Layer `json:"layers"`
		Frames      []editor.Frame `json:"frames"`
	}
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	update := bson.M{"updated_at": time.Now()}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		update["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		update["description"] = *in.Description
	}
	if in.IsPublic != nil {
		update["is_public"] = *in.IsPublic
	}
	if len(in.Layers) > 0 {
		update["layers"] = in.Layers
	}
	if len(in.Frames) > 0 {
		update["frames"] = in.Frames
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	res, err := h.col.UpdateOne(ctx, bson.M{"_id": id, "owner": claims.Sub}, bson.M{"$set": update})
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res.MatchedCount == 0 {
		errorJSON(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, bson.M{"updated": res.ModifiedCount})
}

// Delete DELETE /projects/{id} — owner only.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, err := getClaims(r)
	if err != nil {
		errorJSON(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	res, err := h.col.DeleteOne(ctx, bson.M{"_id": id, "owner": claims.Sub})
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res.DeletedCount == 0 {
		errorJSON(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
