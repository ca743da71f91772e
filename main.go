package main

import (
	"context"
	"log"
	"net/http"

	"poxil-server/api"
	"poxil-server/server"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := api.LoadConfig()
	db, err := api.ConnectMongo(context.Background(), cfg)
	if err != nil {
		log.Fatalf("mongo connect error: %v", err)
	}
	if err := api.SeedDefaultAdmin(context.Background(), cfg, db); err != nil {
		log.Printf("admin seed error: %v", err)
	}

	// Collaboration websocket server
	collab := server.NewCollabServer()

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Mount REST API under /api
	r.Mount("/api", api.NewAPIRouter(cfg, db, collab))
	// Websocket endpoint for realtime collaboration
	r.HandleFunc("/ws", collab.HandleConnections)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	log.Printf("Server started on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("ListenAndServe:", err)
	}
}
