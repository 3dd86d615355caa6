package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/linguloop/backend/internal/completion"
	"github.com/linguloop/backend/internal/database"
	"github.com/linguloop/backend/internal/generator"
	"github.com/linguloop/backend/internal/quiz"
	"github.com/linguloop/backend/internal/share"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Build the generation pipeline
	client := completion.NewFromEnv()
	gen := generator.New(client, completion.OptionsFromEnv())
	store := quiz.NewStore(db)
	minter := share.NewMinterFromEnv()
	orch := quiz.NewOrchestrator(gen, store, minter)
	cache := quiz.NewCache(store)
	presets := quiz.NewPresetManager(orch, store, store, cache)
	service := quiz.NewService(store, orch, presets, cache, minter)
	handler := quiz.NewHandler(service)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loops", handler.PutLoop).Methods("POST")
	api.HandleFunc("/sessions/{sessionID}/generate", handler.Generate).Methods("POST")
	api.HandleFunc("/sessions/{sessionID}/preset", handler.SelectPreset).Methods("POST")
	api.HandleFunc("/sessions/{sessionID}/preset", handler.GetActivePreset).Methods("GET")
	api.HandleFunc("/groups/{groupID}/sessions/{sessionID}/questions", handler.GetQuestionCache).Methods("GET")
	api.HandleFunc("/groups/{groupID}/sessions/{sessionID}/questions/cache", handler.InvalidateCache).Methods("DELETE")
	api.HandleFunc("/share/{token}", handler.GetSharedSet).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	httpHandler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, httpHandler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
