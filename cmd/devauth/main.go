package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/SchoolPulse/SP-Gateway/internal/db"
	"github.com/SchoolPulse/SP-Gateway/internal/devauth"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()
	devauth.Init()

	port := os.Getenv("DEVAUTH_PORT")
	if port == "" {
		port = "5060"
	}

	r := chi.NewRouter()
	r.Mount("/", devauth.SetupRoutes())

	fmt.Println("Dev auth service listening on port :" + port + "...")
	http.ListenAndServe("0.0.0.0:"+port, r)
}
