package main

import (
	_ "github.com/eleven-am/sightguide/docs"
	"github.com/eleven-am/sightguide/internal/bootstrap"
	"github.com/joho/godotenv"
)

// @title Sightguide API
// @version 1.0.0
// @description Scene summaries with spoken narration for uploaded videos

// @BasePath /api/v1

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	bootstrap.Run()
}
