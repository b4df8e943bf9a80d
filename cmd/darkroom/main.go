package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/halverson-studio/darkroom"
)

func main() {
	// A missing .env is fine; configuration falls back to the environment.
	_ = godotenv.Load()

	cfg, err := darkroom.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	app := darkroom.New(cfg)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
