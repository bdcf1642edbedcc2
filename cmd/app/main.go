package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ArenaPull/internal/di"
	"ArenaPull/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	register := flag.Bool("register", false, "register configured models and exit")
	force := flag.Bool("force", false, "with -register: re-register even if already known")
	listModels := flag.Bool("list-models", false, "list models registered under the API key and exit")
	check := flag.Bool("check", false, "run the health preflight and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		log.Fatalf("%v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if *register || *listModels || *check {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		switch {
		case *check:
			if err := app.Registrar().Preflight(ctx); err != nil {
				log.Fatalf("preflight failed: %v", err)
			}
			fmt.Println("preflight ok")
		case *listModels:
			registered, err := app.Registrar().List(ctx)
			if err != nil {
				log.Fatalf("list models failed: %v", err)
			}
			for _, m := range registered {
				fmt.Printf("%s\t%s\t%s\n", m.ReadableID, m.Name, m.ModelType)
			}
		case *register:
			if err := app.Registrar().EnsureRegistered(ctx, *force); err != nil {
				log.Fatalf("registration failed: %v", err)
			}
			fmt.Println("models registered")
		}
		return
	}

	log.Printf("env=%s arena=%s models=%d journal=%s",
		cfg.Environment, cfg.Arena.BaseURL, len(cfg.Models), cfg.Journal.Type)

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
