// Command seed populates the database with demo data.
//
// Usage:
//
//	go run ./cmd/seed                      # standard preset
//	go run ./cmd/seed -preset busy -clean  # wipe first, then seed heavily
//	go run ./cmd/seed -presets ./my.yml -preset demo
package main

import (
	"flag"
	"log"
	"sort"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	presetName := flag.String("preset", "standard", "seeding preset to apply")
	presetFile := flag.String("presets", "", "optional YAML file with extra presets")
	clean := flag.Bool("clean", false, "delete existing data before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "store plaintext passwords (dev fast mode)")
	maxDays := flag.Int("max-days", 90, "spread generated timestamps over this many days")
	flag.Parse()

	presets := seed.Presets
	if *presetFile != "" {
		loaded, err := seed.LoadPresetFile(*presetFile)
		if err != nil {
			log.Fatalf("Failed to load presets: %v", err)
		}
		presets = loaded
	}

	preset, ok := presets[*presetName]
	if !ok {
		names := make([]string, 0, len(presets))
		for name := range presets {
			names = append(names, name)
		}
		sort.Strings(names)
		log.Fatalf("Unknown preset %q, available: %v", *presetName, names)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	seeder := seed.NewSeeder(db, seed.Options{
		SkipBcrypt: *skipBcrypt,
		MaxDays:    *maxDays,
	})

	if *clean {
		if err := seeder.ClearAll(); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
	}

	if err := seeder.Apply(preset); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete. Admin login: admin@inkwell.dev / password123")
}
