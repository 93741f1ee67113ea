// Package main provides account management utilities for operators.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin set-role <user_id> <reader|author|admin>  - Change a user's role")
		fmt.Println("  go run ./cmd/admin deactivate <user_id>                      - Deactivate an account")
		fmt.Println("  go run ./cmd/admin reactivate <user_id>                      - Reactivate an account")
		fmt.Println("  go run ./cmd/admin list-admins                               - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "set-role":
		if len(os.Args) < 4 {
			fmt.Println("Usage: go run ./cmd/admin set-role <user_id> <reader|author|admin>")
			os.Exit(1)
		}
		setRole(db, os.Args[2], models.Role(os.Args[3]))

	case "deactivate":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin deactivate <user_id>")
			os.Exit(1)
		}
		setActive(db, os.Args[2], false)

	case "reactivate":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin reactivate <user_id>")
			os.Exit(1)
		}
		setActive(db, os.Args[2], true)

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func findUser(db *gorm.DB, userID string) *models.User {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}
	return &user
}

func setRole(db *gorm.DB, userID string, role models.Role) {
	if !models.ValidRole(role) {
		fmt.Printf("Unknown role %q, expected reader, author, or admin\n", role)
		os.Exit(1)
	}

	user := findUser(db, userID)
	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Username, user.ID, role)
		return
	}

	user.Role = role
	if err := db.Save(user).Error; err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}
	fmt.Printf("User %s (ID: %d) is now %s\n", user.Username, user.ID, role)
}

func setActive(db *gorm.DB, userID string, active bool) {
	user := findUser(db, userID)
	if user.IsActive == active {
		fmt.Printf("User %s (ID: %d) already in that state\n", user.Username, user.ID)
		return
	}

	user.IsActive = active
	if err := db.Save(user).Error; err != nil {
		log.Fatalf("Failed to update account: %v", err)
	}
	state := "deactivated"
	if active {
		state = "reactivated"
	}
	fmt.Printf("User %s (ID: %d) %s\n", user.Username, user.ID, state)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to list admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}

	fmt.Printf("Found %d admin(s):\n", len(admins))
	for _, admin := range admins {
		fmt.Printf("  ID: %d, Username: %s, Email: %s, Active: %t\n",
			admin.ID, admin.Username, admin.Email, admin.IsActive)
	}
}
