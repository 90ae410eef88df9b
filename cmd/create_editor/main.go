package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"stonktip/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	roleName := flag.String("role", models.RoleEditor, "account role: editor or reviewer")
	email := flag.String("email", "", "optional email address")
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Println("usage: go run ./cmd/create_editor [-role editor|reviewer] [-email addr] <username> <password>")
		os.Exit(2)
	}
	username := flag.Arg(0)
	password := flag.Arg(1)
	if *roleName != models.RoleEditor && *roleName != models.RoleReviewer {
		log.Fatalf("unknown role %q", *roleName)
	}

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	// ensure role exists
	var role models.Role
	if err := db.Where("name = ?", *roleName).First(&role).Error; err != nil {
		role = models.Role{Name: *roleName}
		if err := db.Create(&role).Error; err != nil {
			log.Fatalf("failed to create role %s: %v", *roleName, err)
		}
	}

	var existing models.Editor
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		fmt.Printf("account %s already exists (id=%d)\n", username, existing.ID)
		os.Exit(0)
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	rid := role.ID
	acct := models.Editor{Username: username, HashedPassword: hpw, Email: *email, RoleID: &rid}
	if err := db.Create(&acct).Error; err != nil {
		log.Fatalf("failed to create account: %v", err)
	}
	fmt.Printf("created %s %s id=%d\n", *roleName, username, acct.ID)
}
