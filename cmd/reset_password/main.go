package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stonktip/models"
)

func main() {
	username := flag.String("username", "", "account to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars)")
	flag.Parse()
	if *username == "" || *password == "" {
		log.Fatal("--username and --password are required")
	}
	if len(*password) < 6 {
		log.Fatal("password too short (min 6)")
	}
	// existing environment wins over .env
	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	var acct models.Editor
	if err := db.Where("username = ?", *username).First(&acct).Error; err != nil {
		log.Fatalf("account not found: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}
	if err := db.Model(&acct).Update("hashed_password", hash).Error; err != nil {
		log.Fatalf("update failed: %v", err)
	}
	// revoke existing sessions
	if err := db.Model(&models.RefreshToken{}).Where("editor_id = ? AND revoked = ?", acct.ID, false).Update("revoked", true).Error; err != nil {
		log.Printf("warning: could not revoke refresh tokens: %v", err)
	}
	fmt.Printf("Password reset for %s\n", acct.Username)
}
