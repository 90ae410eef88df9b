package main

import (
	"log"

	"stonktip/models"
	"stonktip/pkg/ledger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := cfg.DatabaseDSN
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Roles first so editors can reference them.
	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
	}
	seedRoles()

	// Migrate models individually so a failure on one doesn't block others
	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&models.Editor{}); err != nil {
			log.Printf("migration warning (editors): %v", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			log.Printf("migration warning (refresh_tokens): %v", err)
		}
		if err := ledger.New(db).Migrate(); err != nil {
			log.Printf("migration warning (tip_entries, town_prices): %v", err)
		}
	}
	seedDB()
}

func seedRoles() {
	roles := []models.Role{
		{Name: models.RoleEditor, Description: "records tips and reviews failed images"},
		{Name: models.RoleReviewer, Description: "reads the ledger and submits tips"},
	}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}
}

// seedDB ensures roles exist. The admin/admin123 editor is only created in dev mode; other
// deployments create editors with cmd/create_editor.
func seedDB() {
	seedRoles()

	if !cfg.DevMode {
		var editors int64
		db.Model(&models.Editor{}).Count(&editors)
		if editors == 0 {
			log.Println("No accounts yet; create an editor with: go run ./cmd/create_editor <username> <password>")
		}
		return
	}
	var count int64
	db.Model(&models.Editor{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		return
	}
	var role models.Role
	if err := db.Where("name = ?", models.RoleEditor).First(&role).Error; err != nil {
		log.Printf("failed to find editor role: %v", err)
	}
	rid := role.ID
	admin := models.Editor{Username: "admin", RoleID: &rid}
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin.HashedPassword = hashedPassword
	db.Create(&admin)
	log.Println("DEV_MODE: seeded admin editor: username=admin, password=admin123")
}
