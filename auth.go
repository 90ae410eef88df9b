package main

import (
	"fmt"
	"strings"

	"stonktip/models"

	"golang.org/x/crypto/bcrypt"
)

// RegisterReviewer creates a reviewer account. Editors are created with cmd/create_editor.
func RegisterReviewer(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username required")
	}
	if len(password) < 6 { // basic password policy
		return fmt.Errorf("password too short (min 6)")
	}
	// pre-check existing (optimistic)
	var existing models.Editor
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return fmt.Errorf("user already exists")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	var role models.Role
	if err := db.Where("name = ?", models.RoleReviewer).First(&role).Error; err != nil {
		role = models.Role{Name: models.RoleReviewer, Description: "reads the ledger and submits tips"}
		if err2 := db.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err2 != nil {
			return fmt.Errorf("failed to ensure reviewer role: %v", err2)
		}
	}
	rid := role.ID
	acct := models.Editor{Username: username, HashedPassword: hashedPassword, RoleID: &rid}
	if err := db.Create(&acct).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return fmt.Errorf("user already exists")
		}
		return err
	}
	return nil
}

func Authenticate(username, password string) (models.Editor, error) {
	username = strings.TrimSpace(username)
	var acct models.Editor
	if err := db.Where("username = ?", username).First(&acct).Error; err != nil {
		return models.Editor{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(acct.HashedPassword, []byte(password)); err != nil {
		return models.Editor{}, fmt.Errorf("invalid credentials")
	}
	return acct, nil
}

// roleName resolves the role stored on an account; empty when unset.
func roleName(acct models.Editor) string {
	if acct.RoleID == nil {
		return ""
	}
	var r models.Role
	if err := db.First(&r, *acct.RoleID).Error; err != nil {
		return ""
	}
	return r.Name
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
