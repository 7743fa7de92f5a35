// Package devauth is a local stand-in for the remote auth service, for
// development without the real authority. It speaks the same wire contract
// the gateway's authapi client consumes.
package devauth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/SchoolPulse/SP-Gateway/internal/authapi"
	"github.com/SchoolPulse/SP-Gateway/internal/db"
)

const tokenLifetime = 6 * time.Hour

func AuthenticateHandler(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		reject(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	var user User
	if err := db.DB.First(&user, "username = ?", creds.Username).Error; err != nil {
		reject(w, http.StatusUnauthorized, "Invalid Credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(creds.Password)); err != nil {
		reject(w, http.StatusUnauthorized, "Invalid Credentials")
		return
	}
	if len(user.GrantedRoles) == 0 {
		reject(w, http.StatusForbidden, "Account has no granted role")
		return
	}

	pair := TokenPair{
		AccessToken:  uuid.New().String(),
		RefreshToken: uuid.New().String(),
		UserID:       user.UserID,
		ExpiresAt:    time.Now().Add(tokenLifetime),
	}
	// One live pair per user: reissue replaces the previous login.
	db.DB.Where("user_id = ?", user.UserID).Delete(&TokenPair{})
	if err := db.DB.Create(&pair).Error; err != nil {
		reject(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(authapi.AuthResponse{
		Success:      true,
		Role:         user.GrantedRoles[0],
		UserID:       user.UserID,
		FullName:     user.FullName,
		Email:        user.Email,
		Username:     user.Username,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		http.Error(w, "refresh_token is required", http.StatusBadRequest)
		return
	}

	var pair TokenPair
	if err := db.DB.First(&pair, "refresh_token = ?", body.RefreshToken).Error; err != nil {
		http.Error(w, "Unknown refresh token", http.StatusUnauthorized)
		return
	}
	if pair.ExpiresAt.Before(time.Now()) {
		db.DB.Delete(&pair)
		http.Error(w, "Refresh token expired", http.StatusUnauthorized)
		return
	}

	rotated := TokenPair{
		AccessToken:  uuid.New().String(),
		RefreshToken: uuid.New().String(),
		UserID:       pair.UserID,
		ExpiresAt:    time.Now().Add(tokenLifetime),
	}
	db.DB.Delete(&pair)
	if err := db.DB.Create(&rotated).Error; err != nil {
		http.Error(w, "Failed to rotate tokens", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(authapi.RefreshResponse{
		AccessToken:  rotated.AccessToken,
		RefreshToken: rotated.RefreshToken,
	})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		http.Error(w, "Missing bearer token", http.StatusUnauthorized)
		return
	}
	db.DB.Where("access_token = ?", token).Delete(&TokenPair{})
	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(value string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(value, prefix) || len(value) == len(prefix) {
		return "", false
	}
	return value[len(prefix):], true
}

func reject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(authapi.AuthResponse{Success: false, Message: message})
}
