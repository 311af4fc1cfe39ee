package model

import "time"

// Admin is a staff user of the catalog CRUD surface.
type Admin struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// AdminLoginResponse is returned after successful admin login.
type AdminLoginResponse struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}

// LearnerTokenRequest exchanges a stable learner identifier for a JWT.
// Identity bootstrap is owned by the tutoring platform's account system;
// this backend only needs the identifier to be stable per learner.
type LearnerTokenRequest struct {
	LearnerID string `json:"learner_id" binding:"required,min=1,max=64"`
	Name      string `json:"name" binding:"omitempty,max=255"`
}

// LearnerTokenResponse is returned after issuing a learner token.
type LearnerTokenResponse struct {
	Token     string `json:"token"`
	LearnerID string `json:"learner_id"`
}
