package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload identifying the actor.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
