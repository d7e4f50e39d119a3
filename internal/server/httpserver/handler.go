package httpserver

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type meResponse struct {
	Subject   string    `json:"subject"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *HTTPServer) register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: msgInvalidBody})
	}

	s.logger.Info(c.UserContext(), "Registration request", "email", req.Email)

	if _, err := s.auth.Register(c.UserContext(), req.Email, req.Password); err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(messageResponse{Message: msgRegistered})
}

func (s *HTTPServer) confirmEmail(c *fiber.Ctx) error {
	email := c.Query("email")

	if err := s.auth.ConfirmEmail(c.UserContext(), email); err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(messageResponse{Message: msgConfirmed})
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: msgInvalidBody})
	}

	tok, err := s.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(loginResponse{Token: tok.Value, ExpiresAt: tok.ExpiresAt.UTC()})
}

func (s *HTTPServer) me(c *fiber.Ctx) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(messageResponse{Message: msgInvalidToken})
	}

	resp := meResponse{Subject: claims.Subject, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return c.JSON(resp)
}
