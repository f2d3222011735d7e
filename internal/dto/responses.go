package dto

import (
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/service"
)

// ErrorResponse - единый формат ошибки API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AuthResponse возвращается при регистрации и логине.
type AuthResponse struct {
	User   *models.User       `json:"user"`
	Tokens *service.TokenPair `json:"tokens"`
}

type TokensResponse struct {
	Tokens *service.TokenPair `json:"tokens"`
}

// ListResponse - страница списка.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func NewListResponse[T any](items []T, limit, offset int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Limit: limit, Offset: offset}
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}
