package handler

import "hoopbot/backend/internal/storage"

// Handler містить посилання на сховище гри
type Handler struct {
	Storage *storage.Service
}

func NewHandler(s *storage.Service) *Handler {
	return &Handler{Storage: s}
}
