package handler

import "hospital-server/shared/models"

// --- Request/Response Structs ---

type titleBody struct {
	Title string `json:"title" binding:"required"`
}

type colorDTO struct {
	HeaderColor    string `json:"headerColor" binding:"required"`
	ContentColor   string `json:"contentColor" binding:"required"`
	ContainerColor string `json:"containerColor" binding:"required"`
}

type colorBody struct {
	Color *colorDTO `json:"color" binding:"required"`
}

type themeBody struct {
	Theme string `json:"theme" binding:"required,oneof=default light dark"`
}

// logoBody: пустая строка удаляет логотип.
type logoBody struct {
	LogoURL *string `json:"logoUrl" binding:"required"`
}

type logoResponse struct {
	LogoURL *string `json:"logoUrl"`
}

func colorFromDTO(d *colorDTO) *models.ColorPalette {
	return &models.ColorPalette{
		HeaderColor:    d.HeaderColor,
		ContentColor:   d.ContentColor,
		ContainerColor: d.ContainerColor,
	}
}

func colorToDTO(p models.ColorPalette) *colorDTO {
	return &colorDTO{
		HeaderColor:    p.HeaderColor,
		ContentColor:   p.ContentColor,
		ContainerColor: p.ContainerColor,
	}
}
