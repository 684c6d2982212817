package dto

import "github.com/tnqbao/gau-travel-service/entity"

type CreateArticleRequestDTO struct {
	Title         string   `json:"title" binding:"required,max=200"`
	ImageURL      string   `json:"image_url"`
	TravelCountry string   `json:"travel_country" binding:"required"`
	TravelCity    string   `json:"travel_city" binding:"required"`
	ShareLink     string   `json:"share_link"`
	Price         *float64 `json:"price" binding:"omitempty,gte=0"`
}

// UpdateArticleRequestDTO is a patch: absent or null fields are left unchanged,
// present fields overwrite.
type UpdateArticleRequestDTO struct {
	Title         *string  `json:"title" binding:"omitempty,min=1,max=200"`
	ImageURL      *string  `json:"image_url"`
	TravelCountry *string  `json:"travel_country" binding:"omitempty,min=1"`
	TravelCity    *string  `json:"travel_city" binding:"omitempty,min=1"`
	ShareLink     *string  `json:"share_link"`
	Price         *float64 `json:"price" binding:"omitempty,gte=0"`
}

func (d *UpdateArticleRequestDTO) ApplyTo(article *entity.Article) {
	if d.Title != nil {
		article.Title = *d.Title
	}
	if d.ImageURL != nil {
		article.ImageURL = *d.ImageURL
	}
	if d.TravelCountry != nil {
		article.TravelCountry = *d.TravelCountry
	}
	if d.TravelCity != nil {
		article.TravelCity = *d.TravelCity
	}
	if d.ShareLink != nil {
		article.ShareLink = *d.ShareLink
	}
	if d.Price != nil {
		article.Price = d.Price
	}
}

type ListArticlesResponseDTO struct {
	Articles []entity.Article `json:"articles"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

type CommentRequestDTO struct {
	Content string `json:"content" binding:"required,max=2000"`
}
