package model

import (
	"encoding/json"
	"time"
)

// Entity names double as table names and as the websocket "entity" field.
const (
	EntityNews          = "news"
	EntityPages         = "pages"
	EntityContentBlocks = "content_blocks"
)

// HasContent reports whether entity carries a rich-text content field.
func HasContent(entity string) bool {
	switch entity {
	case EntityNews, EntityPages, EntityContentBlocks:
		return true
	}
	return false
}

type NewsArticle struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

type Page struct {
	ID              string `json:"id"`
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	MetaDescription string `json:"meta_description"`
	IsPublished     bool   `json:"is_published"`
}

type ContentBlock struct {
	ID         string          `json:"id"`
	Key        string          `json:"key"`
	Page       string          `json:"page"`
	Section    string          `json:"section"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Image      string          `json:"image"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	OrderIndex int             `json:"order_index"`
}

type SiteSetting struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// ArticleSummary is an article as listed on the public news page.
type ArticleSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Snippet  string `json:"snippet"`
}

type ArticleRequest struct {
	Title    string `json:"title" validate:"required,max=300"`
	Content  string `json:"content"`
	Date     string `json:"date" validate:"omitempty,isodate"`
	Image    string `json:"image" validate:"omitempty,url"`
	Category string `json:"category" validate:"max=100"`
}

type PageRequest struct {
	Slug            string `json:"slug" validate:"required,slug"`
	Title           string `json:"title" validate:"required,max=300"`
	Content         string `json:"content"`
	MetaDescription string `json:"meta_description" validate:"max=300"`
	IsPublished     bool   `json:"is_published"`
}

type ContentBlockRequest struct {
	Key        string          `json:"key" validate:"required,max=100"`
	Page       string          `json:"page" validate:"required,max=100"`
	Section    string          `json:"section" validate:"required,max=100"`
	Title      string          `json:"title" validate:"max=300"`
	Content    string          `json:"content"`
	Image      string          `json:"image" validate:"omitempty,url"`
	Metadata   json.RawMessage `json:"metadata"`
	OrderIndex int             `json:"order_index" validate:"min=0"`
}

type SettingRequest struct {
	Key   string `json:"key" validate:"required,max=100"`
	Value string `json:"value"`
	Type  string `json:"type" validate:"omitempty,oneof=text html image url number boolean json"`
}

type DraftRequest struct {
	Topic string `json:"topic" validate:"required,max=500"`
}

type TranslateRequest struct {
	Text string `json:"text" validate:"required"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

// BackupData is the content section of a backup file.
type BackupData struct {
	News          []NewsArticle  `json:"news"`
	ContentBlocks []ContentBlock `json:"content_blocks"`
	Pages         []Page         `json:"pages"`
	SiteSettings  []SiteSetting  `json:"site_settings"`
}

type Backup struct {
	Version   string     `json:"version"`
	Timestamp time.Time  `json:"timestamp"`
	Site      string     `json:"site"`
	Data      BackupData `json:"data"`
}
