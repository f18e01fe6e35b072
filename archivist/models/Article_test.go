package models

import (
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
)

func TestArticle_Validate(t *testing.T) {
	valid := Article{
		Title:       "OpenAI ships a new model",
		Content:     "Some content",
		OriginalURL: lo.ToPtr("https://example.com/news/1"),
		Category:    "AI",
		PublishedAt: time.Now().UTC(),
		Source:      "TechCrunch",
	}

	tests := []struct {
		name    string
		mutate  func(a *Article)
		wantErr bool
	}{
		{
			name:    "valid article",
			mutate:  func(*Article) {},
			wantErr: false,
		},
		{
			name:    "missing URL is allowed",
			mutate:  func(a *Article) { a.OriginalURL = nil },
			wantErr: false,
		},
		{
			name:    "blank title",
			mutate:  func(a *Article) { a.Title = "   " },
			wantErr: true,
		},
		{
			name:    "oversized title",
			mutate:  func(a *Article) { a.Title = strings.Repeat("x", 513) },
			wantErr: true,
		},
		{
			name:    "whitespace-only content",
			mutate:  func(a *Article) { a.Content = " \n\t " },
			wantErr: true,
		},
		{
			name:    "zero publication date",
			mutate:  func(a *Article) { a.PublishedAt = time.Time{} },
			wantErr: true,
		},
		{
			name:    "empty source label",
			mutate:  func(a *Article) { a.Source = "" },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			if err := a.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestArticle_BeforeCreate(t *testing.T) {
	a := Article{
		Title:       "Anthropic releases something",
		Content:     "  body with padding  ",
		PublishedAt: time.Date(2024, 1, 2, 15, 4, 5, 0, time.FixedZone("CET", 3600)),
		Source:      "Theverge",
		Category:    "General",
	}

	if err := a.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate() error = %v", err)
	}

	if a.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("BeforeCreate() did not assign an ID")
	}
	if a.Content != "body with padding" {
		t.Errorf("BeforeCreate() content = %q, want trimmed", a.Content)
	}
	if a.PublishedAt.Location() != time.UTC {
		t.Errorf("BeforeCreate() published_at zone = %v, want UTC", a.PublishedAt.Location())
	}
}
