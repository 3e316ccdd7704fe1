package dto

import (
	"time"

	"skillgap/internal/domain/posting"
)

type PostingResponse struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Company  string          `json:"company,omitempty"`
	Location string          `json:"location,omitempty"`
	Industry string          `json:"industry,omitempty"`
	URL      string          `json:"url"`
	Skills   []posting.Skill `json:"skills"`
	PostedAt *time.Time      `json:"posted_at,omitempty"`
}

func NewPostingResponse(p posting.Posting) PostingResponse {
	out := PostingResponse{
		ID:       p.ID.String(),
		Title:    p.Title,
		Company:  p.Company,
		Location: p.Location,
		Industry: p.Industry,
		URL:      p.URL,
		Skills:   p.Skills,
		PostedAt: p.PostedAt,
	}
	if out.Skills == nil {
		out.Skills = []posting.Skill{}
	}
	return out
}

func NewPostingListResponse(postings []posting.Posting) []PostingResponse {
	out := make([]PostingResponse, 0, len(postings))
	for _, p := range postings {
		out = append(out, NewPostingResponse(p))
	}
	return out
}
