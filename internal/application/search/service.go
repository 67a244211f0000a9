package search

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/bnrubin/discord-logbot/internal/domain"
	"github.com/bnrubin/discord-logbot/internal/ports"
)

// Service builds the listing query: fixed channel scope, live records only,
// case-insensitive prompt substring, newest first, one page at a time.
type Service struct {
	Store    ports.RecordStore
	Scope    string
	PageSize int
}

// Search returns the requested 1-indexed page. Pages below 1 are treated as 1;
// pages past the end come back empty with the same total count.
func (s *Service) Search(ctx context.Context, substring string, page int) (domain.SearchPage, error) {
	if s.Store == nil {
		return domain.SearchPage{}, errors.New("search.Service dependencies not satisfied")
	}

	query := s.BuildQuery(substring, page)
	result, err := s.Store.Search(ctx, query)
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("search records: %w", err)
	}

	result.Page = query.Page
	result.PageSize = query.PageSize
	result.Query = query.Substring
	if result.Items == nil {
		result.Items = []domain.InteractionRecord{}
	}
	return result, nil
}

// BuildQuery normalizes user input into a store query. The substring is matched
// as given, surrounding whitespace included.
func (s *Service) BuildQuery(substring string, page int) domain.SearchQuery {
	if page < 1 {
		page = 1
	}
	size := s.PageSize
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	if maxPage := math.MaxInt / size; page > maxPage {
		page = maxPage
	}
	return domain.SearchQuery{
		Substring:   substring,
		ScopeFilter: s.Scope,
		Page:        page,
		PageSize:    size,
	}
}
