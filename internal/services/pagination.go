package services

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"storedir/internal/models"

	"golang.org/x/sync/errgroup"
)

// PageSize is the number of stores on one listing page.
const PageSize = 6

// MaxPage is the largest page whose offset fits in an int.
const MaxPage = math.MaxInt / PageSize

// StorePage is one window of the store listing.
type StorePage struct {
	Stores []models.Store
	Page   int
	Pages  int
	Count  int64
	// Redirect is the last valid page when Page was out of range, otherwise 0.
	Redirect int
}

// ParsePage reads a 1-based page number, defaulting to 1 and capped at MaxPage.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return min(page, MaxPage)
}

func pageCount(count int64) int {
	return int((count + PageSize - 1) / PageSize)
}

// ListPage fetches page of the listing, newest first, along with the total count.
func (s *StoreService) ListPage(ctx context.Context, page int) (*StorePage, error) {
	page = max(1, min(page, MaxPage))
	skip := (page - 1) * PageSize

	var (
		stores []models.Store
		count  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stores, err = s.stores.List(gctx, skip, PageSize)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.stores.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list stores page %d: %w", page, err)
	}

	result := &StorePage{Stores: stores, Page: page, Pages: pageCount(count), Count: count}
	if len(stores) == 0 && skip > 0 {
		result.Redirect = max(result.Pages, 1)
	}
	return result, nil
}
