package capability

import (
	"context"
	"fmt"

	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

// TicketSource provides previous tickets for a user.
type TicketSource interface {
	FetchPreviousTickets(userID string) ([]models.Record, error)
}

// ReservationSource provides reservations for a user.
type ReservationSource interface {
	FetchReservations(userID string) ([]models.Record, error)
}

// ArticleSource provides knowledge articles for an account.
type ArticleSource interface {
	FetchArticles(accountID string, tags []string) ([]models.Record, error)
}

// TicketFetcher retrieves the user's previous tickets.
// Reads user ID; writes previous tickets.
type TicketFetcher struct {
	source TicketSource
}

// NewTicketFetcher creates a previous-ticket fetcher backed by the source.
func NewTicketFetcher(source TicketSource) *TicketFetcher {
	return &TicketFetcher{source: source}
}

// Execute fetches the user's earlier tickets. A missing user ID yields an
// empty result rather than an error; the orchestrator only schedules this
// step when the classifier asked for historical context.
func (f *TicketFetcher) Execute(ctx context.Context, state models.TicketState) (Result, error) {
	if state.UserID == "" {
		return continueResult(models.Patch{PreviousTickets: []models.Record{}}), nil
	}

	tickets, err := f.source.FetchPreviousTickets(state.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("ticket fetcher: %w", err)
	}
	if tickets == nil {
		tickets = []models.Record{}
	}

	return continueResult(models.Patch{PreviousTickets: tickets}), nil
}

// ReservationFetcher retrieves the user's reservations.
// Reads user ID; writes reservations.
type ReservationFetcher struct {
	source ReservationSource
}

// NewReservationFetcher creates a reservation fetcher backed by the source.
func NewReservationFetcher(source ReservationSource) *ReservationFetcher {
	return &ReservationFetcher{source: source}
}

// Execute fetches the user's reservations.
func (f *ReservationFetcher) Execute(ctx context.Context, state models.TicketState) (Result, error) {
	if state.UserID == "" {
		return continueResult(models.Patch{Reservations: []models.Record{}}), nil
	}

	reservations, err := f.source.FetchReservations(state.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("reservation fetcher: %w", err)
	}
	if reservations == nil {
		reservations = []models.Record{}
	}

	return continueResult(models.Patch{Reservations: reservations}), nil
}

// ArticleFetcher retrieves knowledge articles matching the ticket's tags.
// Reads account ID, tags, and ticket text; writes relevant articles.
type ArticleFetcher struct {
	source ArticleSource
}

// NewArticleFetcher creates an article fetcher backed by the source.
func NewArticleFetcher(source ArticleSource) *ArticleFetcher {
	return &ArticleFetcher{source: source}
}

// Execute fetches articles filtered by the classification tags. With no
// tags assigned (low-confidence classification), all of the account's
// articles are candidates.
func (f *ArticleFetcher) Execute(ctx context.Context, state models.TicketState) (Result, error) {
	articles, err := f.source.FetchArticles(state.AccountID, state.Tags)
	if err != nil {
		return Result{}, fmt.Errorf("article fetcher: %w", err)
	}
	if articles == nil {
		articles = []models.Record{}
	}

	return continueResult(models.Patch{RelevantArticles: articles}), nil
}
