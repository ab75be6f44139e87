// Package recommend fetches the ranked recommendation list for a user.
package recommend

import (
	"context"
	"time"

	"dineright/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

const fetchTimeout = 10 * time.Second

// Source is the remote recommendation endpoint.
type Source interface {
	Recommendations(ctx context.Context, userID int64) ([]model.RestaurantRef, error)
}

// Resolver looks up display data by id. *catalog.Index satisfies it.
type Resolver interface {
	GetByID(id int64) (model.Restaurant, error)
}

// Gateway calls the recommendation service. It does not cache or retry.
type Gateway struct {
	source   Source
	resolver Resolver
	log      zerolog.Logger
}

// NewGateway creates a gateway.
func NewGateway(source Source, resolver Resolver, logger zerolog.Logger) *Gateway {
	return &Gateway{
		source:   source,
		resolver: resolver,
		log:      logger.With().Str("component", "recommend").Logger(),
	}
}

// GetRecommendations returns the ranked list for userID. Any failure,
// malformed payloads included, yields an empty non-nil list.
func (g *Gateway) GetRecommendations(ctx context.Context, userID int64) []model.RestaurantRef {
	refs, err := g.source.Recommendations(ctx, userID)
	if err != nil {
		g.log.Warn().Err(err).Int64("user_id", userID).Msg("recommendations unavailable")
		return []model.RestaurantRef{}
	}
	if refs == nil {
		return []model.RestaurantRef{}
	}
	return refs
}

// Resolve maps refs to catalog entries in order, skipping ids the catalog
// does not hold.
func (g *Gateway) Resolve(refs []model.RestaurantRef) []model.Restaurant {
	out := make([]model.Restaurant, 0, len(refs))
	for _, ref := range refs {
		r, err := g.resolver.GetByID(ref.PlaceID)
		if err != nil {
			g.log.Debug().Int64("place_id", ref.PlaceID).Msg("recommendation not in catalog")
			continue
		}
		out = append(out, r)
	}
	return out
}

// LoadedMsg carries recommendations back to the event loop.
type LoadedMsg struct {
	UserID int64
	Refs   []model.RestaurantRef
}

// FetchCmd runs GetRecommendations in the background.
func (g *Gateway) FetchCmd(userID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return LoadedMsg{UserID: userID, Refs: g.GetRecommendations(ctx, userID)}
	}
}
