package forge

import (
	"context"
	"fmt"

	"github.com/provide-io/craftkit/pkg/download"
	ckerrors "github.com/provide-io/craftkit/pkg/errors"
)

// Promotions is the promotions_slim.json document.
type Promotions struct {
	Homepage string            `json:"homepage,omitempty"`
	Promos   map[string]string `json:"promos"`
}

// FetchPromotions downloads the promotions document.
func FetchPromotions(ctx context.Context, client *download.Client, url string) (*Promotions, error) {
	var p Promotions
	if err := client.JSON(ctx, url, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Latest is the newest loader build for a game version.
func (p *Promotions) Latest(game string) (string, error) {
	return p.lookup(game, "latest")
}

// Recommended is the loader build marked stable for a game version.
func (p *Promotions) Recommended(game string) (string, error) {
	return p.lookup(game, "recommended")
}

func (p *Promotions) lookup(game, channel string) (string, error) {
	if v, ok := p.Promos[game+"-"+channel]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w for minecraft %s (%s)", ckerrors.ErrNoLoaderVersion, game, channel)
}
