// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package api

import (
	"context"
	"net/http"
	"sort"

	"github.com/skyintel/skyintel/internal/datasource"
)

const socialPostLimit = 25

// socialPanel mirrors adsPanel for the Meta endpoints. The social
// panels are not date-ranged: the Graph API bounds each metric itself.
func (h *Handler) socialPanel(w http.ResponseWriter, r *http.Request, panel string, fetch func(ctx context.Context) (interface{}, error)) {
	h.executePanel(w, r, panel, struct{}{}, func(ctx context.Context) (interface{}, error) {
		if h.meta == nil {
			return nil, datasource.ErrNotConfigured
		}
		return fetch(ctx)
	})
}

func (h *Handler) socialFacebookHandler(w http.ResponseWriter, r *http.Request) {
	h.socialPanel(w, r, "social_facebook", func(ctx context.Context) (interface{}, error) {
		return h.meta.FacebookPosts(ctx, socialPostLimit)
	})
}

func (h *Handler) socialInstagramHandler(w http.ResponseWriter, r *http.Request) {
	h.socialPanel(w, r, "social_instagram", func(ctx context.Context) (interface{}, error) {
		return h.meta.InstagramMedia(ctx, socialPostLimit)
	})
}

func (h *Handler) socialFollowersHandler(w http.ResponseWriter, r *http.Request) {
	h.socialPanel(w, r, "social_followers", func(ctx context.Context) (interface{}, error) {
		return h.meta.FollowerSeries(ctx)
	})
}

func (h *Handler) socialDemographyHandler(w http.ResponseWriter, r *http.Request) {
	h.socialPanel(w, r, "social_demography", func(ctx context.Context) (interface{}, error) {
		return h.meta.AudienceDemography(ctx)
	})
}

// rankedPost tags a post with its network so the merged list stays
// attributable.
type rankedPost struct {
	Network string `json:"network"`
	datasource.SocialPost
}

// socialTopPostsHandler merges both networks' recent posts and ranks
// them by interactions. A network that fails entirely is skipped so
// the other still ranks; both failing degrades the panel.
func (h *Handler) socialTopPostsHandler(w http.ResponseWriter, r *http.Request) {
	h.socialPanel(w, r, "social_top_posts", func(ctx context.Context) (interface{}, error) {
		var merged []rankedPost
		var firstErr error

		fb, err := h.meta.FacebookPosts(ctx, socialPostLimit)
		if err != nil {
			firstErr = err
		}
		for _, p := range fb {
			merged = append(merged, rankedPost{Network: "facebook", SocialPost: p})
		}

		ig, err := h.meta.InstagramMedia(ctx, socialPostLimit)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		for _, p := range ig {
			merged = append(merged, rankedPost{Network: "instagram", SocialPost: p})
		}

		if len(merged) == 0 && firstErr != nil {
			return nil, firstErr
		}
		sort.SliceStable(merged, func(i, j int) bool {
			return merged[i].Interactions > merged[j].Interactions
		})
		if len(merged) > 10 {
			merged = merged[:10]
		}
		return merged, nil
	})
}
