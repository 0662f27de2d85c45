package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/deck_agent/internal/charts"
	"github.com/dgnsrekt/deck_agent/internal/deck"
	"github.com/dgnsrekt/deck_agent/internal/presenter"
)

type resultOutput struct {
	Body presenter.Result
}

func resultOf(res presenter.Result, err error) (*resultOutput, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	return &resultOutput{Body: res}, nil
}

func registerDeckHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "get-deck-state", Method: http.MethodGet, Path: "/api/v1/deck/state", Summary: "Get the current view", Tags: []string{"Deck"}},
		func(ctx context.Context, input *struct{}) (*struct{ Body deck.View }, error) {
			return &struct{ Body deck.View }{Body: svc.View()}, nil
		})

	huma.Register(api, huma.Operation{
		OperationID: "goto-slide",
		Method:      http.MethodPost,
		Path:        "/api/v1/deck/goto",
		Summary:     "Go to a slide",
		Description: "Shows the slide with the given 1-based ordinal. Out-of-range ordinals leave the deck unchanged and answer changed=false.",
		Tags:        []string{"Deck"},
	}, func(ctx context.Context, input *struct {
		Body struct {
			Slide int `json:"slide" doc:"1-based slide ordinal" example:"3"`
		}
	}) (*resultOutput, error) {
		return resultOf(svc.GoTo(ctx, input.Body.Slide))
	})

	huma.Register(api, huma.Operation{OperationID: "next-slide", Method: http.MethodPost, Path: "/api/v1/deck/next", Summary: "Advance one slide", Tags: []string{"Deck"}},
		func(ctx context.Context, input *struct{}) (*resultOutput, error) {
			return resultOf(svc.Next(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "previous-slide", Method: http.MethodPost, Path: "/api/v1/deck/previous", Summary: "Go back one slide", Tags: []string{"Deck"}},
		func(ctx context.Context, input *struct{}) (*resultOutput, error) {
			return resultOf(svc.Previous(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "first-slide", Method: http.MethodPost, Path: "/api/v1/deck/first", Summary: "Go to the first slide", Tags: []string{"Deck"}},
		func(ctx context.Context, input *struct{}) (*resultOutput, error) {
			return resultOf(svc.First(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "last-slide", Method: http.MethodPost, Path: "/api/v1/deck/last", Summary: "Go to the last slide", Tags: []string{"Deck"}},
		func(ctx context.Context, input *struct{}) (*resultOutput, error) {
			return resultOf(svc.Last(ctx))
		})

	huma.Register(api, huma.Operation{
		OperationID: "highlight-phase",
		Method:      http.MethodPost,
		Path:        "/api/v1/deck/phase",
		Summary:     "Highlight a timeline phase",
		Description: "Highlights one phase of the timeline slide. Phase 0 returns to the first phase.",
		Tags:        []string{"Deck"},
	}, func(ctx context.Context, input *struct {
		Body struct {
			Phase int `json:"phase" minimum:"0" doc:"1-based phase, or 0 to reset" example:"2"`
		}
	}) (*resultOutput, error) {
		if input.Body.Phase == 0 {
			return resultOf(svc.ResetPhase(ctx))
		}
		return resultOf(svc.HighlightPhase(ctx, input.Body.Phase))
	})

	huma.Register(api, huma.Operation{OperationID: "resize-charts", Method: http.MethodPost, Path: "/api/v1/deck/resize", Summary: "Resize drawn charts", Tags: []string{"Deck"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Width  int `json:"width" minimum:"0" example:"1280"`
				Height int `json:"height" minimum:"0" example:"720"`
			}
		}) (*resultOutput, error) {
			return resultOf(svc.Resize(ctx, input.Body.Width, input.Body.Height))
		})

	type chartsOutput struct {
		Body struct {
			Charts []charts.SlotStatus `json:"charts"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-charts", Method: http.MethodGet, Path: "/api/v1/deck/charts", Summary: "List chart slots", Tags: []string{"Deck"}},
		func(ctx context.Context, input *struct{}) (*chartsOutput, error) {
			out := &chartsOutput{}
			out.Body.Charts = svc.ChartStatus()
			if out.Body.Charts == nil {
				out.Body.Charts = []charts.SlotStatus{}
			}
			return out, nil
		})
}
