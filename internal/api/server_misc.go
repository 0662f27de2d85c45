package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/deck_agent/internal/cdpcontrol"
)

func registerMiscHandlers(api huma.API, svc Service, mirror MirrorStatusSource) {
	type healthOutput struct {
		Body struct {
			Status  string `json:"status"`
			Current int    `json:"current"`
			Total   int    `json:"total"`
			Mirror  bool   `json:"mirror"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			v := svc.View()
			out := &healthOutput{}
			out.Body.Status = "ok"
			out.Body.Current = v.Current
			out.Body.Total = v.Total
			out.Body.Mirror = mirror != nil
			return out, nil
		})

	if mirror == nil {
		return
	}
	huma.Register(api, huma.Operation{OperationID: "mirror-status", Method: http.MethodGet, Path: "/api/v1/mirror", Summary: "Mirrored browser tab status", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*struct{ Body cdpcontrol.MirrorStatus }, error) {
			return &struct{ Body cdpcontrol.MirrorStatus }{Body: mirror.Status()}, nil
		})
}
