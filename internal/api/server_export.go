package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/deck_agent/internal/export"
)

type exportItem struct {
	export.Artifact
	URL string `json:"url"`
}

func itemOf(a export.Artifact) exportItem {
	return exportItem{Artifact: a, URL: "/api/v1/exports/" + a.ID + "/file"}
}

func registerExportHandlers(api huma.API, svc ExportService) {
	type exportsOutput struct {
		Body struct {
			Exports []exportItem `json:"exports"`
		}
	}
	huma.Register(api, huma.Operation{
		OperationID:   "create-export",
		Method:        http.MethodPost,
		Path:          "/api/v1/exports",
		Summary:       "Export the deck",
		Description:   "Renders the print view in a browser. kind=pdf prints every slide; kind=png captures one slide, or every slide when slide is omitted.",
		Tags:          []string{"Exports"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body struct {
			Kind  string `json:"kind" enum:"pdf,png" example:"pdf"`
			Slide int    `json:"slide,omitempty" minimum:"0" doc:"1-based slide for png exports"`
		}
	}) (*exportsOutput, error) {
		artifacts, err := svc.Create(ctx, export.Request{Kind: input.Body.Kind, Slide: input.Body.Slide}, nil)
		if err != nil {
			return nil, mapErr(err)
		}
		out := &exportsOutput{}
		out.Body.Exports = make([]exportItem, 0, len(artifacts))
		for _, a := range artifacts {
			out.Body.Exports = append(out.Body.Exports, itemOf(a))
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{OperationID: "list-exports", Method: http.MethodGet, Path: "/api/v1/exports", Summary: "List exports", Tags: []string{"Exports"}},
		func(ctx context.Context, input *struct{}) (*exportsOutput, error) {
			artifacts, err := svc.List()
			if err != nil {
				return nil, mapErr(err)
			}
			out := &exportsOutput{}
			out.Body.Exports = make([]exportItem, 0, len(artifacts))
			for _, a := range artifacts {
				out.Body.Exports = append(out.Body.Exports, itemOf(a))
			}
			return out, nil
		})

	type exportIDInput struct {
		ExportID string `path:"export_id"`
	}
	huma.Register(api, huma.Operation{OperationID: "get-export", Method: http.MethodGet, Path: "/api/v1/exports/{export_id}", Summary: "Get export metadata", Tags: []string{"Exports"}},
		func(ctx context.Context, input *exportIDInput) (*struct{ Body exportItem }, error) {
			a, err := svc.Get(input.ExportID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &struct{ Body exportItem }{Body: itemOf(a)}, nil
		})

	type exportFileOutput struct {
		ContentType        string `header:"Content-Type"`
		ContentDisposition string `header:"Content-Disposition"`
		Body               []byte
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-export-file",
		Method:      http.MethodGet,
		Path:        "/api/v1/exports/{export_id}/file",
		Summary:     "Download an export",
		Tags:        []string{"Exports"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Export file",
				Content: map[string]*huma.MediaType{
					"application/pdf": {Schema: &huma.Schema{Type: "string", Format: "binary"}},
					"image/png":       {Schema: &huma.Schema{Type: "string", Format: "binary"}},
				},
			},
		},
	}, func(ctx context.Context, input *exportIDInput) (*exportFileOutput, error) {
		a, data, err := svc.ReadFile(input.ExportID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &exportFileOutput{
			ContentType:        a.ContentType(),
			ContentDisposition: `inline; filename="` + a.FileName() + `"`,
			Body:               data,
		}, nil
	})

	huma.Register(api, huma.Operation{OperationID: "delete-export", Method: http.MethodDelete, Path: "/api/v1/exports/{export_id}", Summary: "Delete an export", Tags: []string{"Exports"}},
		func(ctx context.Context, input *exportIDInput) (*struct {
			Body struct {
				Status string `json:"status"`
			}
		}, error) {
			if err := svc.Delete(input.ExportID); err != nil {
				return nil, mapErr(err)
			}
			out := &struct {
				Body struct {
					Status string `json:"status"`
				}
			}{}
			out.Body.Status = "deleted"
			return out, nil
		})
}
