package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"taskboard/internal/service"
)

func registerConfigurations(api huma.API, svc *service.Configurations, loc string) {
	huma.Register(api, huma.Operation{
		OperationID: "list-configurations",
		Method:      http.MethodGet,
		Path:        "/configurations",
		Summary:     "List configurations",
		Description: "Hidden entries are never returned over HTTP.",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []ConfigurationResponse `json:"body"`
	}, error) {
		items, err := svc.GetConfigurations(ctx, false)
		if err != nil {
			return nil, handleError(err, loc)
		}
		return &struct {
			Body []ConfigurationResponse `json:"body"`
		}{Body: mapConfigurations(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-configuration",
		Method:      http.MethodGet,
		Path:        "/configurations/{id}",
		Summary:     "Get configuration",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body ConfigurationResponse `json:"body"`
	}, error) {
		cfg, err := svc.GetConfigurationByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err, loc)
		}
		return &struct {
			Body ConfigurationResponse `json:"body"`
		}{Body: configurationResponse(cfg)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-configuration",
		Method:      http.MethodPut,
		Path:        "/configurations/{id}",
		Summary:     "Update configuration value",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   int64                      `path:"id"`
		Body UpdateConfigurationRequest `json:"body"`
	}) (*struct {
		Body ConfigurationResponse `json:"body"`
	}, error) {
		cfg, err := svc.UpdateConfigurationValue(ctx, input.ID, input.Body.Value, actorIDFromContext(ctx))
		if err != nil {
			return nil, handleError(err, loc)
		}
		return &struct {
			Body ConfigurationResponse `json:"body"`
		}{Body: configurationResponse(cfg)}, nil
	})
}
