package jsonplaceholder

import (
	"context"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/gaborage/webclient/httpclient"
	"github.com/gaborage/webclient/logger"
)

// ResourceClient calls a generic resource API rooted at baseURL
type ResourceClient struct {
	http    httpclient.Client
	logger  logger.Logger
	baseURL string
}

// NewResourceClient creates a resource API client
func NewResourceClient(c httpclient.Client, log logger.Logger, baseURL string) *ResourceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	log.Info().Str("base_url", baseURL).Msg("Initialized resource client")
	return &ResourceClient{http: c, logger: log, baseURL: baseURL}
}

// GetResource fetches the resource with the given ID
func (c *ResourceClient) GetResource(ctx context.Context, id string) (*Resource, error) {
	log := c.logger.WithContext(ctx)
	log.Debug().Str("resource_id", id).Msg("Fetching resource")

	resource, err := get[*Resource](ctx, c.http, c.baseURL+"/resources/"+url.PathEscape(id))
	if err != nil {
		log.Error().Err(err).Str("resource_id", id).Msg("Error fetching resource")
		return nil, err
	}
	log.Debug().Str("resource_id", id).Msg("Fetched resource")
	return resource, nil
}

// CreateResource creates a resource from req
func (c *ResourceClient) CreateResource(ctx context.Context, req ResourceRequest) (*Resource, error) {
	log := c.logger.WithContext(ctx)
	log.Debug().Str("name", req.Name).Msg("Creating resource")

	resource, err := send[*Resource](ctx, c.http, nethttp.MethodPost, c.baseURL+"/resources", req)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("Error creating resource")
		return nil, err
	}
	if resource != nil {
		log.Debug().Str("resource_id", resource.ID).Msg("Created resource")
	}
	return resource, nil
}
