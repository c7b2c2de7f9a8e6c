// Package lumagram implements post and story creation.
//
// This file holds the create controller. Stories ignore captions and
// never allow comments; posts carry caption, location, and a comment
// toggle.
package lumagram

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

// CreateKind values accepted by Publish.
const (
	KindPost  = "post"
	KindStory = "story"
)

// CreateController handles new post and story uploads.
type CreateController struct {
	client *Client
	guard  *InflightGuard
	log    zerolog.Logger
}

// NewCreateController builds a create controller over the given client.
func NewCreateController(client *Client, log zerolog.Logger) *CreateController {
	return &CreateController{
		client: client,
		guard:  NewInflightGuard(),
		log:    log.With().Str("component", "create").Logger(),
	}
}

// Publish validates and uploads a new post or story. The image file must
// exist locally. A story always has comments disabled regardless of the
// request. A second publish while one is in flight is ignored.
func (c *CreateController) Publish(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.Kind != KindPost && req.Kind != KindStory {
		return nil, &ValidationError{Field: "kind", Message: "Kind must be post or story"}
	}
	if req.ImagePath == "" {
		return nil, &ValidationError{Field: "image", Message: "Image is required"}
	}
	if _, err := os.Stat(req.ImagePath); err != nil {
		return nil, &ValidationError{Field: "image", Message: "Image file not found"}
	}
	req.Caption = Sanitize(req.Caption)
	req.Location = Sanitize(req.Location)
	if req.Kind == KindStory {
		req.AllowComments = false
	}

	if !c.guard.Begin(GuardPublish, 0) {
		return nil, nil
	}
	defer c.guard.End(GuardPublish, 0)

	res, err := c.client.Create(ctx, req)
	if err != nil {
		c.log.Warn().Str("kind", req.Kind).Err(err).Msg("publish failed")
		return nil, err
	}
	c.log.Info().Str("kind", res.Type).Msg("published")
	return res, nil
}
