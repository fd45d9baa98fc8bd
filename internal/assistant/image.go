package assistant

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// ErrImageGeneration marks failures from GenerateImage. This is the one
// assistant operation whose error reaches the caller, because the UI
// shows the underlying message instead of a canned apology.
var ErrImageGeneration = errors.New("image generation failed")

// validAspectRatios are the ratios the image model accepts.
var validAspectRatios = map[string]bool{
	"1:1": true, "3:4": true, "4:3": true, "9:16": true, "16:9": true,
}

// GenerateImage renders one JPEG for the prompt and returns its raw
// bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	if !validAspectRatios[aspectRatio] {
		return nil, fmt.Errorf("%w: unsupported aspect ratio %q", ErrImageGeneration, aspectRatio)
	}

	c.sink.StartMeasure("generate_image")
	defer c.sink.EndMeasure("generate_image")

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageGeneration, err)
	}

	resp, err := c.genai.Models.GenerateImages(ctx, c.models.Image, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    aspectRatio,
	})
	if err != nil {
		c.sink.LogError(err, "op", "generate_image")
		c.logger.Error("image generation failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrImageGeneration, err)
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		err := fmt.Errorf("%w: the model did not return an image", ErrImageGeneration)
		c.sink.LogError(err, "op", "generate_image")
		return nil, err
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}
