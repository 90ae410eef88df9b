package recognize

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"stonktip/pkg/tiperr"
)

// Vision calls Google Cloud Vision text detection. The client is safe for concurrent use.
type Vision struct {
	client *vision.ImageAnnotatorClient
}

// NewVision authenticates with a service-account file; an empty path uses application default credentials.
func NewVision(ctx context.Context, credentialsFile string) (*Vision, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Vision{client: c}, nil
}

func (v *Vision) Close() error {
	return v.client.Close()
}

func (v *Vision) Recognize(ctx context.Context, imagePNG []byte) (string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: imagePNG},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_TEXT_DETECTION}},
		}},
	}
	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", tiperr.NewOCRServiceError("text detection request failed", err)
	}
	return visionText(resp)
}

// visionText takes the first annotation's description, which holds the whole text block.
func visionText(resp *visionpb.BatchAnnotateImagesResponse) (string, error) {
	if len(resp.GetResponses()) == 0 {
		return "", nil
	}
	r := resp.GetResponses()[0]
	if msg := r.GetError().GetMessage(); msg != "" {
		return "", tiperr.NewOCRServiceError(msg, nil)
	}
	anns := r.GetTextAnnotations()
	if len(anns) == 0 {
		return "", nil
	}
	return anns[0].GetDescription(), nil
}
