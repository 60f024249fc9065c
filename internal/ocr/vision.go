package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionEngine sends page images to Google Cloud Vision document text detection.
type VisionEngine struct {
	annotate func(context.Context, *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)
	close    func() error
	timeout  time.Duration
}

// NewVisionEngine uses the credentials file when given, otherwise
// application default credentials.
func NewVisionEngine(ctx context.Context, credentialsFile string) (*VisionEngine, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &VisionEngine{
		annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
			return client.BatchAnnotateImages(ctx, req)
		},
		close:   client.Close,
		timeout: 60 * time.Second,
	}, nil
}

func (e *VisionEngine) Name() string { return "vision" }

func (e *VisionEngine) Close() error {
	if e.close == nil {
		return nil
	}
	return e.close()
}

func (e *VisionEngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return "", err
	}
	if len(img) == 0 {
		return "", nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
		},
	}
	if hint := languageHint(lang); hint != "" {
		req.ImageContext = &visionpb.ImageContext{LanguageHints: []string{hint}}
	}

	resp, err := e.annotate(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{req},
	})
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", nil
	}
	r0 := resp.GetResponses()[0]
	if msg := r0.GetError().GetMessage(); msg != "" {
		return "", fmt.Errorf("vision annotate error: %s", msg)
	}
	return r0.GetFullTextAnnotation().GetText(), nil
}

// Vision takes BCP-47 hints; tesseract language packs use ISO 639-2 names.
var visionLanguages = map[string]string{
	"eng": "en",
	"vie": "vi",
	"fra": "fr",
	"deu": "de",
	"spa": "es",
}

func languageHint(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	lang, _, _ = strings.Cut(lang, "+")
	if l, ok := visionLanguages[lang]; ok {
		return l
	}
	return lang
}
