package textract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"

	"shoper/pkg/receipt"
)

// Azure recognizes text through the Computer Vision OCR API. Useful when no
// local Tesseract install is available.
type Azure struct {
	client *computervision.BaseClient
}

func NewAzure(endpoint, apiKey string) *Azure {
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)
	return &Azure{client: &client}
}

// Extract uploads the bitmap and maps the region/line structure onto raw
// text lines ordered by their bounding-box Y. Azure reports no per-line
// confidence, so Confidence is -1.
func (a *Azure) Extract(ctx context.Context, img image.Image) ([]receipt.RawTextLine, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode for upload: %w", err)
	}
	body := io.NopCloser(bytes.NewReader(buf.Bytes()))

	result, err := a.client.RecognizePrintedTextInStream(ctx, true, body, computervision.OcrLanguages(computervision.En))
	if err != nil {
		if ctx.Err() != nil {
			return nil, wrapCtxErr(ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if result.Regions == nil {
		return nil, nil
	}

	var lines []positioned
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			var sb strings.Builder
			if line.Words != nil {
				for _, word := range *line.Words {
					if word.Text != nil {
						sb.WriteString(*word.Text)
						sb.WriteString(" ")
					}
				}
			}
			text := strings.TrimSpace(sb.String())
			if text == "" {
				continue
			}
			lines = append(lines, positioned{text: text, y: boxY(line.BoundingBox), conf: -1})
		}
	}
	return orderLines(lines), nil
}

// boxY parses the Y coordinate out of Azure's "x,y,w,h" bounding box string.
func boxY(box *string) int {
	if box == nil {
		return 0
	}
	parts := strings.Split(*box, ",")
	if len(parts) < 2 {
		return 0
	}
	y, _ := strconv.Atoi(parts[1])
	return y
}
