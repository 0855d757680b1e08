// Package vision はGoogle Cloud Vision APIを使用した顔検出クライアントを提供します。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"voicechat_backend/internal/feature/facerecognition/domain/entity"
	"voicechat_backend/internal/feature/facerecognition/usecase"
)

// VisionFaceDetector はGoogle Cloud Vision APIを使用して顔を検出します。
type VisionFaceDetector struct {
	client *gvision.ImageAnnotatorClient
}

// VisionFaceDetectorがFaceDetectorを実装していることをコンパイル時に検証します。
var _ usecase.FaceDetector = (*VisionFaceDetector)(nil)

// NewVisionFaceDetector はADCを使用してVisionFaceDetectorの新しいインスタンスを生成します。
func NewVisionFaceDetector(ctx context.Context) (*VisionFaceDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionFaceDetector{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionFaceDetector) Close() error {
	return v.client.Close()
}

// DetectFaces は画像バイト列から顔を検出します。
func (v *VisionFaceDetector) DetectFaces(ctx context.Context, imageData []byte) ([]entity.DetectedFace, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_FACE_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return nil, nil
	}

	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	annotations := resp.Responses[0].FaceAnnotations
	faces := make([]entity.DetectedFace, 0, len(annotations))
	for _, fa := range annotations {
		faces = append(faces, entity.DetectedFace{
			Descriptor: buildDescriptor(fa),
			Confidence: fa.DetectionConfidence,
		})
	}

	return faces, nil
}

// buildDescriptor はランドマーク座標をバウンディングボックスで正規化した
// 特徴ベクトルを生成します。画像サイズに依存しない表現になります。
func buildDescriptor(fa *visionpb.FaceAnnotation) []float64 {
	if fa.BoundingPoly == nil || len(fa.BoundingPoly.Vertices) == 0 || len(fa.Landmarks) == 0 {
		return nil
	}

	minX, minY := float64(fa.BoundingPoly.Vertices[0].X), float64(fa.BoundingPoly.Vertices[0].Y)
	maxX, maxY := minX, minY
	for _, v := range fa.BoundingPoly.Vertices[1:] {
		x, y := float64(v.X), float64(v.Y)
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	width, height := maxX-minX, maxY-minY
	if width <= 0 || height <= 0 {
		return nil
	}

	descriptor := make([]float64, 0, len(fa.Landmarks)*3)
	for _, lm := range fa.Landmarks {
		if lm.Position == nil {
			continue
		}
		descriptor = append(descriptor,
			(float64(lm.Position.X)-minX)/width,
			(float64(lm.Position.Y)-minY)/height,
			float64(lm.Position.Z)/width,
		)
	}
	return descriptor
}
