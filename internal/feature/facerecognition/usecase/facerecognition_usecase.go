// Package usecase はfacerecognitionフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"

	"voicechat_backend/internal/feature/facerecognition/domain/entity"
	usersentity "voicechat_backend/internal/feature/users/domain/entity"
)

const (
	// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
)

// FaceDetector は画像から顔を検出するリポジトリインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type FaceDetector interface {
	// DetectFaces は画像バイト列から顔を検出し、検出結果を返します。
	DetectFaces(ctx context.Context, imageData []byte) ([]entity.DetectedFace, error)
}

// UserEnroller はユーザーへのディスクリプタ登録を抽象化します。
// usersフィーチャーのユースケースがこのインターフェースを満たします。
type UserEnroller interface {
	// RegisterFaceRecognition はユーザーの顔ディスクリプタを登録します。
	RegisterFaceRecognition(ctx context.Context, id uint, descriptor usersentity.FaceDescriptor) error
}

// facerecognitionUsecase は顔検出・登録のビジネスロジックを提供します。
type facerecognitionUsecase struct {
	faceDetector FaceDetector
	users        UserEnroller
}

// NewFaceRecognitionUsecase はfacerecognitionUsecaseの新しいインスタンスを生成します。
func NewFaceRecognitionUsecase(fd FaceDetector, users UserEnroller) *facerecognitionUsecase {
	return &facerecognitionUsecase{faceDetector: fd, users: users}
}

// EnrollFace は画像から顔ディスクリプタを抽出してユーザーに登録し、
// 登録したディスクリプタを返します。
// 複数の顔が検出された場合は信頼度が最も高い顔を使用します。
func (u *facerecognitionUsecase) EnrollFace(ctx context.Context, userID uint, imageData []byte) ([]float64, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}
	if len(imageData) > MaxImageSize {
		return nil, fmt.Errorf("image size exceeds maximum of %d bytes", MaxImageSize)
	}

	faces, err := u.faceDetector.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("no face detected in image")
	}

	best := faces[0]
	for _, f := range faces[1:] {
		if f.Confidence > best.Confidence {
			best = f
		}
	}
	if len(best.Descriptor) == 0 {
		return nil, fmt.Errorf("detected face has no landmarks")
	}

	descriptor := usersentity.FaceDescriptor{Vector: best.Descriptor}
	if err := u.users.RegisterFaceRecognition(ctx, userID, descriptor); err != nil {
		return nil, err
	}
	return best.Descriptor, nil
}
