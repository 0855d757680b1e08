// Package entity defines the domain entities for the facerecognition feature.
package entity

// DetectedFace represents a single face found in an image.
type DetectedFace struct {
	// Descriptor is the numeric feature vector derived from the facial
	// landmarks, normalized to the detection bounding box.
	Descriptor []float64

	// Confidence is the detection confidence reported by the provider (0..1).
	Confidence float32
}
