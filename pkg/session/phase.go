package session

import (
	"encoding/json"
	"fmt"
)

// Phase is where the session is in the capture cycle.
type Phase int

const (
	// Capturing is the initial phase: the live preview is showing.
	Capturing Phase = iota

	// Processing means an image is being analyzed.
	Processing

	// Result means a description is on screen.
	Result
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Capturing:
		return "capturing"
	case Processing:
		return "processing"
	case Result:
		return "result"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalJSON encodes the phase as its name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// NoticeKind classifies a user-visible alert.
type NoticeKind string

const (
	NoticePermissionDenied NoticeKind = "permission_denied"
	NoticeCaptureFailed    NoticeKind = "capture_failed"
	NoticeAnalysisFailed   NoticeKind = "analysis_failed"
)

// Notice is an alert the front end shows until dismissed.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

var (
	permissionNotice = Notice{
		Kind:    NoticePermissionDenied,
		Title:   "Permission Required",
		Message: "Iris needs access to your camera and photos to analyze images.",
	}
	captureNotice = Notice{
		Kind:    NoticeCaptureFailed,
		Title:   "Error",
		Message: "Failed to capture photo properly. Please try again.",
	}
	analysisNotice = Notice{
		Kind:    NoticeAnalysisFailed,
		Title:   "Analysis Failed",
		Message: "Unable to analyze the image. Please try again.",
	}
)
