package capture

import (
	"errors"
	"fmt"
	"image"
	"os"
	"runtime"
	"sync"

	"gocv.io/x/gocv"
)

// gocvDevice reads frames through OpenCV.
type gocvDevice struct {
	mu  sync.Mutex
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// OpenDevice opens the OS camera at index id.
func OpenDevice(id int) (Device, error) {
	if err := probeDevice(id); err != nil {
		return nil, err
	}

	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", id, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("camera %d not available", id)
	}

	return &gocvDevice{vc: vc, mat: gocv.NewMat()}, nil
}

// probeDevice surfaces a refused device node as a permission error.
func probeDevice(id int) error {
	if runtime.GOOS != "linux" {
		return nil
	}
	f, err := os.Open(fmt.Sprintf("/dev/video%d", id))
	if errors.Is(err, os.ErrPermission) {
		return ErrPermissionDenied
	}
	if err == nil {
		f.Close()
	}
	return nil
}

// Read grabs the next frame.
func (d *gocvDevice) Read() (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ok := d.vc.Read(&d.mat); !ok || d.mat.Empty() {
		return nil, errors.New("no frame from camera")
	}
	return d.mat.ToImage()
}

// Close releases the capture and its buffer.
func (d *gocvDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.mat.Close()
	return d.vc.Close()
}
