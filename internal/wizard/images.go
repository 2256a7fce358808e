package wizard

import (
	"fmt"

	"claimsportal/ports"
)

const (
	MinImages = 2
	MaxImages = 10
)

// AddImages appends batch, or rejects the whole batch if the total would exceed MaxImages
func (d *Draft) AddImages(batch []ports.Upload) error {
	if len(d.Images)+len(batch) > MaxImages {
		return ErrTooManyImages
	}
	d.Images = append(d.Images, batch...)
	return nil
}

// RemoveImage drops the image at i, keeping the others in order
func (d *Draft) RemoveImage(i int) error {
	if i < 0 || i >= len(d.Images) {
		return ErrImageIndex
	}
	next := make([]ports.Upload, 0, len(d.Images)-1)
	next = append(next, d.Images[:i]...)
	next = append(next, d.Images[i+1:]...)
	d.Images = next
	return nil
}

// PendingImagesMessage is the hint shown while fewer than MinImages are attached, or "" when enough are
func PendingImagesMessage(count int) string {
	switch {
	case count >= MinImages:
		return ""
	case count == 0:
		return fmt.Sprintf("No images uploaded yet. Please upload at least %d images.", MinImages)
	default:
		return fmt.Sprintf("Please upload %d more image(s) to proceed.", MinImages-count)
	}
}
