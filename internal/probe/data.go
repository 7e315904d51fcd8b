package probe

import "fmt"

// Dimensions are intrinsic pixel sizes of a probed image.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}
