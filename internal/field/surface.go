package field

//go:generate mockgen -source=surface.go -destination=mocks/mock_surface.go -package=mocks

import "image/color"

// Surface is the 2D raster the field paints on.
type Surface interface {
	// Clear wipes the whole surface.
	Clear()
	// FillCircle paints a filled circle of radius r centred on (x, y).
	FillCircle(x, y, r float64, c color.Color)
	// StrokeLine paints a segment of the given width.
	StrokeLine(x0, y0, x1, y1, width float64, c color.Color)
}
