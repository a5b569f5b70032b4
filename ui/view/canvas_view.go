package view

import (
	"image"

	"github.com/soocke/pixel-labeler/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CanvasView shows annotation frames in an image label sized exactly to the display
// image, so pointer coordinates are display-space pixels.
type CanvasView struct {
	label  *LabelWidget
	photo  *Img // current Tk photo, deleted when replaced
	bounds image.Rectangle
}

// NewCanvasView creates the image label showing display and grids it at row.
func NewCanvasView(display image.Image, row, span int) *CanvasView {
	photo := NewPhoto(Data(images.EncodePNG(display)))
	label := Label(Image(photo), Borderwidth(0), Padx(0), Pady(0), Highlightthickness(0))
	Grid(label, Row(row), Column(0), Columnspan(span), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	return &CanvasView{label: label, photo: photo, bounds: display.Bounds()}
}

// Widget returns the label receiving pointer events.
func (v *CanvasView) Widget() *LabelWidget { return v.label }

// Bounds returns the display-space rectangle pointer positions are clamped to.
func (v *CanvasView) Bounds() image.Rectangle {
	if v == nil {
		return image.Rectangle{}
	}
	return v.bounds
}

// Present replaces the shown frame. The previous photo is deleted so obsolete pixel
// buffers are not retained by Tk.
func (v *CanvasView) Present(img image.Image) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	next := NewPhoto(Data(images.EncodePNG(img)))
	v.label.Configure(Image(next))
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = next
}
