package view

import (
	"image"

	"github.com/soocke/reel-bot-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RegionPreview shows a scaled snapshot of the game window with the
// detection regions outlined.
type RegionPreview interface {
	UpdatePreview(img image.Image)
	Reset()
}

type regionPreview struct {
	label     *LabelWidget
	prevPhoto *Img // disposed before replacement
}

const (
	maxPreviewW = 480
	maxPreviewH = 270
)

// NewRegionPreview creates the preview label spanning columns 0-4 of row.
func NewRegionPreview(row int) RegionPreview {
	photo := NewPhoto(Data(placeholderPNG()))
	lbl := Label(Image(photo), Borderwidth(1), Relief("sunken"))
	Grid(lbl, Row(row), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	return &regionPreview{label: lbl, prevPhoto: photo}
}

func (v *regionPreview) UpdatePreview(img image.Image) {
	if v.label == nil || img == nil {
		return
	}
	data := images.EncodePNG(images.ScaleToFit(img, maxPreviewW, maxPreviewH))
	if len(data) == 0 {
		return
	}
	v.swap(NewPhoto(Data(data)))
}

func (v *regionPreview) Reset() {
	if v.label == nil {
		return
	}
	v.swap(NewPhoto(Data(placeholderPNG())))
}

func (v *regionPreview) swap(photo *Img) {
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = photo
	v.label.Configure(Image(photo))
}

func placeholderPNG() []byte {
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, 240, 135)))
}
