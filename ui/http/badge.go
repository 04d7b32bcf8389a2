package http

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"strconv"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/nfnt/resize"
	"github.com/pdbogen/slackin/common/colors"
	mbDraw "github.com/pdbogen/slackin/common/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	badgeHeight    = 20
	badgeRadius    = 3
	badgeMaxHeight = 512
	badgeFontSize  = 11
	badgePad       = 6
	badgeLabel     = "slack"
)

var badgeFont *truetype.Font

func init() {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("parsing embedded badge font: %s", err))
	}
	badgeFont = f
}

// GetBadge serves a PNG "slack | online/total" badge. ?h= scales it to a height; ?color= picks the fill
// behind the counts.
func (h *Http) GetBadge(rw http.ResponseWriter, req *http.Request) {
	var value string
	fill := colors.Or(req.FormValue("color"), colors.Value)
	status := http.StatusOK

	snap, err := h.fetcher.Fetch(req.Context())
	switch {
	case err != nil:
		log.Errorf("fetching dashboard for badge: %s", err)
		value, fill, status = "error", colors.Colors["red"], http.StatusBadGateway
	default:
		value = fmt.Sprintf("%s/%s", count(snap.Membership.UsersOnline), count(snap.Membership.UsersTotal))
		if snap.Throttled {
			fill = colors.Throttled
		}
	}

	img, err := renderBadge(badgeLabel, value, colors.Label, fill)
	if err != nil {
		log.Errorf("rendering badge %q: %s", value, err)
		http.Error(rw, "internal server error", http.StatusInternalServerError)
		return
	}

	if hs := req.FormValue("h"); hs != "" {
		height, err := strconv.Atoi(hs)
		if err != nil || height <= 0 || height > badgeMaxHeight {
			http.Error(rw, fmt.Sprintf("h must be an integer from 1 to %d", badgeMaxHeight), http.StatusBadRequest)
			return
		}
		if height != badgeHeight {
			img = resize.Resize(0, uint(height), img, resize.Bilinear)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Errorf("encoding badge: %s", err)
		http.Error(rw, "internal server error", http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "image/png")
	rw.Header().Set("Cache-Control", "no-cache")
	rw.WriteHeader(status)
	buf.WriteTo(rw)
}

// renderBadge draws label and value in white on two flat fills, each padded by badgePad, with rounded corners.
func renderBadge(label, value string, labelFill, valueFill color.Color) (image.Image, error) {
	face := truetype.NewFace(badgeFont, &truetype.Options{Size: badgeFontSize, DPI: 72, Hinting: font.HintingFull})
	defer face.Close()

	labelW := font.MeasureString(face, label).Ceil() + 2*badgePad
	valueW := font.MeasureString(face, value).Ceil() + 2*badgePad

	img := image.NewNRGBA(image.Rect(0, 0, labelW+valueW, badgeHeight))
	draw.Draw(img, image.Rect(0, 0, labelW, badgeHeight), image.NewUniform(labelFill), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(labelW, 0, labelW+valueW, badgeHeight), image.NewUniform(valueFill), image.Point{}, draw.Src)

	m := face.Metrics()
	baseline := (badgeHeight + m.Ascent.Ceil() - m.Descent.Ceil()) / 2

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(badgeFont)
	c.SetFontSize(badgeFontSize)
	c.SetHinting(font.HintingFull)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.White)

	if _, err := c.DrawString(label, freetype.Pt(badgePad, baseline)); err != nil {
		return nil, fmt.Errorf("drawing label: %w", err)
	}
	if _, err := c.DrawString(value, freetype.Pt(labelW+badgePad, baseline)); err != nil {
		return nil, fmt.Errorf("drawing value: %w", err)
	}
	mbDraw.RoundCorners(img, badgeRadius)
	return img, nil
}
