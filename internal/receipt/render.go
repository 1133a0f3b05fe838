// Package receipt renders completed orders as PNG receipts and exports them.
package receipt

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"time"

	"family-store/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// Width is the logical receipt width in pixels.
	Width = 500
	// Scale is the device pixel ratio of the exported image.
	Scale = 2

	padX = 40
	padY = 60

	timestampLayout = "2006/1/2 15:04:05"
	footerText      = "Thank you for being part of our family"
)

var (
	ink   = color.RGBA{0x1d, 0x1d, 0x1f, 0xff}
	muted = color.RGBA{0x86, 0x86, 0x8b, 0xff}
	faint = color.RGBA{0xc7, 0xc7, 0xcc, 0xff}
	rule  = color.RGBA{0xf0, 0xf0, 0xf2, 0xff}
	panel = color.RGBA{0xf5, 0xf5, 0xf7, 0xff}
	paper = color.White
)

// Filename returns the download name for an order's receipt.
func Filename(orderID string) string {
	return "FamilyStore_Receipt_" + orderID + ".png"
}

// Options configures a Renderer.
type Options struct {
	// FontPath points to a TrueType or OpenType font. CJK text needs one;
	// without it the built-in bitmap face is used.
	FontPath string
	Location *time.Location
}

type role int

const (
	roleTitle role = iota
	roleBody
	roleSmall
	roleTotal
)

// lineHeights are logical pixel advances per text role.
var lineHeights = map[role]int{
	roleTitle: 32,
	roleBody:  20,
	roleSmall: 16,
	roleTotal: 44,
}

var fontSizes = map[role]float64{
	roleTitle: 24,
	roleBody:  14,
	roleSmall: 11,
	roleTotal: 32,
}

// Renderer draws receipts. It is safe for concurrent use.
type Renderer struct {
	font     *opentype.Font
	location *time.Location
	logger   zerolog.Logger
}

// NewRenderer loads the configured font. A missing font path is not an error.
func NewRenderer(opts Options, logger zerolog.Logger) (*Renderer, error) {
	logger = logger.With().Str("component", "receipt-renderer").Logger()

	r := &Renderer{
		location: opts.Location,
		logger:   logger,
	}
	if r.location == nil {
		r.location = time.Local
	}

	if opts.FontPath == "" {
		logger.Warn().Msg("no receipt font configured, using bitmap face")
		return r, nil
	}

	data, err := os.ReadFile(opts.FontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt font %s: %w", opts.FontPath, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt font %s: %w", opts.FontPath, err)
	}
	r.font = f

	logger.Info().Str("font", opts.FontPath).Msg("receipt font loaded")
	return r, nil
}

// Render draws the receipt for order and returns it PNG-encoded at Scale.
func (r *Renderer) Render(order *model.Order, blessing string) ([]byte, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}
	if blessing == "" {
		blessing = "願這份簡單的選擇，帶給您一整天的好心情。"
	}

	faces, pxScale, err := r.faces()
	if err != nil {
		return nil, err
	}
	defer faces.close()

	l := r.layout(order, blessing, faces, pxScale)

	canvas := image.NewRGBA(image.Rect(0, 0, Width*pxScale, l.height*pxScale))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(paper), image.Point{}, draw.Src)
	l.paint(canvas, faces, pxScale)

	var out image.Image = canvas
	if pxScale < Scale {
		scaled := image.NewRGBA(image.Rect(0, 0, Width*Scale, l.height*Scale))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode receipt: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID).
		Int("bytes", buf.Len()).
		Msg("receipt rendered")

	return buf.Bytes(), nil
}

// faceSet holds one face per text role.
type faceSet map[role]font.Face

func (fs faceSet) close() {
	for _, f := range fs {
		_ = f.Close()
	}
}

// faces returns the faces and the pixel scale they were built for. Vector
// fonts are rasterised directly at Scale; the bitmap face is drawn at 1x and
// the whole canvas is upscaled afterwards.
func (r *Renderer) faces() (faceSet, int, error) {
	fs := faceSet{}
	if r.font == nil {
		for k := range fontSizes {
			fs[k] = basicfont.Face7x13
		}
		return fs, 1, nil
	}

	for k, size := range fontSizes {
		face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
			Size:    size * Scale,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			fs.close()
			return nil, 0, fmt.Errorf("failed to create font face: %w", err)
		}
		fs[k] = face
	}
	return fs, Scale, nil
}

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

type textOp struct {
	role  role
	text  string
	x     int
	y     int
	align align
	color color.Color
}

type rectOp struct {
	rect  image.Rectangle
	color color.Color
}

type layout struct {
	texts  []textOp
	rects  []rectOp
	height int
}

func (r *Renderer) layout(order *model.Order, blessing string, faces faceSet, pxScale int) *layout {
	l := &layout{}
	right := Width - padX
	y := padY

	text := func(ro role, s string, x int, a align, c color.Color) {
		l.texts = append(l.texts, textOp{role: ro, text: s, x: x, y: y + lineHeights[ro] - 4, align: a, color: c})
	}

	// Header
	text(roleTitle, "FAMILY STORE", Width/2, alignCenter, ink)
	y += lineHeights[roleTitle] + 4
	text(roleSmall, "OFFICIAL RECEIPT", Width/2, alignCenter, muted)
	y += lineHeights[roleSmall] + 40

	// Order details
	text(roleSmall, "訂單編號: "+order.ID, padX, alignLeft, muted)
	text(roleSmall, "付款狀態: 已完成", right, alignRight, muted)
	y += lineHeights[roleSmall] + 4
	text(roleSmall, "日期: "+order.Time().In(r.location).Format(timestampLayout), padX, alignLeft, muted)
	text(roleSmall, "支付方式: 現金", right, alignRight, muted)
	y += lineHeights[roleSmall] + 24
	l.rects = append(l.rects, rectOp{rect: image.Rect(padX, y, right, y+1), color: rule})
	y += 32

	// Items
	nameWidth := (Width - 2*padX) * 2 / 3
	for _, item := range order.Items {
		lines := wrap(faces[roleBody], item.Name, nameWidth*pxScale)
		text(roleBody, "NT$ "+strconv.Itoa(item.Subtotal()), right, alignRight, ink)
		for _, line := range lines {
			text(roleBody, line, padX, alignLeft, ink)
			y += lineHeights[roleBody]
		}
		text(roleSmall, string(item.Category), padX, alignLeft, muted)
		text(roleSmall, "數量: "+strconv.Itoa(item.Quantity), right, alignRight, muted)
		y += lineHeights[roleSmall] + 28
	}

	// Total
	y += 20
	l.rects = append(l.rects, rectOp{rect: image.Rect(padX, y, right, y+2), color: ink})
	y += 24
	text(roleSmall, "TOTAL", padX, alignLeft, muted)
	text(roleTotal, "NT$ "+strconv.Itoa(order.TotalAmount), right, alignRight, ink)
	y += lineHeights[roleTotal] + 48

	// Blessing panel
	blessingLines := wrap(faces[roleBody], "「 "+blessing+" 」", (Width-2*padX-48)*pxScale)
	panelTop := y
	y += 24
	for _, line := range blessingLines {
		text(roleBody, line, Width/2, alignCenter, muted)
		y += lineHeights[roleBody] + 4
	}
	y += 20
	l.rects = append(l.rects, rectOp{rect: image.Rect(padX, panelTop, right, y), color: panel})

	// Footer
	y += 64
	text(roleSmall, footerText, Width/2, alignCenter, faint)
	y += lineHeights[roleSmall]

	l.height = y + padY
	return l
}

func (l *layout) paint(dst draw.Image, faces faceSet, pxScale int) {
	for _, op := range l.rects {
		r := image.Rect(op.rect.Min.X*pxScale, op.rect.Min.Y*pxScale, op.rect.Max.X*pxScale, op.rect.Max.Y*pxScale)
		draw.Draw(dst, r, image.NewUniform(op.color), image.Point{}, draw.Src)
	}

	for _, op := range l.texts {
		face := faces[op.role]
		x := op.x * pxScale
		switch op.align {
		case alignCenter:
			x -= font.MeasureString(face, op.text).Ceil() / 2
		case alignRight:
			x -= font.MeasureString(face, op.text).Ceil()
		}

		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(op.color),
			Face: face,
			Dot:  fixed.P(x, op.y*pxScale),
		}
		d.DrawString(op.text)
	}
}

// wrap splits s into lines no wider than maxWidth device pixels. Text is
// broken between runes, which suits CJK strings without spaces.
func wrap(face font.Face, s string, maxWidth int) []string {
	limit := fixed.I(maxWidth)
	var lines []string
	var current []rune
	for _, r := range s {
		candidate := append(current, r)
		if len(current) > 0 && font.MeasureString(face, string(candidate)) > limit {
			lines = append(lines, string(current))
			current = []rune{r}
			continue
		}
		current = candidate
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return lines
}
