package captcha

import (
	"image/color"

	"github.com/mojocn/base64Captcha"

	"github.com/layer-3/kana-auth/ports"
)

// Alphabet omits glyphs that are easy to confuse (0 o O 1 i l I)
const Alphabet = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"

// Default rendering parameters
const (
	DefaultLength = 4
	DefaultWidth  = 150
	DefaultHeight = 50
	DefaultNoise  = 2
)

// Base64Renderer draws distorted text challenges as PNG data URIs
type Base64Renderer struct {
	driver *base64Captcha.DriverString
}

// NewBase64Renderer creates a renderer producing challenges of the given length
func NewBase64Renderer(length int) ports.ChallengeRenderer {
	if length <= 0 {
		length = DefaultLength
	}
	driver := base64Captcha.NewDriverString(
		DefaultHeight,
		DefaultWidth,
		DefaultNoise,
		base64Captcha.OptionShowSlimeLine|base64Captcha.OptionShowSineLine,
		length,
		Alphabet,
		&color.RGBA{R: 255, G: 255, B: 255, A: 255},
		nil,
		nil,
	)
	return &Base64Renderer{driver: driver.ConvertFonts()}
}

// Generate returns a random answer and its rendered image
func (r *Base64Renderer) Generate() (string, string, error) {
	_, content, answer := r.driver.GenerateIdQuestionAnswer()

	item, err := r.driver.DrawCaptcha(content)
	if err != nil {
		return "", "", err
	}

	return answer, item.EncodeB64string(), nil
}
