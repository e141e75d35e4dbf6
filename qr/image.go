package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// ImageDataURL renders the payload into a PNG with the highest error
// correction level and returns it as a data URL, ready for email embedding.
// The image is a presentation of the payload, not a separate credential.
func ImageDataURL(payload string, size int) (string, error) {
	png, err := qrcode.Encode(payload, qrcode.Highest, size)
	if err != nil {
		return "", fmt.Errorf("could not render QR image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
