package imagepkg

import (
	qrcode "github.com/skip2/go-qrcode"
)

// ReportQRCode returns PNG bytes of a QR code pointing at a report
// download link, so the operator can pull the report onto a phone.
func ReportQRCode(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	q, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return q.PNG(size)
}
