package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"
)

// GeneratePaymentQRPNG encode le lien de paiement d'une commande en QR
// (PNG brut), scannable depuis la page de commande.
func GeneratePaymentQRPNG(payLink string) ([]byte, error) {
	return qrcode.Encode(payLink, qrcode.Medium, 256)
}

// GeneratePaymentQRBase64 retourne le même QR prêt à mettre dans <img src="...">
func GeneratePaymentQRBase64(payLink string) (string, error) {
	png, err := GeneratePaymentQRPNG(payLink)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderInvoicePDF charge la page facture du front et l'imprime en PDF.
// frontendURL doit ressembler à: http://localhost:3000/invoice
func RenderInvoicePDF(frontendURL, orderID, qrBase64 string) ([]byte, error) {
	q := url.Values{}
	q.Set("id", orderID)
	q.Set("qr", qrBase64)

	fullURL := fmt.Sprintf("%s?%s", frontendURL, q.Encode())

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	// timeout pour éviter de bloquer
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pdfBuf []byte

	err := chromedp.Run(ctx,
		chromedp.Navigate(fullURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}

// GetFrontendInvoiceBaseURL récupère l'URL de la page facture du front.
func GetFrontendInvoiceBaseURL() string {
	u := os.Getenv("FRONTEND_INVOICE_URL")
	if u == "" {
		return "http://localhost:3000/invoice"
	}
	return u
}
