package orders

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"mercato/apperr"
	"mercato/db"
	"mercato/models"
	"mercato/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func receiptSecret() []byte {
	if s := os.Getenv("RECEIPT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("change_me_in_production")
}

// receiptQRPayload returns orderID|userID|timestamp|signature so a scanned
// receipt can be verified against tampering.
func receiptQRPayload(orderID, userID string) string {
	data := fmt.Sprintf("%s|%s|%d", orderID, userID, time.Now().Unix())

	h := hmac.New(sha256.New, receiptSecret())
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// PrintReceipt renders a PDF receipt for one order.
func PrintReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Order with this ID was not found"))
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": orderID}}},
	}
	pipeline = append(pipeline, detailLookup()...)

	ordersFound, err := utils.AggregateAndDecode[models.OrderDetail](ctx, db.OrdersCollection, pipeline)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to fetch order", err))
		return
	}
	if len(ordersFound) == 0 {
		utils.RespondWithAppError(w, apperr.New(apperr.NotFound, "Order was not found"))
		return
	}
	order := ordersFound[0]

	qrPNG, err := qrcode.Encode(receiptQRPayload(order.ID.Hex(), order.User.ID.Hex()), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to generate QR code", err))
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Order ID: %s", order.ID.Hex()))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Customer: %s %s", order.FirstName, order.LastName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Status: %s", order.Status))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Ordered: %s", order.DateOrdered.Format("2006-01-02 15:04")))
	pdf.Ln(12)

	for _, item := range order.OrderItems {
		pdf.Cell(0, 8, fmt.Sprintf("%d x %s @ %.2f", item.Quantity, item.Product.Name, item.Product.Price))
		pdf.Ln(7)
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Total: %.2f", order.TotalPrice))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithAppError(w, apperr.Wrap(apperr.Internal, "Failed to generate PDF", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+order.ID.Hex()+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
