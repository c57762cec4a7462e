package orders

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptQRPayloadVerifies(t *testing.T) {
	payload := receiptQRPayload("68b0f1d2aa11bb22cc33dd44", "64f000000000000000000001")

	parts := strings.Split(payload, "|")
	require.Len(t, parts, 4)
	assert.Equal(t, "68b0f1d2aa11bb22cc33dd44", parts[0])
	assert.Equal(t, "64f000000000000000000001", parts[1])

	ts, err := strconv.ParseInt(parts[2], 10, 64)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Unix(), ts, 5)

	h := hmac.New(sha256.New, receiptSecret())
	h.Write([]byte(strings.Join(parts[:3], "|")))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	assert.Equal(t, want, parts[3])
}

func TestReceiptQRPayloadTamperDetected(t *testing.T) {
	payload := receiptQRPayload("68b0f1d2aa11bb22cc33dd44", "64f000000000000000000001")
	parts := strings.Split(payload, "|")
	require.Len(t, parts, 4)

	// swap in a different order id, keep the old signature
	parts[0] = "68b0f1d2aa11bb22cc33dd45"

	h := hmac.New(sha256.New, receiptSecret())
	h.Write([]byte(strings.Join(parts[:3], "|")))
	recomputed := base64.StdEncoding.EncodeToString(h.Sum(nil))
	assert.NotEqual(t, parts[3], recomputed)
}
