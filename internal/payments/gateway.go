package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"vishubh-healthcare-server/pkg/logging"
)

// Sentinel errors of the payment flow.
var (
	// ErrGateway reports a failed call to the payment gateway. Logged and
	// mapped to a failed payment, never propagated as a server fault.
	ErrGateway = errors.New("payments: gateway request failed")

	// ErrVerificationFailed reports a rejected payment signature. Hard
	// reject; never retried automatically.
	ErrVerificationFailed = errors.New("payments: signature verification failed")
)

// Gateway is the payment collaborator. The Razorpay implementation is
// authoritative; tests use a fake.
type Gateway interface {
	// CreateOrder registers a payment order for the given amount (in rupees)
	// and returns the gateway order id.
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (string, error)

	// VerifySignature checks the gateway's payment signature.
	VerifySignature(orderID, paymentID, signature string) bool

	// Refund refunds a captured payment. amount 0 means full refund.
	Refund(ctx context.Context, paymentID string, amount float64) error
}

// RazorpayGateway implements Gateway on the Razorpay SDK.
type RazorpayGateway struct {
	client    *razorpay.Client
	keySecret string
	logger    *logging.Logger
}

// NewRazorpayGateway creates a gateway client from injected credentials.
func NewRazorpayGateway(keyID, keySecret string, logger *logging.Logger) *RazorpayGateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &RazorpayGateway{
		client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
		logger:    logger,
	}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (string, error) {
	if currency == "" {
		currency = "INR"
	}
	data := map[string]interface{}{
		// Razorpay expects the smallest currency unit (paise).
		"amount":          int64(amount * 100),
		"currency":        currency,
		"payment_capture": 1,
	}
	if receipt != "" {
		data["receipt"] = receipt
	}

	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		g.logger.Error("razorpay order create failed", "error", err, "amount", amount)
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("%w: order response missing id", ErrGateway)
	}
	return orderID, nil
}

// VerifySignature validates the HMAC-SHA256 signature Razorpay computes over
// "orderID|paymentID" with the key secret.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return verifyHMAC(orderID+"|"+paymentID, signature, g.keySecret)
}

func (g *RazorpayGateway) Refund(ctx context.Context, paymentID string, amount float64) error {
	// The SDK always posts the amount field and Razorpay rejects a zero
	// amount, so a full refund has to name the captured amount explicitly.
	amountPaise := int(amount * 100)
	if amountPaise <= 0 {
		payment, err := g.client.Payment.Fetch(paymentID, nil, nil)
		if err != nil {
			g.logger.Error("razorpay payment fetch failed", "error", err, "payment_id", paymentID)
			return fmt.Errorf("%w: %v", ErrGateway, err)
		}
		amountPaise, err = capturedPaise(payment)
		if err != nil {
			return err
		}
	}

	_, err := g.client.Payment.Refund(paymentID, amountPaise, map[string]interface{}{}, nil)
	if err != nil {
		g.logger.Error("razorpay refund failed", "error", err, "payment_id", paymentID)
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return nil
}

// capturedPaise reads the captured amount from a fetched payment.
func capturedPaise(payment map[string]interface{}) (int, error) {
	v, ok := payment["amount"].(float64)
	if !ok || v <= 0 {
		return 0, fmt.Errorf("%w: payment response missing amount", ErrGateway)
	}
	return int(v), nil
}

// verifyHMAC validates a hex-encoded HMAC-SHA256 signature in constant time.
func verifyHMAC(payload, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	expected := mac.Sum(nil)

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sigBytes)
}
