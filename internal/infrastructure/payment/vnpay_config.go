package payment

import "errors"

// VNPayConfig contains configuration for the VNPay payment gateway
type VNPayConfig struct {
	// TmnCode is the merchant terminal code issued by VNPay
	TmnCode string
	// HashSecret is the shared secret used to sign requests and verify callbacks
	HashSecret string
	// ReturnURL is the URL VNPay redirects the payer back to
	ReturnURL string
	// IsSandbox indicates whether to use the sandbox environment
	IsSandbox bool
	// Locale is the payment page language (vn or en)
	Locale string
}

// Errors for configuration validation
var (
	ErrVNPayMissingTmnCode    = errors.New("vnpay: missing terminal code")
	ErrVNPayMissingHashSecret = errors.New("vnpay: missing hash secret")
	ErrVNPayMissingReturnURL  = errors.New("vnpay: missing return URL")
)

// Validate validates the configuration
func (c *VNPayConfig) Validate() error {
	if c.TmnCode == "" {
		return ErrVNPayMissingTmnCode
	}
	if c.HashSecret == "" {
		return ErrVNPayMissingHashSecret
	}
	if c.ReturnURL == "" {
		return ErrVNPayMissingReturnURL
	}
	if c.Locale == "" {
		c.Locale = "vn"
	}
	return nil
}
