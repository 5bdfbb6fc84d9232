package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/settlement"
)

// vnpayAmountScale converts a VND amount to VNPay's minor unit
var vnpayAmountScale = decimal.NewFromInt(100)

const (
	vnpayPayURL        = "https://pay.vnpay.vn/vpcpay.html"
	vnpaySandboxPayURL = "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
	vnpayVersion       = "2.1.0"
	vnpayCommand       = "pay"
	vnpayCurrCode      = "VND"
	vnpayOrderType     = "other"
	vnpayTimeLayout    = "20060102150405"
	vnpayExpireAfter   = 15 * time.Minute
)

// Errors returned when a callback cannot be trusted
var (
	ErrVNPayMissingSignature = errors.New("vnpay: callback has no secure hash")
	ErrVNPayInvalidSignature = errors.New("vnpay: callback signature mismatch")
	ErrVNPayMissingTxnRef    = errors.New("vnpay: callback has no transaction reference")
)

// VNPayAdapter implements the PaymentGateway interface for VNPay. Requests
// and callbacks are signed with HMAC-SHA512 over the sorted, URL-encoded
// parameter set.
type VNPayAdapter struct {
	config *VNPayConfig
	now    func() time.Time
}

// NewVNPayAdapter creates a new VNPay adapter
func NewVNPayAdapter(config *VNPayConfig) (*VNPayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &VNPayAdapter{
		config: config,
		now:    time.Now,
	}, nil
}

// CreatePaymentURL builds the signed redirect URL for one settlement
// transaction. VNPay expects the amount multiplied by 100 and timestamps in
// the gateway's local time.
func (a *VNPayAdapter) CreatePaymentURL(_ context.Context, req settlement.PaymentURLRequest) (string, error) {
	if req.TransactionCode == "" {
		return "", ErrVNPayMissingTxnRef
	}

	createdAt := a.now()
	params := url.Values{}
	params.Set("vnp_Version", vnpayVersion)
	params.Set("vnp_Command", vnpayCommand)
	params.Set("vnp_TmnCode", a.config.TmnCode)
	params.Set("vnp_Amount", req.Amount.Amount().Mul(vnpayAmountScale).StringFixed(0))
	params.Set("vnp_CurrCode", vnpayCurrCode)
	params.Set("vnp_TxnRef", req.TransactionCode)
	params.Set("vnp_OrderInfo", fmt.Sprintf("Thanh toan doi soat %s", req.BatchCode))
	params.Set("vnp_OrderType", vnpayOrderType)
	params.Set("vnp_Locale", a.config.Locale)
	params.Set("vnp_ReturnUrl", a.config.ReturnURL)
	params.Set("vnp_IpAddr", req.ClientIP)
	params.Set("vnp_CreateDate", createdAt.Format(vnpayTimeLayout))
	params.Set("vnp_ExpireDate", createdAt.Add(vnpayExpireAfter).Format(vnpayTimeLayout))

	signed := params.Encode()
	signature := a.sign(signed)

	payURL := vnpayPayURL
	if a.config.IsSandbox {
		payURL = vnpaySandboxPayURL
	}
	return payURL + "?" + signed + "&vnp_SecureHash=" + signature, nil
}

// VerifyCallback checks the callback signature and extracts the payment
// outcome. The secure hash covers every vnp_ parameter except the hash
// fields themselves; any mismatch discards the callback.
func (a *VNPayAdapter) VerifyCallback(callbackParams map[string]string) (*settlement.CallbackResult, error) {
	received, ok := callbackParams["vnp_SecureHash"]
	if !ok || received == "" {
		return nil, ErrVNPayMissingSignature
	}

	params := url.Values{}
	for key, value := range callbackParams {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		params.Set(key, value)
	}

	expected := a.sign(params.Encode())
	if !hmac.Equal([]byte(expected), []byte(received)) {
		return nil, ErrVNPayInvalidSignature
	}

	txnRef := callbackParams["vnp_TxnRef"]
	if txnRef == "" {
		return nil, ErrVNPayMissingTxnRef
	}

	responseCode := callbackParams["vnp_ResponseCode"]
	transactionStatus := callbackParams["vnp_TransactionStatus"]
	return &settlement.CallbackResult{
		TransactionCode: txnRef,
		Success:         responseCode == "00" && transactionStatus == "00",
		GatewayRef:      callbackParams["vnp_TransactionNo"],
		ResponseCode:    responseCode,
	}, nil
}

// sign computes the hex HMAC-SHA512 of the encoded parameter string
func (a *VNPayAdapter) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(a.config.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Ensure VNPayAdapter implements PaymentGateway
var _ settlement.PaymentGateway = (*VNPayAdapter)(nil)
