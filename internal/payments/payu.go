// Package payments builds PayU hosted-checkout requests and verifies the
// gateway's response hash.
package payments

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"festpass/internal/shared/config"

	"github.com/shopspring/decimal"
)

const (
	TestActionURL       = "https://test.payu.in/_payment"
	ProductionActionURL = "https://secure.payu.in/_payment"

	maxProductInfo = 100
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	ErrHashMismatch   = errors.New("payment response hash mismatch")
	ErrMissingSecrets = errors.New("payment gateway key or salt not configured")
)

// Request is the merchant side of a checkout.
type Request struct {
	TxnID       string
	Amount      decimal.Decimal
	ProductInfo string
	FirstName   string
	Email       string
	Phone       string
	UDF         [5]string
}

// Handoff is posted by the client as an auto-submitted form to Action.
type Handoff struct {
	Action string            `json:"action"`
	Params map[string]string `json:"params"`
}

// Result is what the gateway reports back for a transaction.
type Result struct {
	Status      string    `json:"status"`
	TxnID       string    `json:"txnid"`
	Amount      string    `json:"amount"`
	ProductInfo string    `json:"productinfo"`
	FirstName   string    `json:"firstname"`
	Email       string    `json:"email"`
	MihpayID    string    `json:"mihpayid,omitempty"`
	UDF         [5]string `json:"udf,omitempty"`
	Hash        string    `json:"hash"`
}

// Succeeded reports whether the gateway captured the payment.
func (r Result) Succeeded() bool {
	return strings.EqualFold(r.Status, StatusSuccess)
}

type Gateway struct {
	cfg config.PaymentConfig
}

func NewGateway(cfg config.PaymentConfig) *Gateway {
	return &Gateway{cfg: cfg}
}

func (g *Gateway) ActionURL() string {
	if g.cfg.IsProduction() {
		return ProductionActionURL
	}
	return TestActionURL
}

// FormatAmount renders a gateway amount with exactly two decimals.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// TruncateProductInfo cuts s to at most 100 characters on a rune boundary.
func TruncateProductInfo(s string) string {
	if utf8.RuneCountInString(s) <= maxProductInfo {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxProductInfo])
}

// BuildRequest produces the signed form parameters for a checkout.
func (g *Gateway) BuildRequest(req Request) (*Handoff, error) {
	if g.cfg.Key == "" || g.cfg.Salt == "" {
		return nil, ErrMissingSecrets
	}

	amount := FormatAmount(req.Amount)
	productInfo := TruncateProductInfo(req.ProductInfo)

	params := map[string]string{
		"key":         g.cfg.Key,
		"txnid":       req.TxnID,
		"amount":      amount,
		"productinfo": productInfo,
		"firstname":   req.FirstName,
		"email":       req.Email,
		"phone":       req.Phone,
		"surl":        g.cfg.SuccessURL,
		"furl":        g.cfg.FailureURL,
	}
	for i, v := range req.UDF {
		if v != "" {
			params["udf"+strconv.Itoa(i+1)] = v
		}
	}

	params["hash"] = RequestHash(g.cfg.Key, g.cfg.Salt, req.TxnID, amount, productInfo, req.FirstName, req.Email, req.UDF)

	return &Handoff{Action: g.ActionURL(), Params: params}, nil
}

// VerifyResult checks the reverse hash the gateway attaches to its response.
func (g *Gateway) VerifyResult(res Result) error {
	if g.cfg.Key == "" || g.cfg.Salt == "" {
		return ErrMissingSecrets
	}
	expected := ResponseHash(g.cfg.Key, g.cfg.Salt, res)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(res.Hash))) != 1 {
		return ErrHashMismatch
	}
	return nil
}

// RequestHash is sha512(key|txnid|amount|productinfo|firstname|email|udf1..udf5||||||salt).
func RequestHash(key, salt, txnID, amount, productInfo, firstName, email string, udf [5]string) string {
	fields := []string{key, txnID, amount, productInfo, firstName, email}
	fields = append(fields, udf[:]...)
	fields = append(fields, "", "", "", "", "", salt)
	return sha512Hex(strings.Join(fields, "|"))
}

// ResponseHash is sha512(salt|status||||||udf5|udf4|udf3|udf2|udf1|email|firstname|productinfo|amount|txnid|key).
func ResponseHash(key, salt string, res Result) string {
	fields := []string{salt, res.Status, "", "", "", "", ""}
	for i := len(res.UDF) - 1; i >= 0; i-- {
		fields = append(fields, res.UDF[i])
	}
	fields = append(fields, res.Email, res.FirstName, res.ProductInfo, res.Amount, res.TxnID, key)
	return sha512Hex(strings.Join(fields, "|"))
}

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
