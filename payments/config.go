package payments

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type FeeMode string

const (
	FeePercent FeeMode = "percent"
	FeeFlat    FeeMode = "flat"
)

// MethodConfig is the per-method availability band and display fee.
type MethodConfig struct {
	Method    Method  `json:"method"`
	Enabled   bool    `json:"enabled"`
	MinAmount float64 `json:"min_amount"`
	MaxAmount float64 `json:"max_amount"` // 0 means no upper bound
	FeeMode   FeeMode `json:"fee_mode"`
	FeeValue  float64 `json:"fee_value"` // percent (e.g. 1.5) or flat amount
	FeeCap    float64 `json:"fee_cap"`   // cap for percent fees, 0 = uncapped
}

// Config is loaded once at startup so initiation never reads ambient env
// state per request.
type Config struct {
	Currency        string
	ProviderTimeout time.Duration

	PaystackSecretKey string
	PaystackBaseURL   string

	FlutterwaveSecretKey  string
	FlutterwaveSecretHash string
	FlutterwaveBaseURL    string

	CallbackBaseURL string // public base URL for provider redirects
	SuccessURL      string
	FailureURL      string

	BankName          string
	BankAccountName   string
	BankAccountNumber string
	WhatsAppNumber    string

	Methods map[Method]MethodConfig
}

// LoadConfig reads payment configuration from the environment, applying
// defaults suited to NGN retail amounts.
func LoadConfig() (Config, error) {
	cfg := Config{
		Currency:        envString("PAYMENT_CURRENCY", "NGN"),
		ProviderTimeout: time.Duration(envInt("PAYMENT_PROVIDER_TIMEOUT_SECONDS", 15)) * time.Second,

		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:   envString("PAYSTACK_BASE_URL", "https://api.paystack.co"),

		FlutterwaveSecretKey:  os.Getenv("FLUTTERWAVE_SECRET_KEY"),
		FlutterwaveSecretHash: os.Getenv("FLUTTERWAVE_SECRET_HASH"),
		FlutterwaveBaseURL:    envString("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com"),

		CallbackBaseURL: envString("PAYMENT_CALLBACK_BASE_URL", "http://localhost:8080"),
		SuccessURL:      envString("PAYMENT_SUCCESS_URL", "/order/success"),
		FailureURL:      envString("PAYMENT_FAILURE_URL", "/order/failed"),

		BankName:          os.Getenv("BANK_TRANSFER_BANK_NAME"),
		BankAccountName:   os.Getenv("BANK_TRANSFER_ACCOUNT_NAME"),
		BankAccountNumber: os.Getenv("BANK_TRANSFER_ACCOUNT_NUMBER"),
		WhatsAppNumber:    os.Getenv("WHATSAPP_BUSINESS_NUMBER"),

		Methods: map[Method]MethodConfig{
			MethodPaystack:     loadMethod(MethodPaystack, FeePercent, 1.5, 2000, 100, 0),
			MethodFlutterwave:  loadMethod(MethodFlutterwave, FeePercent, 1.4, 2000, 100, 0),
			MethodBankTransfer: loadMethod(MethodBankTransfer, FeeFlat, 0, 0, 0, 0),
			MethodCOD:          loadMethod(MethodCOD, FeeFlat, 0, 0, 0, 50000),
			MethodWhatsApp:     loadMethod(MethodWhatsApp, FeeFlat, 0, 0, 0, 0),
		},
	}

	for _, m := range []Method{MethodPaystack, MethodFlutterwave} {
		if cfg.Methods[m].Enabled {
			if m == MethodPaystack && cfg.PaystackSecretKey == "" {
				return Config{}, fmt.Errorf("paystack enabled but PAYSTACK_SECRET_KEY is not set")
			}
			if m == MethodFlutterwave && cfg.FlutterwaveSecretKey == "" {
				return Config{}, fmt.Errorf("flutterwave enabled but FLUTTERWAVE_SECRET_KEY is not set")
			}
		}
	}
	return cfg, nil
}

// loadMethod reads PAYMENT_<METHOD>_{ENABLED,MIN,MAX,FEE_*} with the given
// defaults. maxAmount 0 means unbounded.
func loadMethod(m Method, feeMode FeeMode, feeValue, feeCap, minAmount, maxAmount float64) MethodConfig {
	prefix := "PAYMENT_" + envKey(m)
	return MethodConfig{
		Method:    m,
		Enabled:   envBool(prefix+"_ENABLED", true),
		MinAmount: envFloat(prefix+"_MIN_AMOUNT", minAmount),
		MaxAmount: envFloat(prefix+"_MAX_AMOUNT", maxAmount),
		FeeMode:   FeeMode(envString(prefix+"_FEE_MODE", string(feeMode))),
		FeeValue:  envFloat(prefix+"_FEE_VALUE", feeValue),
		FeeCap:    envFloat(prefix+"_FEE_CAP", feeCap),
	}
}

// Available reports whether the method may be offered for the given amount.
// The same predicate is re-checked at initiate time so a stale client-side
// method list can never bypass it.
func (c MethodConfig) Available(amount float64) bool {
	if !c.Enabled {
		return false
	}
	if amount < c.MinAmount {
		return false
	}
	if c.MaxAmount > 0 && amount > c.MaxAmount {
		return false
	}
	return true
}

// AvailableMethods filters the configured methods to those active and within
// their amount band, in a stable order.
func (c Config) AvailableMethods(amount float64) []MethodConfig {
	order := []Method{MethodPaystack, MethodFlutterwave, MethodBankTransfer, MethodCOD, MethodWhatsApp}
	var out []MethodConfig
	for _, m := range order {
		mc, ok := c.Methods[m]
		if ok && mc.Available(amount) {
			out = append(out, mc)
		}
	}
	return out
}

// TransactionFee is what the customer would be shown for paying the given
// amount with the method. Display only: never silently added to the charge.
func (c Config) TransactionFee(amount float64, m Method) float64 {
	mc, ok := c.Methods[m]
	if !ok {
		return 0
	}
	switch mc.FeeMode {
	case FeePercent:
		fee := amount * mc.FeeValue / 100
		if mc.FeeCap > 0 && fee > mc.FeeCap {
			fee = mc.FeeCap
		}
		return fee
	case FeeFlat:
		return mc.FeeValue
	default:
		return 0
	}
}

func envKey(m Method) string {
	switch m {
	case MethodBankTransfer:
		return "BANK_TRANSFER"
	case MethodCOD:
		return "COD"
	case MethodWhatsApp:
		return "WHATSAPP"
	case MethodFlutterwave:
		return "FLUTTERWAVE"
	default:
		return "PAYSTACK"
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
