package phantom

import (
	goerrors "errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnparsableURL = goerrors.New("callback url cannot be parsed")
	ErrRouteMismatch = goerrors.New("callback url does not match route")
	ErrMissingParams = goerrors.New("callback url is missing parameters")
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("url"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// UserRejectedCode is the wallet's code for a request the user declined.
const UserRejectedCode = "4001"

// WalletError is returned when the wallet redirects back with errorCode.
type WalletError struct {
	Code    string
	Message string
}

func (e *WalletError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("wallet returned error %s", e.Code)
	}
	return fmt.Sprintf("wallet returned error %s: %s", e.Code, e.Message)
}

func (e *WalletError) UserRejected() bool {
	return e.Code == UserRejectedCode
}

func IsWalletError(err error) bool {
	var we *WalletError
	return goerrors.As(err, &we)
}

// Callback holds the query parameters of an inbound wallet redirect.
type Callback struct {
	Route           string `url:"-"`
	AttemptID       string `url:"attempt" validate:"required,uuid4"`
	Data            string `url:"data" validate:"required"`
	Nonce           string `url:"nonce" validate:"required"`
	WalletPublicKey string `url:"phantom_encryption_public_key" validate:"required"`
	ErrorCode       string `url:"errorCode"`
	ErrorMessage    string `url:"errorMessage"`
}

// Route returns the normalized callback route of rawURL. Expo development
// links (exp://host/--/path) and http(s) links use their path. Custom
// scheme links use host and path, so app://wallet routes to "wallet".
func Route(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" {
		return "", ErrUnparsableURL
	}
	return routeOf(u), nil
}

func routeOf(u *url.URL) string {
	var p string
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "exp", "exps":
		p = u.Path
		if i := strings.Index(p, "/--/"); i >= 0 {
			p = p[i+len("/--/"):]
		}
	default:
		if u.Opaque != "" {
			p = u.Opaque
		} else {
			p = u.Host + u.Path
		}
	}
	return NormalizeRoute(p)
}

// NormalizeRoute trims slashes so "/wallet/" and "wallet" compare equal.
func NormalizeRoute(route string) string {
	return strings.Trim(route, "/")
}

// ParseCallback parses a connect callback for route. A wallet-side rejection
// is returned as *WalletError together with the parsed callback.
func ParseCallback(rawURL, route string) (*Callback, error) {
	cb, err := parse(rawURL, route)
	if err != nil {
		return nil, err
	}
	if cb.ErrorCode != "" {
		return cb, &WalletError{Code: cb.ErrorCode, Message: cb.ErrorMessage}
	}
	if err := validateCallback(validate.Struct(cb)); err != nil {
		return cb, err
	}
	return cb, nil
}

// ParseSignedCallback parses a sign-and-send result, which carries no wallet key or attempt.
func ParseSignedCallback(rawURL, route string) (*Callback, error) {
	cb, err := parse(rawURL, route)
	if err != nil {
		return nil, err
	}
	if cb.ErrorCode != "" {
		return cb, &WalletError{Code: cb.ErrorCode, Message: cb.ErrorMessage}
	}
	if err := validateCallback(validate.StructExcept(cb, "AttemptID", "WalletPublicKey")); err != nil {
		return cb, err
	}
	return cb, nil
}

func parse(rawURL, route string) (*Callback, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" {
		return nil, ErrUnparsableURL
	}
	got := routeOf(u)
	if got != NormalizeRoute(route) {
		return nil, fmt.Errorf("%w: got %q", ErrRouteMismatch, got)
	}

	q := u.Query()
	return &Callback{
		Route:           got,
		AttemptID:       q.Get(paramAttempt),
		Data:            q.Get(paramData),
		Nonce:           q.Get(paramNonce),
		WalletPublicKey: q.Get(paramWalletKey),
		ErrorCode:       q.Get(paramErrorCode),
		ErrorMessage:    q.Get(paramErrorMessage),
	}, nil
}

func validateCallback(err error) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !goerrors.As(err, &errs) {
		return fmt.Errorf("%w: %v", ErrMissingParams, err)
	}
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: %s", ErrMissingParams, strings.Join(fields, ", "))
}
