package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openhms/hms/internal/api/write"
	"github.com/openhms/hms/internal/apierrors"
	"github.com/openhms/hms/internal/constants"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/log"
	hmscontext "github.com/openhms/hms/utils/context"
)

var (
	ErrMissingToken      = errors.New("missing bearer token")
	ErrInvalidToken      = errors.New("invalid bearer token")
	ErrInvalidHospitalID = errors.New("hospital_id claim is not a number")
)

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	Secret []byte
	Issuer string
	// Required rejects requests without a token. Otherwise they pass
	// through without a principal.
	Required bool
}

// Authenticate verifies HMAC signed bearer tokens and stores the resulting
// principal in the request context.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
	}

	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	parser := jwt.NewParser(opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := bearerToken(r)
			if !ok {
				if cfg.Required {
					write.ErrorResponse(ctx, w, apierrors.UnauthorizedErrorMessage(ErrMissingToken.Error()))
					return
				}

				next.ServeHTTP(w, r)

				return
			}

			principal, err := parsePrincipal(parser, raw, cfg.Secret)
			if err != nil {
				log.Warn(ctx, "Rejected bearer token", log.ErrorAttr(err))
				write.ErrorResponse(ctx, w, apierrors.UnauthorizedErrorMessage(ErrInvalidToken.Error()))

				return
			}

			next.ServeHTTP(w, r.WithContext(hmscontext.InjectPrincipal(ctx, principal)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}

func parsePrincipal(parser *jwt.Parser, raw string, secret []byte) (*hmscontext.Principal, error) {
	claims := jwt.MapClaims{}

	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, errs.Wrap(ErrInvalidToken, err)
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return nil, errs.Wrap(ErrInvalidToken, err)
	}

	principal := &hmscontext.Principal{Subject: subject}
	principal.Role, _ = claims[constants.RoleClaim].(string)

	hospitalID, err := hospitalClaim(claims[constants.HospitalIDClaim])
	if err != nil {
		return nil, err
	}

	principal.HospitalID = hospitalID

	return principal, nil
}

// hospitalClaim accepts the claim as a JSON number or a numeric string.
func hospitalClaim(v any) (*int, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil //nolint:nilnil
	case float64:
		id := int(c)
		return &id, nil
	case string:
		id, err := strconv.Atoi(c)
		if err != nil {
			return nil, errs.Wrap(ErrInvalidHospitalID, err)
		}

		return &id, nil
	default:
		return nil, ErrInvalidHospitalID
	}
}
