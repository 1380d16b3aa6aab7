package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrCompanyIDRequired  = errors.New("company_id claim is required")
	ErrInsufficientAccess = errors.New("insufficient access")
)

// Role is the caller's role inside the company named by the token.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// CanRunPayroll reports whether the role may drive the payroll lifecycle.
func (r Role) CanRunPayroll() bool {
	return r == RoleOwner || r == RoleManager
}

// Claims are the claims this service reads from an access token. Tokens are issued
// elsewhere; this package only verifies them.
type Claims struct {
	UserID    string
	CompanyID string
	Role      Role
}

type Verifier struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewVerifier(secretKey string, skew time.Duration) *Verifier {
	return &Verifier{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(skew)),
	}
}

func (v *Verifier) JWTAuth() *jwtauth.JWTAuth {
	return v.tokenAuth
}

// Verify decodes and validates an access token.
func (v *Verifier) Verify(tokenString string) (Claims, error) {
	token, err := jwtauth.VerifyToken(v.tokenAuth, tokenString)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	return ClaimsFromToken(token)
}

// ClaimsFromToken requires an access token carrying user_id and company_id.
func ClaimsFromToken(token jwt.Token) (Claims, error) {
	if token == nil {
		return Claims{}, ErrInvalidToken
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return Claims{}, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Claims{}, ErrInvalidToken
	}

	companyID, _ := claims["company_id"].(string)
	if companyID == "" {
		return Claims{}, ErrCompanyIDRequired
	}

	role, _ := claims["role"].(string)
	return Claims{UserID: userID, CompanyID: companyID, Role: Role(role)}, nil
}

// FromContext returns the verified claims placed in ctx by jwtauth.Verifier.
func FromContext(ctx context.Context) (Claims, error) {
	token, _, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	return ClaimsFromToken(token)
}
