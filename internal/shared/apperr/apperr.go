package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	Invalid      Kind = "invalid"
	NotFound     Kind = "not_found"
	Unauthorized Kind = "unauthorized"
	Forbidden    Kind = "forbidden"
	Conflict     Kind = "conflict"
	Internal     Kind = "internal"

	// Payment lifecycle kinds.
	SellerNotPayable Kind = "seller_not_payable"
	AlreadyRefunded  Kind = "already_refunded"
	NoChargeFound    Kind = "no_charge_found"
	MissingMetadata  Kind = "missing_metadata"
	SignatureInvalid Kind = "signature_invalid"
	Gateway          Kind = "gateway"
	Persistence      Kind = "persistence"
)

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error { return e.Err }

// Constructors (PublicMsg must stay short and safe)
func InvalidErr(publicMsg string, fields map[string]string) *AppError {
	return &AppError{Kind: Invalid, PublicMsg: publicMsg, Fields: fields}
}
func NotFoundErr(publicMsg string) *AppError {
	return &AppError{Kind: NotFound, PublicMsg: publicMsg}
}
func UnauthorizedErr(publicMsg string) *AppError {
	return &AppError{Kind: Unauthorized, PublicMsg: publicMsg}
}
func ForbiddenErr(publicMsg string) *AppError {
	return &AppError{Kind: Forbidden, PublicMsg: publicMsg}
}
func ConflictErr(publicMsg string) *AppError {
	return &AppError{Kind: Conflict, PublicMsg: publicMsg}
}
func SellerNotPayableErr(publicMsg string) *AppError {
	return &AppError{Kind: SellerNotPayable, PublicMsg: publicMsg}
}
func AlreadyRefundedErr(publicMsg string) *AppError {
	return &AppError{Kind: AlreadyRefunded, PublicMsg: publicMsg}
}
func NoChargeFoundErr(publicMsg string) *AppError {
	return &AppError{Kind: NoChargeFound, PublicMsg: publicMsg}
}
func MissingMetadataErr(publicMsg string) *AppError {
	return &AppError{Kind: MissingMetadata, PublicMsg: publicMsg}
}
func SignatureInvalidErr(err error) *AppError {
	return &AppError{Kind: SignatureInvalid, PublicMsg: "invalid signature or payload", Err: err}
}
func GatewayErr(publicMsg string, err error) *AppError {
	return &AppError{Kind: Gateway, PublicMsg: publicMsg, Err: err}
}
func PersistenceErr(err error) *AppError {
	return &AppError{Kind: Persistence, PublicMsg: "A storage error occurred.", Err: err}
}

// Wrap: wrap an internal error without a public message (default 500)
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Kind: Internal, PublicMsg: "An unexpected error occurred.", Err: err}
}

func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func IsKind(err error, k Kind) bool {
	if ae, ok := As(err); ok {
		return ae.Kind == k
	}
	return false
}

func HTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		switch ae.Kind {
		case Invalid, SignatureInvalid:
			return http.StatusBadRequest
		case Unauthorized:
			return http.StatusUnauthorized
		case Forbidden:
			return http.StatusForbidden
		case NotFound:
			return http.StatusNotFound
		case Conflict, AlreadyRefunded:
			return http.StatusConflict
		case SellerNotPayable, NoChargeFound, MissingMetadata:
			return http.StatusUnprocessableEntity
		case Gateway:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return "An unexpected error occurred."
}
