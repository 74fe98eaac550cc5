package repositories

import (
	"errors"
	"net/http"

	apperrors "relais/internal/errors"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound          = apperrors.New("USER_NOT_FOUND", "user not found", http.StatusNotFound)
	ErrAgencyNotFound        = apperrors.New("AGENCY_NOT_FOUND", "agency not found", http.StatusNotFound)
	ErrPartnerNotFound       = apperrors.New("PARTNER_NOT_FOUND", "partner not found", http.StatusNotFound)
	ErrContractNotFound      = apperrors.New("CONTRACT_NOT_FOUND", "contract not found", http.StatusNotFound)
	ErrOperationTypeNotFound = apperrors.New("OPERATION_TYPE_NOT_FOUND", "operation type not found", http.StatusNotFound)
	ErrTransactionNotFound   = apperrors.New("TRANSACTION_NOT_FOUND", "transaction not found", http.StatusNotFound)
	ErrRechargeNotFound      = apperrors.New("RECHARGE_NOT_FOUND", "recharge request not found", http.StatusNotFound)
	ErrPaymentMethodNotFound = apperrors.New("PAYMENT_METHOD_NOT_FOUND", "payment method not found", http.StatusNotFound)
	ErrCardNotFound          = apperrors.New("CARD_NOT_FOUND", "prepaid card not found", http.StatusNotFound)
	ErrDuplicate             = apperrors.New("DUPLICATE", "a record with the same unique value already exists", http.StatusConflict)
)

// translate maps gorm errors onto domain errors. notFound is returned for
// missing rows.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
