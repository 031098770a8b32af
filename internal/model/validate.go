package model

import (
	goerrors "errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/go-playground/validator/v10"

	"github.com/AlexZinkM/bitebudget-wallet/internal/common"
)

var validate = validator.New()

func init() {
	_ = validate.RegisterValidation("solana_address", func(fl validator.FieldLevel) bool {
		_, err := solana.PublicKeyFromBase58(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("sol_amount", func(fl validator.FieldLevel) bool {
		lamports, err := common.SOLToLamports(fl.Field().String())
		return err == nil && lamports > 0
	})
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !goerrors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%s: failed on %s", fe.Field(), fe.Tag()))
	}
	return goerrors.Join(errs...)
}
