// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Business code depends on the Validator interface. V10Validator implements
// it with go-playground/validator v10 and adds the OTP rules otpbase32,
// otpsecret and otpalgorithm.
package validator
