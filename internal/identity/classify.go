// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"encoding/json"
	"strings"

	"github.com/taibuivan/courtside/internal/gateway"
	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/pkg/textnorm"
)

// Keywords the identity service uses when it refuses a duplicate record.
// Matched against the folded message, so case and accents do not matter.
var (
	duplicateEmailMarkers          = []string{"CORREO", "EMAIL", "REGISTRADA"}
	duplicateIdentificationMarkers = []string{"IDENTIFICACION", "DNI", "CEDULA"}
)

// RejectionMessage renders an envelope failure as
// "message - field: msg, field: msg".
func RejectionMessage(env Envelope) string {
	message := strings.TrimSpace(env.Message)
	details := gateway.FieldErrors(env.Errors)
	if len(details) == 0 {
		return message
	}

	parts := make([]string, 0, len(details))
	for _, detail := range details {
		parts = append(parts, detail.Field+": "+detail.Message)
	}
	if message == "" {
		return strings.Join(parts, ", ")
	}
	return message + " - " + strings.Join(parts, ", ")
}

// rejectWrite classifies a refused write (save-account or update). Envelope
// and HTTP-level refusals become IDENTITY_VALIDATION, rewritten to the
// duplicate codes when the message names an email or identification clash.
// Transport and authentication failures pass through unchanged.
func rejectWrite(env Envelope, err error, email, identification string) error {
	var details []apperr.FieldError

	if err != nil {
		appErr := apperr.As(err)
		if appErr == nil {
			return apperr.Internal(err)
		}
		switch appErr.Code {
		case apperr.CodeTransportFailure, apperr.CodeUnauthorized:
			return err
		}

		statusErr, ok := gateway.AsStatusError(err)
		if !ok {
			return err
		}
		env = Envelope{}
		if json.Unmarshal(statusErr.Body, &env) != nil || (env.Message == "" && len(env.Errors) == 0) {
			env.Message = appErr.Message
		}
		details = appErr.Details
	}

	message := RejectionMessage(env)
	if message == "" {
		message = "The identity service rejected the record"
	}
	if len(details) == 0 {
		details = gateway.FieldErrors(env.Errors)
	}

	folded := textnorm.Key(message)
	switch {
	case containsAny(folded, duplicateEmailMarkers):
		return apperr.DuplicateEmail(email).WithCause(apperr.IdentityValidation(message, details...))
	case containsAny(folded, duplicateIdentificationMarkers):
		return apperr.DuplicateIdentification(identification).WithCause(apperr.IdentityValidation(message, details...))
	default:
		return apperr.IdentityValidation(message, details...)
	}
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
