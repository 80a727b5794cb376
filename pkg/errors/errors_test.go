package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", detailsOK: true},
		{code: CodeOrganizationNotFound, status: http.StatusBadRequest, publicMsg: "organization not found", detailsOK: true},
		{code: CodeDataUnavailable, status: http.StatusServiceUnavailable, publicMsg: "record data unavailable", retryable: true, detailsOK: true},
		{code: CodeReconciliationInFlight, status: http.StatusConflict, publicMsg: "reconciliation already in progress", retryable: true, detailsOK: true},
		{code: CodePersistenceFailure, status: http.StatusInternalServerError, publicMsg: "failed to persist reconciliation result", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing sku")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing sku" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]string{"field": "sku"})
	if base.Details() == nil {
		t.Fatal("expected details to be set")
	}

	cause := stdErrors.New("connection refused")
	wrapped := Wrap(CodeDataUnavailable, cause, "loading order lines")
	if wrapped.Unwrap() != cause {
		t.Fatal("expected cause to be preserved")
	}
	if wrapped.Error() != "DATA_UNAVAILABLE: loading order lines" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}

	if Wrap(CodeInternal, nil, "no cause").Unwrap() != nil {
		t.Fatal("wrapping nil should not fabricate a cause")
	}
}

func TestAsAndHasCode(t *testing.T) {
	err := New(CodeReconciliationInFlight, "run already active")

	if As(nil) != nil {
		t.Fatal("As(nil) should be nil")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain errors should not convert")
	}
	if As(err) == nil {
		t.Fatal("typed error should convert")
	}

	if !HasCode(err, CodeReconciliationInFlight) {
		t.Fatal("expected HasCode to match")
	}
	if HasCode(err, CodeDataUnavailable) {
		t.Fatal("HasCode matched the wrong code")
	}
	if HasCode(nil, CodeInternal) {
		t.Fatal("nil error should never match")
	}
}
