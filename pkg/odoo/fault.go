package odoo

import (
	"errors"
	"net/rpc"
	"regexp"
	"strconv"
	"strings"

	"github.com/kolo/xmlrpc"

	"github.com/ampco/intake-cli/internal/resilience"
)

// Fault is an XML-RPC fault raised by the Odoo server.
type Fault struct {
	Message string
}

func (f *Fault) Error() string { return "odoo fault: " + f.Message }

// FaultMessage extracts the fault string from an XML-RPC error.
func FaultMessage(err error) (string, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.Message, true
	}
	var xf xmlrpc.FaultError
	if errors.As(err, &xf) {
		return xf.String, true
	}
	var se rpc.ServerError
	if errors.As(err, &se) {
		if m := faultTextRe.FindStringSubmatch(string(se)); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// faultTextRe matches a fault flattened to text by net/rpc.
var faultTextRe = regexp.MustCompile(`(?s)^Fault\(-?\d+\): (.*)$`)

var companyFaultMarkers = []string{
	"incompatible compan",
	"company mismatch",
	"not allowed",
	"multi-company",
	"does not belong",
	"access to company",
	"invalid company",
}

// IsInvalidCompany reports whether err is a fault caused by the target
// company (multi-company rules, record rules or a missing company).
func IsInvalidCompany(err error) bool {
	msg, ok := FaultMessage(err)
	if !ok {
		return false
	}
	msg = strings.ToLower(msg)
	if !strings.Contains(msg, "compan") {
		return false
	}
	for _, m := range companyFaultMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

var badStatusRe = regexp.MustCompile(`bad status code - (\d{3})`)

// IsRetryable reports whether a failed read is worth repeating. Faults
// never are.
func IsRetryable(err error) bool {
	if _, ok := FaultMessage(err); ok {
		return false
	}
	if resilience.IsTransient(err) {
		return true
	}
	msg := err.Error()
	if strings.Contains(msg, "connection refused") {
		return true
	}
	if m := badStatusRe.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		return resilience.IsTransientHTTPStatus(code)
	}
	return false
}
