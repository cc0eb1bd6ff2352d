package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/prebid/tcf-adgate/consent"
	"github.com/prebid/tcf-adgate/errortypes"
	"github.com/prebid/tcf-adgate/gdpr"
	"github.com/prebid/tcf-adgate/logger"
	"github.com/prebid/tcf-adgate/metrics"
)

// Request bodies are a TC string or a single integer.
const maxBodyBytes = 16 * 1024

// ConsentService is the part of consent.Service the endpoints depend on.
type ConsentService interface {
	Check(ctx context.Context, user string) (consent.Report, error)
	StoreTCString(ctx context.Context, user, tcString string) error
	SetPreviousConsentStatus(ctx context.Context, user string, status gdpr.PreviousConsentStatus) error
}

// NewCheckEndpoint implements GET /consent/:user. It removes an outdated TC string and
// returns what the stored consent allows.
func NewCheckEndpoint(svc ConsentService, me metrics.MetricsEngine) httprouter.Handle {
	return httprouter.Handle(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		user := ps.ByName("user")
		report, err := svc.Check(r.Context(), user)
		if err != nil {
			writeError(w, metrics.EndpointCheck, me, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.Errorf("user %s: writing consent report: %v", user, err)
		}
		me.RecordRequest(metrics.EndpointCheck, metrics.RequestStatusOK)
	})
}

// NewTCStringEndpoint implements PUT /consent/:user/tcstring. The body is the raw TC string.
func NewTCStringEndpoint(svc ConsentService, me metrics.MetricsEngine) httprouter.Handle {
	return httprouter.Handle(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		body, err := readBody(r)
		if err != nil {
			writeError(w, metrics.EndpointTCString, me, err)
			return
		}
		if body == "" {
			writeError(w, metrics.EndpointTCString, me, &errortypes.BadInput{Message: "request body must contain a TC string"})
			return
		}

		if err := svc.StoreTCString(r.Context(), ps.ByName("user"), body); err != nil {
			writeError(w, metrics.EndpointTCString, me, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		me.RecordRequest(metrics.EndpointTCString, metrics.RequestStatusOK)
	})
}

// NewStatusEndpoint implements PUT /consent/:user/status. The body is the UMP consent status
// as an integer from 0 to 3.
func NewStatusEndpoint(svc ConsentService, me metrics.MetricsEngine) httprouter.Handle {
	return httprouter.Handle(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		body, err := readBody(r)
		if err != nil {
			writeError(w, metrics.EndpointStatus, me, err)
			return
		}
		status, err := parseStatus(body)
		if err != nil {
			writeError(w, metrics.EndpointStatus, me, err)
			return
		}

		if err := svc.SetPreviousConsentStatus(r.Context(), ps.ByName("user"), status); err != nil {
			writeError(w, metrics.EndpointStatus, me, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		me.RecordRequest(metrics.EndpointStatus, metrics.RequestStatusOK)
	})
}

func readBody(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return "", &errortypes.BadInput{Message: fmt.Sprintf("failed to read request body: %v", err)}
	}
	if len(body) > maxBodyBytes {
		return "", &errortypes.BadInput{Message: fmt.Sprintf("request body exceeds %d bytes", maxBodyBytes)}
	}
	return strings.TrimSpace(string(body)), nil
}

func parseStatus(body string) (gdpr.PreviousConsentStatus, error) {
	stored, err := strconv.Atoi(body)
	if err != nil {
		return gdpr.PreviousStatusUnknown, &errortypes.BadInput{Message: fmt.Sprintf("consent status must be an integer. Got %q", body)}
	}
	status := gdpr.PreviousStatusFromInt(stored)
	if int(status) != stored {
		return gdpr.PreviousStatusUnknown, &errortypes.BadInput{Message: fmt.Sprintf("consent status must be in the range [0, 3]. Got %d", stored)}
	}
	return status, nil
}

func writeError(w http.ResponseWriter, endpoint metrics.Endpoint, me metrics.MetricsEngine, err error) {
	var badInput *errortypes.BadInput
	if errors.As(err, &badInput) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Invalid request: %s\n", err.Error())
		me.RecordRequest(endpoint, metrics.RequestStatusBadInput)
		return
	}

	logger.Errorf("/%s: %v", endpoint, err)
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, "Critical error: %s\n", err.Error())
	me.RecordRequest(endpoint, metrics.RequestStatusErr)
}
