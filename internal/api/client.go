package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/seaswell/rollcall/internal/log"
	"github.com/seaswell/rollcall/internal/schema"
)

var tracer = otel.Tracer("api")

// DefaultTimeout bounds any single backend call.
const DefaultTimeout = 15 * time.Second

// Client talks to the registration backend. All methods take a context
// and return either a decoded payload or an error already reduced to a
// displayable message.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the given base URL. A nil httpClient
// gets a default with DefaultTimeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ListPrograms fetches the program catalog.
func (c *Client) ListPrograms(ctx context.Context) ([]Program, error) {
	ctx, span := tracer.Start(ctx, "Client.ListPrograms")
	defer span.End()

	var programs []Program
	if err := c.do(ctx, http.MethodGet, "/programs", nil, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// CreateRegistration opens a draft registration for the program and
// returns the new registration id.
func (c *Client) CreateRegistration(ctx context.Context, programID string) (string, error) {
	ctx, span := tracer.Start(ctx, "Client.CreateRegistration")
	defer span.End()
	span.SetAttributes(attribute.String("program.id", programID))

	var created createRegistrationResponse
	path := fmt.Sprintf("/programs/%s/registrations", programID)
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// FetchForm loads the program's registration form schema. A 404 comes
// back as ErrNoForm: the program simply has no custom form.
func (c *Client) FetchForm(ctx context.Context, programID string) (schema.Form, error) {
	ctx, span := tracer.Start(ctx, "Client.FetchForm")
	defer span.End()
	span.SetAttributes(attribute.String("program.id", programID))

	var form schema.Form
	path := fmt.Sprintf("/programs/%s/registration-form", programID)
	err := c.do(ctx, http.MethodGet, path, nil, &form)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return schema.Form{}, ErrNoForm
		}
		return schema.Form{}, err
	}
	if err := form.Normalize(); err != nil {
		return schema.Form{}, fmt.Errorf("invalid form schema: %w", err)
	}
	return form, nil
}

// SubmitForm posts the collected values for the registration.
func (c *Client) SubmitForm(ctx context.Context, registrationID string, values schema.ValueMap) error {
	ctx, span := tracer.Start(ctx, "Client.SubmitForm")
	defer span.End()
	span.SetAttributes(attribute.String("registration.id", registrationID))

	path := fmt.Sprintf("/registration-flow/%s/submit-form", registrationID)
	return c.do(ctx, http.MethodPost, path, submitFormRequest{FormData: values}, nil)
}

// Status fetches the registration record, including the financial
// summary when the backend has one.
func (c *Client) Status(ctx context.Context, registrationID string) (RegistrationRecord, error) {
	ctx, span := tracer.Start(ctx, "Client.Status")
	defer span.End()
	span.SetAttributes(attribute.String("registration.id", registrationID))

	var record RegistrationRecord
	path := fmt.Sprintf("/registration-flow/%s/status", registrationID)
	if err := c.do(ctx, http.MethodGet, path, nil, &record); err != nil {
		return RegistrationRecord{}, err
	}
	return record, nil
}

// Finalize converts the draft into a payable registration. The payload
// is opaque; callers keep it but never interpret it.
func (c *Client) Finalize(ctx context.Context, registrationID string) (FinalizationResult, error) {
	ctx, span := tracer.Start(ctx, "Client.Finalize")
	defer span.End()
	span.SetAttributes(attribute.String("registration.id", registrationID))

	var result FinalizationResult
	path := fmt.Sprintf("/registration-flow/%s/finalize", registrationID)
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// do runs one request. A non-nil body is JSON-encoded; a non-nil out is
// decoded from a 2xx response body. Decode failures on an empty body are
// tolerated for endpoints that return 204.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn(log.CatAPI, "Request failed", "method", method, "path", path, "error", err.Error())
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug(log.CatAPI, "Request complete",
		"method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(started).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
