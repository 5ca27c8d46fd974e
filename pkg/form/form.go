// Package form drives a record draft through the edit/submit lifecycle
// against the record API. It keeps one draft value, a field error map, and a
// coarse state; all mutation goes through the controller so the error map
// never drifts from the draft.
package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hms/hms/internal/record"
)

// Controller states. Editing is re-entered after a failed submit once the
// user changes any field.
type State string

const (
	StateEditing    State = "EDITING"
	StateSubmitting State = "SUBMITTING"
	StateSucceeded  State = "SUCCEEDED"
	StateFailed     State = "FAILED"
)

// Config wires a controller to one endpoint and one rule set.
type Config struct {
	// BaseURL of the API, e.g. "http://localhost:8080/api/v1".
	BaseURL string
	// Path of the collection, e.g. "/patients".
	Path string
	// Rules validated client-side before any network call.
	Rules record.RuleSet
	// CheckPath enables a uniqueness pre-check before submit, e.g.
	// "/patients/check". The fields named in CheckFields are sent as query
	// parameters.
	CheckPath   string
	CheckFields []string
	// Client defaults to http.DefaultClient. No timeout is imposed here;
	// cancellation belongs to the caller's context.
	Client *http.Client
	// Token is sent as a bearer token when non-empty.
	Token string
}

type Controller struct {
	cfg    Config
	fields map[string]string
	errors map[string]string
	state  State
	dirty  bool
	// recordID is set when editing an existing record; Submit then PUTs.
	recordID string
}

// New returns a controller for a fresh draft.
func New(cfg Config) *Controller {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	return &Controller{
		cfg:    cfg,
		fields: map[string]string{},
		errors: map[string]string{},
		state:  StateEditing,
	}
}

// Edit returns a controller pre-filled from an existing record. Submit will
// PUT to Path/id.
func Edit(cfg Config, id string, fields map[string]string) *Controller {
	c := New(cfg)
	c.recordID = id
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

func (c *Controller) State() State { return c.state }

// Dirty reports whether any field changed since the last successful submit.
func (c *Controller) Dirty() bool { return c.dirty }

// Field returns the current draft value for a dot-path.
func (c *Controller) Field(path string) string { return c.fields[path] }

// Errors returns the live error map keyed by dot-path.
func (c *Controller) Errors() map[string]string { return c.errors }

// SetField updates one dot-path value and clears that path's error. A failed
// submit drops back to editing on the first change.
func (c *Controller) SetField(path, value string) {
	if c.state == StateSubmitting {
		return
	}
	c.fields[path] = value
	delete(c.errors, path)
	c.dirty = true
	if c.state == StateFailed || c.state == StateSucceeded {
		c.state = StateEditing
	}
}

// ValidateField runs the format rules for one path, as on blur. Empty
// optional fields are skipped; empty required fields are reported.
func (c *Controller) ValidateField(path string) error {
	value := strings.TrimSpace(c.fields[path])
	if value == "" {
		for _, req := range c.cfg.Rules.Required {
			if req == path {
				c.errors[path] = "is required"
				return fmt.Errorf("%s is required", path)
			}
		}
		delete(c.errors, path)
		return nil
	}
	if err := c.cfg.Rules.ValidateField(path, value); err != nil {
		c.errors[path] = err.Error()
		return err
	}
	delete(c.errors, path)
	return nil
}

// ValidateAll runs the full rule set and replaces the error map. It reports
// whether the draft is submittable.
func (c *Controller) ValidateAll() bool {
	draft := c.trimmed()
	errs := map[string]string{}
	for _, f := range c.cfg.Rules.Missing(draft) {
		errs[f] = "is required"
	}
	for f, msg := range c.cfg.Rules.Validate(draft) {
		errs[f] = msg
	}
	c.errors = errs
	return len(errs) == 0
}

// Submit validates, optionally pre-checks uniqueness, and sends the draft.
// Server field errors merge into the error map; the draft survives a failure
// for correction and resubmit.
func (c *Controller) Submit(ctx context.Context) error {
	if c.state == StateSubmitting {
		return fmt.Errorf("submit already in flight")
	}
	if !c.ValidateAll() {
		c.state = StateFailed
		return fmt.Errorf("draft has %d invalid fields", len(c.errors))
	}
	c.state = StateSubmitting

	if err := c.precheck(ctx); err != nil {
		c.state = StateFailed
		return err
	}

	if err := c.send(ctx); err != nil {
		c.state = StateFailed
		return err
	}
	c.state = StateSucceeded
	c.dirty = false
	return nil
}

// Cancel abandons the draft. A dirty draft needs the confirm callback to
// agree; a clean draft cancels unconditionally.
func (c *Controller) Cancel(confirm func() bool) bool {
	if c.dirty && confirm != nil && !confirm() {
		return false
	}
	c.fields = map[string]string{}
	c.errors = map[string]string{}
	c.state = StateEditing
	c.dirty = false
	return true
}

func (c *Controller) trimmed() map[string]string {
	draft := make(map[string]string, len(c.fields))
	for k, v := range c.fields {
		if t := strings.TrimSpace(v); t != "" {
			draft[k] = t
		}
	}
	return draft
}

// precheck asks the server whether the unique identifiers are free, turning
// a would-be 409 into a field error before the real submit.
func (c *Controller) precheck(ctx context.Context) error {
	if c.cfg.CheckPath == "" || c.recordID != "" {
		return nil
	}
	q := url.Values{}
	for _, f := range c.cfg.CheckFields {
		if v := strings.TrimSpace(c.fields[f]); v != "" {
			q.Set(f, v)
		}
	}
	if len(q) == 0 {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+c.cfg.CheckPath+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		// A failing pre-check never blocks the submit; the server's
		// uniqueness check is authoritative.
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil
	}
	taken := false
	for field, available := range env.Data {
		if !available {
			c.errors[field] = "already registered"
			taken = true
		}
	}
	if taken {
		return fmt.Errorf("identifier already registered")
	}
	return nil
}

func (c *Controller) send(ctx context.Context) error {
	body, err := json.Marshal(nest(c.trimmed()))
	if err != nil {
		return err
	}

	method := http.MethodPost
	target := c.cfg.BaseURL + c.cfg.Path
	if c.recordID != "" {
		method = http.MethodPut
		target += "/" + c.recordID
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	var env struct {
		Message string            `json:"message"`
		Field   string            `json:"field"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("submit failed with status %d", resp.StatusCode)
	}
	for f, msg := range env.Errors {
		c.errors[f] = msg
	}
	if env.Field != "" {
		c.errors[normalizeField(env.Field)] = env.Message
	}
	if env.Message != "" {
		return fmt.Errorf("submit rejected: %s", env.Message)
	}
	return fmt.Errorf("submit failed with status %d", resp.StatusCode)
}

func (c *Controller) authorize(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
}

// normalizeField maps server conflict field spellings onto draft paths.
func normalizeField(field string) string {
	if field == strings.ToUpper(field) {
		return strings.ToLower(field)
	}
	return field
}

// nest expands dot-path keys into nested objects, so "address.street"
// becomes {"address":{"street":...}}.
func nest(flat map[string]string) map[string]interface{} {
	out := map[string]interface{}{}
	for path, value := range flat {
		parts := strings.Split(path, ".")
		node := out
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return out
}
