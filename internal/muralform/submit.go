package muralform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
)

const (
	msgSubmitFailed = "Failed to submit application. Please try again."
	msgNetworkError = "Network error. Please check your connection and try again."
)

// Poster delivers the multipart body to the submission endpoint.
type Poster interface {
	Post(ctx context.Context, contentType string, body io.Reader) (*http.Response, error)
}

// Request is a snapshot of one tab ready to be sent.
type Request struct {
	Tab         Tab
	ContentType string
	Body        []byte
}

type Result struct {
	Tab     Tab
	OK      bool
	Message string
}

// Prepare checks required fields, encodes the active tab and marks it as submitting.
func (f *Form) Prepare() (*Request, error) {
	if !f.CanSubmit() {
		return nil, ErrBusy
	}
	if missing := f.missingFields(); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	tab := f.ActiveTab()
	contentType, body, err := encode(tab, f.current())
	if err != nil {
		return nil, err
	}
	state := f.current()
	state.status = Submitting
	state.message = ""
	return &Request{Tab: tab, ContentType: contentType, Body: body}, nil
}

// Send posts the request. It touches no form state and runs to completion
// even if ctx is cancelled.
func Send(ctx context.Context, poster Poster, request *Request) Result {
	response, err := poster.Post(context.WithoutCancel(ctx), request.ContentType, bytes.NewReader(request.Body))
	if err != nil {
		slog.Warn("muralform: submission request failed", "tab", request.Tab, "error", err)
		return Result{Tab: request.Tab, Message: msgNetworkError}
	}
	defer func() {
		if cerr := response.Body.Close(); cerr != nil {
			slog.Error("muralform: failed to close response body", "error", cerr)
		}
	}()

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, response.Body)
		return Result{Tab: request.Tab, OK: true}
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil || payload.Error == "" {
		return Result{Tab: request.Tab, Message: msgSubmitFailed}
	}
	return Result{Tab: request.Tab, Message: payload.Error}
}

// Finish applies a result to the tab it was sent from. Success clears only that tab.
func (f *Form) Finish(result Result) {
	state, ok := f.tabs[result.Tab]
	if !ok {
		return
	}
	if !result.OK {
		state.status = Failed
		state.message = result.Message
		return
	}
	f.releasePreviews(state)
	fresh := newTabState()
	fresh.status = Success
	f.tabs[result.Tab] = fresh
}

// Submit runs Prepare, Send and Finish in sequence.
func (f *Form) Submit(ctx context.Context, poster Poster) (Result, error) {
	request, err := f.Prepare()
	if err != nil {
		return Result{}, err
	}
	result := Send(ctx, poster, request)
	f.Finish(result)
	return result, nil
}

func encode(tab Tab, state *tabState) (string, []byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, name := range FieldNames {
		if err := writer.WriteField(name, state.fields[name]); err != nil {
			return "", nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}
	for _, name := range []string{AuthCheckbox, AgreeCheckbox} {
		if err := writer.WriteField(name, strconv.FormatBool(state.checkboxes[name])); err != nil {
			return "", nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}
	for i, attachment := range state.attachments {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", multipart.FileContentDisposition(fmt.Sprintf("media_%d", i), attachment.Filename))
		contentType := attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return "", nil, fmt.Errorf("failed to create media part: %w", err)
		}
		if _, err := part.Write(attachment.Data); err != nil {
			return "", nil, fmt.Errorf("failed to write media part: %w", err)
		}
	}
	if err := writer.WriteField("mediaCount", strconv.Itoa(len(state.attachments))); err != nil {
		return "", nil, fmt.Errorf("failed to write media count: %w", err)
	}
	if err := writer.WriteField("submissionType", string(tab)); err != nil {
		return "", nil, fmt.Errorf("failed to write submission type: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", nil, fmt.Errorf("failed to close multipart body: %w", err)
	}
	return writer.FormDataContentType(), buf.Bytes(), nil
}
