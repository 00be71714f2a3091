package jsonapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WriteDocument writes a JSON:API document to the response.
func WriteDocument(w http.ResponseWriter, status int, doc Document) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(doc)
}

// WriteResource writes a single resource response.
func WriteResource(w http.ResponseWriter, status int, r Resource) {
	WriteDocument(w, status, NewDocument().Data(r).Build())
}

// WriteCollection writes a collection response with a count in meta.
func WriteCollection(w http.ResponseWriter, resources []Resource) {
	if resources == nil {
		resources = []Resource{}
	}
	WriteDocument(w, http.StatusOK, NewDocument().Data(resources).Meta("count", len(resources)).Build())
}

// WriteCreated writes a 201 Created response with an optional Location header.
func WriteCreated(w http.ResponseWriter, r Resource, location string) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	WriteResource(w, http.StatusCreated, r)
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes an error response with one or more errors.
// The HTTP status is derived from the first error's status field.
func WriteError(w http.ResponseWriter, errs ...Error) {
	if len(errs) == 0 {
		errs = []Error{ErrInternal("")}
	}

	status := errs[0].StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	WriteDocument(w, status, NewErrorDocument(errs...))
}

// RequestDocument is the body of a create or update request.
type RequestDocument struct {
	Data struct {
		Type       string         `json:"type"`
		ID         string         `json:"id,omitempty"`
		Attributes map[string]any `json:"attributes"`
	} `json:"data"`
}

// DecodeRequest reads a request document and checks its resource type.
func DecodeRequest(body io.Reader, resourceType string) (RequestDocument, error) {
	var doc RequestDocument
	dec := json.NewDecoder(body)
	if err := dec.Decode(&doc); err != nil {
		return doc, fmt.Errorf("invalid JSON:API document: %w", err)
	}
	if doc.Data.Type != resourceType {
		return doc, fmt.Errorf("data.type must be %q, got %q", resourceType, doc.Data.Type)
	}
	if doc.Data.Attributes == nil {
		doc.Data.Attributes = map[string]any{}
	}
	return doc, nil
}
