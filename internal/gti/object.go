package gti

import "fmt"

// APIError is an object-level error reported by the Google Threat
// Intelligence API (for example NotFoundError or ForbiddenError). It is
// distinct from transport failures, which surface as plain Go errors.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Object is a single resource returned by the API: a file, URL, domain,
// IP address, collection, analysis, etc. Attributes are loosely typed;
// which keys are present depends on the object type and the
// exclude_attributes parameter of the request that produced it.
type Object struct {
	Type              string         `json:"type"`
	ID                string         `json:"id"`
	Attributes        map[string]any `json:"attributes"`
	ContextAttributes map[string]any `json:"context_attributes,omitempty"`

	// Error is set when the API reported an object-level error instead of
	// returning the resource (not found, no permission, invalid id).
	Error *APIError `json:"-"`
}

// ToDict converts the object to a plain JSON-shaped map. The attributes
// maps are copied so callers can normalize the result without mutating the
// Object they got it from.
func (o *Object) ToDict() map[string]any {
	attrs := make(map[string]any, len(o.Attributes))
	for k, v := range o.Attributes {
		attrs[k] = v
	}

	d := map[string]any{
		"type":       o.Type,
		"id":         o.ID,
		"attributes": attrs,
	}

	if len(o.ContextAttributes) > 0 {
		ctxAttrs := make(map[string]any, len(o.ContextAttributes))
		for k, v := range o.ContextAttributes {
			ctxAttrs[k] = v
		}
		d["context_attributes"] = ctxAttrs
	}

	return d
}
