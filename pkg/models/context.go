package models

import "errors"

// Context describes the task a response is audited against. It is supplied
// once per validation run and never mutated by the pipeline.
type Context struct {
	// UserRequest is the original request text. Required.
	UserRequest string `json:"user_request" yaml:"user_request"`
	// ProjectRoot is the path to the project being worked on. Required.
	ProjectRoot string `json:"project_root" yaml:"project_root"`
	// TemplatePath is the template the response was asked to follow, if any.
	TemplatePath string `json:"template_path,omitempty" yaml:"template_path"`
	// DevServerURL is the running dev server for visual checks, if any.
	DevServerURL string `json:"dev_server_url,omitempty" yaml:"dev_server_url"`
	// Metadata carries arbitrary caller-supplied key/value pairs.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata"`
}

// ErrMissingUserRequest is returned when a Context has no user request.
var ErrMissingUserRequest = errors.New("context missing user request")

// ErrMissingProjectRoot is returned when a Context has no project root.
var ErrMissingProjectRoot = errors.New("context missing project root")

// Validate checks that required fields are present. A failure here is a
// construction-time error, distinct from a validation Violation.
func (c Context) Validate() error {
	if c.UserRequest == "" {
		return ErrMissingUserRequest
	}
	if c.ProjectRoot == "" {
		return ErrMissingProjectRoot
	}
	return nil
}
