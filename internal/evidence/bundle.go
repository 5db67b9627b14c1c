// Package evidence supplies ground truth the validation pipeline cannot
// itself observe: a file-system snapshot of the project, the trace of tools
// actually executed while the response was generated, and optionally visual
// facts captured from a running dev server.
//
// Providers are the only components that perform blocking I/O. The Bundle
// they produce is built once per run and is read-only to all validators.
package evidence

import "time"

// FileFact records what the file-system provider observed for one path.
type FileFact struct {
	// Exists is true if the path was present in the snapshot.
	Exists bool `json:"exists"`
	// SHA256 is the hex content hash, empty for directories, missing
	// files, and files above the hashing size cap.
	SHA256 string `json:"sha256,omitempty"`
	// ModTime is the last modification time, zero when unknown.
	ModTime time.Time `json:"mod_time,omitempty"`
}

// ToolInvocation is one record in the actual tool-execution trace.
type ToolInvocation struct {
	// Tool is the name of the tool that was invoked.
	Tool string `json:"tool_name"`
	// Arguments are the arguments it was invoked with.
	Arguments map[string]any `json:"arguments,omitempty"`
}

// VisualFacts is what the visual provider observed on a rendered page.
// A nil *VisualFacts is the "unavailable" sentinel: the dev server could
// not be reached or capture was disabled.
type VisualFacts struct {
	// ScreenshotPath references the captured screenshot on disk.
	ScreenshotPath string `json:"screenshot_path,omitempty"`
	// CSSProperties is the set of CSS property names observed, plus
	// at-rule markers such as "@media" when present.
	CSSProperties map[string]bool `json:"css_properties"`
	// Selectors is the set of DOM selectors observed: tag names, "#id"
	// and ".class" entries, plus pseudo-class markers such as ":hover".
	Selectors map[string]bool `json:"selectors"`
}

// Bundle aggregates everything the providers returned for one run.
type Bundle struct {
	// Files maps project-relative paths to observed facts.
	Files map[string]FileFact `json:"files,omitempty"`
	// FilesAvailable is false when the project snapshot could not be
	// taken; blocking layers then treat claims as uncorroborated.
	FilesAvailable bool `json:"files_available"`
	// Template is the fact observed for the declared template path,
	// nil when no template was declared.
	Template *FileFact `json:"template,omitempty"`
	// Trace is the ordered sequence of tools actually executed. An
	// empty trace is valid and means no tools ran.
	Trace []ToolInvocation `json:"trace,omitempty"`
	// Visual holds facts from the rendered page, nil when unavailable.
	Visual *VisualFacts `json:"visual,omitempty"`
}

// FileExists reports whether the snapshot contains path. It is safe on a
// nil or empty bundle.
func (b *Bundle) FileExists(path string) bool {
	if b == nil || b.Files == nil {
		return false
	}
	f, ok := b.Files[path]
	return ok && f.Exists
}
