package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/image-preview-mcp/internal/imaging"
	"github.com/ironsheep/image-preview-mcp/internal/ocr"
	"github.com/ironsheep/image-preview-mcp/internal/preview"
	"github.com/ironsheep/image-preview-mcp/internal/reference"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_preview").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// imageContent is implemented by results that carry a rendered image to be
// returned as an MCP image content block.
type imageContent interface {
	imageContent() (data, mimeType string, ok bool)
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// A rendered preview is appended as a second {"type": "image"} block.
// Pipeline failures are reported inside the result; only malformed calls
// and unknown tools produce a JSON-RPC error.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Debug("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	content := []map[string]interface{}{
		{
			"type": "text",
			"text": mustMarshalJSON(result),
		},
	}
	if ic, ok := result.(imageContent); ok {
		if data, mime, ok := ic.imageContent(); ok {
			content = append(content, map[string]interface{}{
				"type":     "image",
				"data":     data,
				"mimeType": mime,
			})
		}
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_find_reference":
		return s.handleFindReference(args)
	case "image_find_references":
		return s.handleFindReferences(args)
	case "image_resolve":
		return s.handleResolve(ctx, args)
	case "image_preview":
		return s.handlePreview(ctx, args)
	case "image_preview_line":
		return s.handlePreviewLine(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errors.New("missing arguments")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// cancelled reports whether err means the caller gave up, in which case the
// tool call itself fails rather than reporting an unresolved image.
func cancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// locatorFor hides base64 locators: the payload is already in the token.
func locatorFor(res *preview.Result) string {
	if res == nil || res.Reference.Kind == reference.KindBase64 {
		return ""
	}
	return res.Locator
}

// === Reference Finding ===

type cursorArgs struct {
	Line       string `json:"line"`
	Cursor     int    `json:"cursor"`
	SourcePath string `json:"source_path"`
}

type lineArgs struct {
	Line       string `json:"line"`
	SourcePath string `json:"source_path"`
}

// FindResult is the result of image_find_reference.
type FindResult struct {
	Found     bool                 `json:"found"`
	Reference *reference.Reference `json:"reference,omitempty"`
}

func (s *Server) handleFindReference(args json.RawMessage) (interface{}, error) {
	var a cursorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	ref, ok := s.engine.Find(a.Line, a.Cursor, a.SourcePath)
	if !ok {
		return &FindResult{}, nil
	}
	return &FindResult{Found: true, Reference: &ref}, nil
}

// FindAllResult is the result of image_find_references.
type FindAllResult struct {
	Count      int                   `json:"count"`
	References []reference.Reference `json:"references"`
}

func (s *Server) handleFindReferences(args json.RawMessage) (interface{}, error) {
	var a lineArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	refs := s.engine.Finder().FindAll(a.Line, a.SourcePath)
	if refs == nil {
		refs = []reference.Reference{}
	}
	return &FindAllResult{Count: len(refs), References: refs}, nil
}

// === Resolution ===

// ResolveResult is the result of image_resolve.
type ResolveResult struct {
	Found     bool                 `json:"found"`
	Resolved  bool                 `json:"resolved"`
	Reference *reference.Reference `json:"reference,omitempty"`
	Locator   string               `json:"locator,omitempty"`
	Message   string               `json:"message,omitempty"`
	Reason    string               `json:"reason,omitempty"`
}

func (s *Server) handleResolve(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a cursorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	ref, ok := s.engine.Find(a.Line, a.Cursor, a.SourcePath)
	if !ok {
		return &ResolveResult{Message: preview.NotResolvedMessage, Reason: preview.ErrNoMatch.Error()}, nil
	}

	locator, err := s.engine.Resolve(ctx, ref)
	if cancelled(err) {
		return nil, err
	}
	if err != nil {
		return &ResolveResult{
			Found:     true,
			Reference: &ref,
			Message:   preview.NotResolvedMessage,
			Reason:    err.Error(),
		}, nil
	}
	if ref.Kind == reference.KindBase64 {
		locator = ""
	}
	return &ResolveResult{Found: true, Resolved: true, Reference: &ref, Locator: locator}, nil
}

// === Preview ===

type previewArgs struct {
	Line         string `json:"line"`
	Cursor       int    `json:"cursor"`
	SourcePath   string `json:"source_path"`
	IncludeImage *bool  `json:"include_image"`
	OCR          bool   `json:"ocr"`
	Language     string `json:"language"`
}

// PreviewImage describes the rendered bitmap returned alongside the result.
type PreviewImage struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime_type"`
	Backdrop string `json:"backdrop,omitempty"`

	data string
}

// PreviewToolResult is the result of image_preview.
type PreviewToolResult struct {
	Found        bool                 `json:"found"`
	Resolved     bool                 `json:"resolved"`
	Decoded      bool                 `json:"decoded"`
	Reference    *reference.Reference `json:"reference,omitempty"`
	Locator      string               `json:"locator,omitempty"`
	Width        int                  `json:"width,omitempty"`
	Height       int                  `json:"height,omitempty"`
	Format       string               `json:"format,omitempty"`
	MimeType     string               `json:"mime_type,omitempty"`
	HasAlpha     bool                 `json:"has_alpha,omitempty"`
	SizeBytes    int64                `json:"size_bytes,omitempty"`
	SizeLabel    string               `json:"size_label,omitempty"`
	Summary      string               `json:"summary"`
	AverageColor *imaging.ColorResult `json:"average_color,omitempty"`
	Preview      *PreviewImage        `json:"preview,omitempty"`
	OCR          *ocr.OCRResult       `json:"ocr,omitempty"`
	OCRError     string               `json:"ocr_error,omitempty"`
	Message      string               `json:"message,omitempty"`
	Reason       string               `json:"reason,omitempty"`
}

func (r *PreviewToolResult) imageContent() (string, string, bool) {
	if r.Preview == nil || r.Preview.data == "" {
		return "", "", false
	}
	return r.Preview.data, r.Preview.MimeType, true
}

func (s *Server) handlePreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	includeImage := a.IncludeImage == nil || *a.IncludeImage

	res, err := s.engine.Lookup(ctx, a.Line, a.Cursor, a.SourcePath)
	if cancelled(err) {
		return nil, err
	}
	if err != nil {
		out := &PreviewToolResult{
			Summary: preview.NotResolvedMessage,
			Message: preview.NotResolvedMessage,
			Reason:  err.Error(),
		}
		if res != nil {
			ref := res.Reference
			out.Found = true
			out.Resolved = res.Resolved()
			out.Reference = &ref
			out.Locator = locatorFor(res)
			out.SizeBytes = res.SizeBytes
		}
		return out, nil
	}

	ref := res.Reference
	info := res.Image.Info
	avg := imaging.AverageColor(res.Image.Image)
	out := &PreviewToolResult{
		Found:        true,
		Resolved:     true,
		Decoded:      true,
		Reference:    &ref,
		Locator:      locatorFor(res),
		Width:        info.Width,
		Height:       info.Height,
		Format:       info.Format,
		MimeType:     info.MimeType,
		HasAlpha:     info.HasAlpha,
		SizeBytes:    res.SizeBytes,
		SizeLabel:    imaging.SizeLabel(res.SizeBytes),
		Summary:      res.Summary(),
		AverageColor: &avg,
	}

	ocrSource := res.Image.Image
	if includeImage || a.OCR {
		rendered, err := imaging.RenderPreview(res.Image.Image, s.opts.MaxWidth, s.opts.MaxHeight)
		if err != nil {
			s.log.Debug("preview render failed", zap.Error(err))
			out.Reason = err.Error()
		} else {
			ocrSource = rendered.Image
			if includeImage {
				out.Preview = &PreviewImage{
					Width:    rendered.Width,
					Height:   rendered.Height,
					MimeType: rendered.MimeType,
					Backdrop: rendered.Backdrop,
					data:     rendered.ImageBase64,
				}
			}
		}
	}

	if a.OCR {
		opts := s.opts.OCR
		if a.Language != "" {
			opts.Language = a.Language
		}
		text, err := ocr.ExtractText(ocrSource, opts)
		if err != nil {
			out.OCRError = err.Error()
		} else {
			out.OCR = text
		}
	}
	return out, nil
}

// LineEntry summarizes one reference in image_preview_line.
type LineEntry struct {
	Reference reference.Reference `json:"reference"`
	Locator   string              `json:"locator,omitempty"`
	Resolved  bool                `json:"resolved"`
	Decoded   bool                `json:"decoded"`
	Width     int                 `json:"width,omitempty"`
	Height    int                 `json:"height,omitempty"`
	SizeBytes int64               `json:"size_bytes,omitempty"`
	Summary   string              `json:"summary"`
	Reason    string              `json:"reason,omitempty"`
}

// LineResult is the result of image_preview_line.
type LineResult struct {
	Count   int         `json:"count"`
	Entries []LineEntry `json:"entries"`
}

func (s *Server) handlePreviewLine(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a lineArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	results, err := s.engine.LookupAll(ctx, a.Line, a.SourcePath)
	if err != nil {
		return nil, err
	}

	entries := make([]LineEntry, 0, len(results))
	for _, res := range results {
		e := LineEntry{
			Reference: res.Reference,
			Locator:   locatorFor(res),
			Resolved:  res.Resolved(),
			Decoded:   res.Decoded(),
			SizeBytes: res.SizeBytes,
			Summary:   res.Summary(),
		}
		if res.Decoded() {
			e.Width = res.Image.Info.Width
			e.Height = res.Image.Info.Height
		}
		if res.Err != nil {
			e.Reason = res.Err.Error()
		}
		entries = append(entries, e)
	}
	return &LineResult{Count: len(entries), Entries: entries}, nil
}
