package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID        = "run_id"
	KeyStage        = "stage"
	KeyDurationMS   = "duration_ms"
	KeyEndpoint     = "endpoint"
	KeyRepo         = "repository"
	KeyRef          = "ref"
	KeyPage         = "page"
	KeyTotal        = "total"
	KeyRoutes       = "routes"
	KeyDocumentID   = "document_id"
	KeyDocumentType = "document_type"
	KeyPath         = "path"
	KeyURL          = "url"
	KeyStatus       = "status"
	KeyError        = "error"
	KeyRetry        = "retry"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Endpoint(e string) slog.Attr     { return slog.String(KeyEndpoint, e) }
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func Ref(r string) slog.Attr          { return slog.String(KeyRef, r) }
func Page(p int) slog.Attr            { return slog.Int(KeyPage, p) }
func Total(n int) slog.Attr           { return slog.Int(KeyTotal, n) }
func Routes(n int) slog.Attr          { return slog.Int(KeyRoutes, n) }
func DocumentID(id string) slog.Attr  { return slog.String(KeyDocumentID, id) }
func DocumentType(t string) slog.Attr { return slog.String(KeyDocumentType, t) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Retry(strategy string) slog.Attr { return slog.String(KeyRetry, strategy) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
