package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/graymont/rent-reminder/internal/config"
	"github.com/graymont/rent-reminder/internal/pkg/httputil"
	"github.com/graymont/rent-reminder/internal/pkg/logger"
	"github.com/graymont/rent-reminder/internal/recipients"
	"github.com/graymont/rent-reminder/internal/schedule"
	"github.com/graymont/rent-reminder/internal/store"
	"github.com/graymont/rent-reminder/internal/worker"
)

// maxUploadBytes caps recipient CSV uploads. Tenant lists are small; 10MB
// is already generous.
const maxUploadBytes = 10 << 20

// Handlers contains all HTTP handlers.
type Handlers struct {
	recipients  *store.RecipientStore
	queue       *store.QueueStore
	enqueuer    *worker.RunEnqueuer
	scheduleMgr *schedule.Manager
	twilioCfg   config.TwilioConfig
	template    string
	startTime   time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(rs *store.RecipientStore, qs *store.QueueStore, enq *worker.RunEnqueuer, sm *schedule.Manager, twilioCfg config.TwilioConfig, template string) *Handlers {
	return &Handlers{
		recipients:  rs,
		queue:       qs,
		enqueuer:    enq,
		scheduleMgr: sm,
		twilioCfg:   twilioCfg,
		template:    template,
		startTime:   time.Now(),
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "healthy",
		"uptime": time.Since(h.startTime).String(),
	})
}

// ListRecipients returns the stored recipients in spreadsheet order.
func (h *Handlers) ListRecipients(w http.ResponseWriter, r *http.Request) {
	recs, err := h.recipients.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if recs == nil {
		recs = []store.Recipient{}
	}
	httputil.OK(w, map[string]any{"recipients": recs, "total": len(recs)})
}

// GetRecipient returns one recipient.
func (h *Handlers) GetRecipient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	rec, err := h.recipients.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		httputil.NotFound(w, "recipient not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, rec)
}

// CreateRecipient appends one recipient to the list.
func (h *Handlers) CreateRecipient(w http.ResponseWriter, r *http.Request) {
	var rec recipients.Record
	if !httputil.Decode(w, r, &rec) {
		return
	}
	created, err := h.recipients.Create(r.Context(), rec)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, created)
}

// UpdateRecipient overwrites a recipient's canonical fields.
func (h *Handlers) UpdateRecipient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var rec recipients.Record
	if !httputil.Decode(w, r, &rec) {
		return
	}
	updated, err := h.recipients.Update(r.Context(), id, rec)
	if errors.Is(err, store.ErrNotFound) {
		httputil.NotFound(w, "recipient not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, updated)
}

// DeleteRecipient removes a recipient.
func (h *Handlers) DeleteRecipient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	err := h.recipients.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		httputil.NotFound(w, "recipient not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

// UploadRecipients replaces the recipient list with an uploaded CSV.
// Column headers are matched case-insensitively against the known synonyms;
// a recognizable header with missing roles is a 422 naming the missing
// columns, unreadable CSV is a 400. Either way the previous list is kept.
func (h *Handlers) UploadRecipients(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.BadRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	raw, err := recipients.ParseCSV(file)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	records, flagDefaulted, err := recipients.Normalize(raw)
	var missing *recipients.MissingColumnError
	if errors.As(err, &missing) {
		httputil.Unprocessable(w, missing.Error(), map[string]any{"missing": missing.MissingRoles})
		return
	}
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	if err := h.recipients.ReplaceAll(r.Context(), records); err != nil {
		httputil.InternalError(w, err)
		return
	}

	logger.Info("recipient list replaced from upload",
		"filename", header.Filename,
		"rows", len(records),
		"flag_defaulted", flagDefaulted)

	resp := map[string]any{
		"imported":       len(records),
		"flag_defaulted": flagDefaulted,
	}
	if flagDefaulted {
		resp["warning"] = "no send flag column found; all rows marked sendable"
	}
	httputil.OK(w, resp)
}

// ExportRecipients streams the list as a canonical three-column CSV.
func (h *Handlers) ExportRecipients(w http.ResponseWriter, r *http.Request) {
	recs, err := h.recipients.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	records := make([]recipients.Record, 0, len(recs))
	for _, rec := range recs {
		records = append(records, recipients.Record{
			Name:        rec.Name,
			PhoneNumber: rec.PhoneNumber,
			SendFlag:    rec.SendFlag,
		})
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="recipients.csv"`)
	if err := recipients.WriteCSV(w, records); err != nil {
		logger.Error("csv export failed", "error", err.Error())
	}
}

// GetSchedule returns the schedule in effect.
func (h *Handlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.scheduleMgr.Current())
}

// UpdateSchedule validates and installs a new schedule.
func (h *Handlers) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var s schedule.Schedule
	if !httputil.Decode(w, r, &s) {
		return
	}
	if err := h.scheduleMgr.Update(s); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	logger.Info("schedule updated", "type", string(s.Type))
	httputil.OK(w, s)
}

// GetSettings returns the effective settings with credentials masked.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"twilio": map[string]string{
			"account_sid": maskSecret(h.twilioCfg.AccountSID),
			"from_number": logger.RedactPhone(h.twilioCfg.FromNumber),
		},
		"schedule": h.scheduleMgr.Current(),
		"template": h.template,
	})
}

// TriggerSend enqueues a manual run from the current sendable recipients.
func (h *Handlers) TriggerSend(w http.ResponseWriter, r *http.Request) {
	run, err := h.enqueuer.Enqueue(r.Context(), store.TriggerManual)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, run)
}

// GetRun returns a run with its live progress.
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	run, err := h.queue.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		httputil.NotFound(w, "run not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	progress, err := h.queue.Progress(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"run": run, "progress": progress})
}

func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// maskSecret keeps the last four characters of a credential.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
