// Package pipeline runs a contact submission end to end: field validation,
// honeypot check, classification, persistence and the lead notification.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/neolimp/leadfilter/internal/classify"
	"github.com/neolimp/leadfilter/internal/config"
	"github.com/neolimp/leadfilter/internal/email"
	"github.com/neolimp/leadfilter/internal/store"
)

var (
	// ErrMissingFields means a required field was empty. Maps to a 400.
	ErrMissingFields = errors.New("missing required fields")
	// ErrNotifyFailed means classification and persistence completed but the
	// notification email could not be sent. Maps to a 500 with the
	// classification details attached.
	ErrNotifyFailed = errors.New("notification failed")
	// ErrAlreadyNotified guards against duplicate sends for the same record.
	ErrAlreadyNotified = errors.New("record already notified")
)

// Submission is the raw contact form payload, field names matching the form.
type Submission struct {
	Nombre   string `json:"nombre"`
	Empresa  string `json:"empresa"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
	Servicio string `json:"servicio"`
	Mensaje  string `json:"mensaje"`
	Origen   string `json:"origen"`
	// Website is the honeypot field. Humans never see it; any value means a bot.
	Website string `json:"website"`
}

// Response is what the caller gets back. DocID is nil when persistence failed;
// MailSent is nil when no send was attempted.
type Response struct {
	OK        bool     `json:"ok"`
	Status    string   `json:"status,omitempty"`
	Score     int      `json:"score"`
	Reasons   []string `json:"reasons"`
	DocID     *string  `json:"docId"`
	Discarded bool     `json:"discarded,omitempty"`
	MailSent  *bool    `json:"mailSent,omitempty"`
	MailID    string   `json:"mailId,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// RecordStore is the slice of the store the pipeline writes through.
type RecordStore interface {
	Create(ctx context.Context, record *store.Record) error
	MarkNotified(ctx context.Context, id, mailID string) error
	RecordMailError(ctx context.Context, id, errMsg string) error
}

type Pipeline struct {
	store       RecordStore
	sender      email.Sender
	logger      *zap.Logger
	from        string
	to          []string
	bcc         []string
	origin      string
	sendTimeout time.Duration
}

func New(st RecordStore, sender email.Sender, cfg *config.Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:       st,
		sender:      sender,
		logger:      logger,
		from:        cfg.Email.From,
		to:          cfg.Email.To,
		bcc:         cfg.Email.Bcc,
		origin:      cfg.Server.Origin,
		sendTimeout: time.Duration(cfg.Email.SendTimeoutSec) * time.Second,
	}
}

// Process runs one submission through the full pipeline. The returned Response
// is always populated, including on error, so callers can serialize it as-is.
func (p *Pipeline) Process(ctx context.Context, sub Submission) (Response, error) {
	if strings.TrimSpace(sub.Nombre) == "" ||
		strings.TrimSpace(sub.Email) == "" ||
		strings.TrimSpace(sub.Telefono) == "" ||
		strings.TrimSpace(sub.Mensaje) == "" {
		return Response{OK: false, Reasons: []string{}, Error: "faltan_campos"}, ErrMissingFields
	}

	// A filled honeypot is a bot with certainty. Answer as if accepted so the
	// bot learns nothing, but skip classification and persistence entirely.
	if strings.TrimSpace(sub.Website) != "" {
		p.logger.Info("honeypot triggered, discarding submission")
		return Response{
			OK:        true,
			Status:    string(classify.StatusSpam),
			Reasons:   []string{},
			Discarded: true,
		}, nil
	}

	result := classify.Classify(classify.Submission{
		Name:    sub.Nombre,
		Company: sub.Empresa,
		Email:   sub.Email,
		Phone:   sub.Telefono,
		Service: sub.Servicio,
		Message: sub.Mensaje,
	})
	reasons := result.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	origin := sub.Origen
	if origin == "" {
		origin = p.origin
	}

	record := &store.Record{
		Nombre:   sub.Nombre,
		Empresa:  sub.Empresa,
		Email:    sub.Email,
		Telefono: sub.Telefono,
		Servicio: sub.Servicio,
		Mensaje:  sub.Mensaje,
		Origen:   origin,
		Status:   string(result.Status),
		Score:    result.Score,
		Reasons:  reasons,
	}

	// Persistence is best effort. A store outage must not lose the
	// classification or block the notification.
	var docID *string
	if err := p.store.Create(ctx, record); err != nil {
		p.logger.Warn("failed to persist submission", zap.Error(err))
	} else {
		docID = &record.ID
	}

	resp := Response{
		OK:      true,
		Status:  string(result.Status),
		Score:   result.Score,
		Reasons: reasons,
		DocID:   docID,
	}

	p.logger.Info("submission classified",
		zap.String("status", string(result.Status)),
		zap.Int("score", result.Score),
		zap.Strings("reasons", reasons))

	if result.Status != classify.StatusLead {
		resp.Discarded = true
		return resp, nil
	}

	mailID, err := p.Notify(ctx, record)
	sent := err == nil
	resp.MailSent = &sent
	if err != nil {
		p.logger.Error("lead notification failed", zap.Error(err))
		resp.OK = false
		resp.Error = "notificacion_fallida"
		return resp, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	resp.MailID = mailID
	return resp, nil
}

// Notify sends the lead notification for a record and updates its lifecycle
// markers. It refuses to send twice for the same record and only sends for
// qualifying statuses, so redriving a batch is safe.
func (p *Pipeline) Notify(ctx context.Context, record *store.Record) (string, error) {
	if record.NotifiedAt.Valid {
		return "", ErrAlreadyNotified
	}
	if record.Status != string(classify.StatusLead) {
		return "", fmt.Errorf("record has status %q, not notifiable", record.Status)
	}

	msg := email.Message{
		From:    p.from,
		To:      p.to,
		Bcc:     p.bcc,
		ReplyTo: record.Email,
		Subject: buildSubject(record.Servicio),
		Body:    buildBody(record),
	}

	sendCtx, cancel := context.WithTimeout(ctx, p.sendTimeout)
	defer cancel()

	result := p.sender.Send(sendCtx, msg)
	if !result.Success {
		if record.ID != "" {
			if err := p.store.RecordMailError(ctx, record.ID, result.Error.Error()); err != nil {
				p.logger.Warn("failed to record mail error", zap.Error(err))
			}
		}
		return "", result.Error
	}

	if record.ID != "" {
		if err := p.store.MarkNotified(ctx, record.ID, result.MessageID); err != nil {
			p.logger.Warn("failed to mark record notified", zap.Error(err))
		}
	}

	p.logger.Info("lead notification sent",
		zap.String("provider", p.sender.Name()),
		zap.String("mail_id", result.MessageID))
	return result.MessageID, nil
}

func buildSubject(servicio string) string {
	if servicio == "" {
		servicio = "Sin servicio"
	}
	return fmt.Sprintf("Nuevo pedido de presupuesto - %s", servicio)
}

func buildBody(record *store.Record) string {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		loc = time.Local
	}
	when := time.Now().In(loc).Format("02/01/2006 15:04")

	var b strings.Builder
	b.WriteString("Nuevo pedido de presupuesto\n\n")
	fmt.Fprintf(&b, "Nombre: %s\n", record.Nombre)
	if record.Empresa != "" {
		fmt.Fprintf(&b, "Empresa: %s\n", record.Empresa)
	}
	fmt.Fprintf(&b, "Email: %s\n", record.Email)
	fmt.Fprintf(&b, "Telefono: %s\n", record.Telefono)
	if record.Servicio != "" {
		fmt.Fprintf(&b, "Servicio: %s\n", record.Servicio)
	}
	fmt.Fprintf(&b, "\nMensaje:\n%s\n", record.Mensaje)
	fmt.Fprintf(&b, "\nOrigen: %s\n", record.Origen)
	if record.ID != "" {
		fmt.Fprintf(&b, "ID: %s\n", record.ID)
	}
	fmt.Fprintf(&b, "Fecha: %s\n", when)
	return b.String()
}
