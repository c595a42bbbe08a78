// Package notify implementa los adaptadores del puerto Notifier.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tu-usuario/pos-pro/internal/application/ports"
)

// Verificar en tiempo de compilación que WebhookNotifier implementa Notifier.
var _ ports.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier publica eventos como POST JSON a un webhook configurado.
// La entrega es best-effort: los casos de uso publican en goroutine después
// del commit y aquí solo se registra el fallo.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewWebhookNotifier construye el adaptador.
func NewWebhookNotifier(url string, log zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Publish envía el evento al webhook. Cualquier respuesta no-2xx es error.
func (n *WebhookNotifier) Publish(ctx context.Context, event ports.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.log.Warn().Err(err).Str("event", event.Type).Msg("webhook inaccesible")
		return fmt.Errorf("enviar webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.log.Warn().Int("status", resp.StatusCode).Str("event", event.Type).Msg("webhook respondió error")
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}

var _ ports.Notifier = NoopNotifier{}

// NoopNotifier descarta eventos. Se usa cuando no hay webhook configurado.
type NoopNotifier struct{}

// Publish no hace nada.
func (NoopNotifier) Publish(context.Context, ports.Event) error { return nil }
