package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tu-usuario/printshop-pro/internal/application/warehouse"
)

// Verificar en tiempo de compilación que Notifier implementa warehouse.Notifier.
var _ warehouse.Notifier = (*Notifier)(nil)

const telegramAPIBase = "https://api.telegram.org"

// Notifier entrega alertas de stock bajo por Telegram (método sendMessage del
// Bot API). Usa net/http de la librería estándar; no requiere SDK. La entrega
// es best-effort: el evaluador registra y traga cualquier error de aquí.
type Notifier struct {
	botToken   string
	chatID     string
	httpClient *http.Client
}

// NewNotifier construye el notificador. Con botToken o chatID vacíos las
// llamadas devuelven error descriptivo en lugar de panic.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NotifyLowStock envía el mensaje de alerta al chat configurado.
func (n *Notifier) NotifyLowStock(ctx context.Context, p warehouse.AlertPayload) error {
	if n.botToken == "" || n.chatID == "" {
		return fmt.Errorf("telegram: bot token o chat id sin configurar")
	}
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    n.chatID,
		Text:      formatAlert(p),
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: enviar mensaje: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed sendMessageResponse
	_ = json.Unmarshal(raw, &parsed)
	if resp.StatusCode != http.StatusOK || !parsed.OK {
		return fmt.Errorf("telegram: sendMessage status %d: %s", resp.StatusCode, parsed.Description)
	}
	return nil
}

// formatAlert arma el texto del mensaje con los datos del payload.
func formatAlert(p warehouse.AlertPayload) string {
	var b strings.Builder
	switch p.Level {
	case "out_of_stock":
		b.WriteString("🚨 <b>Material agotado</b>\n")
	case "critical":
		b.WriteString("⚠️ <b>Stock crítico</b>\n")
	default:
		b.WriteString("📉 <b>Stock bajo</b>\n")
	}
	fmt.Fprintf(&b, "Material: %s\n", p.MaterialName)
	fmt.Fprintf(&b, "Cantidad actual: %s %s\n", p.Quantity.String(), p.Unit)
	fmt.Fprintf(&b, "Mínimo: %s %s\n", p.MinQuantity.String(), p.Unit)
	if p.CategoryName != "" {
		fmt.Fprintf(&b, "Categoría: %s\n", p.CategoryName)
	}
	if p.SupplierName != "" {
		fmt.Fprintf(&b, "Proveedor: %s", p.SupplierName)
		if p.SupplierContact != "" {
			fmt.Fprintf(&b, " (%s)", p.SupplierContact)
		}
		b.WriteString("\n")
	}
	return b.String()
}
