package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *SentinelClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *SentinelClient) *Handlers {
	return &Handlers{client: client}
}

// HandleCheckPayee scans a payee and formats the verdict.
func (h *Handlers) HandleCheckPayee(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier := req.GetString("identifier", "")
	if identifier == "" {
		return mcp.NewToolResultError("identifier is required"), nil
	}

	var amount *float64
	if raw, ok := req.GetArguments()["amount"].(float64); ok && raw >= 0 {
		amount = &raw
	}

	raw, err := h.client.CheckPayee(ctx, identifier, amount)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to check payee: %v", err)), nil
	}

	text, err := formatVerdict(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse verdict: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandlePayeeHistory returns a payee's standing and recent scans.
func (h *Handlers) HandlePayeeHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier := req.GetString("identifier", "")
	if identifier == "" {
		return mcp.NewToolResultError("identifier is required"), nil
	}
	limit := req.GetInt("limit", 20)

	payeeRaw, err := h.client.GetPayee(ctx, identifier)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to look up payee: %v", err)), nil
	}

	historyRaw, err := h.client.ListHistory(ctx, identifier, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load history: %v", err)), nil
	}

	text, err := formatPayeeHistory(payeeRaw, historyRaw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse payee data: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleReportFraud files a fraud report.
func (h *Handlers) HandleReportFraud(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier := req.GetString("identifier", "")
	if identifier == "" {
		return mcp.NewToolResultError("identifier is required"), nil
	}
	reason := req.GetString("reason", "")
	if reason == "" {
		return mcp.NewToolResultError("reason is required"), nil
	}
	fraudType := req.GetString("fraud_type", "")
	severity := req.GetString("severity", "")

	raw, err := h.client.FileReport(ctx, identifier, reason, fraudType, severity)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to file report: %v", err)), nil
	}

	var report map[string]any
	reportID := ""
	if json.Unmarshal(raw, &report) == nil {
		reportID = getString(report, "id")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Fraud report filed against %s.\n", identifier)
	if reportID != "" {
		fmt.Fprintf(&sb, "Report ID: %s\n", reportID)
	}
	sb.WriteString("The report will be reviewed; verified reports feed the shared blacklist.")

	return mcp.NewToolResultText(sb.String()), nil
}

// HandlePlatformStats returns platform statistics.
func (h *Handlers) HandlePlatformStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.GetStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get platform stats: %v", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(raw)), nil
}

// --- Formatting helpers ---

func formatVerdict(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	score, _ := getFloat(m, "score")
	level := getString(m, "level")
	identifier := getString(m, "identifier")

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", levelBadge(level), identifier)
	fmt.Fprintf(&sb, "Risk score: %.0f/100 (%s)\n", score, level)
	if conf, ok := getFloat(m, "confidence"); ok {
		fmt.Fprintf(&sb, "Confidence: %.0f%%\n", conf)
	}
	if ft := getString(m, "fraudType"); ft != "" {
		fmt.Fprintf(&sb, "Fraud type: %s\n", ft)
	}

	if reasons, ok := m["reasons"].([]any); ok && len(reasons) > 0 {
		sb.WriteString("\nReasons:\n")
		for _, r := range reasons {
			if s, ok := r.(string); ok {
				fmt.Fprintf(&sb, "  - %s\n", s)
			}
		}
	}

	if rec := getString(m, "recommendation"); rec != "" {
		fmt.Fprintf(&sb, "\n%s", rec)
	}

	return sb.String(), nil
}

func levelBadge(level string) string {
	switch level {
	case "danger":
		return "[DANGER]"
	case "warning":
		return "[WARNING]"
	case "caution":
		return "[CAUTION]"
	default:
		return "[SAFE]"
	}
}

func formatPayeeHistory(payeeRaw, historyRaw json.RawMessage) (string, error) {
	var payee map[string]any
	if err := json.Unmarshal(payeeRaw, &payee); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Payee: %s\n", getString(payee, "identifier"))

	if trusted, ok := payee["trusted"].(bool); ok && trusted {
		sb.WriteString("Status: Verified trusted merchant\n")
	}
	if bl, ok := payee["blacklisted"].(bool); ok && bl {
		sb.WriteString("Status: BLACKLISTED\n")
		if entry, ok := payee["blacklistEntry"].(map[string]any); ok {
			if reason := getString(entry, "reason"); reason != "" {
				fmt.Fprintf(&sb, "  Reason: %s\n", reason)
			}
			if n, ok := getFloat(entry, "reportCount"); ok && n > 0 {
				fmt.Fprintf(&sb, "  Reports: %.0f\n", n)
			}
		}
	}

	if latest, ok := payee["latestVerdict"].(map[string]any); ok {
		score, _ := getFloat(latest, "score")
		fmt.Fprintf(&sb, "Latest verdict: %.0f/100 (%s)\n", score, getString(latest, "level"))
	}

	var hist struct {
		Scans []map[string]any `json:"scans"`
	}
	if err := json.Unmarshal(historyRaw, &hist); err == nil && len(hist.Scans) > 0 {
		fmt.Fprintf(&sb, "\nRecent scans (%d):\n", len(hist.Scans))
		for i, s := range hist.Scans {
			outcome := getString(s, "outcome")
			line := fmt.Sprintf("  %d. outcome=%s", i+1, outcome)
			if amt, ok := getFloat(s, "amount"); ok {
				line += fmt.Sprintf(" amount=%.2f", amt)
			}
			sb.WriteString(line + "\n")
		}
	} else {
		sb.WriteString("\nNo recorded scans for this payee.\n")
	}

	return sb.String(), nil
}

func formatJSON(raw json.RawMessage) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw)
	}
	return pretty.String()
}

// getString extracts a string value from a map, trying multiple key names.
func getString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%g", f)
			}
		}
	}
	return ""
}

// getFloat extracts a float64 value from a map, trying multiple key names.
func getFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := v.(float64); ok {
				return f, true
			}
		}
	}
	return 0, false
}
