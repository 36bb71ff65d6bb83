package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the Sentinel MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolCheckPayee = mcp.NewTool("check_payee",
	mcp.WithDescription(
		"Check a UPI payee identifier (VPA) for fraud risk before paying. "+
			"Returns a 0-100 risk score, a safe/caution/warning/danger level, "+
			"the reasons behind the score, and a recommendation. "+
			"Use this whenever the user is about to pay someone they haven't verified."),
	mcp.WithString("identifier",
		mcp.Required(),
		mcp.Description("The UPI identifier to check (e.g. 'merchant@paytm')")),
	mcp.WithNumber("amount",
		mcp.Description("Intended payment amount in rupees. Improves anomaly detection against the payee's history.")),
)

var ToolPayeeHistory = mcp.NewTool("payee_history",
	mcp.WithDescription(
		"Look up a payee's standing and scan history on Sentinel. "+
			"Shows whether the payee is blacklisted or trusted, the latest verdict, "+
			"and recent scans with their outcomes."),
	mcp.WithString("identifier",
		mcp.Required(),
		mcp.Description("The UPI identifier to look up (e.g. 'merchant@paytm')")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of history entries to return (default 20)")),
)

var ToolReportFraud = mcp.NewTool("report_fraud",
	mcp.WithDescription(
		"File a fraud report against a UPI payee. "+
			"Use this after the user confirms they were scammed or saw clear fraud. "+
			"Verified reports feed the shared blacklist and protect other users."),
	mcp.WithString("identifier",
		mcp.Required(),
		mcp.Description("The UPI identifier to report (e.g. 'scammer@upi')")),
	mcp.WithString("reason",
		mcp.Required(),
		mcp.Description("What happened, in one or two sentences")),
	mcp.WithString("fraud_type",
		mcp.Description("Category of fraud, e.g. 'fake_seller', 'phishing', 'lottery_scam'")),
	mcp.WithString("severity",
		mcp.Description("How severe the incident was"),
		mcp.Enum("low", "medium", "high", "critical")),
)

var ToolPlatformStats = mcp.NewTool("platform_stats",
	mcp.WithDescription(
		"Get Sentinel platform statistics: scans evaluated by risk level, "+
			"blacklist size, trusted merchant count, and reports filed."),
)
