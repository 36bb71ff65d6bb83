package refdata

import "time"

// Built-in reference data. This is the seed set shipped with the binary;
// deployments layer curated entries from the store and the overlay file on top.

var defaultKeywords = []string{
	"test",
	"scam",
	"fraud",
	"fake",
	"refund",
	"cashback",
	"lottery",
	"winner",
	"prize",
	"urgent",
	"verify",
	"kyc",
	"blocked",
	"suspend",
}

// Pattern strings are compiled once at Set construction. RE2 has no
// backreferences, so the repeated-character rule lives in the risk package's
// pattern evaluator instead of this list.
var defaultPatterns = []string{
	`[0-9]{10,}`,           // 10+ consecutive digits
	`^[0-9]+@`,             // local part is only digits
	`^(admin|root|system)`, // reserved-looking prefixes
	`\.{2,}`,               // consecutive dots
}

var defaultTrusted = []string{
	"amazon.pay@axisbank",
	"flipkart@icici",
	"swiggy@hdfc",
	"zomato@ybl",
	"uber@okaxis",
	"ola@okicici",
	"bigbasket@oksbi",
	"myntra@icici",
	"irctc@okhdfcbank",
	"jio@axisbank",
	"airtel@paytm",
	"tatasky@okicici",
}

var defaultBlacklist = []BlacklistEntry{
	{
		Identifier:     "scammer@phonepe",
		Reason:         "Multiple reports of payment fraud after fake product listings",
		Severity:       SeverityCritical,
		ReportCount:    47,
		LastReportedAt: time.Date(2026, 7, 18, 9, 30, 0, 0, time.UTC),
		FraudType:      "fake_seller",
		Verified:       true,
	},
	{
		Identifier:     "kbcwinner@paytm",
		Reason:         "Lottery scam impersonating the KBC game show",
		Severity:       SeverityCritical,
		ReportCount:    112,
		LastReportedAt: time.Date(2026, 8, 2, 14, 5, 0, 0, time.UTC),
		FraudType:      "lottery_scam",
		Verified:       true,
	},
	{
		Identifier:     "refund.helpdesk@ybl",
		Reason:         "Poses as a bank refund desk and requests collect approvals",
		Severity:       SeverityHigh,
		ReportCount:    31,
		LastReportedAt: time.Date(2026, 6, 25, 11, 0, 0, 0, time.UTC),
		FraudType:      "refund_scam",
		Verified:       true,
	},
	{
		Identifier:     "kyc.update@oksbi",
		Reason:         "Fake KYC-expiry messages pushing victims to approve collect requests",
		Severity:       SeverityHigh,
		ReportCount:    58,
		LastReportedAt: time.Date(2026, 8, 10, 16, 45, 0, 0, time.UTC),
		FraudType:      "kyc_scam",
		Verified:       true,
	},
	{
		Identifier:     "armyman.olx@paytm",
		Reason:         "Advance-fee scam on classifieds posing as army personnel",
		Severity:       SeverityMedium,
		ReportCount:    19,
		LastReportedAt: time.Date(2026, 5, 30, 8, 20, 0, 0, time.UTC),
		FraudType:      "advance_fee",
		Verified:       false,
	},
	{
		Identifier:     "electricity.bill@ybl",
		Reason:         "Threatens disconnection unless an immediate payment is made",
		Severity:       SeverityMedium,
		ReportCount:    24,
		LastReportedAt: time.Date(2026, 7, 1, 19, 10, 0, 0, time.UTC),
		FraudType:      "utility_scam",
		Verified:       true,
	},
}

// Default returns a Set containing only the built-in reference data.
func Default() *Set {
	s, err := NewSet(defaultBlacklist, defaultTrusted, defaultKeywords, defaultPatterns)
	if err != nil {
		// Built-in patterns are compile-tested; failure here is a programmer error.
		panic("refdata: invalid built-in data: " + err.Error())
	}
	return s
}
