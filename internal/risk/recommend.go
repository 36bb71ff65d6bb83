package risk

// Recommend maps a level to the guidance text shown to the payer.
// Deterministic, no state.
func Recommend(level Level) string {
	switch level {
	case LevelDanger:
		return "High fraud risk. Do not proceed with this payment."
	case LevelWarning:
		return "Suspicious payee. Verify the merchant through another channel before proceeding."
	case LevelCaution:
		return "Some risk indicators found. Double-check the payee details before paying."
	default:
		return "This payee appears safe. Standard precautions apply."
	}
}
